// Copyright 2025 ENPICOM
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package archstream

import (
	"errors"
	"io"
)

// ErrStreamClosed - the consumer abandoned the stream before the build
// finished.
var ErrStreamClosed = errors.New("archive stream closed by consumer")

// EntryEvent is an informational notification emitted once per appended
// archive member.
type EntryEvent struct {
	Bucket string
	Key    string
	Name   string
	// Bytes - size of the member's content as drained from the store
	Bytes int64
}

// Stream is the readable archive produced by Build. Bytes are emitted
// incrementally while the build runs in the background; reading past the end
// returns io.EOF on success or the build's first error. A partially read,
// then failed stream is not a parseable archive and must be discarded.
type Stream struct {
	id     string
	pr     *io.PipeReader
	events chan EntryEvent
}

// ID - unique identifier of this build, carried in logs and useful for
// correlating progress events.
func (s *Stream) ID() string {
	return s.id
}

func (s *Stream) Read(p []byte) (int, error) {
	return s.pr.Read(p)
}

// Close abandons the build. In-flight fetches observe a closed pipe on their
// next append and the whole build aborts.
func (s *Stream) Close() error {
	return s.pr.CloseWithError(ErrStreamClosed)
}

// Events - per-member progress notifications. The channel is closed once the
// build reaches a terminal state. Events are dropped rather than blocking
// the build when the consumer lags.
func (s *Stream) Events() <-chan EntryEvent {
	return s.events
}

func (s *Stream) emit(ev EntryEvent) {
	select {
	case s.events <- ev:
	default:
	}
}
