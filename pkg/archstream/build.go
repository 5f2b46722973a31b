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
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ENPICOM/s3-archive-stream/pkg/archstream/archivers"
)

const defaultEventBuffer = 64

type buildOptions struct {
	format      archivers.Format
	eventBuffer int
}

type Option func(*buildOptions)

// WithFormat selects the archive container format. Default is zip.
func WithFormat(f archivers.Format) Option {
	return func(o *buildOptions) {
		o.format = f
	}
}

// WithEventBuffer sets the capacity of the progress event channel.
func WithEventBuffer(n int) Option {
	return func(o *buildOptions) {
		o.eventBuffer = n
	}
}

// Build starts streaming the requested entries into a single archive and
// returns the live output stream immediately. All resolution and fetch work
// runs in the background; errors are surfaced exactly once, as the stream's
// terminal error, never from Build itself.
//
// Entries are grouped by bucket preserving relative order. Groups run
// concurrently; entries within a group are processed strictly in order, with
// directory expansion inserting its results contiguously in place. The
// in-flight fetch bound therefore equals the number of distinct buckets.
// Cancelling ctx abandons the build and aborts the stream.
func Build(ctx context.Context, routing Routing, entries []Entry, opts ...Option) *Stream {
	o := &buildOptions{
		format:      archivers.FormatZip,
		eventBuffer: defaultEventBuffer,
	}
	for _, opt := range opts {
		opt(o)
	}

	pr, pw := io.Pipe()
	s := &Stream{
		id:     uuid.NewString(),
		pr:     pr,
		events: make(chan EntryEvent, o.eventBuffer),
	}

	arch, err := archivers.New(o.format, pw)
	if err != nil {
		_ = pw.CloseWithError(err)
		close(s.events)
		return s
	}

	go run(ctx, routing, entries, arch, pw, s)
	return s
}

func run(ctx context.Context, routing Routing, entries []Entry, arch archivers.Archiver, pw *io.PipeWriter, s *Stream) {
	defer close(s.events)

	eg, gtx := errgroup.WithContext(ctx)
	for _, g := range groupByBucket(entries) {
		eg.Go(groupRunner(gtx, routing, g, arch, s))
	}

	if err := eg.Wait(); err != nil {
		arch.Abort(err)
		_ = pw.CloseWithError(err)
		log.Debug().Err(err).Str("build_id", s.id).Msg("archive build aborted")
		return
	}

	if err := arch.Finalize(); err != nil {
		_ = pw.CloseWithError(err)
		log.Debug().Err(err).Str("build_id", s.id).Msg("error finalizing archive")
		return
	}
	_ = pw.Close()
	log.Debug().Str("build_id", s.id).Msg("archive build finished")
}

// groupRunner resolves the group's store once, before any of its I/O, then
// walks the group's entries sequentially.
func groupRunner(ctx context.Context, routing Routing, g bucketGroup, arch archivers.Archiver, s *Stream) func() error {
	return func() error {
		st, err := routing.resolve(g.bucket)
		if err != nil {
			return err
		}
		for _, e := range g.entries {
			if err := processEntry(ctx, st, e, arch, s); err != nil {
				return err
			}
		}
		return nil
	}
}

func processEntry(ctx context.Context, st ObjectStore, e Entry, arch archivers.Archiver, s *Stream) error {
	if e.IsDir() {
		resolved, err := expand(ctx, st, e)
		if err != nil {
			return err
		}
		for _, re := range resolved {
			if err := fetchAndAppend(ctx, st, re, arch, s); err != nil {
				return err
			}
		}
		return nil
	}

	re := resolvedEntry{
		bucket: e.Bucket,
		key:    e.Key,
		name:   resolveName(e.Key, e.ArchiveName, e.PreserveFolders, ""),
		meta:   e.Meta,
	}
	return fetchAndAppend(ctx, st, re, arch, s)
}

type bucketGroup struct {
	bucket  string
	entries []Entry
}

// groupByBucket partitions entries by bucket, keeping each group's entries
// in their original relative order.
func groupByBucket(entries []Entry) []bucketGroup {
	idx := make(map[string]int)
	var groups []bucketGroup
	for _, e := range entries {
		i, ok := idx[e.Bucket]
		if !ok {
			i = len(groups)
			idx[e.Bucket] = i
			groups = append(groups, bucketGroup{bucket: e.Bucket})
		}
		groups[i].entries = append(groups[i].entries, e)
	}
	return groups
}
