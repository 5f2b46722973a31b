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

package archivers

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"
)

type Format string

const (
	FormatZip   Format = "zip"
	FormatTar   Format = "tar"
	FormatTarGz Format = "tar.gz"
)

// ErrWriterClosed - the archiver has been finalized or aborted. Appends
// racing an abort observe this and must treat it as benign.
var ErrWriterClosed = errors.New("archive writer is closed")

// EntryInfo describes one member being appended. Size must be exact for tar
// output; zip ignores it.
type EntryInfo struct {
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
	Comment string
}

// Archiver containerizes named byte streams into a single output written to
// the underlying io.Writer as members are appended, never buffered to
// completion. Append is serialized internally: concurrent callers are safe
// but their relative order is whatever the lock grants.
type Archiver interface {
	Append(name string, body io.Reader, info EntryInfo) error
	// Finalize - flushes trailing container metadata. No appends are
	// accepted afterwards.
	Finalize() error
	// Abort - stops accepting appends without writing a valid trailer. The
	// output consumed so far must be treated as corrupt.
	Abort(err error)
}

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatZip, FormatTar, FormatTarGz:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown archive format %q", s)
}

// New returns an archiver of the requested format writing to out.
func New(format Format, out io.Writer) (Archiver, error) {
	switch format {
	case FormatZip:
		return newZipArchiver(out), nil
	case FormatTar:
		return newTarArchiver(out, false), nil
	case FormatTarGz:
		return newTarArchiver(out, true), nil
	}
	return nil, fmt.Errorf("unknown archive format %q", format)
}
