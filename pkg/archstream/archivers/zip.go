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
	"archive/zip"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/rs/zerolog/log"
)

type zipArchiver struct {
	mx     sync.Mutex
	zw     *zip.Writer
	closed bool
}

func newZipArchiver(out io.Writer) *zipArchiver {
	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})
	return &zipArchiver{zw: zw}
}

func (a *zipArchiver) Append(name string, body io.Reader, info EntryInfo) error {
	a.mx.Lock()
	defer a.mx.Unlock()
	if a.closed {
		return ErrWriterClosed
	}

	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: info.ModTime,
		Comment:  info.Comment,
	}
	if hdr.Modified.IsZero() {
		hdr.Modified = time.Now()
	}
	if info.Mode != 0 {
		hdr.SetMode(info.Mode)
	}

	w, err := a.zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("error creating zip member %q: %w", name, err)
	}
	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("error writing zip member %q: %w", name, err)
	}
	return nil
}

func (a *zipArchiver) Finalize() error {
	a.mx.Lock()
	defer a.mx.Unlock()
	if a.closed {
		return ErrWriterClosed
	}
	a.closed = true
	if err := a.zw.Close(); err != nil {
		return fmt.Errorf("error flushing zip central directory: %w", err)
	}
	return nil
}

func (a *zipArchiver) Abort(err error) {
	a.mx.Lock()
	defer a.mx.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	log.Debug().Err(err).Msg("zip output aborted")
}
