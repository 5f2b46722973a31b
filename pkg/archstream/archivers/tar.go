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
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"time"

	"github.com/klauspost/pgzip"
	"github.com/rs/zerolog/log"
)

const defaultTarMode fs.FileMode = 0644

type tarArchiver struct {
	mx     sync.Mutex
	tw     *tar.Writer
	gz     *pgzip.Writer
	closed bool
}

func newTarArchiver(out io.Writer, compress bool) *tarArchiver {
	a := &tarArchiver{}
	if compress {
		a.gz = pgzip.NewWriter(out)
		a.tw = tar.NewWriter(a.gz)
	} else {
		a.tw = tar.NewWriter(out)
	}
	return a
}

func (a *tarArchiver) Append(name string, body io.Reader, info EntryInfo) error {
	a.mx.Lock()
	defer a.mx.Unlock()
	if a.closed {
		return ErrWriterClosed
	}

	mode := info.Mode
	if mode == 0 {
		mode = defaultTarMode
	}
	modTime := info.ModTime
	if modTime.IsZero() {
		modTime = time.Now()
	}
	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Size:     info.Size,
		Mode:     int64(mode.Perm()),
		ModTime:  modTime,
	}

	if err := a.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("error writing tar header %q: %w", name, err)
	}
	if _, err := io.Copy(a.tw, body); err != nil {
		return fmt.Errorf("error writing tar member %q: %w", name, err)
	}
	return nil
}

func (a *tarArchiver) Finalize() error {
	a.mx.Lock()
	defer a.mx.Unlock()
	if a.closed {
		return ErrWriterClosed
	}
	a.closed = true
	if err := a.tw.Close(); err != nil {
		return fmt.Errorf("error flushing tar trailer: %w", err)
	}
	if a.gz != nil {
		if err := a.gz.Close(); err != nil {
			return fmt.Errorf("error closing gzip writer: %w", err)
		}
	}
	return nil
}

func (a *tarArchiver) Abort(err error) {
	a.mx.Lock()
	defer a.mx.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	log.Debug().Err(err).Msg("tar output aborted")
}
