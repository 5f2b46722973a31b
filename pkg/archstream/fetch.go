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
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ENPICOM/s3-archive-stream/internal/utils/ioutils"
	"github.com/ENPICOM/s3-archive-stream/pkg/archstream/archivers"
)

// fetchAndAppend retrieves one object and appends its stream to the archive
// under the resolved name. The key shape is re-checked here: the expander
// never yields a bad key, but a directly supplied file entry might carry
// one.
func fetchAndAppend(ctx context.Context, st ObjectStore, re resolvedEntry, arch archivers.Archiver, s *Stream) error {
	if re.key == "" || strings.HasSuffix(re.key, keySeparator) {
		return &InvalidSourceKeyError{Bucket: re.bucket, Key: re.key}
	}

	obj, err := st.GetObject(ctx, re.bucket, re.key)
	if err != nil {
		return &FetchFailedError{Bucket: re.bucket, Key: re.key, Err: err}
	}
	if obj == nil || obj.Body == nil {
		return &FetchFailedError{Bucket: re.bucket, Key: re.key, Err: errors.New("store returned no payload")}
	}

	body := ioutils.NewCountReader(obj.Body)
	defer func() {
		if err := body.Close(); err != nil {
			log.Debug().Err(err).Str("key", re.key).Msg("error closing object body")
		}
	}()

	info := archivers.EntryInfo{
		Size:    obj.Size,
		ModTime: obj.LastModified,
	}
	if re.meta != nil {
		info.Mode = re.meta.Mode
		info.Comment = re.meta.Comment
		if !re.meta.ModTime.IsZero() {
			info.ModTime = re.meta.ModTime
		}
	}

	if err := arch.Append(re.name, body, info); err != nil {
		return err
	}

	s.emit(EntryEvent{
		Bucket: re.bucket,
		Key:    re.key,
		Name:   re.name,
		Bytes:  body.Count(),
	})
	log.Debug().
		Str("build_id", s.id).
		Str("bucket", re.bucket).
		Str("key", re.key).
		Str("name", re.name).
		Int64("bytes", body.Count()).
		Msg("archive member appended")
	return nil
}
