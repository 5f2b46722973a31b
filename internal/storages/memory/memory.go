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

package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ENPICOM/s3-archive-stream/pkg/archstream"
)

const defaultPageSize = 1000

type memoryObject struct {
	data         []byte
	lastModified time.Time
}

// Storage is an in-memory multi-bucket object store used by tests and
// examples. Listing is lexicographic with real pagination, so the
// engine's continuation handling is exercised for real.
type Storage struct {
	mu sync.RWMutex
	// PageSize - max keys per listing page
	PageSize int
	buckets  map[string]map[string]*memoryObject
}

var _ archstream.ObjectStore = (*Storage)(nil)

func New() *Storage {
	return &Storage{
		PageSize: defaultPageSize,
		buckets:  make(map[string]map[string]*memoryObject),
	}
}

func (s *Storage) GetObject(_ context.Context, bucket string, key string) (*archstream.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.buckets[bucket][key]
	if !ok {
		return nil, fmt.Errorf("object %q not found in bucket %q", key, bucket)
	}
	return &archstream.Object{
		Body:         io.NopCloser(bytes.NewReader(obj.data)),
		Size:         int64(len(obj.data)),
		LastModified: obj.lastModified,
	}, nil
}

func (s *Storage) ListObjects(
	_ context.Context, bucket string, prefix string, continuationToken string,
) (*archstream.ListPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, ok := s.buckets[bucket]
	if !ok {
		return &archstream.ListPage{}, nil
	}

	var keys []string
	for k := range objects {
		if strings.HasPrefix(k, prefix) && k > continuationToken {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	page := &archstream.ListPage{}
	if len(keys) > s.PageSize {
		keys = keys[:s.PageSize]
		page.Truncated = true
		page.NextToken = keys[len(keys)-1]
	}
	page.Keys = keys
	page.Matched = len(keys)
	return page, nil
}

func (s *Storage) PutObject(_ context.Context, bucket string, key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets[bucket] == nil {
		s.buckets[bucket] = make(map[string]*memoryObject)
	}
	s.buckets[bucket][key] = &memoryObject{
		data:         data,
		lastModified: time.Now(),
	}
	return nil
}
