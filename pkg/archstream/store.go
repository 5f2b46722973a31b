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
	"time"
)

// Object is a single blob fetched from a store. The receiver owns Body and
// must close it.
type Object struct {
	Body         io.ReadCloser
	Size         int64
	LastModified time.Time
}

// ListPage is one page of a paginated listing. Matched counts the keys the
// store matched on this page before any client-side filtering, so an empty
// Keys slice with Matched > 0 is possible and is not an empty directory.
type ListPage struct {
	Keys      []string
	Matched   int
	Truncated bool
	NextToken string
}

// ObjectStore is the credentialed blob-store client the engine fetches from.
// Implementations must be safe for concurrent use: distinct bucket groups
// may fetch through the same store at the same time.
type ObjectStore interface {
	// GetObject - returns the object byte stream with its size and mtime
	GetObject(ctx context.Context, bucket string, key string) (*Object, error)
	// ListObjects - returns one page of keys under the prefix; pass the
	// returned NextToken to get the next page while Truncated is true
	ListObjects(ctx context.Context, bucket string, prefix string, continuationToken string) (*ListPage, error)
}
