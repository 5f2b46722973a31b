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

import "fmt"

// NoClientForBucketError - the routing map has no store for a bucket some
// entry references.
type NoClientForBucketError struct {
	Bucket string
}

func (e *NoClientForBucketError) Error() string {
	return fmt.Sprintf("no client for bucket %q", e.Bucket)
}

// InvalidSourceKeyError - a file entry's key is empty or ends in a
// separator.
type InvalidSourceKeyError struct {
	Bucket string
	Key    string
}

func (e *InvalidSourceKeyError) Error() string {
	return fmt.Sprintf("invalid source key %q in bucket %q", e.Key, e.Bucket)
}

// EmptyDirectoryError - a dir entry's prefix matched zero objects on its
// first, non-truncated listing page.
type EmptyDirectoryError struct {
	Bucket string
	Prefix string
}

func (e *EmptyDirectoryError) Error() string {
	return fmt.Sprintf("prefix %q in bucket %q matches no objects", e.Prefix, e.Bucket)
}

// ListingFailedError - a listing call failed mid-pagination.
type ListingFailedError struct {
	Bucket string
	Prefix string
	Err    error
}

func (e *ListingFailedError) Error() string {
	return fmt.Sprintf("listing prefix %q in bucket %q: %v", e.Prefix, e.Bucket, e.Err)
}

func (e *ListingFailedError) Unwrap() error {
	return e.Err
}

// FetchFailedError - the object fetch call failed or returned no usable byte
// stream. The sub-cases are not distinguishable to the caller in a useful
// way, so they share one kind.
type FetchFailedError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("fetching object %q from bucket %q: %v", e.Key, e.Bucket, e.Err)
}

func (e *FetchFailedError) Unwrap() error {
	return e.Err
}
