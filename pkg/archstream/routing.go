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

// Routing maps bucket names to the store that serves them. The variant is
// chosen by the caller at construction; it is resolved once per bucket group
// before any I/O for that group begins.
type Routing struct {
	shared    ObjectStore
	perBucket map[string]ObjectStore
}

// SingleStore routes every bucket to one shared store.
func SingleStore(st ObjectStore) Routing {
	return Routing{shared: st}
}

// PerBucket routes each bucket to its own store. Buckets missing from the
// map fail their group with NoClientForBucketError.
func PerBucket(stores map[string]ObjectStore) Routing {
	return Routing{perBucket: stores}
}

func (r Routing) resolve(bucket string) (ObjectStore, error) {
	if r.shared != nil {
		return r.shared, nil
	}
	st, ok := r.perBucket[bucket]
	if !ok {
		return nil, &NoClientForBucketError{Bucket: bucket}
	}
	return st, nil
}
