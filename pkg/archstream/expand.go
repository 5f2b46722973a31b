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
	"strings"

	"github.com/rs/zerolog/log"
)

// expand rewrites one dir entry into concrete file entries by paginated
// listing. The store is assumed to return keys at any depth under the
// prefix, so this is a single pagination loop, not a tree walk. Partial
// results are discarded on a listing failure.
func expand(ctx context.Context, st ObjectStore, e Entry) ([]resolvedEntry, error) {
	prefix := strings.TrimRight(e.Prefix, keySeparator) + keySeparator

	var out []resolvedEntry
	token := ""
	firstPage := true
	for {
		page, err := st.ListObjects(ctx, e.Bucket, prefix, token)
		if err != nil {
			return nil, &ListingFailedError{Bucket: e.Bucket, Prefix: prefix, Err: err}
		}
		if firstPage && !page.Truncated && page.Matched == 0 {
			return nil, &EmptyDirectoryError{Bucket: e.Bucket, Prefix: prefix}
		}
		firstPage = false

		for _, key := range page.Keys {
			// folder markers (the prefix itself included) are not archived
			if key == "" || strings.HasSuffix(key, keySeparator) {
				continue
			}
			out = append(out, resolvedEntry{
				bucket: e.Bucket,
				key:    key,
				name:   resolveName(key, "", e.PreserveFolders, prefix),
				meta:   e.Meta,
			})
		}

		// a truncated page with no contents still carries a token; keep
		// paginating until the store reports the listing complete
		if !page.Truncated {
			break
		}
		token = page.NextToken
	}

	log.Debug().
		Str("bucket", e.Bucket).
		Str("prefix", prefix).
		Int("objects", len(out)).
		Msg("expanded directory entry")
	return out, nil
}
