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

import "strings"

const keySeparator = "/"

// resolveName computes the in-archive path for an object. An explicit name
// always wins. With folder preservation the full source key is kept. Without
// it, keys discovered by directory expansion lose the expansion prefix
// (strippedPrefix), and standalone keys keep only the final path segment.
func resolveName(key string, explicitName string, preserveFolders bool, strippedPrefix string) string {
	if explicitName != "" {
		return explicitName
	}
	if preserveFolders {
		return key
	}
	if strippedPrefix != "" {
		return strings.TrimPrefix(key, strippedPrefix)
	}
	if idx := strings.LastIndex(key, keySeparator); idx >= 0 {
		return key[idx+1:]
	}
	return key
}
