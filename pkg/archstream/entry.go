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
	"io/fs"
	"time"
)

type entryKind int

const (
	kindFile entryKind = iota
	kindDir
)

// Meta is passthrough metadata recorded on the archive member for an entry.
// Zero fields fall back to the writer defaults (for mtime, the object's
// LastModified reported by the store).
type Meta struct {
	Mode    fs.FileMode
	ModTime time.Time
	Comment string
}

// Entry is one requested archive member: either a concrete object (file
// entry) or a directory-style prefix expanded by listing (dir entry). The
// variant is fixed at construction and never inferred from field presence.
type Entry struct {
	kind entryKind

	Bucket string
	// Key - the object key for a file entry. Must be non-empty and must not
	// end in a separator; that shape fails the build, it is never
	// reinterpreted as a directory.
	Key string
	// Prefix - the listing prefix for a dir entry
	Prefix string
	// ArchiveName - optional explicit in-archive name, file entries only
	ArchiveName string
	// PreserveFolders - keep the full source key as the in-archive path
	PreserveFolders bool
	Meta            *Meta
}

func NewFileEntry(bucket string, key string) Entry {
	return Entry{kind: kindFile, Bucket: bucket, Key: key}
}

func NewDirEntry(bucket string, prefix string) Entry {
	return Entry{kind: kindDir, Bucket: bucket, Prefix: prefix}
}

func (e Entry) IsDir() bool {
	return e.kind == kindDir
}

// resolvedEntry is the expansion-complete form: always file-shaped. Dir
// entries never reach the fetch stage directly.
type resolvedEntry struct {
	bucket string
	key    string
	name   string
	meta   *Meta
}
