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

package archive

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ENPICOM/s3-archive-stream/pkg/archstream"
)

const (
	entryTypeFile = "file"
	entryTypeDir  = "dir"
)

type manifest struct {
	Entries []manifestEntry `yaml:"entries"`
}

type manifestEntry struct {
	Type            string     `yaml:"type"`
	Bucket          string     `yaml:"bucket"`
	Key             string     `yaml:"key,omitempty"`
	Prefix          string     `yaml:"prefix,omitempty"`
	Name            string     `yaml:"name,omitempty"`
	PreserveFolders bool       `yaml:"preserve_folders,omitempty"`
	Mode            uint32     `yaml:"mode,omitempty"`
	ModTime         *time.Time `yaml:"mod_time,omitempty"`
	Comment         string     `yaml:"comment,omitempty"`
}

func readManifest(path string) ([]archstream.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest: %w", err)
	}
	return parseManifest(data)
}

func parseManifest(data []byte) ([]archstream.Entry, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("cannot parse manifest: %w", err)
	}
	if len(m.Entries) == 0 {
		return nil, fmt.Errorf("manifest lists no entries")
	}

	entries := make([]archstream.Entry, 0, len(m.Entries))
	for idx, me := range m.Entries {
		if me.Bucket == "" {
			return nil, fmt.Errorf("manifest entry %d: bucket cannot be empty", idx)
		}

		var e archstream.Entry
		switch me.Type {
		case entryTypeFile:
			e = archstream.NewFileEntry(me.Bucket, me.Key)
			e.ArchiveName = me.Name
		case entryTypeDir:
			e = archstream.NewDirEntry(me.Bucket, me.Prefix)
			if me.Name != "" {
				return nil, fmt.Errorf("manifest entry %d: name is only valid for file entries", idx)
			}
		default:
			return nil, fmt.Errorf("manifest entry %d: unknown type %q", idx, me.Type)
		}
		e.PreserveFolders = me.PreserveFolders

		if me.Mode != 0 || me.ModTime != nil || me.Comment != "" {
			meta := &archstream.Meta{
				Mode:    fs.FileMode(me.Mode),
				Comment: me.Comment,
			}
			if me.ModTime != nil {
				meta.ModTime = *me.ModTime
			}
			e.Meta = meta
		}
		entries = append(entries, e)
	}
	return entries, nil
}
