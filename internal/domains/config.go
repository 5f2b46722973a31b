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

package domains

import (
	"github.com/rs/zerolog"

	"github.com/ENPICOM/s3-archive-stream/internal/storages/s3"
	"github.com/ENPICOM/s3-archive-stream/internal/utils/logger"
)

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Archive ArchiveConfig `mapstructure:"archive"`
}

type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

// StorageConfig routes buckets to credentialed clients: either one shared S3
// client for every bucket, or a per-bucket map. Supplying both is rejected
// at routing-construction time.
type StorageConfig struct {
	S3      *s3.Config            `mapstructure:"s3,omitempty"`
	Buckets map[string]*s3.Config `mapstructure:"buckets,omitempty"`
}

type ArchiveConfig struct {
	// Format - zip, tar or tar.gz
	Format string `mapstructure:"format"`
	// Output - "-" for stdout, a local file path, or an s3://bucket/key
	// destination
	Output string `mapstructure:"output"`
	// Manifest - path of the YAML entry manifest
	Manifest string `mapstructure:"manifest"`
}

func NewConfig() *Config {
	return &Config{
		Log: LogConfig{
			Format: logger.LogFormatTextValue,
			Level:  zerolog.LevelInfoValue,
		},
		Archive: ArchiveConfig{
			Format: "zip",
			Output: "-",
		},
	}
}
