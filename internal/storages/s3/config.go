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

package s3

import "errors"

const (
	defaultMaxRetries   = 3
	defaultMaxPartSize  = 50 * 1024 * 1024
	defaultStorageClass = "STANDARD"
)

type Config struct {
	Endpoint        string `mapstructure:"endpoint,omitempty"`
	Region          string `mapstructure:"region,omitempty"`
	StorageClass    string `mapstructure:"storage_class,omitempty"`
	AccessKeyId     string `mapstructure:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key,omitempty"`
	SessionToken    string `mapstructure:"session_token,omitempty"`
	RoleArn         string `mapstructure:"role_arn,omitempty"`
	SessionName     string `mapstructure:"session_name,omitempty"`
	MaxRetries      int    `mapstructure:"max_retries,omitempty"`
	CertFile        string `mapstructure:"cert_file,omitempty"`
	MaxPartSize     int64  `mapstructure:"max_part_size,omitempty"`
	Concurrency     int    `mapstructure:"concurrency,omitempty"`
	// MaxKeysPerPage - page size for listing calls; 0 keeps the provider
	// default
	MaxKeysPerPage   int64 `mapstructure:"max_keys_per_page,omitempty"`
	UseListObjectsV1 bool  `mapstructure:"use_list_objects_v1,omitempty"`
	ForcePathStyle   bool  `mapstructure:"force_path_style,omitempty"`
	UseAccelerate    bool  `mapstructure:"use_accelerate,omitempty"`
	NoVerifySsl      bool  `mapstructure:"no_verify_ssl,omitempty"`
}

func NewConfig() *Config {
	return &Config{
		StorageClass:   defaultStorageClass,
		ForcePathStyle: true,
		MaxRetries:     defaultMaxRetries,
		MaxPartSize:    defaultMaxPartSize,
	}
}

// SetDefaults fills zero-valued tunables so a minimal config section stays
// valid.
func (c *Config) SetDefaults() {
	if c.StorageClass == "" {
		c.StorageClass = defaultStorageClass
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.MaxPartSize == 0 {
		c.MaxPartSize = defaultMaxPartSize
	}
}

func (c *Config) Validate() error {
	if c.Region == "" && c.Endpoint == "" {
		return errors.New("either region or endpoint must be set")
	}
	if c.MaxPartSize <= 0 {
		return errors.New("max_part_size must be positive")
	}
	return nil
}
