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

package builder

import (
	"context"
	"errors"

	"github.com/ENPICOM/s3-archive-stream/internal/domains"
	"github.com/ENPICOM/s3-archive-stream/internal/storages/s3"
	"github.com/ENPICOM/s3-archive-stream/pkg/archstream"
)

// GetRouting builds the engine routing from configuration: one shared client
// or a per-bucket map, never both.
func GetRouting(ctx context.Context, cfg *domains.Config) (archstream.Routing, error) {
	stCfg := cfg.Storage
	if stCfg.S3 != nil && len(stCfg.Buckets) > 0 {
		return archstream.Routing{}, errors.New("storage.s3 and storage.buckets are mutually exclusive")
	}

	if len(stCfg.Buckets) > 0 {
		stores := make(map[string]archstream.ObjectStore, len(stCfg.Buckets))
		for bucket, sc := range stCfg.Buckets {
			st, err := newStorage(ctx, sc, cfg.Log.Level)
			if err != nil {
				return archstream.Routing{}, err
			}
			stores[bucket] = st
		}
		return archstream.PerBucket(stores), nil
	}

	if stCfg.S3 != nil {
		st, err := newStorage(ctx, stCfg.S3, cfg.Log.Level)
		if err != nil {
			return archstream.Routing{}, err
		}
		return archstream.SingleStore(st), nil
	}

	return archstream.Routing{}, errors.New("no storage was provided")
}

// GetStorage returns the client serving one bucket, used for direct listing
// and for uploading a finished archive back to the store.
func GetStorage(ctx context.Context, cfg *domains.Config, bucket string) (*s3.Storage, error) {
	stCfg := cfg.Storage
	if sc, ok := stCfg.Buckets[bucket]; ok {
		return newStorage(ctx, sc, cfg.Log.Level)
	}
	if stCfg.S3 != nil {
		return newStorage(ctx, stCfg.S3, cfg.Log.Level)
	}
	return nil, errors.New("no storage was provided")
}

func newStorage(ctx context.Context, cfg *s3.Config, logLevel string) (*s3.Storage, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return s3.New(ctx, cfg, logLevel)
}
