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

package list

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ENPICOM/s3-archive-stream/internal/domains"
	"github.com/ENPICOM/s3-archive-stream/internal/storages/builder"
	"github.com/ENPICOM/s3-archive-stream/internal/storages/s3"
	"github.com/ENPICOM/s3-archive-stream/internal/utils/logger"
)

var (
	Cmd = &cobra.Command{
		Use:   "list s3://bucket/prefix",
		Short: "list the object keys under a prefix",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Fatal().Err(err).Msg("")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if err := listObjects(ctx, args[0]); err != nil {
				log.Fatal().Err(err).Msg("cannot list objects")
			}
		},
	}
	Config = domains.NewConfig()
)

func listObjects(ctx context.Context, rawURL string) error {
	bucket, prefix, err := s3.ParseURL(rawURL)
	if err != nil {
		return err
	}

	st, err := builder.GetStorage(ctx, Config, bucket)
	if err != nil {
		return err
	}

	token := ""
	for {
		page, err := st.ListObjects(ctx, bucket, prefix, token)
		if err != nil {
			return err
		}
		for _, key := range page.Keys {
			fmt.Println(key)
		}
		if !page.Truncated {
			return nil
		}
		token = page.NextToken
	}
}
