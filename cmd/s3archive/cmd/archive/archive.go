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
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ENPICOM/s3-archive-stream/internal/domains"
	"github.com/ENPICOM/s3-archive-stream/internal/storages/builder"
	"github.com/ENPICOM/s3-archive-stream/internal/storages/s3"
	"github.com/ENPICOM/s3-archive-stream/internal/utils/logger"
	"github.com/ENPICOM/s3-archive-stream/pkg/archstream"
	"github.com/ENPICOM/s3-archive-stream/pkg/archstream/archivers"
)

var (
	Cmd = &cobra.Command{
		Use:   "archive",
		Short: "stream the objects listed in the entry manifest into one archive",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Fatal().Err(err).Msg("")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if err := runArchive(ctx); err != nil {
				log.Fatal().Err(err).Msg("cannot build archive")
			}
		},
	}
	Config = domains.NewConfig()
)

func init() {
	Cmd.Flags().StringP("manifest", "m", "", "YAML file listing the entries to archive")
	Cmd.Flags().StringP("format", "f", "zip", "archive format [zip|tar|tar.gz]")
	Cmd.Flags().StringP("output", "o", "-", `destination: "-" for stdout, a file path, or s3://bucket/key`)

	for _, flagName := range []string{"manifest", "format", "output"} {
		flag := Cmd.Flags().Lookup(flagName)
		if err := viper.BindPFlag(fmt.Sprintf("archive.%s", flagName), flag); err != nil {
			log.Fatal().Err(err).Msg("")
		}
	}
}

func runArchive(ctx context.Context) error {
	format, err := archivers.ParseFormat(Config.Archive.Format)
	if err != nil {
		return err
	}
	if Config.Archive.Manifest == "" {
		return fmt.Errorf("archive.manifest cannot be empty")
	}
	entries, err := readManifest(Config.Archive.Manifest)
	if err != nil {
		return err
	}

	routing, err := builder.GetRouting(ctx, Config)
	if err != nil {
		return err
	}

	stream := archstream.Build(ctx, routing, entries, archstream.WithFormat(format))
	go logProgress(stream)

	log.Info().
		Str("build_id", stream.ID()).
		Str("format", string(format)).
		Int("entries", len(entries)).
		Msg("streaming archive")
	return writeOutput(ctx, stream, Config.Archive.Output)
}

func logProgress(stream *archstream.Stream) {
	for ev := range stream.Events() {
		log.Info().
			Str("build_id", stream.ID()).
			Str("bucket", ev.Bucket).
			Str("key", ev.Key).
			Str("name", ev.Name).
			Int64("bytes", ev.Bytes).
			Msg("entry added")
	}
}

func writeOutput(ctx context.Context, stream *archstream.Stream, output string) error {
	switch {
	case output == "-":
		if _, err := io.Copy(os.Stdout, stream); err != nil {
			return err
		}
	case strings.HasPrefix(output, "s3://"):
		bucket, key, err := s3.ParseURL(output)
		if err != nil {
			return err
		}
		if key == "" {
			return fmt.Errorf("s3 destination %q is missing an object key", output)
		}
		st, err := builder.GetStorage(ctx, Config, bucket)
		if err != nil {
			return err
		}
		if err := st.PutObject(ctx, bucket, key, stream); err != nil {
			return err
		}
	default:
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		if _, err := io.Copy(f, stream); err != nil {
			return err
		}
	}
	return nil
}
