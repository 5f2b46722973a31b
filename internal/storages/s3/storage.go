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

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/defaults"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ENPICOM/s3-archive-stream/pkg/archstream"
)

// Storage is a credentialed S3 client serving any bucket reachable with its
// credentials. The bucket is chosen per call, so one Storage can back a
// whole routing table or a single shared route.
type Storage struct {
	config   *Config
	session  *session.Session
	service  s3iface.S3API
	uploader s3manageriface.UploaderAPI
}

var _ archstream.ObjectStore = (*Storage)(nil)

func New(ctx context.Context, cfg *Config, logLevel string) (*Storage, error) {
	ses, err := session.NewSession()
	if err != nil {
		return nil, fmt.Errorf("cannot establish session: %w", err)
	}

	awsCfg := aws.NewConfig()
	awsCfg.WithS3ForcePathStyle(cfg.ForcePathStyle)
	awsCfg.WithS3UseAccelerate(cfg.UseAccelerate)
	request.WithRetryer(awsCfg, client.DefaultRetryer{NumMaxRetries: cfg.MaxRetries})

	accessKeyID := cfg.AccessKeyId
	secretAccessKey := cfg.SecretAccessKey
	sessionToken := cfg.SessionToken

	if cfg.RoleArn != "" {
		ss := sts.New(ses)
		role, err := ss.AssumeRoleWithContext(
			ctx,
			&sts.AssumeRoleInput{
				RoleArn:         aws.String(cfg.RoleArn),
				RoleSessionName: aws.String(cfg.SessionName),
			},
		)
		if err != nil {
			return nil, fmt.Errorf("unable to perform role assuming: %w", err)
		}
		accessKeyID = *role.Credentials.AccessKeyId
		secretAccessKey = *role.Credentials.SecretAccessKey
		sessionToken = *role.Credentials.SessionToken
	}

	if accessKeyID != "" && secretAccessKey != "" {
		sp := &credentials.StaticProvider{
			Value: credentials.Value{
				AccessKeyID:     accessKeyID,
				SecretAccessKey: secretAccessKey,
				SessionToken:    sessionToken,
			},
		}
		cps := defaults.CredProviders(awsCfg, defaults.Handlers())

		providers := append([]credentials.Provider{sp}, cps...)
		creds := credentials.NewCredentials(&credentials.ChainProvider{
			VerboseErrors: aws.BoolValue(awsCfg.CredentialsChainVerboseErrors),
			Providers:     providers,
		})
		awsCfg.WithCredentials(creds)
	}

	var lv aws.LogLevelType
	switch logLevel {
	case zerolog.LevelDebugValue:
		lv = aws.LogDebug | aws.LogDebugWithRequestErrors | aws.LogDebugWithRequestRetries
	default:
		lv = aws.LogOff
	}
	awsCfg.WithLogger(logWrapper{logger: &log.Logger})
	awsCfg.WithLogLevel(lv)

	if cfg.NoVerifySsl {
		tr := &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
		awsCfg.WithHTTPClient(&http.Client{Transport: tr})
	}

	if cfg.Endpoint != "" {
		awsCfg.WithEndpoint(cfg.Endpoint)
	}

	if cfg.Region != "" {
		awsCfg.WithRegion(cfg.Region)
	}

	if cfg.CertFile != "" {
		file, err := os.Open(cfg.CertFile)
		if err != nil {
			return nil, fmt.Errorf("cannot open cert file: %w", err)
		}
		defer file.Close()
		ses, err = session.NewSessionWithOptions(session.Options{Config: *ses.Config, CustomCABundle: file})
		if err != nil {
			return nil, fmt.Errorf("cannot establish session using provided certFile: %w", err)
		}
	}

	service := s3.New(ses, awsCfg)
	uploader := s3manager.NewUploaderWithClient(
		service, func(uploader *s3manager.Uploader) {
			uploader.PartSize = cfg.MaxPartSize
			if cfg.Concurrency > 0 {
				uploader.Concurrency = cfg.Concurrency
			}
		},
	)

	log.Debug().
		Str("region", aws.StringValue(service.Config.Region)).
		Str("endpoint", cfg.Endpoint).
		Msg("s3 storage client")

	return &Storage{
		config:   cfg,
		session:  ses,
		service:  service,
		uploader: uploader,
	}, nil
}

func (s *Storage) GetObject(ctx context.Context, bucket string, key string) (*archstream.Object, error) {
	obj, err := s.service.GetObjectWithContext(
		ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("error getting object: %w", err)
	}
	return &archstream.Object{
		Body:         obj.Body,
		Size:         aws.Int64Value(obj.ContentLength),
		LastModified: aws.TimeValue(obj.LastModified),
	}, nil
}

func (s *Storage) ListObjects(
	ctx context.Context, bucket string, prefix string, continuationToken string,
) (*archstream.ListPage, error) {
	if s.config.UseListObjectsV1 {
		return s.listObjectsV1(ctx, bucket, prefix, continuationToken)
	}
	return s.listObjectsV2(ctx, bucket, prefix, continuationToken)
}

func (s *Storage) listObjectsV2(
	ctx context.Context, bucket string, prefix string, continuationToken string,
) (*archstream.ListPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}
	if continuationToken != "" {
		input.ContinuationToken = aws.String(continuationToken)
	}
	if s.config.MaxKeysPerPage > 0 {
		input.MaxKeys = aws.Int64(s.config.MaxKeysPerPage)
	}

	out, err := s.service.ListObjectsV2WithContext(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("error listing s3 objects v2: %w", err)
	}

	page := &archstream.ListPage{
		Matched:   int(aws.Int64Value(out.KeyCount)),
		Truncated: aws.BoolValue(out.IsTruncated),
		NextToken: aws.StringValue(out.NextContinuationToken),
	}
	for _, object := range out.Contents {
		page.Keys = append(page.Keys, aws.StringValue(object.Key))
	}
	return page, nil
}

func (s *Storage) listObjectsV1(
	ctx context.Context, bucket string, prefix string, marker string,
) (*archstream.ListPage, error) {
	input := &s3.ListObjectsInput{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}
	if marker != "" {
		input.Marker = aws.String(marker)
	}
	if s.config.MaxKeysPerPage > 0 {
		input.MaxKeys = aws.Int64(s.config.MaxKeysPerPage)
	}

	res, err := s.service.ListObjectsWithContext(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("error listing s3 objects v1: %w", err)
	}

	page := &archstream.ListPage{
		Matched:   len(res.Contents),
		Truncated: aws.BoolValue(res.IsTruncated),
		NextToken: aws.StringValue(res.NextMarker),
	}
	for _, object := range res.Contents {
		page.Keys = append(page.Keys, aws.StringValue(object.Key))
	}
	// v1 omits NextMarker without a delimiter; the last key is the marker
	if page.Truncated && page.NextToken == "" && len(page.Keys) > 0 {
		page.NextToken = page.Keys[len(page.Keys)-1]
	}
	return page, nil
}

// PutObject streams a finished archive (or any body) back into the store
// using multipart upload.
func (s *Storage) PutObject(ctx context.Context, bucket string, key string, body io.Reader) error {
	ui := &s3manager.UploadInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		Body:         body,
		StorageClass: aws.String(s.config.StorageClass),
	}
	if _, err := s.uploader.UploadWithContext(ctx, ui); err != nil {
		return fmt.Errorf("s3 object uploading error: %w", err)
	}
	return nil
}
