package testutils

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ENPICOM/s3-archive-stream/pkg/archstream"
)

type StoreMock struct {
	mock.Mock
}

func (s *StoreMock) GetObject(ctx context.Context, bucket string, key string) (*archstream.Object, error) {
	args := s.Called(ctx, bucket, key)
	obj, _ := args.Get(0).(*archstream.Object)
	return obj, args.Error(1)
}

func (s *StoreMock) ListObjects(
	ctx context.Context, bucket string, prefix string, continuationToken string,
) (*archstream.ListPage, error) {
	args := s.Called(ctx, bucket, prefix, continuationToken)
	page, _ := args.Get(0).(*archstream.ListPage)
	return page, args.Error(1)
}
