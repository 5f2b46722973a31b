package archstream_test

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/ENPICOM/s3-archive-stream/internal/storages/memory"
	"github.com/ENPICOM/s3-archive-stream/internal/utils/testutils"
	"github.com/ENPICOM/s3-archive-stream/pkg/archstream"
	"github.com/ENPICOM/s3-archive-stream/pkg/archstream/archivers"
)

type BuildSuite struct {
	suite.Suite
	st *memory.Storage
}

func (s *BuildSuite) SetupTest() {
	s.st = memory.New()
	ctx := context.Background()
	for key, content := range map[string]string{
		"top.txt":       "top content",
		"a/b/c.txt":     "c content",
		"dir/":          "",
		"dir/x.txt":     "x content",
		"dir/sub/y.txt": "y content",
	} {
		s.Require().NoError(s.st.PutObject(ctx, "assets", key, strings.NewReader(content)))
	}
	s.Require().NoError(s.st.PutObject(ctx, "media", "m/1.bin", strings.NewReader("media content")))
}

func (s *BuildSuite) build(routing archstream.Routing, entries []archstream.Entry, opts ...archstream.Option) ([]byte, error) {
	stream := archstream.Build(context.Background(), routing, entries, opts...)
	return io.ReadAll(stream)
}

func (s *BuildSuite) readZip(data []byte) ([]string, map[string]string) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	s.Require().NoError(err)

	var names []string
	contents := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		s.Require().NoError(err)
		body, err := io.ReadAll(rc)
		s.Require().NoError(err)
		s.Require().NoError(rc.Close())
		names = append(names, f.Name)
		contents[f.Name] = string(body)
	}
	return names, contents
}

func (s *BuildSuite) TestZipInputOrder() {
	entries := []archstream.Entry{
		archstream.NewFileEntry("assets", "top.txt"),
		archstream.NewFileEntry("assets", "a/b/c.txt"),
		archstream.NewDirEntry("assets", "dir"),
	}
	entries[1].ArchiveName = "renamed.txt"

	data, err := s.build(archstream.SingleStore(s.st), entries)
	s.Require().NoError(err)

	names, contents := s.readZip(data)
	// directory expansion lands contiguously at the dir entry's position,
	// keys in listing order
	s.Require().Equal([]string{"top.txt", "renamed.txt", "sub/y.txt", "x.txt"}, names)
	s.Require().Equal("top content", contents["top.txt"])
	s.Require().Equal("c content", contents["renamed.txt"])
	s.Require().Equal("y content", contents["sub/y.txt"])
	s.Require().Equal("x content", contents["x.txt"])
}

func (s *BuildSuite) TestZipPreserveFolders() {
	dir := archstream.NewDirEntry("assets", "dir/")
	dir.PreserveFolders = true
	file := archstream.NewFileEntry("assets", "a/b/c.txt")
	file.PreserveFolders = true

	data, err := s.build(archstream.SingleStore(s.st), []archstream.Entry{file, dir})
	s.Require().NoError(err)

	names, _ := s.readZip(data)
	s.Require().Equal([]string{"a/b/c.txt", "dir/sub/y.txt", "dir/x.txt"}, names)
}

func (s *BuildSuite) TestPaginatedExpansion() {
	// one key per page forces the full continuation loop, with the folder
	// marker burning an entire page
	s.st.PageSize = 1

	data, err := s.build(archstream.SingleStore(s.st), []archstream.Entry{
		archstream.NewDirEntry("assets", "dir/"),
	})
	s.Require().NoError(err)

	names, _ := s.readZip(data)
	s.Require().Equal([]string{"sub/y.txt", "x.txt"}, names)
}

func (s *BuildSuite) TestTar() {
	data, err := s.build(
		archstream.SingleStore(s.st),
		[]archstream.Entry{archstream.NewFileEntry("assets", "top.txt")},
		archstream.WithFormat(archivers.FormatTar),
	)
	s.Require().NoError(err)

	tr := tar.NewReader(bytes.NewReader(data))
	hdr, err := tr.Next()
	s.Require().NoError(err)
	s.Require().Equal("top.txt", hdr.Name)
	body, err := io.ReadAll(tr)
	s.Require().NoError(err)
	s.Require().Equal("top content", string(body))

	_, err = tr.Next()
	s.Require().ErrorIs(err, io.EOF)
}

func (s *BuildSuite) TestTarGz() {
	data, err := s.build(
		archstream.SingleStore(s.st),
		[]archstream.Entry{archstream.NewFileEntry("assets", "top.txt")},
		archstream.WithFormat(archivers.FormatTarGz),
	)
	s.Require().NoError(err)

	gz, err := pgzip.NewReader(bytes.NewReader(data))
	s.Require().NoError(err)
	tr := tar.NewReader(gz)
	hdr, err := tr.Next()
	s.Require().NoError(err)
	s.Require().Equal("top.txt", hdr.Name)
	body, err := io.ReadAll(tr)
	s.Require().NoError(err)
	s.Require().Equal("top content", string(body))
}

func (s *BuildSuite) TestEmptyDirectory() {
	_, err := s.build(archstream.SingleStore(s.st), []archstream.Entry{
		archstream.NewDirEntry("assets", "nope"),
	})
	s.Require().Error(err)

	var emptyDir *archstream.EmptyDirectoryError
	s.Require().True(errors.As(err, &emptyDir))
	s.Require().Equal("nope/", emptyDir.Prefix)
	s.Require().Equal("assets", emptyDir.Bucket)
}

func (s *BuildSuite) TestFetchFailureAbortsStream() {
	data, err := s.build(archstream.SingleStore(s.st), []archstream.Entry{
		archstream.NewFileEntry("assets", "top.txt"),
		archstream.NewFileEntry("assets", "missing.txt"),
	})
	s.Require().Error(err)

	var fetchErr *archstream.FetchFailedError
	s.Require().True(errors.As(err, &fetchErr))
	s.Require().Equal("missing.txt", fetchErr.Key)

	// no valid trailing footer: the bytes received so far are not a
	// parseable archive
	_, err = zip.NewReader(bytes.NewReader(data), int64(len(data)))
	s.Require().Error(err)
}

func (s *BuildSuite) TestInvalidSourceKey() {
	for _, key := range []string{"", "dir/"} {
		_, err := s.build(archstream.SingleStore(s.st), []archstream.Entry{
			archstream.NewFileEntry("assets", key),
		})
		s.Require().Error(err)

		var invalidKey *archstream.InvalidSourceKeyError
		s.Require().True(errors.As(err, &invalidKey))
		s.Require().Equal(key, invalidKey.Key)
	}
}

func (s *BuildSuite) TestNoClientForBucket() {
	routing := archstream.PerBucket(map[string]archstream.ObjectStore{
		"assets": s.st,
	})

	_, err := s.build(routing, []archstream.Entry{
		archstream.NewFileEntry("assets", "top.txt"),
		archstream.NewFileEntry("media", "m/1.bin"),
	})
	s.Require().Error(err)

	var noClient *archstream.NoClientForBucketError
	s.Require().True(errors.As(err, &noClient))
	s.Require().Equal("media", noClient.Bucket)
}

func (s *BuildSuite) TestMultiBucketRouting() {
	routing := archstream.PerBucket(map[string]archstream.ObjectStore{
		"assets": s.st,
		"media":  s.st,
	})

	data, err := s.build(routing, []archstream.Entry{
		archstream.NewFileEntry("assets", "top.txt"),
		archstream.NewFileEntry("media", "m/1.bin"),
	})
	s.Require().NoError(err)

	// groups run concurrently, so only membership is guaranteed here
	names, contents := s.readZip(data)
	s.Require().Len(names, 2)
	s.Require().Equal("top content", contents["top.txt"])
	s.Require().Equal("media content", contents["1.bin"])
}

func (s *BuildSuite) TestUnknownFormat() {
	_, err := s.build(
		archstream.SingleStore(s.st),
		[]archstream.Entry{archstream.NewFileEntry("assets", "top.txt")},
		archstream.WithFormat(archivers.Format("rar")),
	)
	s.Require().Error(err)
	s.Require().Contains(err.Error(), "unknown archive format")
}

func (s *BuildSuite) TestEntryEvents() {
	stream := archstream.Build(context.Background(), archstream.SingleStore(s.st), []archstream.Entry{
		archstream.NewFileEntry("assets", "top.txt"),
		archstream.NewDirEntry("assets", "dir/"),
	})

	_, err := io.ReadAll(stream)
	s.Require().NoError(err)
	s.Require().NotEmpty(stream.ID())

	var events []archstream.EntryEvent
	for ev := range stream.Events() {
		events = append(events, ev)
	}
	s.Require().Len(events, 3)
	s.Require().Equal("top.txt", events[0].Name)
	s.Require().Equal(int64(len("top content")), events[0].Bytes)
}

func TestBuild(t *testing.T) {
	suite.Run(t, new(BuildSuite))
}

func TestListingFailureMidPagination(t *testing.T) {
	st := &testutils.StoreMock{}
	st.On("ListObjects", mock.Anything, "assets", "dir/", "").
		Return(&archstream.ListPage{
			Keys:      []string{"dir/x.txt"},
			Matched:   1,
			Truncated: true,
			NextToken: "token-1",
		}, nil)
	st.On("ListObjects", mock.Anything, "assets", "dir/", "token-1").
		Return(nil, errors.New("connection reset"))

	stream := archstream.Build(context.Background(), archstream.SingleStore(st), []archstream.Entry{
		archstream.NewDirEntry("assets", "dir/"),
	})
	_, err := io.ReadAll(stream)

	var listingErr *archstream.ListingFailedError
	if !errors.As(err, &listingErr) {
		t.Fatalf("expected ListingFailedError, got %v", err)
	}
	if listingErr.Prefix != "dir/" {
		t.Fatalf("unexpected prefix %q", listingErr.Prefix)
	}
	st.AssertExpectations(t)
}

func TestTruncatedEmptyPageContinues(t *testing.T) {
	st := &testutils.StoreMock{}
	st.On("ListObjects", mock.Anything, "assets", "dir/", "").
		Return(&archstream.ListPage{
			Truncated: true,
			NextToken: "token-1",
		}, nil)
	st.On("ListObjects", mock.Anything, "assets", "dir/", "token-1").
		Return(&archstream.ListPage{
			Keys:    []string{"dir/x.txt"},
			Matched: 1,
		}, nil)
	st.On("GetObject", mock.Anything, "assets", "dir/x.txt").
		Return(&archstream.Object{
			Body: io.NopCloser(strings.NewReader("x content")),
			Size: int64(len("x content")),
		}, nil)

	stream := archstream.Build(context.Background(), archstream.SingleStore(st), []archstream.Entry{
		archstream.NewDirEntry("assets", "dir/"),
	})
	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "x.txt" {
		t.Fatalf("unexpected archive contents: %+v", zr.File)
	}
	st.AssertExpectations(t)
}
