package archivers

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"zip", "tar", "tar.gz"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, Format(s), f)
	}

	_, err := ParseFormat("rar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown archive format")
}

func TestNewUnknownFormat(t *testing.T) {
	_, err := New(Format("7z"), &bytes.Buffer{})
	require.Error(t, err)
}

func TestZipRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	a, err := New(FormatZip, &buf)
	require.NoError(t, err)

	modTime := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, a.Append("docs/readme.txt", strings.NewReader("hello"), EntryInfo{
		Size:    5,
		Mode:    0755,
		ModTime: modTime,
		Comment: "greeting",
	}))
	require.NoError(t, a.Append("empty.txt", strings.NewReader(""), EntryInfo{}))
	require.NoError(t, a.Finalize())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	f := zr.File[0]
	assert.Equal(t, "docs/readme.txt", f.Name)
	assert.Equal(t, "greeting", f.Comment)
	assert.Equal(t, fs.FileMode(0755), f.Mode().Perm())
	assert.True(t, f.Modified.Equal(modTime))

	rc, err := f.Open()
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(body))

	assert.Equal(t, "empty.txt", zr.File[1].Name)
	assert.Equal(t, uint64(0), zr.File[1].UncompressedSize64)
}

func TestTarRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	a, err := New(FormatTar, &buf)
	require.NoError(t, err)

	modTime := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, a.Append("data.bin", strings.NewReader("payload"), EntryInfo{
		Size:    7,
		Mode:    0600,
		ModTime: modTime,
	}))
	require.NoError(t, a.Finalize())

	tr := tar.NewReader(bytes.NewReader(buf.Bytes()))
	hdr, err := tr.Next()
	require.NoError(t, err)
	assert.Equal(t, "data.bin", hdr.Name)
	assert.Equal(t, int64(7), hdr.Size)
	assert.Equal(t, int64(0600), hdr.Mode)
	assert.True(t, hdr.ModTime.Equal(modTime))

	body, err := io.ReadAll(tr)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))

	_, err = tr.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestTarDefaultsMode(t *testing.T) {
	var buf bytes.Buffer
	a, err := New(FormatTar, &buf)
	require.NoError(t, err)

	require.NoError(t, a.Append("data.bin", strings.NewReader("x"), EntryInfo{Size: 1}))
	require.NoError(t, a.Finalize())

	tr := tar.NewReader(bytes.NewReader(buf.Bytes()))
	hdr, err := tr.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(defaultTarMode), hdr.Mode)
	assert.False(t, hdr.ModTime.IsZero())
}

func TestTarGzRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	a, err := New(FormatTarGz, &buf)
	require.NoError(t, err)

	require.NoError(t, a.Append("data.bin", strings.NewReader("payload"), EntryInfo{Size: 7}))
	require.NoError(t, a.Finalize())

	gz, err := pgzip.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	tr := tar.NewReader(gz)
	hdr, err := tr.Next()
	require.NoError(t, err)
	assert.Equal(t, "data.bin", hdr.Name)
	body, err := io.ReadAll(tr)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))
}

func TestAppendAfterFinalize(t *testing.T) {
	for _, format := range []Format{FormatZip, FormatTar, FormatTarGz} {
		var buf bytes.Buffer
		a, err := New(format, &buf)
		require.NoError(t, err)

		require.NoError(t, a.Finalize())
		err = a.Append("late.txt", strings.NewReader("x"), EntryInfo{Size: 1})
		assert.ErrorIs(t, err, ErrWriterClosed, "format %s", format)
		assert.ErrorIs(t, a.Finalize(), ErrWriterClosed, "format %s", format)
	}
}

func TestAppendAfterAbort(t *testing.T) {
	for _, format := range []Format{FormatZip, FormatTar, FormatTarGz} {
		var buf bytes.Buffer
		a, err := New(format, &buf)
		require.NoError(t, err)

		a.Abort(errors.New("upstream failed"))
		err = a.Append("late.txt", strings.NewReader("x"), EntryInfo{Size: 1})
		assert.ErrorIs(t, err, ErrWriterClosed, "format %s", format)
		// no trailer after an abort
		assert.ErrorIs(t, a.Finalize(), ErrWriterClosed, "format %s", format)
	}
}
