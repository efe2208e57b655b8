package upload

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laconfrerie/confrerie-api/internal/domain"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type part struct {
	name    string
	content []byte
}

func fileHeaders(t *testing.T, field string, parts ...part) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := w.CreateFormFile(field, p.name)
		require.NoError(t, err)
		_, err = fw.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File[field]
}

func TestStore_SaveImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := NewStore(dir, "uploads/", 0)

	url, err := s.SaveImage(fileHeaders(t, "f", part{"photo.bin", pngHeader})[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "uploads/img_"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "uploads/")))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestStore_SaveImageRejects(t *testing.T) {
	t.Parallel()

	s := NewStore(t.TempDir(), "uploads", 0)

	_, err := s.SaveImage(fileHeaders(t, "f", part{"notes.txt", []byte("hello there")})[0])
	require.ErrorIs(t, err, ErrUnsupported)

	_, err = s.SaveImage(fileHeaders(t, "f", part{"clip.mp4", []byte("not really a video")})[0])
	require.ErrorIs(t, err, ErrUnsupported)

	small := NewStore(t.TempDir(), "uploads", 4)
	_, err = small.SaveImage(fileHeaders(t, "f", part{"photo.png", pngHeader})[0])
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestStore_SaveMediaBatch(t *testing.T) {
	t.Parallel()

	s := NewStore(t.TempDir(), "uploads", 0)

	files := fileHeaders(t, "post_media_files",
		part{"a.png", pngHeader},
		part{"clip.MOV", []byte("opaque bytes")},
		part{"readme.txt", []byte("plain text")},
	)
	res := s.SaveMediaBatch(files, domain.MaxPostMedia)

	assert.Equal(t, 3, res.Selected)
	assert.Equal(t, 1, res.Unsupported)
	assert.False(t, res.Truncated)
	require.Len(t, res.Media, 2)
	assert.Equal(t, domain.MediaImage, res.Media[0].Type)
	assert.Equal(t, domain.MediaVideo, res.Media[1].Type)
	assert.True(t, strings.HasPrefix(res.Media[1].URL, "uploads/vid_"))
	assert.True(t, strings.HasSuffix(res.Media[1].URL, ".mov"))
}

func TestStore_SaveMediaBatchTruncates(t *testing.T) {
	t.Parallel()

	s := NewStore(t.TempDir(), "uploads", 0)

	parts := make([]part, 0, 10)
	for i := 0; i < 10; i++ {
		parts = append(parts, part{"p.png", pngHeader})
	}
	res := s.SaveMediaBatch(fileHeaders(t, "f", parts...), domain.MaxPostMedia)

	assert.Len(t, res.Media, domain.MaxPostMedia)
	assert.True(t, res.Truncated)
	assert.Equal(t, domain.MaxPostMedia, res.Selected)
}
