package upload

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/laconfrerie/confrerie-api/internal/domain"
)

var (
	ErrUnsupported = errors.New("unsupported media type")
	ErrTooLarge    = errors.New("file too large")
)

type kind struct {
	media domain.MediaType
	ext   string
}

var byMIME = map[string]kind{
	"image/jpeg":      {domain.MediaImage, "jpg"},
	"image/png":       {domain.MediaImage, "png"},
	"image/webp":      {domain.MediaImage, "webp"},
	"image/gif":       {domain.MediaImage, "gif"},
	"image/avif":      {domain.MediaImage, "avif"},
	"image/heic":      {domain.MediaImage, "heic"},
	"image/heif":      {domain.MediaImage, "heif"},
	"video/mp4":       {domain.MediaVideo, "mp4"},
	"video/webm":      {domain.MediaVideo, "webm"},
	"video/quicktime": {domain.MediaVideo, "mov"},
	"video/x-m4v":     {domain.MediaVideo, "m4v"},
	"video/3gpp":      {domain.MediaVideo, "3gp"},
}

var byExt = map[string]kind{
	"jpg":  {domain.MediaImage, "jpg"},
	"jpeg": {domain.MediaImage, "jpg"},
	"png":  {domain.MediaImage, "png"},
	"webp": {domain.MediaImage, "webp"},
	"gif":  {domain.MediaImage, "gif"},
	"avif": {domain.MediaImage, "avif"},
	"heic": {domain.MediaImage, "heic"},
	"heif": {domain.MediaImage, "heif"},
	"mp4":  {domain.MediaVideo, "mp4"},
	"webm": {domain.MediaVideo, "webm"},
	"mov":  {domain.MediaVideo, "mov"},
	"m4v":  {domain.MediaVideo, "m4v"},
	"3gp":  {domain.MediaVideo, "3gp"},
}

// Store writes uploaded files under Dir and returns URLs rooted at URLPrefix.
type Store struct {
	Dir       string
	URLPrefix string
	MaxBytes  int64

	now func() time.Time
}

func NewStore(dir, urlPrefix string, maxBytes int64) *Store {
	return &Store{
		Dir:       dir,
		URLPrefix: strings.TrimSuffix(urlPrefix, "/"),
		MaxBytes:  maxBytes,
		now:       time.Now,
	}
}

// BatchResult reports what happened to each selected file of a multi-file field.
type BatchResult struct {
	Media       []domain.Media
	Selected    int
	TooLarge    int
	Unsupported int
	Failed      int
	Truncated   bool
}

// Limit is the largest accepted file, in bytes.
func (s *Store) Limit() int64 {
	return s.MaxBytes
}

// SaveImage stores a single image. Videos are rejected with ErrUnsupported.
func (s *Store) SaveImage(fh *multipart.FileHeader) (string, error) {
	m, err := s.save(fh, false)
	if err != nil {
		return "", err
	}

	return m.URL, nil
}

// SaveMediaBatch stores up to max images or videos, in order.
func (s *Store) SaveMediaBatch(files []*multipart.FileHeader, max int) BatchResult {
	res := BatchResult{Media: make([]domain.Media, 0, len(files))}

	for _, fh := range files {
		if len(res.Media) >= max {
			res.Truncated = true
			break
		}
		if fh == nil || (fh.Filename == "" && fh.Size == 0) {
			continue
		}
		res.Selected++

		m, err := s.save(fh, true)
		switch {
		case err == nil:
			res.Media = append(res.Media, m)
		case errors.Is(err, ErrTooLarge):
			res.TooLarge++
		case errors.Is(err, ErrUnsupported):
			res.Unsupported++
		default:
			zap.L().Warn("media upload failed", zap.String("file", fh.Filename), zap.Error(err))
			res.Failed++
		}
	}

	return res
}

func (s *Store) save(fh *multipart.FileHeader, allowVideo bool) (domain.Media, error) {
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return domain.Media{}, ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return domain.Media{}, fmt.Errorf("fh.Open -> %w", err)
	}
	defer src.Close()

	k, ok, err := detect(src, fh.Filename)
	if err != nil {
		return domain.Media{}, err
	}
	if !ok || (k.media == domain.MediaVideo && !allowVideo) {
		return domain.Media{}, ErrUnsupported
	}

	if _, err = src.Seek(0, io.SeekStart); err != nil {
		return domain.Media{}, fmt.Errorf("src.Seek -> %w", err)
	}

	name, err := s.fileName(k)
	if err != nil {
		return domain.Media{}, err
	}

	if err = os.MkdirAll(s.Dir, 0o775); err != nil {
		return domain.Media{}, fmt.Errorf("os.MkdirAll -> %w", err)
	}

	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return domain.Media{}, fmt.Errorf("os.OpenFile -> %w", err)
	}

	if _, err = io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return domain.Media{}, fmt.Errorf("io.Copy -> %w", err)
	}
	if err = dst.Close(); err != nil {
		return domain.Media{}, fmt.Errorf("dst.Close -> %w", err)
	}

	return domain.Media{Type: k.media, URL: path.Join(s.URLPrefix, name)}, nil
}

// detect sniffs the content first and falls back on the file extension.
func detect(r io.Reader, filename string) (kind, bool, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return kind{}, false, fmt.Errorf("mimetype.DetectReader -> %w", err)
	}

	for m := mt; m != nil; m = m.Parent() {
		if k, ok := byMIME[m.String()]; ok {
			return k, true, nil
		}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	k, ok := byExt[ext]

	return k, ok, nil
}

func (s *Store) fileName(k kind) (string, error) {
	var suffix [4]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return "", fmt.Errorf("rand.Read -> %w", err)
	}

	prefix := "img_"
	if k.media == domain.MediaVideo {
		prefix = "vid_"
	}

	return prefix + s.now().Format("20060102_150405") + "_" + hex.EncodeToString(suffix[:]) + "." + k.ext, nil
}
