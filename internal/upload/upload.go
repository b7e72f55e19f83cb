package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	FieldName  = "image"
	PublicPath = "/uploads/"
)

var (
	ErrImagesOnly = errors.New("images only")

	fileTypes = regexp.MustCompile(`jpg|jpeg|png`)
)

// CheckFileType requires both the extension and the declared MIME type to
// name a jpg, jpeg or png image.
func CheckFileType(filename, mimeType string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return fileTypes.MatchString(ext) && fileTypes.MatchString(strings.ToLower(mimeType))
}

type Store struct {
	Dir string
	Now func() time.Time
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir, Now: time.Now}
}

// Save validates fh and writes it under Dir. It returns the public path of
// the stored file.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if !CheckFileType(fh.Filename, fh.Header.Get("Content-Type")) {
		return "", ErrImagesOnly
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("sniff upload: %w", err)
	}
	if !detected.Is("image/jpeg") && !detected.Is("image/png") {
		return "", ErrImagesOnly
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := fmt.Sprintf("%s-%d%s", FieldName, s.Now().UnixMilli(), ext)
	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		name = fmt.Sprintf("%s-%d-%s%s", FieldName, s.Now().UnixMilli(), uuid.NewString()[:8], ext)
		dst, err = os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return PublicPath + name, nil
}
