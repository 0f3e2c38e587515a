package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxFileSize   = 5 * 1024 * 1024
	MaxPhotoCount = 5
)

var (
	ErrTooManyPhotos = errors.New("too many photos")
	ErrFileTooLarge  = errors.New("file exceeds the 5MB limit")
	ErrNotAnImage    = errors.New("invalid file type, only images are accepted")
)

// Dir returns the directory photos are stored under.
func Dir() string {
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		return v
	}
	return "uploads/photos"
}

// SavePhotos writes the uploaded files to the photo directory and returns the
// generated filenames. At most MaxPhotoCount files are accepted, each capped
// at MaxFileSize and required to carry an image/* content type. On any
// failure the files written so far are removed.
func SavePhotos(files []*multipart.FileHeader) ([]string, error) {
	if len(files) > MaxPhotoCount {
		return nil, fmt.Errorf("%w: at most %d allowed", ErrTooManyPhotos, MaxPhotoCount)
	}

	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	var saved []string
	cleanup := func() {
		for _, name := range saved {
			os.Remove(filepath.Join(dir, name))
		}
	}

	for _, fh := range files {
		if fh.Size > MaxFileSize {
			cleanup()
			return nil, fmt.Errorf("%w: %s", ErrFileTooLarge, fh.Filename)
		}
		if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
			cleanup()
			return nil, fmt.Errorf("%w: %s", ErrNotAnImage, fh.Filename)
		}

		name := uuid.New().String() + strings.ToLower(filepath.Ext(fh.Filename))
		if err := writeFile(fh, filepath.Join(dir, name)); err != nil {
			cleanup()
			return nil, err
		}
		saved = append(saved, name)
	}

	return saved, nil
}

// RemovePhotos deletes stored files by name. Missing files are ignored.
func RemovePhotos(names []string) {
	dir := Dir()
	for _, name := range names {
		os.Remove(filepath.Join(dir, name))
	}
}

// PhotoURL builds the public URL for a stored filename. PUBLIC_FILES_URL
// takes precedence over the request host.
func PhotoURL(filename, requestBase string) string {
	base := os.Getenv("PUBLIC_FILES_URL")
	if base == "" {
		base = requestBase
	}
	return strings.TrimRight(base, "/") + "/uploads/photos/" + filename
}

func writeFile(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
