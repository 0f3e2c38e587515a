package storage

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func fileHeaders(t *testing.T, count int, contentType string) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i := 0; i < count; i++ {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photos"; filename="photo%d.png"`, i))
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("content"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["photos"]
}

func TestSavePhotosGeneratesUniqueNames(t *testing.T) {
	t.Setenv("UPLOAD_DIR", filepath.Join(t.TempDir(), "photos"))

	saved, err := SavePhotos(fileHeaders(t, 3, "image/png"))
	require.NoError(t, err)
	require.Len(t, saved, 3)

	seen := map[string]bool{}
	for _, name := range saved {
		require.False(t, seen[name], "filename collision: %s", name)
		seen[name] = true
		require.True(t, strings.HasSuffix(name, ".png"))
		_, err := os.Stat(filepath.Join(Dir(), name))
		require.NoError(t, err)
	}
}

func TestSavePhotosEnforcesCount(t *testing.T) {
	t.Setenv("UPLOAD_DIR", filepath.Join(t.TempDir(), "photos"))

	_, err := SavePhotos(fileHeaders(t, 6, "image/png"))
	require.ErrorIs(t, err, ErrTooManyPhotos)

	saved, err := SavePhotos(fileHeaders(t, 5, "image/png"))
	require.NoError(t, err)
	require.Len(t, saved, 5)
}

func TestSavePhotosRejectsNonImages(t *testing.T) {
	t.Setenv("UPLOAD_DIR", filepath.Join(t.TempDir(), "photos"))

	_, err := SavePhotos(fileHeaders(t, 1, "application/pdf"))
	require.ErrorIs(t, err, ErrNotAnImage)

	// Nothing left behind after a rejected batch.
	entries, err := os.ReadDir(Dir())
	if err == nil {
		require.Empty(t, entries)
	}
}

func TestRemovePhotos(t *testing.T) {
	t.Setenv("UPLOAD_DIR", filepath.Join(t.TempDir(), "photos"))

	saved, err := SavePhotos(fileHeaders(t, 2, "image/jpeg"))
	require.NoError(t, err)

	RemovePhotos(saved)
	for _, name := range saved {
		_, err := os.Stat(filepath.Join(Dir(), name))
		require.True(t, os.IsNotExist(err))
	}

	// Removing twice is harmless.
	RemovePhotos(saved)
}

func TestPhotoURL(t *testing.T) {
	t.Setenv("PUBLIC_FILES_URL", "")
	require.Equal(t, "http://api.local/uploads/photos/a.png", PhotoURL("a.png", "http://api.local"))

	t.Setenv("PUBLIC_FILES_URL", "https://cdn.example.org/")
	require.Equal(t, "https://cdn.example.org/uploads/photos/a.png", PhotoURL("a.png", "http://api.local"))
}
