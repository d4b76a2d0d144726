package storage

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngContent = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
)

// fileHeader builds a real multipart header the way a gin handler would see it.
func fileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}

func newStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return store
}

func TestSave_AcceptsAllowedTypes(t *testing.T) {
	store := newStore(t)

	tests := []struct {
		field, filename string
		content         []byte
		wantExt         string
	}{
		{FieldCalibrationCertificate, "cert.PDF", pdfContent, ".pdf"},
		{FieldEquipmentPhoto, "yoke.png", pngContent, ".png"},
		{FieldDocument, "procedure.pdf", pdfContent, ".pdf"},
		{FieldCertificate, "level2.png", pngContent, ".png"},
		{FieldCertificate, "level2", pdfContent, ".pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.field+"/"+tt.filename, func(t *testing.T) {
			name, err := store.Save(tt.field, fileHeader(t, tt.field, tt.filename, tt.content))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(name, tt.field+"-"))
			assert.Equal(t, tt.wantExt, filepath.Ext(name))

			stored, err := os.ReadFile(filepath.Join(store.Dir(), name))
			require.NoError(t, err)
			assert.Equal(t, tt.content, stored)
		})
	}
}

func TestSave_RejectsWrongType(t *testing.T) {
	store := newStore(t)

	_, err := store.Save(FieldCalibrationCertificate, fileHeader(t, FieldCalibrationCertificate, "cert.pdf", pngContent))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidFileType))

	var typeErr *FileTypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "image/png", typeErr.Detected)

	_, err = store.Save(FieldEquipmentPhoto, fileHeader(t, FieldEquipmentPhoto, "photo.jpg", []byte("just some text")))
	assert.ErrorIs(t, err, ErrInvalidFileType)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSave_UnknownField(t *testing.T) {
	store := newStore(t)
	_, err := store.Save("avatar", fileHeader(t, "avatar", "a.png", pngContent))
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSave_TooLarge(t *testing.T) {
	store := newStore(t)
	store.maxSize = 16

	_, err := store.Save(FieldDocument, fileHeader(t, FieldDocument, "big.pdf", pdfContent))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestSave_UniqueNames(t *testing.T) {
	store := newStore(t)
	a, err := store.Save(FieldDocument, fileHeader(t, FieldDocument, "p.pdf", pdfContent))
	require.NoError(t, err)
	b, err := store.Save(FieldDocument, fileHeader(t, FieldDocument, "p.pdf", pdfContent))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestOpenAndRemove(t *testing.T) {
	store := newStore(t)
	name, err := store.Save(FieldDocument, fileHeader(t, FieldDocument, "p.pdf", pdfContent))
	require.NoError(t, err)

	f, err := store.Open(name)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, pdfContent, data)

	require.NoError(t, store.Remove(name))
	require.NoError(t, store.Remove(name))
	require.NoError(t, store.Remove(""))

	_, err = store.Open(name)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestOpen_RejectsPathComponents(t *testing.T) {
	store := newStore(t)
	for _, name := range []string{"../secret", "a/b.pdf", `..\x`, "..", ""} {
		_, err := store.Open(name)
		assert.ErrorIsf(t, err, ErrInvalidName, "name %q", name)
	}
	assert.ErrorIs(t, store.Remove("../x"), ErrInvalidName)
}
