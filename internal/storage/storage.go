// Package storage keeps uploaded documents in a flat directory. Entities store
// only the generated filename.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/yukikurage/ndt-worklog/internal/constants"
)

// Upload field names.
const (
	FieldCalibrationCertificate = "calibrationCertificate"
	FieldEquipmentPhoto         = "equipmentPhoto"
	FieldDocument               = "document"
	FieldCertificate            = "certificate"
)

var (
	ErrUnknownField    = errors.New("unrecognised file field")
	ErrInvalidFileType = errors.New("file type not allowed for this field")
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
	ErrInvalidName     = errors.New("invalid file name")
	ErrFileNotFound    = errors.New("file not found")
)

const (
	mimePDF  = "application/pdf"
	mimeDOC  = "application/msword"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

type fieldRule struct {
	types    []string
	prefixes []string
	// containers are generic formats accepted when the extension names a
	// specific one, since legacy Word files sniff as OLE and minimal DOCX as zip.
	containers map[string]string
	label      string
}

var fieldRules = map[string]fieldRule{
	FieldCalibrationCertificate: {types: []string{mimePDF}, label: "PDF"},
	FieldEquipmentPhoto:         {prefixes: []string{"image/"}, label: "image"},
	FieldDocument: {
		types: []string{mimePDF, mimeDOC, mimeDOCX},
		containers: map[string]string{
			"application/x-ole-storage": ".doc",
			"application/zip":           ".docx",
		},
		label: "PDF, DOC or DOCX",
	},
	FieldCertificate: {types: []string{mimePDF}, prefixes: []string{"image/"}, label: "PDF or image"},
}

// FileTypeError names the field and the accepted types.
type FileTypeError struct {
	Field    string
	Detected string
	Allowed  string
}

func (e *FileTypeError) Error() string {
	return fmt.Sprintf("%s: %s files are not allowed, expected %s", e.Field, e.Detected, e.Allowed)
}

func (e *FileTypeError) Unwrap() error { return ErrInvalidFileType }

type FileStore struct {
	dir     string
	maxSize int64
}

// NewFileStore creates dir when missing.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{dir: dir, maxSize: constants.MaxUploadSize}, nil
}

// Dir returns the upload directory.
func (s *FileStore) Dir() string { return s.dir }

// Save validates and writes an uploaded file, returning the stored filename.
func (s *FileStore) Save(field string, header *multipart.FileHeader) (string, error) {
	rule, ok := fieldRules[field]
	if !ok {
		return "", ErrUnknownField
	}
	if header.Size > s.maxSize {
		return "", ErrFileTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return "", err
	}
	if !rule.allows(detected, ext) {
		return "", &FileTypeError{Field: field, Detected: detected.String(), Allowed: rule.label}
	}
	if ext == "" {
		ext = detected.Extension()
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	name := field + "-" + uuid.NewString() + ext
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	n, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n > s.maxSize {
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", err
	}
	return name, nil
}

// Open returns a stored file. Names containing path components are rejected.
func (s *FileStore) Open(name string) (*os.File, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	return f, err
}

// Path resolves a stored filename inside the upload directory.
func (s *FileStore) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

// Remove deletes a stored file. Missing files and empty names are not errors.
func (s *FileStore) Remove(name string) error {
	if name == "" {
		return nil
	}
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (r fieldRule) allows(detected *mimetype.MIME, ext string) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, t := range r.types {
			if m.Is(t) {
				return true
			}
		}
		for _, p := range r.prefixes {
			if strings.HasPrefix(m.String(), p) {
				return true
			}
		}
		if want, ok := r.containers[m.String()]; ok && want == ext {
			return true
		}
	}
	return false
}
