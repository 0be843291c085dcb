package services

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Image types accepted for photos; receipts additionally accept PDF.
var (
	ImageMimeTypes   = []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/heic"}
	ReceiptMimeTypes = append(append([]string{}, ImageMimeTypes...), "application/pdf")
)

// StoredFile describes a file written by Storage.
type StoredFile struct {
	FileName string
	Path     string // relative to the storage root, forward slashes
	MimeType string
	Size     int64
}

// Storage keeps uploaded files on the local filesystem.
type Storage struct {
	Root     string
	MaxBytes int64
}

func NewStorage(root string, maxMB int) *Storage {
	if maxMB <= 0 {
		maxMB = 10
	}
	return &Storage{Root: root, MaxBytes: int64(maxMB) << 20}
}

// StoredName builds a unique, URL-safe file name keeping the extension.
func StoredName(original, ext string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	name := slug.Make(base)
	if name == "" {
		name = "file"
	}
	if len(name) > 60 {
		name = name[:60]
	}
	return uuid.NewString()[:8] + "-" + name + ext
}

// Save sniffs, validates and writes an uploaded file under Root/dir.
func (s *Storage) Save(fh *multipart.FileHeader, dir string, allowed []string) (*StoredFile, error) {
	if fh.Size > s.MaxBytes {
		return nil, ErrFileTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return s.SaveReader(src, fh.Filename, dir, allowed)
}

// SaveReader is Save for an arbitrary reader.
func (s *Storage) SaveReader(r io.Reader, original, dir string, allowed []string) (*StoredFile, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.MaxBytes {
		return nil, ErrFileTooLarge
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowed...) {
		return nil, fmt.Errorf("%s: %w", mt.String(), ErrUnsupportedFile)
	}

	rel := filepath.ToSlash(filepath.Join(dir, StoredName(original, mt.Extension())))
	full := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return nil, err
	}

	return &StoredFile{
		FileName: filepath.Base(original),
		Path:     rel,
		MimeType: mt.String(),
		Size:     int64(len(data)),
	}, nil
}

// Open reads a stored file.
func (s *Storage) Open(rel string) (*bytes.Reader, error) {
	data, err := os.ReadFile(s.FullPath(rel))
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// FullPath maps a stored relative path to the filesystem, refusing escapes from Root.
func (s *Storage) FullPath(rel string) string {
	clean := filepath.Clean("/" + filepath.FromSlash(rel))
	return filepath.Join(s.Root, clean)
}

// Remove deletes stored files, ignoring ones already gone.
func (s *Storage) Remove(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(s.FullPath(p)); err != nil && !os.IsNotExist(err) {
			log.Printf("[STORAGE] remove %s: %v", p, err)
		}
	}
}
