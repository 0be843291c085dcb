package services

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestStorageSaveReader(t *testing.T) {
	s := NewStorage(t.TempDir(), 1)

	f, err := s.SaveReader(bytes.NewReader(pngHeader), "Front Porch (1).PNG", "photos/abc", ImageMimeTypes)
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.MimeType)
	assert.Equal(t, "Front Porch (1).PNG", f.FileName)
	assert.True(t, strings.HasPrefix(f.Path, "photos/abc/"))
	assert.True(t, strings.HasSuffix(f.Path, "-front-porch-1.png"), f.Path)
	assert.EqualValues(t, len(pngHeader), f.Size)

	r, err := s.Open(f.Path)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	s.Remove(f.Path, "", "photos/missing.png")
	_, err = s.Open(f.Path)
	assert.Error(t, err)
}

func TestStorageRejects(t *testing.T) {
	s := NewStorage(t.TempDir(), 1)

	_, err := s.SaveReader(strings.NewReader("just some text"), "notes.txt", "receipts", ReceiptMimeTypes)
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	s.MaxBytes = 8
	_, err = s.SaveReader(bytes.NewReader(pngHeader), "big.png", "photos", ImageMimeTypes)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestStorageFullPathStaysInRoot(t *testing.T) {
	root := t.TempDir()
	s := NewStorage(root, 0)
	assert.EqualValues(t, 10<<20, s.MaxBytes)
	assert.Equal(t, filepath.Join(root, "etc", "passwd"), s.FullPath("../../etc/passwd"))
	assert.Equal(t, filepath.Join(root, "receipts", "a.pdf"), s.FullPath("receipts/a.pdf"))
}

func TestStoredName(t *testing.T) {
	name := StoredName("../Résumé Scan.pdf", ".pdf")
	assert.Regexp(t, `^[0-9a-f]{8}-resume-scan\.pdf$`, name)
	assert.Regexp(t, `^[0-9a-f]{8}-file\.png$`, StoredName("###.png", ".png"))
}
