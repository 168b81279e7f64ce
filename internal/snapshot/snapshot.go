// Package snapshot opens database images for read-only inspection.
//
// A source is either a plain database file, read in place, or an
// xz-compressed snapshot (as produced when archiving evidence images),
// decompressed fully into memory. Either way the original file is never
// written. Sources can be fingerprinted with BLAKE3 so two captures of the
// same image can be matched byte-for-byte.
package snapshot

import (
	"bytes"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"rawlite/dberr"
)

// Source is an opened database image.
type Source struct {
	r          io.ReaderAt
	size       int64
	path       string
	closer     io.Closer // nil for in-memory (decompressed) sources
	compressed bool
}

// Open opens the database image at path. Files ending in ".xz" are
// decompressed into memory; anything else is read in place.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &dberr.IOError{Path: path, Op: "open", Err: err}
	}

	if strings.HasSuffix(strings.ToLower(path), ".xz") {
		defer f.Close()

		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, &dberr.IOError{Path: path, Op: "decompress", Err: err}
		}
		data, err := io.ReadAll(xzr)
		if err != nil {
			return nil, &dberr.IOError{Path: path, Op: "decompress", Err: err}
		}
		return &Source{
			r:          bytes.NewReader(data),
			size:       int64(len(data)),
			path:       path,
			compressed: true,
		}, nil
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &dberr.IOError{Path: path, Op: "stat", Err: err}
	}

	return &Source{r: f, size: st.Size(), path: path, closer: f}, nil
}

// ReaderAt returns the raw image bytes as a ReaderAt.
func (s *Source) ReaderAt() io.ReaderAt {
	return s.r
}

// Size returns the image size in bytes (after decompression).
func (s *Source) Size() int64 {
	return s.size
}

// Path returns the path the source was opened from.
func (s *Source) Path() string {
	return s.path
}

// Compressed reports whether the source was an xz snapshot.
func (s *Source) Compressed() bool {
	return s.compressed
}

// Fingerprint returns the hex BLAKE3-256 digest of the image bytes.
func (s *Source) Fingerprint() (string, error) {
	data := make([]byte, s.size)
	if _, err := io.ReadFull(io.NewSectionReader(s.r, 0, s.size), data); err != nil {
		return "", &dberr.IOError{Path: s.path, Op: "read", Err: err}
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Close releases the underlying file handle, if any.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}
