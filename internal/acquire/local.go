// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// sniffLen is how many bytes http.DetectContentType looks at.
const sniffLen = 512

// FileCandidate offers a local file. The MIME type comes from the file
// extension, falling back to sniffing the first bytes of the file.
func FileCandidate(path string) (Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, err
	}
	if info.IsDir() {
		return Candidate{}, fmt.Errorf("%s is a directory", path)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType, err = sniffFile(path)
		if err != nil {
			return Candidate{}, err
		}
	}
	return Candidate{
		Name:     filepath.Base(path),
		MIMEType: stripParams(mimeType),
		Open:     func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// BytesCandidate offers an in-memory payload. An empty mimeType is sniffed
// from the data.
func BytesCandidate(name, mimeType string, data []byte) Candidate {
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return Candidate{
		Name:     name,
		MIMEType: stripParams(mimeType),
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// ReaderCandidate buffers r (up to max bytes plus one) so its type can be
// sniffed. Used for piped input where no filename or type is available.
func ReaderCandidate(name string, r io.Reader, max int64) (Candidate, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return Candidate{}, fmt.Errorf("reading %s: %w", name, err)
	}
	return BytesCandidate(name, "", data), nil
}

func sniffFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("sniffing %s: %w", path, err)
	}
	return http.DetectContentType(buf[:n]), nil
}

func stripParams(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.TrimSpace(mimeType)
}
