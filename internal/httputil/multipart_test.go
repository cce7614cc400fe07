// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipartFile(t *testing.T) {
	body, contentType, err := MultipartFile("file", `board "1".png`, "image/png", []byte("PNGDATA"))
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	mr := multipart.NewReader(body, params["boundary"])
	part, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "file", part.FormName())
	assert.Equal(t, `board "1".png`, part.FileName())
	assert.Equal(t, "image/png", part.Header.Get("Content-Type"))

	data, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", string(data))

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestMultipartFileDefaults(t *testing.T) {
	body, contentType, err := MultipartFile("file", "", "", nil)
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	part, err := multipart.NewReader(body, params["boundary"]).NextPart()
	require.NoError(t, err)
	assert.Equal(t, "upload", part.FileName())
	assert.Equal(t, "application/octet-stream", part.Header.Get("Content-Type"))
}

func TestErrorDetail(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   string
		wantOK bool
	}{
		{"string detail", `{"detail":"bad image"}`, "bad image", true},
		{"validation list", `{"detail":[{"loc":["body","file"],"msg":"field required"}]}`, "field required", true},
		{"empty detail", `{"detail":""}`, "", false},
		{"missing detail", `{"error":"nope"}`, "", false},
		{"not json", `<html>502 Bad Gateway</html>`, "", false},
		{"empty body", ``, "", false},
		{"numeric detail", `{"detail":42}`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ErrorDetail(strings.NewReader(tt.body))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
