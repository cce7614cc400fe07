// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// MultipartFile encodes data as a single-part multipart/form-data body under
// field. The part carries mimeType as its Content-Type, since services
// commonly check it before reading the payload.
func MultipartFile(field, filename, mimeType string, data []byte) (*bytes.Buffer, string, error) {
	if filename == "" {
		filename = "upload"
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(field), escapeQuotes(filename)))
	h.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("creating %s part: %w", field, err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("writing %s part: %w", field, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return body, mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// errorBody is the JSON error shape returned by the conversion service.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// ErrorDetail extracts a human-readable "detail" string from an error
// response body. It reports false when the body is not JSON or carries no
// usable detail.
func ErrorDetail(r io.Reader) (string, bool) {
	var eb errorBody
	if err := json.NewDecoder(r).Decode(&eb); err != nil || len(eb.Detail) == 0 {
		return "", false
	}

	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}

	// Validation errors arrive as [{"msg": "..."}, ...].
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(eb.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; "), true
		}
	}
	return "", false
}
