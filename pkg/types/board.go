// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Source identifies which acquisition channel produced an artifact.
type Source string

const (
	SourceFile   Source = "file"
	SourceCamera Source = "camera"
	SourceDrop   Source = "drop"
	SourcePaste  Source = "paste"
)

// ImageArtifact is an accepted image plus its inline preview. Artifacts are
// never mutated after creation; a new selection replaces the whole value.
type ImageArtifact struct {
	// ID identifies this selection. Results are only applied to the
	// artifact whose ID initiated the request.
	ID string `json:"id" yaml:"id"`

	// Name is the original filename, if any.
	Name string `json:"name" yaml:"name"`

	// MIMEType is the declared or sniffed type; always starts with "image/".
	MIMEType string `json:"mime_type" yaml:"mime_type"`

	// Source is the channel the image arrived through.
	Source Source `json:"source" yaml:"source"`

	// Bytes is the raw payload of the original file.
	Bytes []byte `json:"-" yaml:"-"`

	// PreviewURI is a data: URI derived from Bytes.
	PreviewURI string `json:"preview_uri" yaml:"-"`

	// SelectedAt is when the artifact was accepted.
	SelectedAt time.Time `json:"selected_at" yaml:"selected_at"`
}

// Size returns the payload length in bytes.
func (a *ImageArtifact) Size() int {
	if a == nil {
		return 0
	}
	return len(a.Bytes)
}

// ConversionResult is the position returned by the conversion service.
type ConversionResult struct {
	Success bool `json:"success" yaml:"success"`

	// SFEN is the single-line position encoding.
	SFEN string `json:"sfen" yaml:"sfen"`

	// CSA is the multi-line position encoding.
	CSA string `json:"csa" yaml:"csa"`

	// Board holds cell labels, rows outer and columns inner. Dimensions are
	// whatever the service returns.
	Board [][]string `json:"board" yaml:"board"`
}

// Field names a copyable result field.
type Field string

const (
	FieldSFEN Field = "sfen"
	FieldCSA  Field = "csa"
)

// Fields lists the copyable result fields in display order.
var Fields = []Field{FieldSFEN, FieldCSA}

// ParseField converts s into a Field.
func ParseField(s string) (Field, bool) {
	switch Field(s) {
	case FieldSFEN, FieldCSA:
		return Field(s), true
	}
	return "", false
}

// Label returns the display name of the field.
func (f Field) Label() string {
	switch f {
	case FieldSFEN:
		return "SFEN"
	case FieldCSA:
		return "CSA"
	}
	return string(f)
}

// Value returns the text of field f in r.
func (r *ConversionResult) Value(f Field) string {
	if r == nil {
		return ""
	}
	switch f {
	case FieldSFEN:
		return r.SFEN
	case FieldCSA:
		return r.CSA
	}
	return ""
}

// ClipboardItem is one entry offered by a paste. Items keep clipboard order.
type ClipboardItem struct {
	// MIMEType is the advertised type of the entry (e.g. "image/png").
	MIMEType string

	// Name is an optional filename for file-backed entries.
	Name string

	// Data returns the entry payload. It is only called for the chosen item.
	Data func() ([]byte, error)
}

// CopiedFlags reports which result fields were copied recently.
type CopiedFlags struct {
	SFEN bool `json:"sfen"`
	CSA  bool `json:"csa"`
}

// Snapshot is a point-in-time copy of the selection state.
type Snapshot struct {
	Artifact *ImageArtifact   `json:"artifact,omitempty"`
	Result   *ConversionResult `json:"result,omitempty"`
	Loading  bool              `json:"loading"`
	Error    string            `json:"error,omitempty"`
	Copied   CopiedFlags       `json:"copied"`
}
