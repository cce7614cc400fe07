// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sfenizer/internal/board"
	"github.com/pdiddy/sfenizer/pkg/types"
)

// conversionOutput is the structured form printed by --format json|yaml.
// The preview is left out; it repeats the whole image.
type conversionOutput struct {
	Image  imageSummary            `json:"image" yaml:"image"`
	Result *types.ConversionResult `json:"result" yaml:"result"`
}

type imageSummary struct {
	ID       string       `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	MIMEType string       `json:"mime_type" yaml:"mime_type"`
	Source   types.Source `json:"source" yaml:"source"`
	Bytes    int          `json:"bytes" yaml:"bytes"`
}

func newOutput(art *types.ImageArtifact, r *types.ConversionResult) conversionOutput {
	out := conversionOutput{Result: r}
	if art != nil {
		out.Image = imageSummary{ID: art.ID, Name: art.Name, MIMEType: art.MIMEType, Source: art.Source, Bytes: art.Size()}
	}
	return out
}

func validFormat(f string) bool {
	switch f {
	case "text", "json", "yaml":
		return true
	}
	return false
}

// writeResult prints a conversion result in the requested format.
func writeResult(w io.Writer, format string, art *types.ImageArtifact, r *types.ConversionResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(newOutput(art, r)); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newOutput(art, r)); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()

	default:
		_, err := io.WriteString(w, formatText(r))
		return err
	}
}

func formatText(r *types.ConversionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SFEN: %s\n", r.SFEN)
	b.WriteString("\nCSA:\n")
	b.WriteString(strings.TrimRight(r.CSA, "\n"))
	b.WriteString("\n")
	if diagram := board.Render(r.Board); diagram != "" {
		b.WriteString("\n")
		b.WriteString(diagram)
	}
	return b.String()
}
