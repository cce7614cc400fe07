// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package board renders the cell matrix returned by the conversion service
// as a plain-text diagram for terminal output.
package board

import (
	"strings"
	"unicode/utf8"
)

// Empty is the label the service uses for an unoccupied cell.
const Empty = "empty"

// Symbol converts a cell label such as "K_black", "+P_white" or "empty" into
// its SFEN letter: uppercase for black (sente), lowercase for white
// (gote), "+" prefix when promoted, "." when empty. Unknown labels are
// shown as "?".
func Symbol(label string) string {
	if label == "" || label == Empty {
		return "."
	}
	piece, side, ok := strings.Cut(label, "_")
	if !ok || piece == "" {
		return "?"
	}
	promoted := strings.HasPrefix(piece, "+")
	letter := strings.TrimPrefix(piece, "+")
	if utf8.RuneCountInString(letter) != 1 || !strings.Contains("KRBGSNLP", letter) {
		return "?"
	}
	switch side {
	case "black":
	case "white":
		letter = strings.ToLower(letter)
	default:
		return "?"
	}
	if promoted {
		return "+" + letter
	}
	return letter
}

// Render draws rows top to bottom with file numbers along the top (9..1
// for a standard board) and rank letters down the right edge. Ragged or
// non-standard boards are drawn as given.
func Render(cells [][]string) string {
	if len(cells) == 0 {
		return ""
	}
	width := 0
	for _, row := range cells {
		if len(row) > width {
			width = len(row)
		}
	}

	var b strings.Builder
	b.WriteString(" ")
	for f := width; f >= 1; f-- {
		b.WriteString(pad(itoa(f)))
	}
	b.WriteByte('\n')

	for r, row := range cells {
		b.WriteString(" ")
		for _, cell := range row {
			b.WriteString(pad(Symbol(cell)))
		}
		b.WriteString(" ")
		b.WriteString(rankLabel(r))
		b.WriteByte('\n')
	}
	return b.String()
}

func pad(s string) string {
	switch len(s) {
	case 0:
		return "   "
	case 1:
		return "  " + s
	case 2:
		return " " + s
	}
	return s
}

func rankLabel(r int) string {
	if r < 26 {
		return string(rune('a' + r))
	}
	return itoa(r + 1)
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return itoa(n/10) + string(rune('0'+n%10))
}
