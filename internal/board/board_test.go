package board

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbol(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"K_black", "K"},
		{"P_white", "p"},
		{"+R_black", "+R"},
		{"+B_white", "+b"},
		{"empty", "."},
		{"", "."},
		{"X_black", "?"},
		{"K_red", "?"},
		{"garbage", "?"},
		{"P", "?"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, Symbol(tt.label))
		})
	}
}

func TestRender(t *testing.T) {
	cells := [][]string{
		{"L_white", "empty", "+P_black"},
		{"empty", "K_black", "empty"},
	}
	want := strings.Join([]string{
		"   3  2  1",
		"   l  . +P a",
		"   .  K  . b",
		"",
	}, "\n")
	assert.Equal(t, want, Render(cells))
}

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "", Render(nil))
}

func TestRenderStandardWidth(t *testing.T) {
	row := make([]string, 9)
	for i := range row {
		row[i] = Empty
	}
	out := Render([][]string{row})
	assert.True(t, strings.HasPrefix(out, "   9  8  7  6  5  4  3  2  1\n"))
}
