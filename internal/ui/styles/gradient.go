package styles

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// ApplyBoldGradient renders bold text with a horizontal color gradient.
func ApplyBoldGradient(text string, from, to lipgloss.Color) string {
	if text == "" {
		return ""
	}

	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}

	colors := Blend(len(clusters), from, to)
	var b strings.Builder
	for i, cluster := range clusters {
		b.WriteString(lipgloss.NewStyle().Foreground(colors[i]).Bold(true).Render(cluster))
	}
	return b.String()
}

// GradientBar renders a bar of width cells whose first filled cells use
// fill blended from one color to the other; the rest use empty in style.
func GradientBar(width, filled int, fill, empty string, from, to lipgloss.Color, emptyStyle lipgloss.Style) string {
	filled = min(max(filled, 0), width)
	colors := Blend(width, from, to)

	var b strings.Builder
	for i := range filled {
		b.WriteString(lipgloss.NewStyle().Foreground(colors[i]).Render(fill))
	}
	b.WriteString(emptyStyle.Render(strings.Repeat(empty, width-filled)))
	return b.String()
}

// Blend returns size colors going from one color to the other in HCL space.
func Blend(size int, from, to lipgloss.Color) []lipgloss.Color {
	switch {
	case size <= 0:
		return nil
	case size == 1:
		return []lipgloss.Color{from}
	}

	c1, _ := colorful.MakeColor(toColor(from))
	c2, _ := colorful.MakeColor(toColor(to))

	colors := make([]lipgloss.Color, size)
	for i := range size {
		t := float64(i) / float64(size-1)
		colors[i] = lipgloss.Color(c1.BlendHcl(c2, t).Clamped().Hex())
	}
	return colors
}

// toColor parses "#rrggbb"; ANSI color numbers become neutral gray.
func toColor(c lipgloss.Color) color.Color {
	hex := string(c)
	if len(hex) == 7 && hex[0] == '#' {
		if col, err := colorful.Hex(hex); err == nil {
			return col
		}
	}
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}
}
