package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Catppuccin Mocha palette.
var (
	colorGreen  = lipgloss.Color("#a6e3a1")
	colorRed    = lipgloss.Color("#f38ba8")
	colorMauve  = lipgloss.Color("#cba6f7")
	colorMuted  = lipgloss.Color("#5a6278")
	colorBright = lipgloss.Color("#cdd6f4")
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(colorMauve)
	styleKey    = lipgloss.NewStyle().Foreground(colorMuted)
	styleValue  = lipgloss.NewStyle().Foreground(colorBright)
	styleYes    = lipgloss.NewStyle().Foreground(colorGreen)
	styleNo     = lipgloss.NewStyle().Foreground(colorRed)
)

// Field is one key/value row of a Table.
type Field struct {
	Key   string
	Value string
}

// Table renders a titled two-column key/value block. When styled is false it
// renders plain text suitable for pipes.
func Table(title string, fields []Field, styled bool) string {
	width := 0
	for _, f := range fields {
		width = max(width, lipgloss.Width(f.Key))
	}

	var b strings.Builder
	if title != "" {
		if styled {
			b.WriteString(styleHeader.Render(title))
		} else {
			b.WriteString(title)
		}
		b.WriteByte('\n')
	}
	for _, f := range fields {
		key := f.Key + strings.Repeat(" ", width-lipgloss.Width(f.Key))
		if styled {
			b.WriteString("  " + styleKey.Render(key) + "  " + styleValue.Render(f.Value))
		} else {
			b.WriteString("  " + key + "  " + f.Value)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// YesNo renders a feature flag, green when present and red when absent.
func YesNo(v bool, styled bool) string {
	s := "no"
	if v {
		s = "yes"
	}
	if !styled {
		return s
	}
	if v {
		return styleYes.Render(s)
	}
	return styleNo.Render(s)
}
