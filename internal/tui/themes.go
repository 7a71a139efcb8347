package tui

import (
	"github.com/charmbracelet/huh"
)

// themes maps the names accepted in the theme setting to their builders.
var themes = map[string]func() *huh.Theme{
	"kiln":       kilnTheme,
	"base":       huh.ThemeBase,
	"base16":     huh.ThemeBase16,
	"catppuccin": huh.ThemeCatppuccin,
	"charm":      huh.ThemeCharm,
	"dracula":    huh.ThemeDracula,
}

// ValidThemes lists the theme names in the order they are documented.
var ValidThemes = []string{"kiln", "base", "base16", "catppuccin", "charm", "dracula"}

// currentTheme is used by prompts; nil means the kiln theme.
var currentTheme *huh.Theme

// IsValidTheme reports whether name is a known theme. Names are case sensitive.
func IsValidTheme(name string) bool {
	_, ok := themes[name]
	return ok
}

// GetTheme returns the theme called name, or nil if there is none.
func GetTheme(name string) *huh.Theme {
	build, ok := themes[name]
	if !ok {
		return nil
	}
	return build()
}

// SetTheme selects the prompt theme. Unknown and empty names select kiln.
func SetTheme(name string) {
	currentTheme = GetTheme(name)
}

func currentThemeOrDefault() *huh.Theme {
	if currentTheme == nil {
		return kilnTheme()
	}
	return currentTheme
}
