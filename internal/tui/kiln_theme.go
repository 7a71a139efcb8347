package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Ember palette used by the default theme.
var (
	kilnEmberPrimary      = lipgloss.AdaptiveColor{Light: "#c2410c", Dark: "#fb923c"}
	kilnEmberBright       = lipgloss.AdaptiveColor{Light: "#ea580c", Dark: "#fdba74"}
	kilnEmberAccent       = lipgloss.AdaptiveColor{Light: "#9a3412", Dark: "#fed7aa"}
	kilnTextStrong        = lipgloss.AdaptiveColor{Light: "#1c1917", Dark: "#fafaf9"}
	kilnTextNormal        = lipgloss.AdaptiveColor{Light: "#44403c", Dark: "#d6d3d1"}
	kilnTextMuted         = lipgloss.AdaptiveColor{Light: "#78716c", Dark: "#a8a29e"}
	kilnTextFaint         = lipgloss.AdaptiveColor{Light: "#a8a29e", Dark: "#57534e"}
	kilnBorderFocused     = lipgloss.AdaptiveColor{Light: "#ea580c", Dark: "#fb923c"}
	kilnBorderNormal      = lipgloss.AdaptiveColor{Light: "#d6d3d1", Dark: "#44403c"}
	kilnButtonBg          = lipgloss.AdaptiveColor{Light: "#c2410c", Dark: "#ea580c"}
	kilnButtonBgBlurred   = lipgloss.AdaptiveColor{Light: "#e7e5e4", Dark: "#292524"}
	kilnButtonText        = lipgloss.AdaptiveColor{Light: "#fafaf9", Dark: "#fafaf9"}
	kilnButtonTextBlurred = lipgloss.AdaptiveColor{Light: "#57534e", Dark: "#a8a29e"}
)

// kilnTheme builds the default prompt theme on top of huh.ThemeBase.
func kilnTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(kilnBorderFocused)
	t.Focused.Title = t.Focused.Title.Foreground(kilnEmberPrimary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(kilnTextMuted)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(kilnEmberAccent)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(kilnEmberAccent)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(kilnEmberBright)
	t.Focused.Option = t.Focused.Option.Foreground(kilnTextNormal)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(kilnEmberBright)
	t.Focused.FocusedButton = t.Focused.FocusedButton.
		Foreground(kilnButtonText).
		Background(kilnButtonBg).
		Bold(true).
		Padding(0, 1)
	t.Focused.BlurredButton = t.Focused.BlurredButton.
		Foreground(kilnButtonTextBlurred).
		Background(kilnButtonBgBlurred).
		Padding(0, 1)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(kilnEmberBright)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(kilnEmberPrimary)
	t.Focused.TextInput.Text = t.Focused.TextInput.Text.Foreground(kilnTextStrong)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.
		BorderStyle(lipgloss.HiddenBorder()).
		BorderForeground(kilnBorderNormal)
	t.Blurred.Title = t.Blurred.Title.Foreground(kilnTextMuted)

	t.Help.ShortKey = t.Help.ShortKey.Foreground(kilnTextMuted)
	t.Help.ShortDesc = t.Help.ShortDesc.Foreground(kilnTextFaint)
	t.Help.ShortSeparator = t.Help.ShortSeparator.Foreground(kilnTextFaint)
	t.Help.FullKey = t.Help.FullKey.Foreground(kilnTextMuted)
	t.Help.FullDesc = t.Help.FullDesc.Foreground(kilnTextFaint)
	t.Help.FullSeparator = t.Help.FullSeparator.Foreground(kilnTextFaint)

	return t
}
