// Package printer renders styled console output.
package printer

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
)

var (
	faintStyle   = lipgloss.NewStyle().Faint(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// Status is the outcome shown in front of a check line.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
)

var statusMarks = map[Status]struct {
	mark  string
	style lipgloss.Style
}{
	StatusOK:   {"✓", successStyle},
	StatusWarn: {"!", warningStyle},
	StatusFail: {"✗", errorStyle},
}

func Faint(text string) string   { return faintStyle.Render(text) }
func Bold(text string) string    { return boldStyle.Render(text) }
func Success(text string) string { return successStyle.Render(text) }
func Error(text string) string   { return errorStyle.Render(text) }
func Warning(text string) string { return warningStyle.Render(text) }
func Info(text string) string    { return infoStyle.Render(text) }

func PrintFaint(text string)   { fmt.Println(Faint(text)) }
func PrintSuccess(text string) { fmt.Println(Success(text)) }
func PrintError(text string)   { fmt.Println(Error(text)) }
func PrintWarning(text string) { fmt.Println(Warning(text)) }
func PrintInfo(text string)    { fmt.Println(Info(text)) }

// StatusLine renders a check result as "<mark> <label> <message>" with the
// label padded so consecutive lines align.
func StatusLine(s Status, label, message string) string {
	m, ok := statusMarks[s]
	if !ok {
		m = statusMarks[StatusFail]
	}
	return fmt.Sprintf("%s %-12s %s", m.style.Render(m.mark), label, message)
}

// PrintStatus prints StatusLine(s, label, message).
func PrintStatus(s Status, label, message string) {
	fmt.Println(StatusLine(s, label, message))
}

// SetNoColor switches all styles to plain text when disabled is true, and
// back to the detected terminal profile otherwise.
func SetNoColor(disabled bool) {
	if disabled {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())
}

// Table renders rows under headers with a rounded border.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(faintStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return boldStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...)
	return t.Render()
}
