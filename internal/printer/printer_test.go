package printer

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func TestRenderFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
	}{
		{"Faint", Faint},
		{"Bold", Bold},
		{"Success", Success},
		{"Error", Error},
		{"Warning", Warning},
		{"Info", Info},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn("com_demo"); !strings.Contains(got, "com_demo") {
				t.Errorf("%s() = %q, want it to contain the input", tt.name, got)
			}
		})
	}
}

func TestPrintFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string)
	}{
		{"PrintFaint", PrintFaint},
		{"PrintSuccess", PrintSuccess},
		{"PrintError", PrintError},
		{"PrintWarning", PrintWarning},
		{"PrintInfo", PrintInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureStdout(t, func() { tt.fn("installed") })
			if !strings.Contains(out, "installed") || !strings.HasSuffix(out, "\n") {
				t.Errorf("%s() printed %q", tt.name, out)
			}
		})
	}
}

/* ------------------------------------------------------------------------- */
/* STATUS LINES                                                              */
/* ------------------------------------------------------------------------- */

func TestStatusLine(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tests := []struct {
		status Status
		want   string
	}{
		{StatusOK, "✓ Registry     2 extension(s) installed"},
		{StatusWarn, "! Registry     2 extension(s) installed"},
		{StatusFail, "✗ Registry     2 extension(s) installed"},
		{Status(42), "✗ Registry     2 extension(s) installed"},
	}
	for _, tt := range tests {
		if got := StatusLine(tt.status, "Registry", "2 extension(s) installed"); got != tt.want {
			t.Errorf("StatusLine(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}

	out := captureStdout(t, func() { PrintStatus(StatusOK, "Git", "git is available") })
	if out != "✓ Git          git is available\n" {
		t.Errorf("PrintStatus printed %q", out)
	}
}

func TestSetNoColor(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	for _, got := range []string{Success("ok"), Error("bad"), Bold("b")} {
		if strings.Contains(got, "\x1b[") {
			t.Errorf("expected plain text with colors disabled, got %q", got)
		}
	}
}

func TestTable(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	out := Table([]string{"ID", "Element"}, [][]string{{"1", "com_demo"}, {"2", "greeter"}})
	for _, want := range []string{"ID", "Element", "com_demo", "greeter", "╭"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
