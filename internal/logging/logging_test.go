package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		wantOK bool
		want   string
	}{
		{"", false, ""},
		{"off", false, ""},
		{"debug", true, "DEBUG"},
		{"WARN", true, "WARN"},
		{"warning", true, "WARN"},
		{"error", true, "ERROR"},
		{"verbose", true, "INFO"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lvl, ok := ParseLevel(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && lvl.String() != tt.want {
				t.Errorf("level = %s, want %s", lvl, tt.want)
			}
		})
	}
}

func TestNew_JSONWithRunAndPhase(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "json")

	l, runID := WithRun(l)
	if _, err := uuid.Parse(runID); err != nil {
		t.Fatalf("run id %q is not a uuid: %v", runID, err)
	}
	WithPhase(l, "staging").Info("copied files", "count", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if rec["run_id"] != runID || rec["phase"] != "staging" || rec["msg"] != "copied files" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "text")
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestNew_OffDiscards(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "off", "text").Error("nothing")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
