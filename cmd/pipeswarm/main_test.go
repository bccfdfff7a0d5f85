package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dd0wney/pipeswarm/pkg/history"
)

const ringScenario = `name: ring
network:
  shape: cycle
  names: [A, B, C, D, E]
simulation:
  starts: [A, C]
  seed: 42
  max_turns: 20
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ring.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no scenario", nil, 2},
		{"unknown flag", []string{"-bogus"}, 2},
		{"missing file", []string{"-scenario", filepath.Join(t.TempDir(), "absent.yaml")}, 1},
		{"invalid scenario", []string{"-scenario", writeScenario(t, "name: ring\nnetwork: {}\n")}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := run(tt.args, &stdout, &stderr); got != tt.want {
				t.Errorf("exit code = %d, want %d (stderr: %s)", got, tt.want, stderr.String())
			}
		})
	}
}

func TestRunWritesOutputs(t *testing.T) {
	out := t.TempDir()
	catalogDir := t.TempDir()
	var stdout, stderr bytes.Buffer

	code := run([]string{"-scenario", writeScenario(t, ringScenario), "-out", out, "-catalog", catalogDir, "-log-level", "error"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "completed") {
		t.Errorf("summary missing final state:\n%s", stdout.String())
	}
	for _, name := range []string{history.HistoryFile, history.SummaryFile} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(catalogDir, "catalog.json")); err != nil {
		t.Errorf("catalog not written: %v", err)
	}
}

func TestRunSweep(t *testing.T) {
	out := t.TempDir()
	var stdout, stderr bytes.Buffer

	code := run([]string{"-scenario", writeScenario(t, ringScenario), "-out", out, "-sweep", "3", "-log-level", "error"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if _, err := os.Stat(filepath.Join(out, "sweep.json")); err != nil {
		t.Errorf("missing sweep.json: %v", err)
	}
	if !strings.Contains(stdout.String(), "3 runs") {
		t.Errorf("unexpected sweep output:\n%s", stdout.String())
	}
}

func TestWriteStatesSorted(t *testing.T) {
	counts := map[string]int{"turn_limit": 2, "completed": 5, "stalled": 1, "cancelled": 0}
	for i := 0; i < 5; i++ {
		var buf bytes.Buffer
		writeStates(&buf, counts)
		want := "  cancelled  0\n  completed  5\n  stalled    1\n  turn_limit 2\n"
		if buf.String() != want {
			t.Fatalf("got:\n%q\nwant:\n%q", buf.String(), want)
		}
	}
}
