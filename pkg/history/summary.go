package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dd0wney/pipeswarm/pkg/agent"
	"github.com/dd0wney/pipeswarm/pkg/simulation"
)

// Summary file and history file names inside an output directory
const (
	SummaryFile = "summary.json"
	HistoryFile = "history.pswh"
)

// Summary is the end-of-run report consumed by external renderers
type Summary struct {
	RunID    string                 `json:"run_id"`
	State    string                 `json:"state"`
	Turns    int                    `json:"turns"`
	Coverage float64                `json:"coverage"`
	Digest   string                 `json:"digest"`
	Leaders  []int                  `json:"leaders,omitempty"`
	Meetings int                    `json:"meetings"`
	Agents   []agent.Summary        `json:"agents"`
	Final    *simulation.TurnRecord `json:"final,omitempty"`
}

// Summarize builds the summary of res
func Summarize(res *simulation.Result) (*Summary, error) {
	digest, err := Digest(res.History)
	if err != nil {
		return nil, err
	}
	s := &Summary{
		RunID:    res.RunID,
		State:    res.State.String(),
		Turns:    res.Turns,
		Coverage: res.Coverage,
		Digest:   digest,
		Agents:   res.Agents,
	}
	for _, rec := range res.History {
		s.Meetings += len(rec.Meetings)
	}
	if n := len(res.History); n > 0 {
		final := res.History[n-1]
		s.Final = &final
		s.Leaders = final.Leaders
	}
	return s, nil
}

// WriteSummary writes summary.json into dir and returns its path
func WriteSummary(dir string, res *simulation.Result) (string, error) {
	s, err := Summarize(res)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, SummaryFile)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// ReadSummary loads a summary written by WriteSummary
func ReadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode summary %s: %w", path, err)
	}
	return &s, nil
}
