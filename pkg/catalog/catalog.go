// Package catalog keeps an index of finished runs so that sweeps and
// repeated experiments can be compared later.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dd0wney/pipeswarm/pkg/history"
	"github.com/dd0wney/pipeswarm/pkg/simulation"
)

// ErrNotFound is returned when a run id is not in the catalog
var ErrNotFound = errors.New("run not found")

// Entry is one catalogued run
type Entry struct {
	RunID     string    `json:"run_id"`
	Scenario  string    `json:"scenario"`
	State     string    `json:"state"`
	Turns     int       `json:"turns"`
	Coverage  float64   `json:"coverage"`
	Digest    string    `json:"digest"`
	Seed      int64     `json:"seed"`
	Policy    string    `json:"policy"`
	Agents    int       `json:"agents"`
	Output    string    `json:"output,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Scenario string
	State    string
	Limit    int
}

func (f Filter) match(e *Entry) bool {
	return (f.Scenario == "" || f.Scenario == e.Scenario) && (f.State == "" || f.State == e.State)
}

// Catalog stores run entries
type Catalog interface {
	Put(ctx context.Context, e *Entry) error
	Get(ctx context.Context, runID string) (*Entry, error)
	// List returns matching entries, newest first
	List(ctx context.Context, f Filter) ([]*Entry, error)
	Close() error
}

// NewEntry describes a finished run
func NewEntry(scenarioName string, cfg simulation.Config, sum *history.Summary, output string) *Entry {
	return &Entry{
		RunID:     sum.RunID,
		Scenario:  scenarioName,
		State:     sum.State,
		Turns:     sum.Turns,
		Coverage:  sum.Coverage,
		Digest:    sum.Digest,
		Seed:      cfg.Seed,
		Policy:    cfg.Policy,
		Agents:    cfg.Agents,
		Output:    output,
		CreatedAt: time.Now().UTC(),
	}
}

// Open picks a backend from target: a postgres:// or postgresql:// URL opens
// a PGStore, anything else is a directory for a FileStore.
func Open(ctx context.Context, target string) (Catalog, error) {
	if strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://") {
		return NewPGStore(ctx, target)
	}
	return NewFileStore(target)
}
