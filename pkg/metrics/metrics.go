package metrics

import (
	"time"
)

// Recorder receives simulation events. *Registry implements it; NopRecorder
// discards everything.
type Recorder interface {
	RecordTurn(duration time.Duration, coverage float64)
	RecordMeeting(size int, leaderChanged bool, relabeled, assigned int)
	RecordDeadEnd(policy string)
	RecordAgents(byRole, byStatus map[string]int)
	RecordInvariantViolation(check string)
	RecordRun(state string, turns int)
}

// RecordTurn records a finished turn and the coverage after it
func (r *Registry) RecordTurn(duration time.Duration, coverage float64) {
	r.TurnsTotal.Inc()
	r.TurnDuration.Observe(duration.Seconds())
	r.Coverage.Set(coverage)
}

// RecordMeeting records one processed meeting
func (r *Registry) RecordMeeting(size int, leaderChanged bool, relabeled, assigned int) {
	r.MeetingsTotal.Inc()
	r.MeetingSize.Observe(float64(size))
	if leaderChanged {
		r.ElectionsTotal.WithLabelValues("changed").Inc()
	} else {
		r.ElectionsTotal.WithLabelValues("unchanged").Inc()
	}
	r.PortRelabelsTotal.Add(float64(relabeled))
	r.TasksAssignedTotal.Add(float64(assigned))
}

// RecordDeadEnd records an agent that could not move
func (r *Registry) RecordDeadEnd(policy string) {
	r.DeadEndsTotal.WithLabelValues(policy).Inc()
}

// RecordAgents replaces the per-role and per-status agent gauges
func (r *Registry) RecordAgents(byRole, byStatus map[string]int) {
	r.AgentsByRole.Reset()
	for role, n := range byRole {
		r.AgentsByRole.WithLabelValues(role).Set(float64(n))
	}
	r.AgentsByStatus.Reset()
	for status, n := range byStatus {
		r.AgentsByStatus.WithLabelValues(status).Set(float64(n))
	}
}

// RecordInvariantViolation records a failed protocol check
func (r *Registry) RecordInvariantViolation(check string) {
	r.InvariantViolationsTotal.WithLabelValues(check).Inc()
}

// RecordRun records a finished run
func (r *Registry) RecordRun(state string, turns int) {
	r.RunsTotal.WithLabelValues(state).Inc()
	r.RunTurns.Observe(float64(turns))
}

// NopRecorder discards all events
type NopRecorder struct{}

func (NopRecorder) RecordTurn(time.Duration, float64)           {}
func (NopRecorder) RecordMeeting(int, bool, int, int)           {}
func (NopRecorder) RecordDeadEnd(string)                        {}
func (NopRecorder) RecordAgents(map[string]int, map[string]int) {}
func (NopRecorder) RecordInvariantViolation(string)             {}
func (NopRecorder) RecordRun(string, int)                       {}

var (
	_ Recorder = (*Registry)(nil)
	_ Recorder = NopRecorder{}
)
