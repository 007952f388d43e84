// Package common provides small shared utilities for timing pipeline
// stages.
package common

import (
	"fmt"
	"strings"
	"time"
)

// Timer measures one operation, optionally named.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer starts an unnamed timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// NewNamedTimer starts a timer with the given name.
func NewNamedTimer(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// Stop freezes the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration, valid after Stop.
func (t *Timer) Duration() time.Duration { return t.duration }

// Name returns the timer name, empty if unnamed.
func (t *Timer) Name() string { return t.name }

func (t *Timer) String() string {
	if t.name != "" {
		return fmt.Sprintf("%s: %v", t.name, t.duration)
	}
	return t.duration.String()
}

// StageTiming is one named stage duration within a single analysis run.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Stopwatch collects ordered stage timings for one run. Not safe for
// concurrent use; each analysis owns its own.
type Stopwatch struct {
	stages []StageTiming
	last   time.Time
}

// NewStopwatch starts a stopwatch at the current time.
func NewStopwatch() *Stopwatch {
	return &Stopwatch{last: time.Now()}
}

// Mark records the time since the previous mark as one named stage and
// returns that stage's duration.
func (s *Stopwatch) Mark(stage string) time.Duration {
	now := time.Now()
	d := now.Sub(s.last)
	s.last = now
	s.stages = append(s.stages, StageTiming{Stage: stage, Duration: d})
	return d
}

// Stages returns the recorded timings in order.
func (s *Stopwatch) Stages() []StageTiming {
	out := make([]StageTiming, len(s.stages))
	copy(out, s.stages)
	return out
}

// Total sums all recorded stage durations.
func (s *Stopwatch) Total() time.Duration {
	var total time.Duration
	for _, st := range s.stages {
		total += st.Duration
	}
	return total
}

func (s *Stopwatch) String() string {
	parts := make([]string, 0, len(s.stages))
	for _, st := range s.stages {
		parts = append(parts, fmt.Sprintf("%s=%v", st.Stage, st.Duration.Round(time.Microsecond)))
	}
	return strings.Join(parts, " ")
}
