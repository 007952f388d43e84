package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer(t *testing.T) {
	timer := NewNamedTimer("extract")
	assert.Equal(t, "extract", timer.Name())

	time.Sleep(10 * time.Millisecond)

	duration := timer.Stop()
	assert.GreaterOrEqual(t, duration, 10*time.Millisecond)
	assert.Equal(t, duration, timer.Duration())
	assert.Contains(t, timer.String(), "extract")
}

func TestUnnamedTimer(t *testing.T) {
	timer := NewTimer()
	timer.Stop()
	assert.Empty(t, timer.Name())
	assert.NotEmpty(t, timer.String())
}

func TestStopwatchMarksStagesInOrder(t *testing.T) {
	sw := NewStopwatch()
	time.Sleep(5 * time.Millisecond)
	d1 := sw.Mark("extract")
	d2 := sw.Mark("rooms")

	stages := sw.Stages()
	assert.Len(t, stages, 2)
	assert.Equal(t, "extract", stages[0].Stage)
	assert.Equal(t, "rooms", stages[1].Stage)
	assert.Equal(t, d1, stages[0].Duration)
	assert.Equal(t, d2, stages[1].Duration)
	assert.GreaterOrEqual(t, d1, 5*time.Millisecond)
	assert.Equal(t, d1+d2, sw.Total())
}

func TestStopwatchStagesIsACopy(t *testing.T) {
	sw := NewStopwatch()
	sw.Mark("a")
	stages := sw.Stages()
	stages[0].Stage = "mutated"
	assert.Equal(t, "a", sw.Stages()[0].Stage)
}

func TestStopwatchString(t *testing.T) {
	sw := NewStopwatch()
	sw.Mark("extract")
	sw.Mark("report")
	s := sw.String()
	assert.Contains(t, s, "extract=")
	assert.Contains(t, s, "report=")
}
