// Package model defines shared data structures.
package model

import "time"

// Condition is one (radius, distance) pair of the experiment design.
type Condition struct {
	Radius   float64
	Distance float64
}

// Config defines an experiment run.
type Config struct {
	ParticipantID string
	Repetitions   int
	Trials        int
	Conditions    []Condition
	Latency       time.Duration
	Device        string
	Targets       int
}

// Rounds returns the number of rounds the run lasts.
func (c Config) Rounds() int {
	if c.Trials > 0 {
		return c.Trials
	}
	return c.Repetitions * len(c.Conditions)
}

// ClicksPerRound returns the number of clicks that complete a round.
// Each repetition is one click on a target and one on its opposite.
func (c Config) ClicksPerRound() int {
	return c.Repetitions * 2
}

// Sample is one processed click.
type Sample struct {
	ParticipantID string
	// Trial is the zero-based round index. It equals the condition index
	// until the rounds outnumber the conditions and the conditions wrap.
	Trial         int
	Radius        float64
	Distance      float64
	Latency       float64
	Hit           bool
	Time          float64
	Accuracy      float64
	ClickX        float64
	ClickY        float64
	TargetX       float64
	TargetY       float64
	ClickTime     float64
}

// StatsConfig defines filters for the results browser.
type StatsConfig struct {
	Dir         string
	Participant string
	Device      string
	Last        int
	CurveWindow int
}

// ConditionAggregate summarizes all samples recorded for one condition.
type ConditionAggregate struct {
	Radius      float64
	Distance    float64
	Clicks      int
	Hits        int
	TimeSum     float64
	AccuracySum float64
}

// LogAggregate summarizes one session log file.
type LogAggregate struct {
	Path          string
	ParticipantID string
	Device        string
	Clicks        int
	Hits          int
	TimeSum       float64
	ModTime       time.Time
}
