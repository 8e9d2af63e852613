package session

import (
	"fmt"

	"github.com/mcdev12/chartdrill/go/internal/models"
)

// Metrics accumulates scored answers for the current session.
type Metrics struct {
	MatchCount   int `json:"match_count"`
	CorrectCount int `json:"correct_count"`
}

// Record adds one scored answer.
func (m *Metrics) Record(correct bool) {
	m.MatchCount++
	if correct {
		m.CorrectCount++
	}
}

// Accuracy returns correct/total as a percentage with 2-decimal
// rounding, "0.00" when nothing has been answered yet.
func (m *Metrics) Accuracy() string {
	if m.MatchCount == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(m.CorrectCount)/float64(m.MatchCount)*100)
}

// MetricsFromMatches rebuilds metrics from a round's match history,
// used when resuming an in-progress round.
func MetricsFromMatches(matches []models.Match) Metrics {
	var m Metrics
	for _, mt := range matches {
		m.Record(mt.Correct)
	}
	return m
}
