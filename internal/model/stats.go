package model

// WeekStat is one point of a weekly score trend.
type WeekStat struct {
	WeekNumber int     `json:"week_number"`
	AvgScore   float64 `json:"score"`
	Count      int     `json:"count"`
}

// ConceptStat is a per-concept aggregate.
type ConceptStat struct {
	Concept  string  `json:"concept"`
	AvgScore float64 `json:"avg_score"`
	Sessions int     `json:"sessions"`
}

// StudentStats are on-demand aggregates for one learner. Optional metrics are
// nil when their source column is absent from the dataset; Exists is false
// when the learner never appears at all (distinct from computed zeros).
type StudentStats struct {
	Student       string `json:"student"`
	Exists        bool   `json:"exists"`
	TotalSessions int    `json:"total_sessions,omitempty"`

	AverageScore *float64 `json:"average_score,omitempty"`
	MedianScore  *float64 `json:"median_score,omitempty"`
	BestScore    *float64 `json:"best_score,omitempty"`
	WorstScore   *float64 `json:"worst_score,omitempty"`

	TotalAttempts          *int     `json:"total_attempts,omitempty"`
	AvgSuccessRate         *float64 `json:"avg_success_rate,omitempty"`
	AvgInteractionAccuracy *float64 `json:"avg_interaction_accuracy,omitempty"`
	MaxStreakDays          *int     `json:"max_streak_days,omitempty"`

	// TrendByWeek is ascending by week number.
	TrendByWeek []WeekStat `json:"trend_by_week,omitempty"`
	// ConceptBreakdown is ascending by average score: weakest concept first.
	// Downstream "focus area" logic depends on this ordering.
	ConceptBreakdown []ConceptStat `json:"concept_breakdown,omitempty"`
	// RecentFeedbackNotes holds the last 3 non-empty notes, oldest first.
	RecentFeedbackNotes []string `json:"recent_feedback_notes,omitempty"`
}

// ClassStats are the analogous aggregates keyed by class id.
type ClassStats struct {
	ClassID       string `json:"class_id"`
	Exists        bool   `json:"exists"`
	TotalSessions int    `json:"total_sessions,omitempty"`
	TotalStudents int    `json:"total_students,omitempty"`

	AverageScore *float64 `json:"average_score,omitempty"`

	TrendByWeek      []WeekStat    `json:"trend_by_week,omitempty"`
	ConceptBreakdown []ConceptStat `json:"concept_breakdown,omitempty"`
}

// Comparison pairs two student snapshots. No winner is computed; the delta's
// sign is left to the caller (or the LLM) to interpret.
type Comparison struct {
	Left          StudentStats `json:"left"`
	Right         StudentStats `json:"right"`
	DeltaAvgScore float64      `json:"delta_avg_score,omitempty"`
	HasDelta      bool         `json:"-"`
}

// RankedStudent is one row of a ranking result.
type RankedStudent struct {
	StudentName  string  `json:"student_name"`
	AverageScore float64 `json:"average_score"`
}
