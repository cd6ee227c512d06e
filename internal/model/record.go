package model

import "time"

// PerformanceRecord is one activity-session row from the tabular dataset.
// Optional columns default to zero values; consult the owning table's
// ColumnSet before trusting them.
type PerformanceRecord struct {
	StudentName         string
	ClassID             string
	Concept             string
	Score               float64 // 0-100
	Attempts            int
	SuccessRate         float64 // 0-1
	InteractionAccuracy float64 // 0-1
	StreakDays          int
	Date                time.Time
	WeekNumber          int
	FeedbackNotes       string
}

// ColumnSet records which optional dataset columns were actually present, so
// derived statistics can be omitted rather than reported as zeros.
type ColumnSet struct {
	HasStudent             bool
	HasClass               bool
	HasConcept             bool
	HasScore               bool
	HasAttempts            bool
	HasSuccessRate         bool
	HasInteractionAccuracy bool
	HasStreakDays          bool
	HasDate                bool
	HasWeekNumber          bool
	HasFeedbackNotes       bool
}

// Table is a row subset plus the column presence flags of its source dataset.
type Table struct {
	Records []PerformanceRecord
	Columns ColumnSet
}

func (t Table) Empty() bool { return len(t.Records) == 0 }
