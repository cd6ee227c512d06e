package service

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"learnpulse_backend/internal/model"
)

// Snapshot row limits per grounding shape. Kept small so the grounding block
// stays well inside the model's context.
const (
	studentRowsLimit = 40
	classRowsLimit   = 50
	compareRowsLimit = 60
	generalRowsLimit = 60
	multiRowsLimit   = 80
	rankingRowsLimit = 80
)

// GroundingService renders analytics into the plain-text context block sent
// alongside each chat message: a human-readable summary plus a raw CSV tail
// for semantic hooks. It never talks to the LLM itself.
type GroundingService struct {
	Analytics *AnalyticsService
}

func NewGroundingService(analytics *AnalyticsService) *GroundingService {
	return &GroundingService{Analytics: analytics}
}

// ForStudent builds grounding for a single-learner question.
func (g *GroundingService) ForStudent(question, student string) (string, error) {
	weeks := TimeframeWeeks(question)
	stats, err := g.Analytics.StudentStats(student, weeks)
	if err != nil {
		return "", err
	}
	sections := []string{"Question: " + question, summarizeStudent(stats)}

	table, err := g.Analytics.Dataset.StudentRows(student)
	if err == nil && !table.Empty() {
		sections = append(sections, csvTail(table, studentRowsLimit))
	}
	return strings.Join(sections, "\n\n"), nil
}

// ForClass builds grounding for a class-level question.
func (g *GroundingService) ForClass(question, classID string) (string, error) {
	weeks := TimeframeWeeks(question)
	stats, err := g.Analytics.ClassStats(classID, weeks)
	if err != nil {
		return "", err
	}
	sections := []string{"Question: " + question, summarizeClass(stats)}

	table, err := g.Analytics.Dataset.ClassRows(classID)
	if err == nil && !table.Empty() {
		sections = append(sections, csvTail(table, classRowsLimit))
	}
	return strings.Join(sections, "\n\n"), nil
}

// ForComparison builds grounding for a two-learner comparison: both stat
// blocks, the score delta when computable, and a combined snapshot.
func (g *GroundingService) ForComparison(question, left, right string) (string, error) {
	weeks := TimeframeWeeks(question)
	cmp, err := g.Analytics.Compare(left, right, weeks)
	if err != nil {
		return "", err
	}
	sections := []string{
		"Question: " + question,
		summarizeStudent(cmp.Left),
		summarizeStudent(cmp.Right),
	}
	if cmp.HasDelta {
		sections = append(sections, fmt.Sprintf("Delta avg score (A - B): %.1f", cmp.DeltaAvgScore))
	}

	combined, err := g.rowsForStudents([]string{left, right})
	if err == nil && !combined.Empty() {
		sections = append(sections, csvTail(combined, compareRowsLimit))
	}
	return strings.Join(sections, "\n\n"), nil
}

// ForMulti builds grounding for three-to-five learners.
func (g *GroundingService) ForMulti(question string, names []string) (string, error) {
	weeks := TimeframeWeeks(question)
	stats, err := g.Analytics.MultiStats(names, weeks)
	if err != nil {
		return "", err
	}
	sections := []string{"Question: " + question}
	for _, st := range stats {
		sections = append(sections, summarizeStudent(st))
	}

	combined, err := g.rowsForStudents(names)
	if err == nil && !combined.Empty() {
		sections = append(sections, csvTail(combined, multiRowsLimit))
	}
	return strings.Join(sections, "\n\n"), nil
}

// ForRanking builds grounding for leaderboard questions: a top-5 list over
// the class/concept/timeframe subset the question asked for, plus a tail of
// that subset.
func (g *GroundingService) ForRanking(question, classID string) (string, error) {
	sections := []string{"Question: " + question}

	weeks := TimeframeWeeks(question)
	concept, err := g.Analytics.DetectConcept(question)
	if err != nil {
		return "", err
	}

	top, err := g.Analytics.Rank(RankOptions{Top: 5, ClassID: classID, Concept: concept, Weeks: weeks})
	if err != nil {
		return "", err
	}
	if len(top) > 0 {
		var b strings.Builder
		b.WriteString("Top 5 by average_score:")
		for _, r := range top {
			b.WriteString(fmt.Sprintf("\n- %s: %.1f", r.StudentName, r.AverageScore))
		}
		sections = append(sections, b.String())
	}

	table, err := g.Analytics.FilteredRows(classID, concept, weeks)
	if err == nil && !table.Empty() {
		sections = append(sections, csvTail(table, rankingRowsLimit))
	}
	return strings.Join(sections, "\n\n"), nil
}

// ForGeneral builds grounding for questions with no bound entity: overall
// aggregates, concept extremes, recent weekly trend, and a dataset tail.
func (g *GroundingService) ForGeneral(question string) (string, error) {
	table, err := g.Analytics.Dataset.All()
	if err != nil {
		return "", err
	}

	lines := []string{"Overall dataset"}
	students := make(map[string]bool)
	var scores []float64
	for _, rec := range table.Records {
		if name := strings.TrimSpace(rec.StudentName); name != "" {
			students[strings.ToLower(name)] = true
		}
		scores = append(scores, rec.Score)
	}
	lines = append(lines, fmt.Sprintf("- Students: %d | Sessions: %d", len(students), len(table.Records)))
	if table.Columns.HasScore && len(scores) > 0 {
		lines = append(lines, fmt.Sprintf("- Avg score: %.1f", mean(scores)))
	}
	if trend := weeklyTrend(table); len(trend) > 0 {
		lines = append(lines, "- Recent weekly avg: "+formatTrend(trend))
	}
	if concepts := conceptBreakdown(table); len(concepts) > 0 {
		worst := concepts[0]
		best := concepts[len(concepts)-1]
		lines = append(lines, fmt.Sprintf("- Lowest concept: %s (avg %.1f)", worst.Concept, worst.AvgScore))
		lines = append(lines, fmt.Sprintf("- Strongest concept: %s (avg %.1f)", best.Concept, best.AvgScore))
	}

	sections := []string{"Question: " + question, strings.Join(lines, "\n")}
	if !table.Empty() {
		sections = append(sections, csvTail(table, generalRowsLimit))
	}
	return strings.Join(sections, "\n\n"), nil
}

func (g *GroundingService) rowsForStudents(names []string) (model.Table, error) {
	all, err := g.Analytics.Dataset.All()
	if err != nil {
		return model.Table{}, err
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(strings.TrimSpace(n))] = true
	}
	out := model.Table{Columns: all.Columns}
	for _, rec := range all.Records {
		if want[strings.ToLower(rec.StudentName)] {
			out.Records = append(out.Records, rec)
		}
	}
	return out, nil
}

func summarizeStudent(stats model.StudentStats) string {
	if !stats.Exists {
		return fmt.Sprintf("No data found for learner '%s'.", stats.Student)
	}
	lines := []string{
		"Learner: " + stats.Student,
		fmt.Sprintf("- Sessions: %d", stats.TotalSessions),
		"- Avg score: " + fmtOpt(stats.AverageScore),
	}
	if stats.MedianScore != nil {
		lines = append(lines, "- Median score: "+fmtOpt(stats.MedianScore))
	}
	if stats.BestScore != nil && stats.WorstScore != nil {
		lines = append(lines, fmt.Sprintf("- Best/Worst: %s / %s", fmtOpt(stats.BestScore), fmtOpt(stats.WorstScore)))
	}
	if stats.AvgSuccessRate != nil {
		lines = append(lines, fmt.Sprintf("- Avg success_rate: %.1f%%", *stats.AvgSuccessRate*100))
	}
	if stats.AvgInteractionAccuracy != nil {
		lines = append(lines, fmt.Sprintf("- Avg interaction_accuracy: %.1f%%", *stats.AvgInteractionAccuracy*100))
	}
	if stats.MaxStreakDays != nil {
		lines = append(lines, fmt.Sprintf("- Max streak days: %d", *stats.MaxStreakDays))
	}
	if len(stats.TrendByWeek) > 0 {
		lines = append(lines, "- Recent weekly avg: "+formatTrend(stats.TrendByWeek))
	}
	if len(stats.ConceptBreakdown) > 0 {
		worst := stats.ConceptBreakdown[0]
		lines = append(lines, fmt.Sprintf("- Lowest concept: %s (avg %.1f)", worst.Concept, worst.AvgScore))
	}
	if len(stats.RecentFeedbackNotes) > 0 {
		lines = append(lines, "- Recent notes: "+strings.Join(stats.RecentFeedbackNotes, " | "))
	}
	return strings.Join(lines, "\n")
}

func summarizeClass(stats model.ClassStats) string {
	if !stats.Exists {
		return fmt.Sprintf("No data found for class '%s'.", stats.ClassID)
	}
	lines := []string{
		"Class: " + stats.ClassID,
		fmt.Sprintf("- Learners: %d | Sessions: %d", stats.TotalStudents, stats.TotalSessions),
		"- Avg score: " + fmtOpt(stats.AverageScore),
	}
	if len(stats.TrendByWeek) > 0 {
		lines = append(lines, "- Recent weekly avg: "+formatTrend(stats.TrendByWeek))
	}
	if len(stats.ConceptBreakdown) > 0 {
		worst := stats.ConceptBreakdown[0]
		best := stats.ConceptBreakdown[len(stats.ConceptBreakdown)-1]
		lines = append(lines, fmt.Sprintf("- Lowest concept: %s (avg %.1f)", worst.Concept, worst.AvgScore))
		lines = append(lines, fmt.Sprintf("- Strongest concept: %s (avg %.1f)", best.Concept, best.AvgScore))
	}
	return strings.Join(lines, "\n")
}

// formatTrend shows the last four weeks as "W41:76.7, W42:80.1, ...".
func formatTrend(trend []model.WeekStat) string {
	if len(trend) > 4 {
		trend = trend[len(trend)-4:]
	}
	parts := make([]string, 0, len(trend))
	for _, w := range trend {
		parts = append(parts, fmt.Sprintf("W%d:%.1f", w.WeekNumber, w.AvgScore))
	}
	return strings.Join(parts, ", ")
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

// csvTail renders the last limit rows as CSV, emitting only the columns the
// source dataset actually carried.
func csvTail(t model.Table, limit int) string {
	records := t.Records
	if len(records) > limit {
		records = records[len(records)-limit:]
	}

	var header []string
	type extractor func(model.PerformanceRecord) string
	var cols []extractor

	add := func(name string, fn extractor) {
		header = append(header, name)
		cols = append(cols, fn)
	}
	if t.Columns.HasStudent {
		add("student_name", func(r model.PerformanceRecord) string { return r.StudentName })
	}
	if t.Columns.HasClass {
		add("class_id", func(r model.PerformanceRecord) string { return r.ClassID })
	}
	if t.Columns.HasConcept {
		add("concept", func(r model.PerformanceRecord) string { return r.Concept })
	}
	if t.Columns.HasScore {
		add("score", func(r model.PerformanceRecord) string { return strconv.FormatFloat(r.Score, 'f', 1, 64) })
	}
	if t.Columns.HasAttempts {
		add("attempts", func(r model.PerformanceRecord) string { return strconv.Itoa(r.Attempts) })
	}
	if t.Columns.HasSuccessRate {
		add("success_rate", func(r model.PerformanceRecord) string { return strconv.FormatFloat(r.SuccessRate, 'f', 2, 64) })
	}
	if t.Columns.HasInteractionAccuracy {
		add("interaction_accuracy", func(r model.PerformanceRecord) string { return strconv.FormatFloat(r.InteractionAccuracy, 'f', 2, 64) })
	}
	if t.Columns.HasStreakDays {
		add("streak_days", func(r model.PerformanceRecord) string { return strconv.Itoa(r.StreakDays) })
	}
	if t.Columns.HasDate {
		add("date", func(r model.PerformanceRecord) string { return r.Date.Format("2006-01-02") })
	}
	if t.Columns.HasWeekNumber {
		add("week_number", func(r model.PerformanceRecord) string { return strconv.Itoa(r.WeekNumber) })
	}
	if t.Columns.HasFeedbackNotes {
		add("feedback_notes", func(r model.PerformanceRecord) string { return r.FeedbackNotes })
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(header)
	row := make([]string, len(cols))
	for _, rec := range records {
		for i, fn := range cols {
			row[i] = fn(rec)
		}
		_ = w.Write(row)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
