package service

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"learnpulse_backend/internal/repository"
)

const fixtureCSV = `student_name,class_id,concept,score,attempts,success_rate,interaction_accuracy,streak_days,date,week_number,feedback_notes
Aisha,4B,loops,80,5,0.8,0.7,4,2026-01-05,40,Good progress
Aisha,4B,debugging,50,6,0.5,0.55,2,2026-01-12,41,Needs help isolating bugs
Aisha,4B,loops,90,4,0.9,0.8,5,2026-01-19,42,
Ben,4B,loops,60,8,0.6,0.5,1,2026-01-05,40,
Ben,4B,functions,40,7,0.4,0.5,1,2026-01-12,41,Rushed
Zoe,5A,loops,95,4,0.95,0.9,7,2026-01-05,40,
Adam,5A,conditionals,70,6,0.7,0.6,3,2026-01-12,41,
Leo,5A,loops,45,9,0.45,0.4,0,2026-01-12,41,
`

func writeDataset(t *testing.T, csv string) *repository.DatasetRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs.csv")
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return repository.NewDatasetRepository(path)
}

func newAnalytics(t *testing.T) *AnalyticsService {
	t.Helper()
	return NewAnalyticsService(writeDataset(t, fixtureCSV))
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func TestStudentStatsCaseInsensitive(t *testing.T) {
	t.Parallel()
	svc := newAnalytics(t)

	stats, err := svc.StudentStats("aIsHa", 0)
	if err != nil {
		t.Fatalf("StudentStats: %v", err)
	}
	if !stats.Exists {
		t.Fatal("Exists = false, want true")
	}
	if stats.TotalSessions != 3 {
		t.Fatalf("TotalSessions = %d, want 3", stats.TotalSessions)
	}
	if stats.AverageScore == nil || !almostEqual(*stats.AverageScore, (80+50+90)/3.0) {
		t.Fatalf("AverageScore = %v, want %.4f", stats.AverageScore, (80+50+90)/3.0)
	}
	if stats.BestScore == nil || *stats.BestScore != 90 {
		t.Fatalf("BestScore = %v, want 90", stats.BestScore)
	}
	if stats.WorstScore == nil || *stats.WorstScore != 50 {
		t.Fatalf("WorstScore = %v, want 50", stats.WorstScore)
	}
	if stats.MaxStreakDays == nil || *stats.MaxStreakDays != 5 {
		t.Fatalf("MaxStreakDays = %v, want 5", stats.MaxStreakDays)
	}
}

func TestStudentStatsUnknown(t *testing.T) {
	t.Parallel()
	svc := newAnalytics(t)

	stats, err := svc.StudentStats("Nobody", 0)
	if err != nil {
		t.Fatalf("StudentStats: %v", err)
	}
	if stats.Exists {
		t.Fatal("Exists = true for unknown learner, want false")
	}
	if stats.AverageScore != nil {
		t.Fatalf("AverageScore = %v for unknown learner, want nil", stats.AverageScore)
	}
}

func TestConceptBreakdownWeakestFirst(t *testing.T) {
	t.Parallel()
	svc := newAnalytics(t)

	stats, err := svc.StudentStats("Aisha", 0)
	if err != nil {
		t.Fatalf("StudentStats: %v", err)
	}
	if len(stats.ConceptBreakdown) != 2 {
		t.Fatalf("ConceptBreakdown len = %d, want 2", len(stats.ConceptBreakdown))
	}
	if stats.ConceptBreakdown[0].Concept != "debugging" {
		t.Fatalf("weakest concept = %q, want debugging", stats.ConceptBreakdown[0].Concept)
	}
	for i := 1; i < len(stats.ConceptBreakdown); i++ {
		if stats.ConceptBreakdown[i].AvgScore < stats.ConceptBreakdown[i-1].AvgScore {
			t.Fatal("ConceptBreakdown not ascending by average score")
		}
	}
}

func TestWeeklyTrendAscending(t *testing.T) {
	t.Parallel()
	svc := newAnalytics(t)

	stats, err := svc.StudentStats("Aisha", 0)
	if err != nil {
		t.Fatalf("StudentStats: %v", err)
	}
	weeks := []int{40, 41, 42}
	if len(stats.TrendByWeek) != len(weeks) {
		t.Fatalf("TrendByWeek len = %d, want %d", len(stats.TrendByWeek), len(weeks))
	}
	for i, w := range stats.TrendByWeek {
		if w.WeekNumber != weeks[i] {
			t.Fatalf("TrendByWeek[%d].WeekNumber = %d, want %d", i, w.WeekNumber, weeks[i])
		}
	}
}

func TestStudentStatsLastWeeksWindow(t *testing.T) {
	t.Parallel()
	svc := newAnalytics(t)

	stats, err := svc.StudentStats("Aisha", 1)
	if err != nil {
		t.Fatalf("StudentStats: %v", err)
	}
	if stats.TotalSessions != 1 {
		t.Fatalf("TotalSessions = %d with 1-week window, want 1", stats.TotalSessions)
	}
	if stats.AverageScore == nil || *stats.AverageScore != 90 {
		t.Fatalf("AverageScore = %v, want 90", stats.AverageScore)
	}
}

func TestClassStats(t *testing.T) {
	t.Parallel()
	svc := newAnalytics(t)

	stats, err := svc.ClassStats("4b", 0)
	if err != nil {
		t.Fatalf("ClassStats: %v", err)
	}
	if !stats.Exists {
		t.Fatal("Exists = false, want true")
	}
	if stats.TotalStudents != 2 {
		t.Fatalf("TotalStudents = %d, want 2", stats.TotalStudents)
	}
	if stats.TotalSessions != 5 {
		t.Fatalf("TotalSessions = %d, want 5", stats.TotalSessions)
	}
}

func TestClassStatsUnknown(t *testing.T) {
	t.Parallel()
	svc := newAnalytics(t)

	stats, err := svc.ClassStats("9Z", 0)
	if err != nil {
		t.Fatalf("ClassStats: %v", err)
	}
	if stats.Exists {
		t.Fatal("Exists = true for unknown class, want false")
	}
}

func TestCompareDelta(t *testing.T) {
	t.Parallel()
	svc := newAnalytics(t)

	cmp, err := svc.Compare("Aisha", "Ben", 0)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !cmp.HasDelta {
		t.Fatal("HasDelta = false, want true")
	}
	want := (80+50+90)/3.0 - 50.0
	if !almostEqual(cmp.DeltaAvgScore, want) {
		t.Fatalf("DeltaAvgScore = %.4f, want %.4f", cmp.DeltaAvgScore, want)
	}
}

func TestCompareWithUnknownSide(t *testing.T) {
	t.Parallel()
	svc := newAnalytics(t)

	cmp, err := svc.Compare("Aisha", "Nobody", 0)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if cmp.HasDelta {
		t.Fatal("HasDelta = true with an unknown side, want false")
	}
	if cmp.Right.Exists {
		t.Fatal("Right.Exists = true, want false")
	}
}

func TestRank(t *testing.T) {
	t.Parallel()
	svc := newAnalytics(t)

	top, err := svc.Rank(RankOptions{Top: 3})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("len = %d, want 3", len(top))
	}
	if top[0].StudentName != "Zoe" {
		t.Fatalf("top[0] = %q, want Zoe", top[0].StudentName)
	}
	for i := 1; i < len(top); i++ {
		if top[i].AverageScore > top[i-1].AverageScore {
			t.Fatal("descending ranking not monotone")
		}
	}

	worst, err := svc.Rank(RankOptions{Top: 2, Worst: true})
	if err != nil {
		t.Fatalf("Rank worst: %v", err)
	}
	if worst[0].StudentName != "Leo" {
		t.Fatalf("worst[0] = %q, want Leo", worst[0].StudentName)
	}
}

func TestRankFiltersClassAndConcept(t *testing.T) {
	t.Parallel()
	svc := newAnalytics(t)

	ranked, err := svc.Rank(RankOptions{Top: 3, ClassID: "4B", Concept: "Loops"})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(ranked) > 3 {
		t.Fatalf("len = %d, want <= 3", len(ranked))
	}
	// Only the 4B loops rows qualify: Aisha (80, 90) and Ben (60).
	if len(ranked) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(ranked), ranked)
	}
	if ranked[0].StudentName != "Aisha" || !almostEqual(ranked[0].AverageScore, 85) {
		t.Fatalf("ranked[0] = %+v, want Aisha 85", ranked[0])
	}
	if ranked[1].StudentName != "Ben" {
		t.Fatalf("ranked[1] = %q, want Ben", ranked[1].StudentName)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].AverageScore > ranked[i-1].AverageScore {
			t.Fatal("filtered ranking not non-increasing")
		}
	}
}

func TestRankFiltersTimeframe(t *testing.T) {
	t.Parallel()
	svc := newAnalytics(t)

	// Within 4B loops the latest week is 42; a 1-week window keeps only
	// Aisha's week-42 session.
	ranked, err := svc.Rank(RankOptions{Top: 5, ClassID: "4B", Concept: "loops", Weeks: 1})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(ranked) != 1 {
		t.Fatalf("len = %d, want 1: %v", len(ranked), ranked)
	}
	if ranked[0].StudentName != "Aisha" || !almostEqual(ranked[0].AverageScore, 90) {
		t.Fatalf("ranked[0] = %+v, want Aisha 90", ranked[0])
	}
}

func TestDetectConcept(t *testing.T) {
	t.Parallel()
	svc := newAnalytics(t)

	tests := []struct {
		text string
		want string
	}{
		{"Who are the top students for loops?", "loops"},
		{"How is everyone doing with DEBUGGING lately?", "debugging"},
		{"Who are the top students?", ""},
	}
	for _, tt := range tests {
		got, err := svc.DetectConcept(tt.text)
		if err != nil {
			t.Fatalf("DetectConcept(%q): %v", tt.text, err)
		}
		if got != tt.want {
			t.Fatalf("DetectConcept(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestTimeframeWeeks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		text string
		want int
	}{
		{"how did Aisha do in the last 3 weeks?", 3},
		{"show me the LAST 1 WEEK", 1},
		{"last   12 weeks please", 12},
		{"how is Aisha doing?", 0},
		{"last week", 0},
		{"last 0 weeks", 0},
	}
	for _, tt := range tests {
		if got := TimeframeWeeks(tt.text); got != tt.want {
			t.Fatalf("TimeframeWeeks(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestIndividualizedFeedback(t *testing.T) {
	t.Parallel()
	svc := newAnalytics(t)

	feedback, err := svc.IndividualizedFeedback("Ben")
	if err != nil {
		t.Fatalf("IndividualizedFeedback: %v", err)
	}
	// Ben's weakest concept averages 40 and his streak is 1 day.
	if !containsAll(feedback, "Focus Area", "Engagement Alert") {
		t.Fatalf("feedback missing expected sections:\n%s", feedback)
	}

	unknown, err := svc.IndividualizedFeedback("Nobody")
	if err != nil {
		t.Fatalf("IndividualizedFeedback unknown: %v", err)
	}
	if unknown != "No data available for individualized feedback." {
		t.Fatalf("unknown learner feedback = %q", unknown)
	}
}
