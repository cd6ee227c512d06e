package service

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"learnpulse_backend/internal/model"
	"learnpulse_backend/internal/repository"
)

// AnalyticsService computes on-demand aggregates over the activity dataset.
// Nothing is precomputed; every call re-derives from the current table so an
// admin dataset reload takes effect immediately.
type AnalyticsService struct {
	Dataset *repository.DatasetRepository
}

func NewAnalyticsService(dataset *repository.DatasetRepository) *AnalyticsService {
	return &AnalyticsService{Dataset: dataset}
}

var lastWeeksPattern = regexp.MustCompile(`last\s+(\d+)\s*weeks?`)

// TimeframeWeeks extracts a "last N weeks" window from free text.
// Returns 0 when no window is requested.
func TimeframeWeeks(text string) int {
	m := lastWeeksPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// filterWeeks keeps the last n weeks of a subset, measured from the highest
// week number present in that subset (not the calendar).
func filterWeeks(t model.Table, n int) model.Table {
	if n <= 0 || !t.Columns.HasWeekNumber || t.Empty() {
		return t
	}
	maxWeek := t.Records[0].WeekNumber
	for _, rec := range t.Records {
		if rec.WeekNumber > maxWeek {
			maxWeek = rec.WeekNumber
		}
	}
	out := model.Table{Columns: t.Columns}
	for _, rec := range t.Records {
		if rec.WeekNumber > maxWeek-n {
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

// StudentStats aggregates one learner's rows. weeks=0 means all history.
// An unknown learner yields Exists=false, never an error.
func (s *AnalyticsService) StudentStats(name string, weeks int) (model.StudentStats, error) {
	table, err := s.Dataset.StudentRows(name)
	if err != nil {
		return model.StudentStats{}, err
	}
	stats := model.StudentStats{Student: strings.TrimSpace(name)}
	if table.Empty() {
		return stats, nil
	}
	table = filterWeeks(table, weeks)
	if table.Empty() {
		return stats, nil
	}
	stats.Exists = true
	stats.TotalSessions = len(table.Records)

	scores := make([]float64, 0, len(table.Records))
	for _, rec := range table.Records {
		scores = append(scores, rec.Score)
	}
	if table.Columns.HasScore {
		stats.AverageScore = f64ptr(mean(scores))
		stats.MedianScore = f64ptr(median(scores))
		stats.BestScore = f64ptr(maxOf(scores))
		stats.WorstScore = f64ptr(minOf(scores))
	}

	if table.Columns.HasAttempts {
		total := 0
		for _, rec := range table.Records {
			total += rec.Attempts
		}
		stats.TotalAttempts = intptr(total)
	}
	if table.Columns.HasSuccessRate {
		var vals []float64
		for _, rec := range table.Records {
			vals = append(vals, rec.SuccessRate)
		}
		stats.AvgSuccessRate = f64ptr(mean(vals))
	}
	if table.Columns.HasInteractionAccuracy {
		var vals []float64
		for _, rec := range table.Records {
			vals = append(vals, rec.InteractionAccuracy)
		}
		stats.AvgInteractionAccuracy = f64ptr(mean(vals))
	}
	if table.Columns.HasStreakDays {
		best := 0
		for _, rec := range table.Records {
			if rec.StreakDays > best {
				best = rec.StreakDays
			}
		}
		stats.MaxStreakDays = intptr(best)
	}

	stats.TrendByWeek = weeklyTrend(table)
	stats.ConceptBreakdown = conceptBreakdown(table)
	stats.RecentFeedbackNotes = recentNotes(table, 3)

	return stats, nil
}

// ClassStats aggregates a class's rows. Unknown class yields Exists=false.
func (s *AnalyticsService) ClassStats(classID string, weeks int) (model.ClassStats, error) {
	table, err := s.Dataset.ClassRows(classID)
	if err != nil {
		return model.ClassStats{}, err
	}
	stats := model.ClassStats{ClassID: strings.TrimSpace(classID)}
	if table.Empty() {
		return stats, nil
	}
	table = filterWeeks(table, weeks)
	if table.Empty() {
		return stats, nil
	}
	stats.Exists = true
	stats.TotalSessions = len(table.Records)

	students := make(map[string]bool)
	for _, rec := range table.Records {
		students[strings.ToLower(rec.StudentName)] = true
	}
	stats.TotalStudents = len(students)

	if table.Columns.HasScore {
		var scores []float64
		for _, rec := range table.Records {
			scores = append(scores, rec.Score)
		}
		stats.AverageScore = f64ptr(mean(scores))
	}

	stats.TrendByWeek = weeklyTrend(table)
	stats.ConceptBreakdown = conceptBreakdown(table)

	return stats, nil
}

// Compare builds side-by-side snapshots for two learners. Either side may
// have Exists=false; the delta is only set when both have an average.
func (s *AnalyticsService) Compare(left, right string, weeks int) (model.Comparison, error) {
	l, err := s.StudentStats(left, weeks)
	if err != nil {
		return model.Comparison{}, err
	}
	r, err := s.StudentStats(right, weeks)
	if err != nil {
		return model.Comparison{}, err
	}
	cmp := model.Comparison{Left: l, Right: r}
	if l.AverageScore != nil && r.AverageScore != nil {
		cmp.DeltaAvgScore = *l.AverageScore - *r.AverageScore
		cmp.HasDelta = true
	}
	return cmp, nil
}

// MultiStats aggregates several learners independently, preserving order.
func (s *AnalyticsService) MultiStats(names []string, weeks int) ([]model.StudentStats, error) {
	out := make([]model.StudentStats, 0, len(names))
	for _, name := range names {
		st, err := s.StudentStats(name, weeks)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// RankOptions narrows a ranking to a class, a concept, and a recent-weeks
// window before grouping. Zero values mean "no filter".
type RankOptions struct {
	Top     int
	ClassID string
	Concept string
	Weeks   int
	Worst   bool
}

// FilteredRows applies the class/concept/timeframe filters over the full
// table. Filters on columns the dataset does not carry are ignored.
func (s *AnalyticsService) FilteredRows(classID, concept string, weeks int) (model.Table, error) {
	table, err := s.Dataset.All()
	if err != nil {
		return model.Table{}, err
	}
	if classID != "" && table.Columns.HasClass {
		want := strings.ToLower(strings.TrimSpace(classID))
		out := model.Table{Columns: table.Columns}
		for _, rec := range table.Records {
			if strings.ToLower(rec.ClassID) == want {
				out.Records = append(out.Records, rec)
			}
		}
		table = out
	}
	if concept != "" && table.Columns.HasConcept {
		want := strings.ToLower(strings.TrimSpace(concept))
		out := model.Table{Columns: table.Columns}
		for _, rec := range table.Records {
			if strings.ToLower(rec.Concept) == want {
				out.Records = append(out.Records, rec)
			}
		}
		table = out
	}
	return filterWeeks(table, weeks), nil
}

// DetectConcept returns the first known concept mentioned in the text,
// matched case-insensitively as a substring. Empty when none is mentioned.
func (s *AnalyticsService) DetectConcept(text string) (string, error) {
	table, err := s.Dataset.All()
	if err != nil {
		return "", err
	}
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	for _, rec := range table.Records {
		concept := strings.TrimSpace(rec.Concept)
		if concept == "" {
			continue
		}
		key := strings.ToLower(concept)
		if seen[key] {
			continue
		}
		seen[key] = true
		if strings.Contains(lower, key) {
			return concept, nil
		}
	}
	return "", nil
}

// Rank orders students by average score over the filtered subset.
// Worst=true sorts ascending; Top caps the result, Top<=0 means everyone.
func (s *AnalyticsService) Rank(opts RankOptions) ([]model.RankedStudent, error) {
	table, err := s.FilteredRows(opts.ClassID, opts.Concept, opts.Weeks)
	if err != nil {
		return nil, err
	}

	type agg struct {
		name  string
		sum   float64
		count int
	}
	byStudent := make(map[string]*agg)
	var order []string
	for _, rec := range table.Records {
		name := strings.TrimSpace(rec.StudentName)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		a, ok := byStudent[key]
		if !ok {
			a = &agg{name: name}
			byStudent[key] = a
			order = append(order, key)
		}
		a.sum += rec.Score
		a.count++
	}

	ranked := make([]model.RankedStudent, 0, len(order))
	for _, key := range order {
		a := byStudent[key]
		ranked = append(ranked, model.RankedStudent{
			StudentName:  a.name,
			AverageScore: a.sum / float64(a.count),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if opts.Worst {
			return ranked[i].AverageScore < ranked[j].AverageScore
		}
		return ranked[i].AverageScore > ranked[j].AverageScore
	})

	if opts.Top > 0 && len(ranked) > opts.Top {
		ranked = ranked[:opts.Top]
	}
	return ranked, nil
}

func weeklyTrend(t model.Table) []model.WeekStat {
	if !t.Columns.HasWeekNumber || !t.Columns.HasScore {
		return nil
	}
	sums := make(map[int]*model.WeekStat)
	var weeks []int
	for _, rec := range t.Records {
		w, ok := sums[rec.WeekNumber]
		if !ok {
			w = &model.WeekStat{WeekNumber: rec.WeekNumber}
			sums[rec.WeekNumber] = w
			weeks = append(weeks, rec.WeekNumber)
		}
		w.AvgScore += rec.Score
		w.Count++
	}
	sort.Ints(weeks)
	out := make([]model.WeekStat, 0, len(weeks))
	for _, wk := range weeks {
		w := sums[wk]
		out = append(out, model.WeekStat{
			WeekNumber: wk,
			AvgScore:   w.AvgScore / float64(w.Count),
			Count:      w.Count,
		})
	}
	return out
}

// conceptBreakdown returns per-concept averages, weakest first. Consumers
// treat index 0 as the focus area.
func conceptBreakdown(t model.Table) []model.ConceptStat {
	if !t.Columns.HasConcept || !t.Columns.HasScore {
		return nil
	}
	sums := make(map[string]*model.ConceptStat)
	var order []string
	for _, rec := range t.Records {
		concept := strings.TrimSpace(rec.Concept)
		if concept == "" {
			continue
		}
		c, ok := sums[concept]
		if !ok {
			c = &model.ConceptStat{Concept: concept}
			sums[concept] = c
			order = append(order, concept)
		}
		c.AvgScore += rec.Score
		c.Sessions++
	}
	out := make([]model.ConceptStat, 0, len(order))
	for _, concept := range order {
		c := sums[concept]
		out = append(out, model.ConceptStat{
			Concept:  concept,
			AvgScore: c.AvgScore / float64(c.Sessions),
			Sessions: c.Sessions,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvgScore < out[j].AvgScore
	})
	return out
}

func recentNotes(t model.Table, n int) []string {
	if !t.Columns.HasFeedbackNotes {
		return nil
	}
	var notes []string
	for _, rec := range t.Records {
		if note := strings.TrimSpace(rec.FeedbackNotes); note != "" {
			notes = append(notes, note)
		}
	}
	if len(notes) > n {
		notes = notes[len(notes)-n:]
	}
	return notes
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func maxOf(vals []float64) float64 {
	best := vals[0]
	for _, v := range vals[1:] {
		if v > best {
			best = v
		}
	}
	return best
}

func minOf(vals []float64) float64 {
	worst := vals[0]
	for _, v := range vals[1:] {
		if v < worst {
			worst = v
		}
	}
	return worst
}

func f64ptr(v float64) *float64 { return &v }
func intptr(v int) *int         { return &v }
