package service

import (
	"fmt"
	"strings"
)

// IndividualizedFeedback builds deterministic, data-driven coaching advice
// for one learner. It is rule-based on purpose: instructors can print it in
// a report without an LLM in the loop.
func (a *AnalyticsService) IndividualizedFeedback(name string) (string, error) {
	stats, err := a.StudentStats(name, 0)
	if err != nil {
		return "", err
	}
	if !stats.Exists {
		return "No data available for individualized feedback.", nil
	}

	var sections []string

	if len(stats.ConceptBreakdown) > 0 {
		weak := stats.ConceptBreakdown[0]
		if weak.AvgScore < 65 {
			sections = append(sections, fmt.Sprintf(
				"Focus Area: %s (current avg: %.1f)\n"+
					"- Assign 2-3 beginner-level %s challenges this week\n"+
					"- Encourage slower, more deliberate practice\n"+
					"- Consider pairing with a peer who excels in %s",
				weak.Concept, weak.AvgScore, weak.Concept, weak.Concept))
		}
	}

	if stats.MaxStreakDays != nil && *stats.MaxStreakDays < 3 {
		sections = append(sections, fmt.Sprintf(
			"Engagement Alert: only a %d-day streak\n"+
				"- Set a goal: practice 3 days in a row for a reward\n"+
				"- Send a reminder or encouragement message\n"+
				"- Check for access barriers (device, time, motivation)",
			*stats.MaxStreakDays))
	}

	if stats.AvgInteractionAccuracy != nil && *stats.AvgInteractionAccuracy < 0.65 {
		sections = append(sections, fmt.Sprintf(
			"Interaction Quality: interaction accuracy at %.1f%%\n"+
				"- Check device setup and focus\n"+
				"- Model the activity steps with a short walkthrough\n"+
				"- Allow extra time for guided practice",
			*stats.AvgInteractionAccuracy*100))
	}

	if len(stats.TrendByWeek) >= 3 {
		trend := stats.TrendByWeek
		first := trend[len(trend)-3]
		last := trend[len(trend)-1]
		if last.AvgScore < first.AvgScore-5 {
			sections = append(sections, fmt.Sprintf(
				"Recent Decline: scores dropped from %.1f (W%d) to %.1f (W%d)\n"+
					"- Have a brief check-in conversation\n"+
					"- Temporarily lower challenge difficulty\n"+
					"- Investigate external factors (stress, illness, conflicts)",
				first.AvgScore, first.WeekNumber, last.AvgScore, last.WeekNumber))
		}
	}

	if len(sections) == 0 && stats.AverageScore != nil && *stats.AverageScore > 70 {
		sections = append(sections, fmt.Sprintf(
			"Keep it up! %s is performing well (avg: %.1f)\n"+
				"- Challenge with advanced difficulty levels\n"+
				"- Consider peer tutoring opportunities\n"+
				"- Celebrate streak days and concept mastery",
			stats.Student, *stats.AverageScore))
	}

	if len(sections) == 0 {
		sections = append(sections, fmt.Sprintf("Continue current approach - %s is progressing steadily.", stats.Student))
	}

	return strings.Join(sections, "\n\n"), nil
}
