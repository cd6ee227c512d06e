package service

import (
	"strings"
	"testing"
)

func newGrounding(t *testing.T) *GroundingService {
	t.Helper()
	return NewGroundingService(newAnalytics(t))
}

func TestForStudentGrounding(t *testing.T) {
	t.Parallel()
	g := newGrounding(t)

	text, err := g.ForStudent("How is Aisha doing?", "Aisha")
	if err != nil {
		t.Fatalf("ForStudent: %v", err)
	}
	if !containsAll(text, "Question: How is Aisha doing?", "Learner: Aisha", "- Sessions: 3", "student_name") {
		t.Fatalf("grounding missing expected sections:\n%s", text)
	}
	if !strings.Contains(text, "- Lowest concept: debugging") {
		t.Fatalf("grounding missing lowest concept:\n%s", text)
	}
}

func TestForStudentGroundingUnknown(t *testing.T) {
	t.Parallel()
	g := newGrounding(t)

	text, err := g.ForStudent("How is Nobody doing?", "Nobody")
	if err != nil {
		t.Fatalf("ForStudent: %v", err)
	}
	if !strings.Contains(text, "No data found for learner 'Nobody'.") {
		t.Fatalf("missing no-data line:\n%s", text)
	}
	// No snapshot section for an empty subset.
	if strings.Contains(text, "student_name,") {
		t.Fatalf("unexpected CSV snapshot for unknown learner:\n%s", text)
	}
}

func TestForComparisonGrounding(t *testing.T) {
	t.Parallel()
	g := newGrounding(t)

	text, err := g.ForComparison("Compare Aisha and Ben", "Aisha", "Ben")
	if err != nil {
		t.Fatalf("ForComparison: %v", err)
	}
	if !containsAll(text, "Learner: Aisha", "Learner: Ben", "Delta avg score (A - B):") {
		t.Fatalf("comparison grounding missing sections:\n%s", text)
	}
}

func TestForRankingGrounding(t *testing.T) {
	t.Parallel()
	g := newGrounding(t)

	text, err := g.ForRanking("Who are the top students?", "")
	if err != nil {
		t.Fatalf("ForRanking: %v", err)
	}
	if !strings.Contains(text, "Top 5 by average_score:") {
		t.Fatalf("missing top-5 header:\n%s", text)
	}
	if !strings.Contains(text, "- Zoe: 95.0") {
		t.Fatalf("missing best student line:\n%s", text)
	}
}

func TestForRankingGroundingFiltered(t *testing.T) {
	t.Parallel()
	g := newGrounding(t)

	text, err := g.ForRanking("Who are the top 3 students in class 4B for loops in the last 1 week?", "4B")
	if err != nil {
		t.Fatalf("ForRanking: %v", err)
	}
	// The 4B loops subset in the last week is Aisha's week-42 session only.
	if !strings.Contains(text, "- Aisha: 90.0") {
		t.Fatalf("missing filtered leader line:\n%s", text)
	}
	for _, outsider := range []string{"Zoe", "Adam", "Leo", "Ben"} {
		if strings.Contains(text, outsider) {
			t.Fatalf("grounding leaked %s, who is outside the filtered subset:\n%s", outsider, text)
		}
	}
}

func TestForGeneralGrounding(t *testing.T) {
	t.Parallel()
	g := newGrounding(t)

	text, err := g.ForGeneral("How is everyone doing overall?")
	if err != nil {
		t.Fatalf("ForGeneral: %v", err)
	}
	if !containsAll(text, "Overall dataset", "- Students: 5 | Sessions: 8", "- Lowest concept:", "- Strongest concept:") {
		t.Fatalf("general grounding missing sections:\n%s", text)
	}
}

func TestForClassGrounding(t *testing.T) {
	t.Parallel()
	g := newGrounding(t)

	text, err := g.ForClass("How is class 4B?", "4B")
	if err != nil {
		t.Fatalf("ForClass: %v", err)
	}
	if !containsAll(text, "Class: 4B", "- Learners: 2 | Sessions: 5") {
		t.Fatalf("class grounding missing sections:\n%s", text)
	}
}

func TestCSVTailRespectsLimit(t *testing.T) {
	t.Parallel()
	svc := newAnalytics(t)

	table, err := svc.Dataset.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	text := csvTail(table, 2)
	lines := strings.Split(text, "\n")
	if len(lines) != 3 { // header + 2 rows
		t.Fatalf("csvTail lines = %d, want 3:\n%s", len(lines), text)
	}
	// The tail keeps the newest rows.
	if !strings.Contains(lines[2], "Leo") {
		t.Fatalf("last row = %q, want the final dataset row", lines[2])
	}
}
