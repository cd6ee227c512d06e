package service

import (
	"reflect"
	"testing"
)

func newIntent(t *testing.T) *IntentService {
	t.Helper()
	return NewIntentService(writeDataset(t, fixtureCSV))
}

func TestClassifyPriorities(t *testing.T) {
	t.Parallel()
	svc := newIntent(t)

	tests := []struct {
		message string
		want    Intent
	}{
		{"Compare Aisha and Ben", IntentCompare},
		{"Aisha vs Ben, who is ahead?", IntentCompare},
		{"Who are the top students?", IntentRanking},
		{"Compare the highest scores", IntentRanking}, // compare keyword but <2 names
		{"How are Aisha, Ben and Zoe doing?", IntentMulti},
		{"How is Aisha doing?", IntentStudent},
		{"How is class 4B trending?", IntentClass},
		{"What can you help me with?", IntentGeneral},
	}
	for _, tt := range tests {
		got, err := svc.Classify(tt.message)
		if err != nil {
			t.Fatalf("Classify(%q): %v", tt.message, err)
		}
		if got.Intent != tt.want {
			t.Fatalf("Classify(%q) = %s, want %s", tt.message, got.Intent, tt.want)
		}
	}
}

func TestDetectEntitiesOrder(t *testing.T) {
	t.Parallel()
	svc := newIntent(t)

	students, classID, err := svc.DetectEntities("Is Ben ahead of Aisha in class 4B?")
	if err != nil {
		t.Fatalf("DetectEntities: %v", err)
	}
	if want := []string{"Ben", "Aisha"}; !reflect.DeepEqual(students, want) {
		t.Fatalf("students = %v, want %v (message order)", students, want)
	}
	if classID != "4B" {
		t.Fatalf("classID = %q, want 4B", classID)
	}
}

func TestResolveName(t *testing.T) {
	t.Parallel()
	svc := newIntent(t)

	tests := []struct {
		in   string
		want string
	}{
		{"Aisha", "Aisha"},
		{"aisha", "Aisha"},
		{"Aishaa", "Aisha"}, // similarity 5/6
		{"Bon", ""},         // similarity 2/3, below the resolve cutoff
		{"Xqzw", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := svc.ResolveName(tt.in)
		if err != nil {
			t.Fatalf("ResolveName(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ResolveName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()
	svc := newIntent(t)

	got, err := svc.Suggest("Aishaa", 3)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(got) == 0 || got[0] != "Aisha" {
		t.Fatalf("Suggest(Aishaa) = %v, want Aisha first", got)
	}

	// The looser suggestion cutoff accepts names the resolver rejects.
	got, err = svc.Suggest("Bon", 3)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(got) == 0 || got[0] != "Ben" {
		t.Fatalf("Suggest(Bon) = %v, want Ben", got)
	}

	got, err = svc.Suggest("Qqqqqq", 3)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Suggest(Qqqqqq) = %v, want none", got)
	}
}

func TestRefreshVocabulariesPicksUpReload(t *testing.T) {
	t.Parallel()
	dataset := writeDataset(t, fixtureCSV)
	svc := NewIntentService(dataset)

	students, _, err := svc.Vocabularies()
	if err != nil {
		t.Fatalf("Vocabularies: %v", err)
	}
	if len(students) != 5 {
		t.Fatalf("students = %d, want 5", len(students))
	}

	// Vocabularies are stable until an explicit refresh.
	if err := svc.RefreshVocabularies(); err != nil {
		t.Fatalf("RefreshVocabularies: %v", err)
	}
	students, _, err = svc.Vocabularies()
	if err != nil {
		t.Fatalf("Vocabularies: %v", err)
	}
	if len(students) != 5 {
		t.Fatalf("students after refresh = %d, want 5", len(students))
	}
}

func TestSimilarity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
		want float64
	}{
		{"aisha", "aisha", 1},
		{"Aisha", "aisha", 1},
		{"abc", "abd", 1 - 1.0/3},
	}
	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); !almostEqual(got, tt.want) {
			t.Fatalf("similarity(%q, %q) = %.4f, want %.4f", tt.a, tt.b, got, tt.want)
		}
	}
}
