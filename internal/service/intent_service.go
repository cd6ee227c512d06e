package service

import (
	"sort"
	"strings"
	"sync"

	"learnpulse_backend/internal/repository"
	"learnpulse_backend/pkg/logger"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"
)

// Intent is the heuristic classification of a chat message.
type Intent string

const (
	IntentStudent Intent = "student_query"
	IntentClass   Intent = "class_query"
	IntentCompare Intent = "compare_query"
	IntentMulti   Intent = "multi_student_query"
	IntentRanking Intent = "ranking_query"
	IntentGeneral Intent = "general_query"
)

var compareKeywords = []string{"compare", "vs", "versus", "difference between"}
var rankingKeywords = []string{"rank", "top", "best", "worst", "lowest", "highest"}

// Classification is a classified message plus the entities it mentions.
type Classification struct {
	Intent   Intent
	Students []string // canonical names, capped at 5, message order
	ClassID  string
}

// IntentService classifies messages with keyword heuristics and resolves
// entity mentions against the dataset vocabularies. Vocabularies load lazily
// and only change on an explicit refresh.
type IntentService struct {
	Dataset *repository.DatasetRepository

	mu       sync.RWMutex
	loaded   bool
	students []string // canonical casing, dataset order
	classes  []string
}

func NewIntentService(dataset *repository.DatasetRepository) *IntentService {
	return &IntentService{Dataset: dataset}
}

func (s *IntentService) ensureVocab() error {
	s.mu.RLock()
	if s.loaded {
		s.mu.RUnlock()
		return nil
	}
	s.mu.RUnlock()
	return s.RefreshVocabularies()
}

// RefreshVocabularies re-reads the known student and class lists from the
// dataset. Called after an admin dataset reload.
func (s *IntentService) RefreshVocabularies() error {
	students, err := s.Dataset.ListStudents()
	if err != nil {
		return err
	}
	classes, err := s.Dataset.ListClasses()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.students = students
	s.classes = classes
	s.loaded = true
	s.mu.Unlock()

	logger.Log.Info("Entity vocabularies refreshed",
		zap.Int("students", len(students)),
		zap.Int("classes", len(classes)))
	return nil
}

// Vocabularies returns the current student and class lists.
func (s *IntentService) Vocabularies() ([]string, []string, error) {
	if err := s.ensureVocab(); err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.students...), append([]string(nil), s.classes...), nil
}

// DetectEntities finds known students (ordered by first position in the
// message) and the first known class mentioned, all case-insensitively.
func (s *IntentService) DetectEntities(message string) ([]string, string, error) {
	if err := s.ensureVocab(); err != nil {
		return nil, "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(message)

	type hit struct {
		name string
		pos  int
	}
	var hits []hit
	for _, name := range s.students {
		if name == "" {
			continue
		}
		if pos := strings.Index(lower, strings.ToLower(name)); pos != -1 {
			hits = append(hits, hit{name: name, pos: pos})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	students := make([]string, 0, len(hits))
	for _, h := range hits {
		students = append(students, h.name)
	}

	classID := ""
	for _, cid := range s.classes {
		if cid != "" && strings.Contains(lower, strings.ToLower(cid)) {
			classID = cid
			break
		}
	}

	return students, classID, nil
}

// Classify applies the keyword heuristics in fixed priority order:
// compare (keyword plus two mentions), ranking, multi (three or more
// mentions), student, class, general.
func (s *IntentService) Classify(message string) (Classification, error) {
	students, classID, err := s.DetectEntities(message)
	if err != nil {
		return Classification{}, err
	}

	lower := strings.ToLower(message)
	isCompare := containsAny(lower, compareKeywords)
	isRanking := containsAny(lower, rankingKeywords)

	var intent Intent
	switch {
	case isCompare && len(students) >= 2:
		intent = IntentCompare
	case isRanking:
		intent = IntentRanking
	case len(students) >= 3:
		intent = IntentMulti
	case len(students) >= 1:
		intent = IntentStudent
	case classID != "":
		intent = IntentClass
	default:
		intent = IntentGeneral
	}

	if len(students) > 5 {
		students = students[:5]
	}

	return Classification{Intent: intent, Students: students, ClassID: classID}, nil
}

// ResolveName maps a possibly misspelled name onto the vocabulary. Exact
// case-insensitive matches win; otherwise the best fuzzy candidate at
// similarity >= 0.8 is returned. "" means unresolvable.
func (s *IntentService) ResolveName(name string) (string, error) {
	if err := s.ensureVocab(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	for _, known := range s.students {
		if strings.EqualFold(known, name) {
			return known, nil
		}
	}

	best, score := "", 0.0
	for _, known := range s.students {
		if sim := similarity(name, known); sim > score {
			best, score = known, sim
		}
	}
	if score >= 0.8 {
		return best, nil
	}
	return "", nil
}

// Suggest returns up to n vocabulary names similar to the input at the
// looser 0.6 cutoff, best first. Used for "did you mean" hints.
func (s *IntentService) Suggest(name string, n int) ([]string, error) {
	if err := s.ensureVocab(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" || n <= 0 {
		return nil, nil
	}

	type candidate struct {
		name  string
		score float64
	}
	var cands []candidate
	for _, known := range s.students {
		if sim := similarity(name, known); sim >= 0.6 {
			cands = append(cands, candidate{name: known, score: sim})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })

	out := make([]string, 0, n)
	for _, c := range cands {
		out = append(out, c.name)
		if len(out) == n {
			break
		}
	}
	return out, nil
}

// similarity is 1 - editDistance/maxLen over lowercased inputs.
func similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
