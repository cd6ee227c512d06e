package service

import (
	"context"
	"sync"

	"learnpulse_backend/internal/model"
	"learnpulse_backend/internal/util"
	"learnpulse_backend/pkg/logger"
	"learnpulse_backend/pkg/monitoring"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"
)

// SessionStore is the durable per-conversation state store.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*model.Session, error)
	Set(ctx context.Context, session *model.Session) error
}

// ChatModel is the grounded LLM transport.
type ChatModel interface {
	ChatWithMemory(ctx context.Context, sessionID, message, grounding, contextType string) (string, error)
}

// AssistantService orchestrates one chat turn: session load, dissatisfaction
// tracking, escalation, intent classification, entity binding, grounding,
// the LLM call, and the state write-back.
type AssistantService struct {
	Sessions  SessionStore
	Intent    *IntentService
	Grounding *GroundingService
	Support   *SupportService
	Model     ChatModel

	// locks serializes turns within one session; concurrent turns for the
	// same id would race on the read-modify-write of session state.
	locks sync.Map // sessionID -> *sync.Mutex
}

func NewAssistantService(sessions SessionStore, intent *IntentService, grounding *GroundingService, support *SupportService, chatModel ChatModel) *AssistantService {
	return &AssistantService{
		Sessions:  sessions,
		Intent:    intent,
		Grounding: grounding,
		Support:   support,
		Model:     chatModel,
	}
}

func (s *AssistantService) lockSession(sessionID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Chat runs one conversational turn. requester may be nil for demo sessions.
func (s *AssistantService) Chat(ctx context.Context, req model.ChatRequest, requester *model.User) (*model.ChatResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	mu := s.lockSession(sessionID)
	mu.Lock()
	defer mu.Unlock()

	// A session-store outage degrades to a stateless turn rather than
	// failing the conversation outright.
	ephemeral := false
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		logger.Log.Error("Session store unavailable, running stateless turn",
			zap.String("session_id", sessionID),
			zap.Error(err))
		session = model.NewSession(sessionID)
		ephemeral = true
	}

	session.Append("user", req.Message)

	if s.Support.DetectDissatisfaction(req.Message) {
		session.DissatisfactionCount++
		logger.Log.Info("Dissatisfaction detected",
			zap.String("session_id", sessionID),
			zap.Int("count", session.DissatisfactionCount))
	}

	if s.Support.ShouldEscalate(session) {
		return s.escalate(ctx, session, requester, ephemeral)
	}

	// Classification and raw entity detection are independent reads over
	// the vocabulary; run them together.
	var (
		classified       Classification
		detectedStudents []string
		detectedClass    string
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		classified, err = s.Intent.Classify(req.Message)
		return err
	})
	g.Go(func() error {
		var err error
		detectedStudents, detectedClass, err = s.Intent.DetectEntities(req.Message)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	binding, err := s.bind(req, session, classified, detectedStudents, detectedClass)
	if err != nil {
		return nil, err
	}

	grounding, err := s.prepareGrounding(req.Message, binding)
	if err != nil {
		return nil, err
	}

	reply, err := s.Model.ChatWithMemory(ctx, sessionID, req.Message, grounding, binding.contextType)
	if err != nil {
		return nil, err
	}
	reply = util.SanitizeText(reply)

	session.Append("assistant", reply)
	s.applyBinding(session, binding)

	if err := s.persist(ctx, session, ephemeral); err != nil {
		return nil, err
	}

	monitoring.ChatTurnCounter.WithLabelValues(binding.contextType).Inc()

	return &model.ChatResponse{
		SessionID: sessionID,
		Reply:     reply,
		Escalated: session.Escalated,
	}, nil
}

// escalate raises a ticket and answers the turn with the escalation message.
// The session is marked escalated even when ticket creation fails, so one
// conversation never raises two tickets.
func (s *AssistantService) escalate(ctx context.Context, session *model.Session, requester *model.User, ephemeral bool) (*model.ChatResponse, error) {
	issueSummary := "Instructor dissatisfaction after repeated signals"
	logger.Log.Warn("Escalation threshold reached",
		zap.String("session_id", session.SessionID),
		zap.Int("count", session.DissatisfactionCount))

	ticket, err := s.Support.CreateTicket(ctx, session, requester, issueSummary)
	created := err == nil
	if err != nil {
		monitoring.EscalationCounter.WithLabelValues("failed").Inc()
		logger.Log.Error("Support ticket creation failed",
			zap.String("session_id", session.SessionID),
			zap.Error(err))
	}

	session.Escalated = true

	var reply string
	if created {
		reply = "I understand this isn't meeting your needs. I've connected you with our support team " +
			"who will provide more personalized assistance. Your ticket ID is: " + ticket.ID + ". " +
			"They'll reach out to you shortly at your registered email address."
	} else {
		reply = "I understand this isn't meeting your needs. I've attempted to connect you with our support team, " +
			"but encountered a technical issue. Please contact the support team directly and reference your " +
			"session for faster assistance."
	}

	session.Append("assistant", reply)

	// The escalation answer must reach the instructor even when the state
	// write fails; losing the count is recoverable, losing the reply is not.
	if err := s.persist(ctx, session, ephemeral); err != nil {
		logger.Log.Error("Failed to persist escalated session",
			zap.String("session_id", session.SessionID),
			zap.Error(err))
	}

	resp := &model.ChatResponse{
		SessionID:     session.SessionID,
		Reply:         reply,
		Escalated:     true,
		TicketCreated: created,
	}
	if created {
		resp.TicketID = &ticket.ID
	}
	return resp, nil
}

// binding is the resolved conversational focus for one turn.
type binding struct {
	contextType   string
	scope         model.Scope
	student       string
	classID       string
	comparePair   []string
	multiStudents []string
}

// bind decides the turn's focus. Priority: an explicit request field beats
// the classifier, the classifier beats raw detection, detection beats the
// carried-forward session scope, and with nothing else the turn is general.
func (s *AssistantService) bind(req model.ChatRequest, session *model.Session, classified Classification, detectedStudents []string, detectedClass string) (binding, error) {
	resolved := make([]string, 0, len(classified.Students))
	for _, name := range classified.Students {
		canonical, err := s.Intent.ResolveName(name)
		if err != nil {
			return binding{}, err
		}
		if canonical != "" {
			resolved = append(resolved, canonical)
		}
	}

	classID := req.ClassID
	if classID == "" {
		classID = classified.ClassID
	}
	if classID == "" {
		classID = detectedClass
	}
	// A stored class only carries forward while the conversation is still
	// class-scoped; a stale binding from an older turn must not resurface.
	if classID == "" && session.Scope == model.ScopeClass {
		classID = session.ClassID
	}

	var b binding
	b.classID = classID

	explicitStudent := ""
	if req.Student != "" {
		canonical, err := s.Intent.ResolveName(req.Student)
		if err != nil {
			return binding{}, err
		}
		if canonical != "" {
			explicitStudent = canonical
		} else {
			explicitStudent = req.Student
		}
	}

	switch {
	case explicitStudent != "":
		b.student = explicitStudent
	case classified.Intent == IntentCompare && len(resolved) >= 2:
		b.comparePair = []string{resolved[0], resolved[1]}
	case classified.Intent == IntentRanking:
		// Ranking is entity-free; handled by context type below.
	case classified.Intent == IntentMulti && len(resolved) >= 2:
		if len(resolved) > model.MaxMultiStudents {
			resolved = resolved[:model.MaxMultiStudents]
		}
		b.multiStudents = resolved
	case classified.Intent == IntentStudent && len(resolved) >= 1:
		b.student = resolved[0]
	case len(detectedStudents) > 0:
		b.student = detectedStudents[0]
	default:
		// Follow-up turn with no entity: reuse the previous focus.
		if session.Scope == model.ScopeStudent {
			b.student = session.Student
		} else if session.Scope == model.ScopeClass {
			b.classID = session.ClassID
		}
	}

	switch {
	case classified.Intent == IntentRanking && b.student == "":
		b.contextType = "ranking"
		b.scope = model.ScopeGeneral
	case len(b.comparePair) == 2:
		b.contextType = "compare"
		b.scope = model.ScopeCompare
	case len(b.multiStudents) > 0:
		b.contextType = "multi"
		b.scope = model.ScopeMulti
	case b.student != "":
		b.contextType = "student"
		b.scope = model.ScopeStudent
	case b.classID != "":
		b.contextType = "class"
		b.scope = model.ScopeClass
	default:
		b.contextType = "general"
		b.scope = model.ScopeGeneral
	}

	return b, nil
}

func (s *AssistantService) prepareGrounding(question string, b binding) (string, error) {
	switch b.contextType {
	case "compare":
		return s.Grounding.ForComparison(question, b.comparePair[0], b.comparePair[1])
	case "multi":
		return s.Grounding.ForMulti(question, b.multiStudents)
	case "student":
		return s.Grounding.ForStudent(question, b.student)
	case "class":
		return s.Grounding.ForClass(question, b.classID)
	case "ranking":
		return s.Grounding.ForRanking(question, b.classID)
	default:
		return s.Grounding.ForGeneral(question)
	}
}

// applyBinding writes the turn's focus back into the session. Student and
// class carry forward across turns; compare and multi bindings only describe
// the current turn and are cleared otherwise.
func (s *AssistantService) applyBinding(session *model.Session, b binding) {
	session.Scope = b.scope
	if b.scope == model.ScopeStudent {
		session.Student = b.student
	}
	if b.scope == model.ScopeClass {
		session.ClassID = b.classID
	}
	session.ComparePair = b.comparePair
	session.MultiStudents = b.multiStudents
}

func (s *AssistantService) persist(ctx context.Context, session *model.Session, ephemeral bool) error {
	if ephemeral {
		logger.Log.Warn("Skipping session persist, store unavailable",
			zap.String("session_id", session.SessionID))
		return nil
	}
	if err := s.Sessions.Set(ctx, session); err != nil {
		logger.Log.Error("Failed to persist session",
			zap.String("session_id", session.SessionID),
			zap.Error(err))
		return util.ErrSessionSaveFailed
	}
	return nil
}
