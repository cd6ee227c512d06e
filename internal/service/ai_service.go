package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"learnpulse_backend/internal/config"
	"learnpulse_backend/internal/util"
	"learnpulse_backend/pkg/logger"

	"go.uber.org/zap"
)

// aiMemoryWindow caps the in-process message memory sent per session.
const aiMemoryWindow = 40

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AIService talks to an OpenAI-compatible chat completions endpoint and
// keeps a rolling per-session message memory so follow-up turns carry their
// own context. Memory is process-local; the durable history lives in the
// session store.
type AIService struct {
	config config.AIConfig
	client *http.Client

	mu       sync.Mutex
	sessions map[string][]AIChatMessage
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config:   cfg,
		client:   &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		sessions: make(map[string][]AIChatMessage),
	}
}

// ChatWithMemory sends one turn for a session. The grounding block, when
// present, is appended to the user message under a typed label so the model
// can tell data context from the instructor's words. Any transport or API
// failure maps to ErrAssistantUnavailable; the turn is never silently
// answered from stale state.
func (s *AIService) ChatWithMemory(ctx context.Context, sessionID, message, grounding, contextType string) (string, error) {
	userMessage := message
	if grounding != "" {
		label := "[DATA CONTEXT]"
		if contextType != "" {
			label = "[DATA CONTEXT: " + strings.ToUpper(contextType) + "]"
		}
		userMessage += "\n\n" + label + "\n" + grounding
	}

	s.mu.Lock()
	history := append([]AIChatMessage(nil), s.sessions[sessionID]...)
	s.mu.Unlock()

	messages := make([]AIChatMessage, 0, len(history)+2)
	messages = append(messages, AIChatMessage{Role: "system", Content: systemInstruction})
	messages = append(messages, history...)
	messages = append(messages, AIChatMessage{Role: "user", Content: userMessage})

	reply, err := s.complete(ctx, messages)
	if err != nil {
		logger.Log.Error("AI completion failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return "", util.ErrAssistantUnavailable
	}

	s.mu.Lock()
	mem := append(s.sessions[sessionID],
		AIChatMessage{Role: "user", Content: userMessage},
		AIChatMessage{Role: "assistant", Content: reply})
	if n := len(mem); n > aiMemoryWindow {
		mem = mem[n-aiMemoryWindow:]
	}
	s.sessions[sessionID] = mem
	s.mu.Unlock()

	return reply, nil
}

// ForgetSession drops the in-process memory for a session.
func (s *AIService) ForgetSession(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func (s *AIService) complete(ctx context.Context, messages []AIChatMessage) (string, error) {
	reqBody := ChatCompletionRequest{
		Model:    s.config.Model,
		Messages: messages,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}
