package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kuweni/kuweni-ai/internal/gen"
)

// ErrBusy means a send is already pending on the session. The UI disables
// the send control while pending; this is the enforced server-side version.
var ErrBusy = errors.New("a message is already pending for this session")

// TextGenerator is what the service needs from the text adapter.
type TextGenerator interface {
	Generate(ctx context.Context, message, model string) (*gen.TextResult, error)
}

// Service orchestrates a send: optimistic user append, upstream call, then
// either the assistant reply or an in-transcript error entry. Upstream
// failures never roll the user message back.
type Service struct {
	store *Store
	text  TextGenerator

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewService(store *Store, text TextGenerator) *Service {
	return &Service{
		store:    store,
		text:     text,
		inflight: make(map[string]struct{}),
	}
}

func (s *Service) Store() *Store { return s.store }

type SendResult struct {
	Reply     string
	Model     string
	UserMsg   *Message
	Assistant *Message
}

func (s *Service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[sessionID]; busy {
		return false
	}
	s.inflight[sessionID] = struct{}{}
	return true
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	delete(s.inflight, sessionID)
	s.mu.Unlock()
}

// SendMessage runs the full conversational turn against one session.
func (s *Service) SendMessage(ctx context.Context, sessionID, content, model string) (*SendResult, error) {
	// Rejected input must leave the transcript untouched, so validation runs
	// before the optimistic append.
	if err := (gen.TextRequest{Message: content, Model: model}).Validate(); err != nil {
		return nil, err
	}

	if !s.acquire(sessionID) {
		return nil, ErrBusy
	}
	defer s.release(sessionID)

	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// Token captured before the upstream call: if the transcript is edited or
	// the session deleted while we wait, the late reply is dropped.
	token := sess.Generation

	userMsg, err := s.store.AppendMessage(ctx, sessionID, RoleUser, content)
	if err != nil {
		return nil, err
	}

	res, genErr := s.text.Generate(ctx, content, model)
	if genErr != nil {
		summary := fmt.Sprintf("Sorry, I encountered an error: %v. Please try again.", genErr)
		assistant, appendErr := s.store.AppendIfCurrent(ctx, sessionID, token, RoleAssistant, summary)
		if appendErr != nil && !errors.Is(appendErr, ErrStale) {
			slog.Error("recording chat failure in transcript", "session_id", sessionID, "err", appendErr)
		}
		return &SendResult{UserMsg: userMsg, Assistant: assistant}, genErr
	}

	assistant, err := s.store.AppendIfCurrent(ctx, sessionID, token, RoleAssistant, res.Response)
	if err != nil {
		if errors.Is(err, ErrStale) {
			slog.Info("dropping stale assistant reply", "session_id", sessionID)
			return &SendResult{Reply: res.Response, Model: res.Model, UserMsg: userMsg}, nil
		}
		return nil, err
	}

	return &SendResult{
		Reply:     res.Response,
		Model:     res.Model,
		UserMsg:   userMsg,
		Assistant: assistant,
	}, nil
}
