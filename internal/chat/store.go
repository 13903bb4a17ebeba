package chat

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/kuweni/kuweni-ai/internal/common"
)

// ErrStale means the session's transcript changed (or the session was
// deleted) after the request captured its generation token; the write is
// dropped rather than applied to state the user no longer sees.
var ErrStale = errors.New("session changed since request started")

// Store owns the session collection and the current-session pointer. All
// transcript mutations commit atomically with their derived title updates.
type Store struct {
	repo *Repo

	mu      sync.Mutex
	current string
}

func NewStore(repo *Repo) *Store {
	return &Store{repo: repo}
}

// CreateSession inserts an empty session with the default title and makes it
// current.
func (s *Store) CreateSession(ctx context.Context) (*Session, error) {
	id, err := common.NewULID()
	if err != nil {
		return nil, err
	}
	sess := &Session{ID: id, Title: DefaultTitle}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = sess.ID
	s.mu.Unlock()
	return sess, nil
}

// SelectSession makes the session current. Unknown ids are ignored.
func (s *Store) SelectSession(ctx context.Context, id string) error {
	if _, err := s.repo.GetSession(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	s.mu.Lock()
	s.current = id
	s.mu.Unlock()
	return nil
}

// Current returns the selected session id, or "" when none is selected.
func (s *Store) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	return s.repo.GetSession(ctx, id)
}

func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	return s.repo.ListSessions(ctx)
}

func (s *Store) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	if _, err := s.repo.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, sessionID)
}

// AppendMessage appends to the session's transcript. The first message also
// derives the session title; both writes land in one transaction.
func (s *Store) AppendMessage(ctx context.Context, sessionID, role, content string) (*Message, error) {
	id, err := common.NewULID()
	if err != nil {
		return nil, err
	}
	msg := &Message{ID: id, SessionID: sessionID, Role: role, Content: content}

	err = s.repo.Transaction(ctx, func(tx *Repo) error {
		if _, err := tx.GetSession(ctx, sessionID); err != nil {
			return err
		}
		n, err := tx.CountMessages(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := tx.InsertMessage(ctx, msg); err != nil {
			return err
		}
		if n == 0 {
			return tx.UpdateTitle(ctx, sessionID, deriveTitle(content))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// AppendIfCurrent appends only when the session still exists and its
// generation token matches the one captured when the request started.
func (s *Store) AppendIfCurrent(ctx context.Context, sessionID string, generation uint64, role, content string) (*Message, error) {
	id, err := common.NewULID()
	if err != nil {
		return nil, err
	}
	msg := &Message{ID: id, SessionID: sessionID, Role: role, Content: content}

	err = s.repo.Transaction(ctx, func(tx *Repo) error {
		sess, err := tx.GetSession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStale
			}
			return err
		}
		if sess.Generation != generation {
			return ErrStale
		}
		n, err := tx.CountMessages(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := tx.InsertMessage(ctx, msg); err != nil {
			return err
		}
		if n == 0 {
			return tx.UpdateTitle(ctx, sessionID, deriveTitle(content))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// DeleteMessage removes a message; deleting the last one resets the title.
// Either way the transcript changed, so the generation token is bumped.
func (s *Store) DeleteMessage(ctx context.Context, sessionID, messageID string) error {
	return s.repo.Transaction(ctx, func(tx *Repo) error {
		if err := tx.DeleteMessage(ctx, sessionID, messageID); err != nil {
			return err
		}
		n, err := tx.CountMessages(ctx, sessionID)
		if err != nil {
			return err
		}
		if n == 0 {
			if err := tx.UpdateTitle(ctx, sessionID, DefaultTitle); err != nil {
				return err
			}
		}
		return tx.BumpGeneration(ctx, sessionID)
	})
}

// DeleteSession removes the session and its messages. When the deleted
// session was current, the newest remaining session becomes current (or
// none). The mutex is held across the delete so readers never observe the
// pointer at the deleted id.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var successor string
	if s.current == id {
		sessions, err := s.repo.ListSessions(ctx)
		if err != nil {
			return err
		}
		for _, sess := range sessions {
			if sess.ID != id {
				successor = sess.ID
				break
			}
		}
	}

	err := s.repo.Transaction(ctx, func(tx *Repo) error {
		return tx.DeleteSession(ctx, id)
	})
	if err != nil {
		return err
	}

	if s.current == id {
		s.current = successor
	}
	return nil
}
