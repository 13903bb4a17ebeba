package chat

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Transaction runs fn against a transactional Repo.
func (r *Repo) Transaction(ctx context.Context, fn func(tx *Repo) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{db: tx})
	})
}

func (r *Repo) CreateSession(ctx context.Context, s *Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repo) GetSession(ctx context.Context, id string) (*Session, error) {
	var s Session
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions returns sessions newest-first. ULIDs sort by creation time,
// so id DESC is creation order reversed.
func (r *Repo) ListSessions(ctx context.Context) ([]Session, error) {
	var out []Session
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) UpdateTitle(ctx context.Context, sessionID, title string) error {
	return r.db.WithContext(ctx).Model(&Session{}).
		Where("id = ?", sessionID).
		Update("title", title).Error
}

func (r *Repo) BumpGeneration(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Model(&Session{}).
		Where("id = ?", sessionID).
		Update("generation", gorm.Expr("generation + 1")).Error
}

func (r *Repo) DeleteSession(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", id).
		Delete(&Message{}).Error; err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Delete(&Session{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *Repo) GetMessage(ctx context.Context, sessionID, messageID string) (*Message, error) {
	var m Message
	if err := r.db.WithContext(ctx).
		First(&m, "id = ? AND session_id = ?", messageID, sessionID).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) DeleteMessage(ctx context.Context, sessionID, messageID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND session_id = ?", messageID, sessionID).
		Delete(&Message{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListMessages returns the session's messages in conversation order.
func (r *Repo) ListMessages(ctx context.Context, sessionID string) ([]Message, error) {
	var out []Message
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CountMessages(ctx context.Context, sessionID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Message{}).
		Where("session_id = ?", sessionID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
