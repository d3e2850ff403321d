package form

import (
	"errors"
	"time"
)

// DefaultNoticeTTL is how long a validation message stays visible.
const DefaultNoticeTTL = 4 * time.Second

type NoticeKind string

const (
	NoticeValidation    NoticeKind = "validation"
	NoticeAuthorization NoticeKind = "authorization"
	NoticePersistence   NoticeKind = "persistence"
)

// Notice is the message the form shows. Validation notices expire on their
// own; the other kinds stay until dismissed or replaced.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	Field     string     `json:"field,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (n *Notice) expired(now time.Time) bool {
	return n.ExpiresAt != nil && !now.Before(*n.ExpiresAt)
}

func noticeFor(err error, now time.Time, ttl time.Duration) *Notice {
	var (
		ve *ValidationError
		ae *AuthorizationError
		pe *PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		exp := now.Add(ttl)
		return &Notice{Kind: NoticeValidation, Message: ve.Message, Field: ve.Field, ExpiresAt: &exp}
	case errors.As(err, &ae):
		return &Notice{Kind: NoticeAuthorization, Message: ae.Error()}
	case errors.As(err, &pe):
		return &Notice{Kind: NoticePersistence, Message: pe.Error()}
	}
	return nil
}
