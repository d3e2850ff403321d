package service

import (
	"context"
	"errors"

	"go-pos-inventory/internal/form"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
)

var ErrTooManyAttempts = errors.New("too many master key attempts, try again later")

// StockKeyService checks candidates against the stored master key hash. The
// key itself is never returned.
type StockKeyService interface {
	Verify(ctx context.Context, actorID, candidate string) (bool, error)
	VerifierFor(actor model.Actor) form.Verifier
}

type stockKeyService struct {
	secrets repository.SecretRepository
	limiter *AttemptLimiter
}

func NewStockKeyService(secrets repository.SecretRepository, limiter *AttemptLimiter) StockKeyService {
	return &stockKeyService{secrets: secrets, limiter: limiter}
}

func (s *stockKeyService) Verify(ctx context.Context, actorID, candidate string) (bool, error) {
	if s.limiter.Blocked(ctx, actorID) {
		return false, ErrTooManyAttempts
	}

	ok, err := s.secrets.Verify(ctx, model.StockMasterKey, candidate)
	if err != nil {
		return false, err
	}
	if !ok {
		s.limiter.Fail(ctx, actorID)
		return false, nil
	}
	s.limiter.Reset(ctx, actorID)
	return true, nil
}

// VerifierFor binds the attempt counter to one actor so a form gate can use it.
func (s *stockKeyService) VerifierFor(actor model.Actor) form.Verifier {
	return form.VerifierFunc(func(ctx context.Context, candidate string) (bool, error) {
		return s.Verify(ctx, actor.ID, candidate)
	})
}
