package form

import (
	"context"

	"github.com/google/uuid"
)

type GateState int

const (
	Locked GateState = iota
	PromptingForKey
	Unlocked
)

func (s GateState) String() string {
	switch s {
	case Locked:
		return "locked"
	case PromptingForKey:
		return "prompting_for_key"
	case Unlocked:
		return "unlocked"
	}
	return "unknown"
}

func (s GateState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Verifier checks a candidate master key remotely and answers only yes or no.
type Verifier interface {
	Verify(ctx context.Context, candidate string) (bool, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, candidate string) (bool, error)

func (f VerifierFunc) Verify(ctx context.Context, candidate string) (bool, error) {
	return f(ctx, candidate)
}

// Gate guards stock changes behind the master key. It is not safe for
// concurrent use; the owning Session serializes access.
type Gate struct {
	state    GateState
	entered  string
	verifier Verifier
}

func NewGate(v Verifier) *Gate {
	return &Gate{state: Locked, verifier: v}
}

func (g *Gate) State() GateState { return g.state }

// Entered is the key typed so far; always empty outside PromptingForKey.
func (g *Gate) Entered() string { return g.entered }

// RequestUnlock opens the key prompt. It does nothing once unlocked or while
// already prompting.
func (g *Gate) RequestUnlock() {
	if g.state == Locked {
		g.state = PromptingForKey
		g.entered = ""
	}
}

// Enter records the candidate key while the prompt is open.
func (g *Gate) Enter(key string) error {
	if g.state != PromptingForKey {
		return ErrNotPrompting
	}
	g.entered = key
	return nil
}

// Submit verifies the entered key. A match unlocks the gate for the rest of
// the session; a mismatch or a failed check relocks it and clears the key.
func (g *Gate) Submit(ctx context.Context) error {
	if g.state != PromptingForKey {
		return ErrNotPrompting
	}
	candidate := g.entered
	g.entered = ""

	ok, err := g.verifier.Verify(ctx, candidate)
	if err != nil {
		g.state = Locked
		return &AuthorizationError{Reason: "could not verify master key", Err: err}
	}
	if !ok {
		g.state = Locked
		return &AuthorizationError{Reason: "master key is incorrect"}
	}
	g.state = Unlocked
	return nil
}

// NeedsStockKey reports whether saving stock requires the gate: a new record
// with stock, or an existing one whose stock differs from the snapshot read at
// load time.
func NeedsStockKey(recordID *uuid.UUID, stock int, originalStock *int) bool {
	if recordID == nil {
		return stock > 0
	}
	if originalStock == nil {
		return true
	}
	return stock != *originalStock
}
