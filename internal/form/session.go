package form

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go-pos-inventory/internal/flags"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

type FlagLoader interface {
	Load(ctx context.Context) flags.Flags
}

type SupplierLister interface {
	FindAll(ctx context.Context) ([]model.Supplier, error)
}

type ProductReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

type ProductSaver interface {
	SaveProduct(ctx context.Context, p *model.Product, actor model.Actor) (uuid.UUID, error)
}

// Dependencies are the collaborators a session talks to. Now and NoticeTTL
// are optional.
type Dependencies struct {
	Flags     FlagLoader
	Suppliers SupplierLister
	Products  ProductReader
	Saver     ProductSaver
	Verifier  Verifier
	Log       *logrus.Logger
	NoticeTTL time.Duration
	Now       func() time.Time
}

// Session is one product form, owned by one actor. Each session has its own
// flag snapshot, gate and draft; nothing is shared between sessions.
type Session struct {
	ID    uuid.UUID
	Actor model.Actor

	deps Dependencies

	mu            sync.Mutex
	mode          Mode
	flags         flags.Flags
	suppliers     []model.Supplier
	catalogErr    error
	recordID      *uuid.UUID
	originalStock *int
	draft         Draft
	gate          *Gate
	pending       *Draft
	notice        *Notice
	saved         bool

	lastUsed atomic.Int64
	closed   atomic.Bool
}

// View is a read-only copy of the session state for rendering.
type View struct {
	ID            uuid.UUID        `json:"id"`
	Mode          Mode             `json:"mode"`
	Flags         flags.Flags      `json:"flags"`
	Suppliers     []model.Supplier `json:"suppliers"`
	CatalogError  string           `json:"catalog_error,omitempty"`
	Draft         Draft            `json:"draft"`
	OriginalStock *int             `json:"original_stock,omitempty"`
	Gate          GateState        `json:"gate"`
	AwaitingKey   bool             `json:"awaiting_key"`
	Notice        *Notice          `json:"notice,omitempty"`
	Saved         bool             `json:"saved"`
}

// Open loads flags, the supplier catalog and, when productID is set, the
// record being edited. The loads run concurrently and Open returns once all
// of them have settled. Flag and catalog failures degrade; a failed product
// read fails the session.
func Open(ctx context.Context, deps Dependencies, actor model.Actor, productID *uuid.UUID) (*Session, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NoticeTTL <= 0 {
		deps.NoticeTTL = DefaultNoticeTTL
	}

	s := &Session{
		ID:    uuid.New(),
		Actor: actor,
		deps:  deps,
		mode:  ModeCreate,
		gate:  NewGate(deps.Verifier),
		draft: Draft{Unit: model.UnitPiece},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.flags = deps.Flags.Load(gctx)
		return nil
	})
	g.Go(func() error {
		list, err := deps.Suppliers.FindAll(gctx)
		if err != nil {
			logger.LogError(deps.Log, "form", "Open", "load supplier catalog", nil, err)
			s.catalogErr = err
			return nil
		}
		s.suppliers = list
		return nil
	})
	if productID != nil {
		id := *productID
		s.mode = ModeEdit
		g.Go(func() error {
			p, err := deps.Products.GetProduct(gctx, id)
			if err != nil {
				return fmt.Errorf("load product %s: %w", id, err)
			}
			s.draft = DraftFromProduct(p)
			s.recordID = s.draft.ID
			stock := p.Stock
			s.originalStock = &stock
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.touch()
	return s, nil
}

// Submit validates the draft and saves it, unless the stock change needs the
// master key and the gate is not unlocked yet. In that case the draft is kept
// as pending, the key prompt is opened and ErrStockKeyRequired is returned.
func (s *Session) Submit(ctx context.Context, d Draft) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return uuid.Nil, ErrSessionClosed
	}
	s.touch()

	// The session decides create vs update, never the client.
	d.ID = s.recordID
	s.draft = d
	// The key only ever authorizes the latest draft.
	s.pending = nil

	if err := Validate(d, s.flags); err != nil {
		s.notice = noticeFor(err, s.deps.Now(), s.deps.NoticeTTL)
		return uuid.Nil, err
	}
	if !s.knownSupplier(d.SupplierID) {
		err := invalid(RuleSupplierUnknown, "supplier_id", "supplier is not in the catalog")
		s.notice = noticeFor(err, s.deps.Now(), s.deps.NoticeTTL)
		return uuid.Nil, err
	}

	if NeedsStockKey(s.recordID, d.Stock, s.originalStock) && s.gate.State() != Unlocked {
		pending := d
		s.pending = &pending
		s.gate.RequestUnlock()
		return uuid.Nil, ErrStockKeyRequired
	}

	return s.save(ctx, d)
}

// RequestUnlock opens the master key prompt.
func (s *Session) RequestUnlock() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.touch()
	s.gate.RequestUnlock()
	return nil
}

// SubmitKey verifies the master key. When it unlocks the gate and a draft is
// pending, that draft is saved right after; the id is uuid.Nil when nothing
// was pending.
func (s *Session) SubmitKey(ctx context.Context, key string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return uuid.Nil, ErrSessionClosed
	}
	s.touch()

	if err := s.gate.Enter(key); err != nil {
		return uuid.Nil, err
	}
	if err := s.gate.Submit(ctx); err != nil {
		s.notice = noticeFor(err, s.deps.Now(), s.deps.NoticeTTL)
		s.deps.Log.WithFields(logrus.Fields{
			"session": s.ID,
			"actor":   s.Actor.ID,
		}).WithError(err).Warn("master key rejected")
		return uuid.Nil, err
	}
	s.notice = nil

	if s.pending == nil {
		return uuid.Nil, nil
	}
	d := *s.pending
	s.pending = nil
	return s.save(ctx, d)
}

// save issues exactly one write. Callers hold s.mu.
func (s *Session) save(ctx context.Context, d Draft) (uuid.UUID, error) {
	id, err := s.deps.Saver.SaveProduct(ctx, d.Product(), s.Actor)

	if s.closed.Load() {
		// Nobody is looking at this form any more.
		s.deps.Log.WithField("session", s.ID).Info("discarding save result for closed form session")
		if err != nil {
			return uuid.Nil, &PersistenceError{Err: err}
		}
		return id, nil
	}

	if err != nil {
		perr := &PersistenceError{Err: err}
		s.notice = noticeFor(perr, s.deps.Now(), s.deps.NoticeTTL)
		logger.LogError(s.deps.Log, "form", "save", "persist product", map[string]interface{}{
			"session": s.ID,
			"code":    d.Code,
		}, err)
		return uuid.Nil, perr
	}

	s.recordID = &id
	stock := d.Stock
	s.originalStock = &stock
	d.ID = s.recordID
	s.draft = d
	s.mode = ModeEdit
	s.notice = nil
	s.saved = true
	return id, nil
}

// Notice returns the visible notice, dropping a validation notice whose time
// is up.
func (s *Session) Notice() *Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentNotice()
}

func (s *Session) currentNotice() *Notice {
	if s.notice != nil && s.notice.expired(s.deps.Now()) {
		s.notice = nil
	}
	if s.notice == nil {
		return nil
	}
	n := *s.notice
	return &n
}

func (s *Session) DismissNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = nil
}

func (s *Session) GateState() GateState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate.State()
}

func (s *Session) Flags() flags.Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:          s.ID,
		Mode:        s.mode,
		Flags:       s.flags,
		Suppliers:   append([]model.Supplier(nil), s.suppliers...),
		Draft:       s.draft,
		Gate:        s.gate.State(),
		AwaitingKey: s.pending != nil,
		Notice:      s.currentNotice(),
		Saved:       s.saved,
	}
	if s.catalogErr != nil {
		v.CatalogError = "supplier catalog unavailable"
	}
	if s.originalStock != nil {
		stock := *s.originalStock
		v.OriginalStock = &stock
	}
	return v
}

// Close marks the session as abandoned. In-flight calls finish but their
// results no longer change the session.
func (s *Session) Close() {
	s.closed.Store(true)
}

func (s *Session) Closed() bool {
	return s.closed.Load()
}

func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Session) touch() {
	s.lastUsed.Store(s.deps.Now().UnixNano())
}

func (s *Session) knownSupplier(id uint) bool {
	for _, sup := range s.suppliers {
		if sup.ID == id {
			return true
		}
	}
	return false
}
