package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"go-pos-inventory/internal/flags"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&model.Supplier{}, &model.Product{}, &model.Setting{}, &model.Secret{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newProduct(supplierID uint, code string, stock int) *model.Product {
	return &model.Product{
		Code:          code,
		Description:   "Widget " + code,
		SupplierID:    supplierID,
		Unit:          model.UnitPiece,
		PurchasePrice: decimal.RequireFromString("10.00"),
		SalePrice:     decimal.RequireFromString("15.00"),
		Stock:         stock,
	}
}

func nextEvent(t *testing.T, hub *ws.Hub) ws.Event {
	t.Helper()
	select {
	case msg := <-hub.Broadcast:
		var ev ws.Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		return ev
	default:
		t.Fatal("expected a broadcast")
	}
	return ws.Event{}
}

func TestSaveProductStampsAuditAndBroadcasts(t *testing.T) {
	db := setupTestDB(t)
	hub := ws.NewHub(quietLogger())
	sRepo := repository.NewSupplierRepo(db)
	svc := NewInventoryService(repository.NewProductRepo(db), sRepo, hub)
	ctx := context.Background()

	acme := model.Supplier{Name: "Acme"}
	if err := sRepo.Create(ctx, &acme); err != nil {
		t.Fatalf("supplier: %v", err)
	}
	actor := model.Actor{ID: "u-1", Name: "Ana", Email: "ana@example.com"}

	id, err := svc.SaveProduct(ctx, newProduct(acme.ID, "A1", 5), actor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ev := nextEvent(t, hub); ev.Action != "product_created" || ev.User["id"] != "u-1" {
		t.Fatalf("unexpected create event: %+v", ev)
	}

	got, err := svc.GetProduct(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CreatedBy != "u-1" || got.UpdatedBy != "u-1" {
		t.Fatalf("audit fields not stamped: %+v", got.BaseModel)
	}
	if got.Supplier == nil || got.Supplier.Name != "Acme" {
		t.Fatalf("supplier not preloaded: %+v", got.Supplier)
	}

	upd := newProduct(acme.ID, "A1", 9)
	upd.ID = id
	editor := model.Actor{ID: "u-2", Name: "Ben"}
	if _, err := svc.SaveProduct(ctx, upd, editor); err != nil {
		t.Fatalf("update: %v", err)
	}
	if ev := nextEvent(t, hub); ev.Action != "product_updated" {
		t.Fatalf("unexpected update event: %+v", ev)
	}
	got, _ = svc.GetProduct(ctx, id)
	if got.Stock != 9 || got.CreatedBy != "u-1" || got.UpdatedBy != "u-2" {
		t.Fatalf("unexpected row after update: stock=%d created_by=%s updated_by=%s", got.Stock, got.CreatedBy, got.UpdatedBy)
	}
}

func TestSaveProductRejectsDuplicateCode(t *testing.T) {
	db := setupTestDB(t)
	hub := ws.NewHub(quietLogger())
	svc := NewInventoryService(repository.NewProductRepo(db), repository.NewSupplierRepo(db), hub)
	ctx := context.Background()

	if _, err := svc.SaveProduct(ctx, newProduct(1, "A1", 1), model.Actor{ID: "u-1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.SaveProduct(ctx, newProduct(1, "A1", 1), model.Actor{ID: "u-1"})
	if !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode, got %v", err)
	}
}

func TestSaveProductMissingRecord(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInventoryService(repository.NewProductRepo(db), repository.NewSupplierRepo(db), ws.NewHub(quietLogger()))

	p := newProduct(1, "GHOST", 1)
	p.ID = uuid.New()
	if _, err := svc.SaveProduct(context.Background(), p, model.Actor{ID: "u-1"}); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := svc.GetProduct(context.Background(), uuid.New()); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestDashboardUsesConfiguredMinimum(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	pRepo := repository.NewProductRepo(db)
	settings := repository.NewSettingRepo(db)

	for code, stock := range map[string]int{"A": 1, "B": 4, "C": 10} {
		if _, err := pRepo.Save(ctx, newProduct(1, code, stock)); err != nil {
			t.Fatalf("seed %s: %v", code, err)
		}
	}
	if err := settings.Set(ctx, &model.Setting{Key: flags.KeyDefaultMinimumStock, Value: "5", Type: model.SettingInteger}); err != nil {
		t.Fatalf("setting: %v", err)
	}

	svc := NewDashboardService(pRepo, flags.NewProvider(settings, quietLogger()))
	stats, err := svc.GetDashboardStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.MinimumStock != 5 || stats.LowStockCount != 2 || stats.TotalProducts != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

// memCounter is an in-process AttemptCounter.
type memCounter struct {
	counts map[string]int64
	err    error
}

func (m *memCounter) Count(_ context.Context, key string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.counts[key], nil
}

func (m *memCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memCounter) Reset(_ context.Context, key string) error {
	delete(m.counts, key)
	return m.err
}

func newKeyService(t *testing.T, counter AttemptCounter) StockKeyService {
	t.Helper()
	db := setupTestDB(t)
	secrets := repository.NewSecretRepo(db)
	if err := secrets.Set(context.Background(), model.StockMasterKey, "1234", "admin"); err != nil {
		t.Fatalf("seed secret: %v", err)
	}
	var limiter *AttemptLimiter
	if counter != nil {
		limiter = NewAttemptLimiter(counter, 3, 15*time.Minute, quietLogger())
	}
	return NewStockKeyService(secrets, limiter)
}

func TestStockKeyVerify(t *testing.T) {
	svc := newKeyService(t, nil)
	ctx := context.Background()

	ok, err := svc.Verify(ctx, "u-1", "1234")
	if err != nil || !ok {
		t.Fatalf("correct key: ok=%v err=%v", ok, err)
	}
	ok, err = svc.Verify(ctx, "u-1", "0000")
	if err != nil || ok {
		t.Fatalf("wrong key: ok=%v err=%v", ok, err)
	}
}

func TestStockKeyVerifyWithoutSecret(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStockKeyService(repository.NewSecretRepo(db), nil)
	if _, err := svc.Verify(context.Background(), "u-1", "1234"); !errors.Is(err, repository.ErrSecretNotSet) {
		t.Fatalf("expected ErrSecretNotSet, got %v", err)
	}
}

func TestStockKeyAttemptLimit(t *testing.T) {
	counter := &memCounter{counts: map[string]int64{}}
	svc := newKeyService(t, counter)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if ok, err := svc.Verify(ctx, "u-1", "bad"); ok || err != nil {
			t.Fatalf("attempt %d: ok=%v err=%v", i, ok, err)
		}
	}
	if _, err := svc.Verify(ctx, "u-1", "1234"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	// Other actors are unaffected.
	if ok, err := svc.Verify(ctx, "u-2", "1234"); !ok || err != nil {
		t.Fatalf("other actor: ok=%v err=%v", ok, err)
	}
}

func TestStockKeySuccessResetsAttempts(t *testing.T) {
	counter := &memCounter{counts: map[string]int64{}}
	svc := newKeyService(t, counter)
	ctx := context.Background()

	_, _ = svc.Verify(ctx, "u-1", "bad")
	_, _ = svc.Verify(ctx, "u-1", "bad")
	if ok, _ := svc.Verify(ctx, "u-1", "1234"); !ok {
		t.Fatal("expected success below the limit")
	}
	if counter.counts[attemptKey("u-1")] != 0 {
		t.Fatalf("expected counter reset, got %d", counter.counts[attemptKey("u-1")])
	}
}

func TestStockKeyLimiterFailsOpen(t *testing.T) {
	svc := newKeyService(t, &memCounter{counts: map[string]int64{}, err: errors.New("connection refused")})
	if ok, err := svc.Verify(context.Background(), "u-1", "1234"); !ok || err != nil {
		t.Fatalf("counter outage must not block: ok=%v err=%v", ok, err)
	}
}

func TestVerifierForBindsActor(t *testing.T) {
	counter := &memCounter{counts: map[string]int64{}}
	svc := newKeyService(t, counter)

	v := svc.VerifierFor(model.Actor{ID: "u-9"})
	if ok, _ := v.Verify(context.Background(), "nope"); ok {
		t.Fatal("wrong key accepted")
	}
	if counter.counts[attemptKey("u-9")] != 1 {
		t.Fatalf("expected the failure counted for u-9, got %v", counter.counts)
	}
}
