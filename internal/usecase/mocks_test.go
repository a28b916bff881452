//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"wedding-ecard-platform/internal/domain"
	"wedding-ecard-platform/internal/domain/model"
	"wedding-ecard-platform/internal/domain/ports/adapter"
	"wedding-ecard-platform/internal/domain/ports/repository"
)

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu   sync.Mutex
	data map[string]*model.User // by id

	SaveFunc        func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByIDFunc    func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
	FindByEmailFunc func(ctx context.Context, tx repository.Tx, email string) (*model.User, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{data: map[string]*model.User{}}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.data[u.ID] = &cp
	return nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.data[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	if r.FindByEmailFunc != nil {
		return r.FindByEmailFunc(ctx, tx, email)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.data {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ---- Mock ECardRepository ----

type MockECardRepo struct {
	mu   sync.Mutex
	data map[string]*model.ECard // by id

	SaveFunc    func(ctx context.Context, tx repository.Tx, c *model.ECard) error
	SetPaidFunc func(ctx context.Context, tx repository.Tx, id string) error
}

var _ repository.ECardRepository = (*MockECardRepo)(nil)

func NewMockECardRepo() *MockECardRepo {
	return &MockECardRepo{data: map[string]*model.ECard{}}
}

func (r *MockECardRepo) Save(ctx context.Context, tx repository.Tx, c *model.ECard) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, c)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := *c
	r.data[c.ID] = &cp
	return nil
}

func (r *MockECardRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ECard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.data[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockECardRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.ECard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.data {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockECardRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.ECard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ECard
	for _, c := range r.data {
		if c.OwnerID == ownerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockECardRepo) SetPaid(ctx context.Context, tx repository.Tx, id string) error {
	if r.SetPaidFunc != nil {
		return r.SetPaidFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.IsPaid = true
	c.UpdatedAt = time.Now()
	return nil
}

// ---- Mock PaymentRepository ----

type MockPaymentRepo struct {
	mu      sync.Mutex
	data    map[string]*model.Payment // by id
	byOrder map[string]string         // order id -> id

	SaveFunc         func(ctx context.Context, tx repository.Tx, p *model.Payment) error
	FindByIDFunc     func(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error)
	UpdateStatusFunc func(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, refID *string, paidAt *time.Time) error
	SumByPeriodFunc  func(ctx context.Context, tx repository.Tx, period string) (int64, error)
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{data: map[string]*model.Payment{}, byOrder: map[string]string{}}
}

func (r *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	r.data[p.ID] = &cp
	if p.OrderID != "" {
		r.byOrder[p.OrderID] = p.ID
	}
	return nil
}

func (r *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.data[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPaymentRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byOrder[orderID]; ok {
		cp := *r.data[id]
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPaymentRepo) ListByECard(ctx context.Context, tx repository.Tx, ecardID string) ([]*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.data {
		if p.ECardID == ecardID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockPaymentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, refID *string, paidAt *time.Time) error {
	if r.UpdateStatusFunc != nil {
		return r.UpdateStatusFunc(ctx, tx, id, status, refID, paidAt)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	if refID != nil {
		p.GatewayTxnID = *refID
	}
	if paidAt != nil {
		p.PaidAt = paidAt
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (r *MockPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.data {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(cutoff) {
			cp := *p
			out = append(out, &cp)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *MockPaymentRepo) ListCompletedUnpaid(ctx context.Context, tx repository.Tx, limit int) ([]*model.Payment, error) {
	// Needs card state; tests exercising the reconciler override via a
	// purpose-built mock pair instead.
	return nil, nil
}

func (r *MockPaymentRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	if r.SumByPeriodFunc != nil {
		return r.SumByPeriodFunc(ctx, tx, period)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, p := range r.data {
		if p.Status == model.PaymentStatusCompleted {
			sum += p.Amount
		}
	}
	return sum, nil
}

// ---- Mock RSVPRepository ----

type MockRSVPRepo struct {
	mu   sync.Mutex
	data []*model.RSVP

	SaveFunc func(ctx context.Context, tx repository.Tx, v *model.RSVP) error
}

var _ repository.RSVPRepository = (*MockRSVPRepo)(nil)

func NewMockRSVPRepo() *MockRSVPRepo { return &MockRSVPRepo{} }

func (r *MockRSVPRepo) Save(ctx context.Context, tx repository.Tx, v *model.RSVP) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, v)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	r.data = append(r.data, &cp)
	return nil
}

func (r *MockRSVPRepo) ListByECard(ctx context.Context, tx repository.Tx, ecardID string) ([]*model.RSVP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.RSVP
	for _, v := range r.data {
		if v.ECardID == ecardID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockRSVPRepo) CountByECard(ctx context.Context, tx repository.Tx, ecardID string) (map[model.RSVPStatus]int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[model.RSVPStatus]int{}
	pax := 0
	for _, v := range r.data {
		if v.ECardID == ecardID {
			counts[v.Status]++
			if v.Status == model.RSVPStatusAttending {
				pax += v.NumberOfPax
			}
		}
	}
	return counts, pax, nil
}

// ---- Mock WishRepository ----

type MockWishRepo struct {
	mu   sync.Mutex
	data []*model.Wish
}

var _ repository.WishRepository = (*MockWishRepo)(nil)

func NewMockWishRepo() *MockWishRepo { return &MockWishRepo{} }

func (r *MockWishRepo) Save(ctx context.Context, tx repository.Tx, w *model.Wish) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.data = append(r.data, &cp)
	return nil
}

func (r *MockWishRepo) ListByECard(ctx context.Context, tx repository.Tx, ecardID string) ([]*model.Wish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Wish
	for _, w := range r.data {
		if w.ECardID == ecardID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockWishRepo) CountByECard(ctx context.Context, tx repository.Tx, ecardID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, w := range r.data {
		if w.ECardID == ecardID {
			n++
		}
	}
	return n, nil
}

// =============================
// Adapters
// =============================

// ---- Mock PaymentGateway ----

type MockPaymentGateway struct {
	NameVal     string
	MockCapable bool

	PaymentURLFunc     func(ctx context.Context, req adapter.CheckoutRequest) (string, error)
	VerifyCallbackFunc func(f adapter.CallbackFields) bool
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string {
	if m.NameVal == "" {
		return "testpay"
	}
	return m.NameVal
}

func (m *MockPaymentGateway) PaymentURL(ctx context.Context, req adapter.CheckoutRequest) (string, error) {
	if m.PaymentURLFunc != nil {
		return m.PaymentURLFunc(ctx, req)
	}
	return "https://pay.example/" + req.OrderID, nil
}

func (m *MockPaymentGateway) VerifyCallback(f adapter.CallbackFields) bool {
	if m.VerifyCallbackFunc != nil {
		return m.VerifyCallbackFunc(f)
	}
	return true
}

func (m *MockPaymentGateway) SupportsMockCompletion() bool { return m.MockCapable }

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

// WithTx runs the function immediately without a real transaction by
// default. Tests that need to observe or fail the transaction assign
// WithTxFunc.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- Mock Locker ----

type MockLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", errors.New("locked")
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		return nil
	}
	return errors.New("unlock token mismatch")
}

// newTestLogger creates a silent zerolog.Logger so test output stays clean.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
