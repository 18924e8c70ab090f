// Package storetest provides an in-memory Store implementation for tests.
// Behavior mirrors PostgresStore closely enough for business-logic tests:
// not-found lookups return store.ErrNotFound and product replacement is
// wholesale per account.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vieirasantos/meli-seller-hub/internal/store"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// Memory is an in-memory store.Store.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	products map[string]domain.Product
	users    map[string]domain.User
	runs     map[string]domain.SyncRun

	// NowFunc overrides the clock for timestamp fields.
	NowFunc func() time.Time

	// FailWith, when non-nil, is returned by every mutating call. Tests use
	// it to exercise persistence error paths.
	FailWith error
}

// New creates an empty in-memory store.
func New() *Memory {
	return &Memory{
		accounts: make(map[string]domain.Account),
		products: make(map[string]domain.Product),
		users:    make(map[string]domain.User),
		runs:     make(map[string]domain.SyncRun),
		NowFunc:  time.Now,
	}
}

var _ store.Store = (*Memory)(nil)

func (m *Memory) CreateAccount(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	for _, existing := range m.accounts {
		if existing.Nickname == a.Nickname {
			return fmt.Errorf("duplicate nickname %q", a.Nickname)
		}
	}
	a.ID = uuid.NewString()
	a.CreatedAt = m.NowFunc()
	a.UpdatedAt = a.CreatedAt
	m.accounts[a.ID] = *a
	return nil
}

func (m *Memory) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (m *Memory) GetAccountByNickname(_ context.Context, nickname string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Nickname == nickname {
			a := a
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) ListAccounts(_ context.Context) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListAutoSyncAccounts(ctx context.Context) ([]domain.Account, error) {
	all, err := m.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Account
	for _, a := range all {
		if a.AutoSync && a.Status != domain.AccountSuspended {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) UpdateAccount(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	if _, ok := m.accounts[a.ID]; !ok {
		return store.ErrNotFound
	}
	a.UpdatedAt = m.NowFunc()
	m.accounts[a.ID] = *a
	return nil
}

func (m *Memory) DeleteAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	a, ok := m.accounts[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(m.accounts, id)
	for itemID, p := range m.products {
		if p.Account == a.Nickname {
			delete(m.products, itemID)
		}
	}
	for runID, r := range m.runs {
		if r.AccountID == id {
			delete(m.runs, runID)
		}
	}
	return nil
}

func (m *Memory) SetAccountAutoSync(_ context.Context, id string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return store.ErrNotFound
	}
	a.AutoSync = enabled
	a.UpdatedAt = m.NowFunc()
	m.accounts[id] = a
	return nil
}

func (m *Memory) ListProducts(_ context.Context, opts *store.ProductQuery) ([]domain.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Product
	for _, p := range m.products {
		if opts.Account != nil && p.Account != *opts.Account {
			continue
		}
		if opts.Status != nil && string(p.Status) != *opts.Status {
			continue
		}
		if opts.Search != nil && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(*opts.Search)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, len(out), nil
}

func (m *Memory) GetProduct(_ context.Context, itemID string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[itemID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (m *Memory) ReplaceAccountProducts(_ context.Context, nickname string, products []domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.replaceProductsLocked(nickname, products)
	return nil
}

func (m *Memory) replaceProductsLocked(nickname string, products []domain.Product) {
	for itemID, p := range m.products {
		if p.Account == nickname {
			delete(m.products, itemID)
		}
	}
	for _, p := range products {
		p.Account = nickname
		m.products[p.ID] = p
	}
}

func (m *Memory) CommitSyncResult(
	_ context.Context,
	a *domain.Account,
	products []domain.Product,
	replaceProducts bool,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	if _, ok := m.accounts[a.ID]; !ok {
		return store.ErrNotFound
	}
	a.UpdatedAt = m.NowFunc()
	m.accounts[a.ID] = *a
	if replaceProducts {
		m.replaceProductsLocked(a.Nickname, products)
	}
	return nil
}

func (m *Memory) CreateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return fmt.Errorf("duplicate username %q", u.Username)
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = m.NowFunc()
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) GetUser(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) ListUsers(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	if _, ok := m.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *Memory) InsertSyncRun(_ context.Context, accountID, trigger string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return "", m.FailWith
	}
	id := uuid.NewString()
	m.runs[id] = domain.SyncRun{
		ID:           id,
		AccountID:    accountID,
		Trigger:      trigger,
		Profile:      domain.SyncPartSkipped,
		ProductsPart: domain.SyncPartSkipped,
		StatsPart:    domain.SyncPartSkipped,
		StartedAt:    m.NowFunc(),
	}
	return id, nil
}

func (m *Memory) CompleteSyncRun(_ context.Context, run *domain.SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	stored, ok := m.runs[run.ID]
	if !ok {
		return store.ErrNotFound
	}
	now := m.NowFunc()
	stored.Profile = run.Profile
	stored.ProductsPart = run.ProductsPart
	stored.StatsPart = run.StatsPart
	stored.ProductsReason = run.ProductsReason
	stored.StatsReason = run.StatsReason
	stored.Error = run.Error
	stored.FinishedAt = &now
	m.runs[run.ID] = stored
	return nil
}

func (m *Memory) ListSyncRuns(_ context.Context, accountID string, limit int) ([]domain.SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SyncRun
	for _, r := range m.runs {
		if r.AccountID == accountID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) ListLatestSyncRuns(_ context.Context) ([]domain.SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := make(map[string]domain.SyncRun)
	for _, r := range m.runs {
		if cur, ok := latest[r.AccountID]; !ok || r.StartedAt.After(cur.StartedAt) {
			latest[r.AccountID] = r
		}
	}
	out := make([]domain.SyncRun, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

func (m *Memory) GetSystemState(_ context.Context) (*domain.SystemState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := &domain.SystemState{
		Accounts: len(m.accounts),
		Products: len(m.products),
		Users:    len(m.users),
		SyncRuns: len(m.runs),
	}
	for _, a := range m.accounts {
		if a.Status == domain.AccountActive {
			state.ActiveAccounts++
		}
	}
	for _, r := range m.runs {
		if r.Profile == domain.SyncPartOK && r.FinishedAt != nil {
			if state.LastSyncAt == nil || r.FinishedAt.After(*state.LastSyncAt) {
				t := *r.FinishedAt
				state.LastSyncAt = &t
			}
		}
	}
	return state, nil
}

func (m *Memory) Migrate(_ context.Context) error { return nil }

func (m *Memory) Ping(_ context.Context) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	return nil
}
