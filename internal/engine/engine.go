// Package engine orchestrates account synchronization: it drives the
// marketplace client, reconciles results into the store, records run
// provenance, and reports failures.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vieirasantos/meli-seller-hub/internal/meli"
	"github.com/vieirasantos/meli-seller-hub/internal/metrics"
	"github.com/vieirasantos/meli-seller-hub/internal/notify"
	"github.com/vieirasantos/meli-seller-hub/internal/store"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

const defaultSyncTimeout = 2 * time.Minute

// ErrSuperseded is returned when a newer sync for the same account started
// while this one was running. The stale result is discarded.
var ErrSuperseded = errors.New("sync superseded by a newer run")

// ClientFactory builds a marketplace client for one account's credentials.
// Injected so tests can substitute a fake provider.
type ClientFactory func(account *domain.Account) meli.API

// Result is the outcome of one engine-driven sync.
type Result struct {
	Run     domain.SyncRun
	Account *domain.Account
	Report  meli.SyncReport
}

type syncSlot struct {
	gen    uint64
	cancel context.CancelFunc
}

// Engine coordinates syncs across accounts. Each account has a generation
// counter: starting a sync bumps it and cancels the previous run, so only
// the newest result is ever committed.
type Engine struct {
	store       store.Store
	clients     ClientFactory
	notifier    notify.Notifier
	log         *slog.Logger
	syncTimeout time.Duration

	mu       sync.Mutex
	inflight map[string]*syncSlot
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithSyncTimeout bounds the provider-facing portion of one sync.
func WithSyncTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.syncTimeout = d
	}
}

// WithNotifier sets the failure notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// New creates an Engine with injected dependencies.
func New(s store.Store, clients ClientFactory, opts ...Option) *Engine {
	eng := &Engine{
		store:       s,
		clients:     clients,
		notifier:    notify.NewNoOpNotifier(slog.Default()),
		log:         slog.Default(),
		syncTimeout: defaultSyncTimeout,
		inflight:    make(map[string]*syncSlot),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// begin registers a new sync generation for accountID, canceling any run
// still in flight, and returns the provider context for the new run.
func (eng *Engine) begin(ctx context.Context, accountID string) (uint64, context.Context, context.CancelFunc) {
	eng.mu.Lock()
	defer eng.mu.Unlock()

	slot, ok := eng.inflight[accountID]
	if !ok {
		slot = &syncSlot{}
		eng.inflight[accountID] = slot
	}
	if slot.cancel != nil {
		slot.cancel()
	}

	slot.gen++
	runCtx, cancel := context.WithTimeout(ctx, eng.syncTimeout)
	slot.cancel = cancel
	return slot.gen, runCtx, cancel
}

// stale reports whether gen has been superseded by a newer sync.
func (eng *Engine) stale(accountID string, gen uint64) bool {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	slot, ok := eng.inflight[accountID]
	return ok && slot.gen != gen
}

// SyncAccount runs one full sync for the account and commits the result.
// A provider-level failure is reported inside the returned Result, not as
// an error; the error return covers infrastructure failures and supersede.
func (eng *Engine) SyncAccount(ctx context.Context, accountID, trigger string) (*Result, error) {
	start := time.Now()

	account, err := eng.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading account: %w", err)
	}

	gen, runCtx, cancel := eng.begin(ctx, accountID)
	defer cancel()

	runID, err := eng.store.InsertSyncRun(ctx, accountID, trigger)
	if err != nil {
		return nil, fmt.Errorf("recording sync run: %w", err)
	}

	run := domain.SyncRun{
		ID:        runID,
		AccountID: accountID,
		Trigger:   trigger,
	}

	out := eng.clients(account).SyncAccount(runCtx, *account)

	if eng.stale(accountID, gen) {
		metrics.SyncSupersededTotal.Inc()
		eng.log.Info("sync superseded, result dropped",
			"account", account.Nickname, "run_id", runID)

		run.Profile = domain.SyncPartSkipped
		run.ProductsPart = domain.SyncPartSkipped
		run.StatsPart = domain.SyncPartSkipped
		run.Error = ErrSuperseded.Error()
		eng.completeRun(ctx, &run)
		return nil, ErrSuperseded
	}

	run.Profile = out.Data.Report.Profile.Status
	run.ProductsPart = out.Data.Report.Products.Status
	run.StatsPart = out.Data.Report.Stats.Status
	run.ProductsReason = out.Data.Report.Products.Reason
	run.StatsReason = out.Data.Report.Stats.Reason

	if !out.Success {
		run.Error = out.Error
		eng.completeRun(ctx, &run)
		metrics.SyncRunsTotal.WithLabelValues("failed").Inc()

		eng.notify(ctx, &notify.SyncAlert{
			AccountNickname: account.Nickname,
			Trigger:         trigger,
			Failed:          true,
			Error:           out.Error,
			LastSync:        account.LastSync,
		})

		eng.log.Warn("sync failed",
			"account", account.Nickname, "run_id", runID, "error", out.Error)
		return &Result{Run: run, Account: account, Report: out.Data.Report}, nil
	}

	updated := out.Data.Account
	products := RekeyProducts(out.Data.Products, updated.Nickname)
	replaceProducts := out.Data.Report.Products.Status == domain.SyncPartOK

	if err := eng.store.CommitSyncResult(ctx, &updated, products, replaceProducts); err != nil {
		run.Error = err.Error()
		eng.completeRun(ctx, &run)
		metrics.SyncRunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("committing sync result: %w", err)
	}

	eng.completeRun(ctx, &run)
	metrics.SyncDuration.Observe(time.Since(start).Seconds())

	status := "ok"
	if degraded(out.Data.Report) {
		status = "degraded"
		eng.notify(ctx, &notify.SyncAlert{
			AccountNickname: updated.Nickname,
			Trigger:         trigger,
			ProductsReason:  out.Data.Report.Products.Reason,
			StatsReason:     out.Data.Report.Stats.Reason,
			LastSync:        updated.LastSync,
		})
	}
	metrics.SyncRunsTotal.WithLabelValues(status).Inc()

	eng.log.Info("sync complete",
		"account", updated.Nickname,
		"run_id", runID,
		"status", status,
		"products", updated.Products,
		"sales", updated.Sales,
	)

	return &Result{Run: run, Account: &updated, Report: out.Data.Report}, nil
}

// SyncAll syncs every account sequentially. Individual failures do not stop
// the pass; the first infrastructure error is returned after all accounts
// were attempted.
func (eng *Engine) SyncAll(ctx context.Context, trigger string) ([]Result, error) {
	accounts, err := eng.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return eng.syncAccounts(ctx, accounts, trigger)
}

// SyncAutoEnabled syncs the accounts flagged for automatic sync. Called by
// the scheduler.
func (eng *Engine) SyncAutoEnabled(ctx context.Context) ([]Result, error) {
	accounts, err := eng.store.ListAutoSyncAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing auto-sync accounts: %w", err)
	}
	return eng.syncAccounts(ctx, accounts, "scheduled")
}

func (eng *Engine) syncAccounts(ctx context.Context, accounts []domain.Account, trigger string) ([]Result, error) {
	var (
		results  []Result
		firstErr error
	)
	for i := range accounts {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		res, err := eng.SyncAccount(ctx, accounts[i].ID, trigger)
		if err != nil {
			if errors.Is(err, ErrSuperseded) {
				continue
			}
			eng.log.Error("sync pass failed for account",
				"account", accounts[i].Nickname, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results = append(results, *res)
	}
	return results, firstErr
}

// LinkAccount validates an access token against the provider and creates or
// merges the matching account. An already linked seller (same nickname or
// external user id) keeps its internal id and auto-sync setting.
func (eng *Engine) LinkAccount(
	ctx context.Context,
	accessToken, refreshToken string,
	autoSync bool,
) (*domain.Account, error) {
	probe := domain.Account{AccessToken: accessToken, RefreshToken: refreshToken}

	out := eng.clients(&probe).GetUserInfo(ctx)
	if !out.Success {
		return nil, errors.New(out.Error)
	}

	incoming := domain.Account{
		UserID:       out.Data.ID,
		Nickname:     out.Data.Nickname,
		Email:        out.Data.Email,
		Status:       domain.AccountActive,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AutoSync:     autoSync,
	}

	existing, err := eng.findExisting(ctx, &incoming)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		merged := MergeAccount(*existing, incoming)
		if err := eng.store.UpdateAccount(ctx, &merged); err != nil {
			return nil, fmt.Errorf("updating linked account: %w", err)
		}
		return &merged, nil
	}

	if err := eng.store.CreateAccount(ctx, &incoming); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}
	return &incoming, nil
}

func (eng *Engine) findExisting(ctx context.Context, incoming *domain.Account) (*domain.Account, error) {
	byNick, err := eng.store.GetAccountByNickname(ctx, incoming.Nickname)
	if err == nil {
		return byNick, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("looking up account by nickname: %w", err)
	}

	if incoming.UserID == 0 {
		return nil, nil
	}

	accounts, err := eng.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	for i := range accounts {
		if accounts[i].UserID == incoming.UserID {
			return &accounts[i], nil
		}
	}
	return nil, nil
}

// RefreshAccount rotates the account's token pair via the refresh grant and
// persists the new credentials.
func (eng *Engine) RefreshAccount(ctx context.Context, accountID, clientID, clientSecret string) (*domain.Account, error) {
	account, err := eng.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading account: %w", err)
	}

	out := eng.clients(account).RefreshAccessToken(ctx, clientID, clientSecret)
	if !out.Success {
		metrics.TokenExchangesTotal.WithLabelValues("failed").Inc()
		return nil, errors.New(out.Error)
	}
	metrics.TokenExchangesTotal.WithLabelValues("ok").Inc()

	account.AccessToken = out.Data.AccessToken
	if out.Data.RefreshToken != "" {
		account.RefreshToken = out.Data.RefreshToken
	}

	if err := eng.store.UpdateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("persisting refreshed tokens: %w", err)
	}
	return account, nil
}

func (eng *Engine) completeRun(ctx context.Context, run *domain.SyncRun) {
	if err := eng.store.CompleteSyncRun(ctx, run); err != nil {
		eng.log.Error("completing sync run failed", "run_id", run.ID, "error", err)
	}
}

func (eng *Engine) notify(ctx context.Context, alert *notify.SyncAlert) {
	if err := eng.notifier.SendSyncAlert(ctx, alert); err != nil {
		eng.log.Error("sync notification failed",
			"account", alert.AccountNickname, "error", err)
	}
}

func degraded(report meli.SyncReport) bool {
	return report.Products.Status == domain.SyncPartDegraded ||
		report.Stats.Status == domain.SyncPartDegraded
}
