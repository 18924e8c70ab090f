package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

const defaultPoolSize = 10

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
//
// TODO(test): PostgresStore methods require live Postgres, tested via integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

func accountArgs(a *domain.Account) pgx.NamedArgs {
	return pgx.NamedArgs{
		"ml_user_id":    a.UserID,
		"nickname":      a.Nickname,
		"email":         a.Email,
		"status":        string(a.Status),
		"reputation":    a.Reputation,
		"sales":         a.Sales,
		"products":      a.Products,
		"last_sync":     a.LastSync,
		"access_token":  a.AccessToken,
		"refresh_token": a.RefreshToken,
		"auto_sync":     a.AutoSync,
	}
}

// CreateAccount inserts a new linked seller account.
func (s *PostgresStore) CreateAccount(ctx context.Context, a *domain.Account) error {
	err := s.pool.QueryRow(ctx, queryCreateAccount, accountArgs(a)).Scan(
		&a.ID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by its internal UUID.
func (s *PostgresStore) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	a := &domain.Account{}
	if err := scanAccount(s.pool.QueryRow(ctx, queryGetAccount, id), a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetAccountByNickname retrieves an account by its marketplace nickname.
func (s *PostgresStore) GetAccountByNickname(ctx context.Context, nickname string) (*domain.Account, error) {
	a := &domain.Account{}
	if err := scanAccount(s.pool.QueryRow(ctx, queryGetAccountByNickname, nickname), a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListAccounts returns all linked accounts ordered by creation time.
func (s *PostgresStore) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.queryAccounts(ctx, queryListAccounts)
}

// ListAutoSyncAccounts returns non-suspended accounts flagged for automatic sync.
func (s *PostgresStore) ListAutoSyncAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.queryAccounts(ctx, queryListAutoSyncAccounts)
}

func (s *PostgresStore) queryAccounts(ctx context.Context, sql string) ([]domain.Account, error) {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := scanAccountRow(rows, &a); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount persists all mutable fields of an account.
func (s *PostgresStore) UpdateAccount(ctx context.Context, a *domain.Account) error {
	args := accountArgs(a)
	args["id"] = a.ID

	tag, err := s.pool.Exec(ctx, queryUpdateAccount, args)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAccount removes an account; its products and sync runs cascade.
func (s *PostgresStore) DeleteAccount(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, queryDeleteAccount, id)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAccountAutoSync toggles the automatic sync flag.
func (s *PostgresStore) SetAccountAutoSync(ctx context.Context, id string, enabled bool) error {
	tag, err := s.pool.Exec(ctx, querySetAccountAutoSync, id, enabled)
	if err != nil {
		return fmt.Errorf("setting auto_sync: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProducts queries products with optional filters, returning results and total count.
func (s *PostgresStore) ListProducts(
	ctx context.Context,
	opts *ProductQuery,
) ([]domain.Product, int, error) {
	dataSQL, countSQL, args := opts.ToSQL()

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	rows, err := s.pool.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := scanProductRow(rows, &p); err != nil {
			return nil, 0, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating products: %w", err)
	}

	return products, total, nil
}

// GetProduct retrieves a product by its marketplace item ID.
func (s *PostgresStore) GetProduct(ctx context.Context, itemID string) (*domain.Product, error) {
	p := &domain.Product{}
	if err := scanProduct(s.pool.QueryRow(ctx, queryGetProduct, itemID), p); err != nil {
		return nil, err
	}
	return p, nil
}

// ReplaceAccountProducts swaps the entire product set of one account inside
// a transaction. A sync always reports the complete current inventory, so a
// partial merge would resurrect delisted items.
func (s *PostgresStore) ReplaceAccountProducts(
	ctx context.Context,
	nickname string,
	products []domain.Product,
) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := replaceProductsTx(ctx, tx, nickname, products); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// CommitSyncResult updates the account row and, when replaceProducts is set,
// swaps its product set in the same transaction.
func (s *PostgresStore) CommitSyncResult(
	ctx context.Context,
	a *domain.Account,
	products []domain.Product,
	replaceProducts bool,
) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	args := accountArgs(a)
	args["id"] = a.ID

	tag, err := tx.Exec(ctx, queryUpdateAccount, args)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if replaceProducts {
		if err := replaceProductsTx(ctx, tx, a.Nickname, products); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func replaceProductsTx(ctx context.Context, tx pgx.Tx, nickname string, products []domain.Product) error {
	if _, err := tx.Exec(ctx, queryDeleteAccountProducts, nickname); err != nil {
		return fmt.Errorf("deleting account products: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range products {
		p := &products[i]
		batch.Queue(queryInsertProduct, pgx.NamedArgs{
			"ml_item_id":       p.ID,
			"title":            p.Title,
			"price":            p.Price,
			"stock":            p.Stock,
			"status":           string(p.Status),
			"account_nickname": nickname,
			"views":            p.Views,
			"sales":            p.Sales,
			"category":         p.Category,
			"images":           p.Images,
			"description":      p.Description,
		})
	}

	if batch.Len() == 0 {
		return nil
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close() //nolint:errcheck // Close surfaces the first error below

	for range products {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("inserting product: %w", err)
		}
	}
	return results.Close()
}

// CreateUser inserts a new dashboard user.
func (s *PostgresStore) CreateUser(ctx context.Context, u *domain.User) error {
	perms, err := json.Marshal(u.Permissions)
	if err != nil {
		return fmt.Errorf("marshaling permissions: %w", err)
	}

	args := pgx.NamedArgs{
		"username":      u.Username,
		"password_hash": u.PasswordHash,
		"role":          string(u.Role),
		"permissions":   perms,
		"created_by":    nullableText(u.CreatedBy),
	}

	if err := s.pool.QueryRow(ctx, queryCreateUser, args).Scan(&u.ID, &u.CreatedAt); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *PostgresStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u := &domain.User{}
	if err := scanUser(s.pool.QueryRow(ctx, queryGetUser, id), u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByUsername retrieves a user by username.
func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	u := &domain.User{}
	if err := scanUser(s.pool.QueryRow(ctx, queryGetUserByUsername, username), u); err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns all dashboard users ordered by creation time.
func (s *PostgresStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, queryListUsers)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUserRow(rows, &u); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

// UpdateUser persists all mutable fields of a user.
func (s *PostgresStore) UpdateUser(ctx context.Context, u *domain.User) error {
	perms, err := json.Marshal(u.Permissions)
	if err != nil {
		return fmt.Errorf("marshaling permissions: %w", err)
	}

	args := pgx.NamedArgs{
		"id":            u.ID,
		"username":      u.Username,
		"password_hash": u.PasswordHash,
		"role":          string(u.Role),
		"permissions":   perms,
	}

	tag, err := s.pool.Exec(ctx, queryUpdateUser, args)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user by ID.
func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, queryDeleteUser, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertSyncRun records the start of a sync attempt.
func (s *PostgresStore) InsertSyncRun(ctx context.Context, accountID, trigger string) (string, error) {
	var id string
	if err := s.pool.QueryRow(ctx, queryInsertSyncRun, accountID, trigger).Scan(&id); err != nil {
		return "", fmt.Errorf("inserting sync run: %w", err)
	}
	return id, nil
}

// CompleteSyncRun records the per-part outcome of a finished sync.
func (s *PostgresStore) CompleteSyncRun(ctx context.Context, run *domain.SyncRun) error {
	_, err := s.pool.Exec(ctx, queryCompleteSyncRun,
		run.ID,
		string(run.Profile),
		string(run.ProductsPart),
		string(run.StatsPart),
		run.ProductsReason,
		run.StatsReason,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("completing sync run: %w", err)
	}
	return nil
}

// ListSyncRuns returns recent sync runs for one account, newest first.
func (s *PostgresStore) ListSyncRuns(ctx context.Context, accountID string, limit int) ([]domain.SyncRun, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return s.querySyncRuns(ctx, queryListSyncRuns, accountID, limit)
}

// ListLatestSyncRuns returns the most recent run for every account.
func (s *PostgresStore) ListLatestSyncRuns(ctx context.Context) ([]domain.SyncRun, error) {
	return s.querySyncRuns(ctx, queryListLatestSyncRuns)
}

func (s *PostgresStore) querySyncRuns(ctx context.Context, sql string, args ...any) ([]domain.SyncRun, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sync runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.SyncRun
	for rows.Next() {
		var r domain.SyncRun
		err := rows.Scan(
			&r.ID, &r.AccountID, &r.Trigger,
			&r.Profile, &r.ProductsPart, &r.StatsPart,
			&r.ProductsReason, &r.StatsReason, &r.Error,
			&r.StartedAt, &r.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning sync run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync runs: %w", err)
	}
	return runs, nil
}

// GetSystemState returns the operator-facing entity counts in one round of
// aggregate queries.
func (s *PostgresStore) GetSystemState(ctx context.Context) (*domain.SystemState, error) {
	state := &domain.SystemState{}

	if err := s.pool.QueryRow(ctx, queryCountAccounts).Scan(&state.Accounts, &state.ActiveAccounts); err != nil {
		return nil, fmt.Errorf("counting accounts: %w", err)
	}
	if err := s.pool.QueryRow(ctx, queryCountProducts).Scan(&state.Products); err != nil {
		return nil, fmt.Errorf("counting products: %w", err)
	}
	if err := s.pool.QueryRow(ctx, queryCountUsers).Scan(&state.Users); err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	if err := s.pool.QueryRow(ctx, queryCountSyncRuns).Scan(&state.SyncRuns); err != nil {
		return nil, fmt.Errorf("counting sync runs: %w", err)
	}
	if err := s.pool.QueryRow(ctx, queryLastSyncAt).Scan(&state.LastSyncAt); err != nil {
		return nil, fmt.Errorf("reading last sync time: %w", err)
	}

	return state, nil
}

// row abstracts pgx.Row and pgx.Rows for the scan helpers.
type row interface {
	Scan(dest ...any) error
}

func scanAccount(r pgx.Row, a *domain.Account) error {
	if err := scanAccountRow(r, a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func scanAccountRow(r row, a *domain.Account) error {
	return r.Scan(
		&a.ID, &a.UserID, &a.Nickname, &a.Email, &a.Status,
		&a.Reputation, &a.Sales, &a.Products, &a.LastSync,
		&a.AccessToken, &a.RefreshToken, &a.AutoSync,
		&a.CreatedAt, &a.UpdatedAt,
	)
}

func scanProduct(r pgx.Row, p *domain.Product) error {
	if err := scanProductRow(r, p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func scanProductRow(r row, p *domain.Product) error {
	return r.Scan(
		&p.ID, &p.Title, &p.Price, &p.Stock, &p.Status, &p.Account,
		&p.Views, &p.Sales, &p.Category, &p.Images, &p.Description,
	)
}

func scanUser(r pgx.Row, u *domain.User) error {
	if err := scanUserRow(r, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func scanUserRow(r row, u *domain.User) error {
	var perms []byte
	err := r.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Role, &perms,
		&u.CreatedAt, &u.CreatedBy,
	)
	if err != nil {
		return err
	}
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &u.Permissions); err != nil {
			return fmt.Errorf("unmarshaling permissions: %w", err)
		}
	}
	return nil
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}
