// Package domain defines the core business types for meli-seller-hub.
package domain

import (
	"time"
)

// AccountStatus represents the lifecycle state of a linked seller account.
type AccountStatus string

// Account status constants.
const (
	AccountActive    AccountStatus = "active"
	AccountInactive  AccountStatus = "inactive"
	AccountSuspended AccountStatus = "suspended"
)

// ProductStatus represents the marketplace state of a listing.
type ProductStatus string

// Product status constants.
const (
	ProductActive ProductStatus = "active"
	ProductPaused ProductStatus = "paused"
	ProductEnded  ProductStatus = "ended"
)

// Account represents one linked Mercado Livre seller identity.
//
// Nickname is the reconciliation key until the first successful sync
// assigns UserID; after that either key identifies the account. The sync
// pipeline never mutates an Account in place; it returns an updated copy.
type Account struct {
	ID           string        `json:"id"                      db:"id"`
	UserID       int64         `json:"user_id,omitempty"       db:"ml_user_id"`
	Nickname     string        `json:"nickname"                db:"nickname"`
	Email        string        `json:"email"                   db:"email"`
	Status       AccountStatus `json:"status"                  db:"status"`
	Reputation   int           `json:"reputation"              db:"reputation"`
	Sales        int           `json:"sales"                   db:"sales"`
	Products     int           `json:"products"                db:"products"`
	LastSync     string        `json:"last_sync"               db:"last_sync"`
	AccessToken  string        `json:"access_token,omitempty"  db:"access_token"`
	RefreshToken string        `json:"refresh_token,omitempty" db:"refresh_token"`
	AutoSync     bool          `json:"auto_sync"               db:"auto_sync"`
	CreatedAt    time.Time     `json:"created_at"              db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"              db:"updated_at"`
}

// Product represents one marketplace listing owned by an Account.
// The Account field holds the owning account's nickname after reconciliation.
// Views defaults to 0; the provider does not expose it reliably.
type Product struct {
	ID          string        `json:"id"                    db:"ml_item_id"`
	Title       string        `json:"title"                 db:"title"`
	Price       float64       `json:"price"                 db:"price"`
	Stock       int           `json:"stock"                 db:"stock"`
	Status      ProductStatus `json:"status"                db:"status"`
	Account     string        `json:"account"               db:"account_nickname"`
	Views       int           `json:"views"                 db:"views"`
	Sales       int           `json:"sales"                 db:"sales"`
	Category    string        `json:"category,omitempty"    db:"category"`
	Images      []string      `json:"images,omitempty"      db:"images"`
	Description string        `json:"description,omitempty" db:"description"`
}

// Role represents a dashboard user's role.
type Role string

// Role constants. The master user is seeded at migration time and can
// neither be deleted nor modified by non-master users.
const (
	RoleMaster Role = "master"
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
)

// Permissions is the per-feature grant set of a dashboard user.
type Permissions struct {
	ViewDashboard  bool `json:"view_dashboard"`
	ManageAccounts bool `json:"manage_accounts"`
	ManageProducts bool `json:"manage_products"`
	ManageSync     bool `json:"manage_sync"`
	ViewAnalytics  bool `json:"view_analytics"`
	ManageUsers    bool `json:"manage_users"`
}

// AllPermissions returns a grant set with every permission enabled.
func AllPermissions() Permissions {
	return Permissions{
		ViewDashboard:  true,
		ManageAccounts: true,
		ManageProducts: true,
		ManageSync:     true,
		ViewAnalytics:  true,
		ManageUsers:    true,
	}
}

// User is an internal dashboard user. PasswordHash is a bcrypt hash and is
// never serialized.
type User struct {
	ID           string      `json:"id"                   db:"id"`
	Username     string      `json:"username"             db:"username"`
	PasswordHash string      `json:"-"                    db:"password_hash"`
	Role         Role        `json:"role"                 db:"role"`
	Permissions  Permissions `json:"permissions"          db:"permissions"`
	CreatedAt    time.Time   `json:"created_at"           db:"created_at"`
	CreatedBy    string      `json:"created_by,omitempty" db:"created_by"`
}

// SyncPartStatus tags the outcome of one part of a sync run.
type SyncPartStatus string

// Sync part status constants.
const (
	SyncPartOK       SyncPartStatus = "ok"
	SyncPartDegraded SyncPartStatus = "degraded"
	SyncPartFailed   SyncPartStatus = "failed"
	SyncPartSkipped  SyncPartStatus = "skipped"
)

// SyncRun records one sync attempt for an account with per-part provenance.
// Profile failure aborts the run; products and stats are best-effort and can
// only be degraded, never fatal.
type SyncRun struct {
	ID             string         `json:"id"                        db:"id"`
	AccountID      string         `json:"account_id"                db:"account_id"`
	Trigger        string         `json:"trigger"                   db:"trigger"` // manual, scheduled
	Profile        SyncPartStatus `json:"profile"                   db:"profile_status"`
	ProductsPart   SyncPartStatus `json:"products"                  db:"products_status"`
	StatsPart      SyncPartStatus `json:"stats"                     db:"stats_status"`
	ProductsReason string         `json:"products_reason,omitempty" db:"products_reason"`
	StatsReason    string         `json:"stats_reason,omitempty"    db:"stats_reason"`
	Error          string         `json:"error,omitempty"           db:"error"`
	StartedAt      time.Time      `json:"started_at"                db:"started_at"`
	FinishedAt     *time.Time     `json:"finished_at,omitempty"     db:"finished_at"`
}

// DashboardMetrics aggregates sales figures across all accounts.
type DashboardMetrics struct {
	TotalSales     int     `json:"total_sales"`
	TotalProducts  int     `json:"total_products"`
	TotalViews     int     `json:"total_views"`
	TotalRevenue   float64 `json:"total_revenue"`
	AverageTicket  float64 `json:"average_ticket"`
	ConversionRate float64 `json:"conversion_rate"`
}

// SystemState is an operator-facing snapshot of stored entities.
type SystemState struct {
	Accounts       int        `json:"accounts"`
	ActiveAccounts int        `json:"active_accounts"`
	Products       int        `json:"products"`
	Users          int        `json:"users"`
	SyncRuns       int        `json:"sync_runs"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
}

// ComputeMetrics derives dashboard aggregates from the stored collections.
// Average ticket is revenue per sale; conversion rate is sales per view.
func ComputeMetrics(accounts []Account, products []Product) DashboardMetrics {
	m := DashboardMetrics{}
	for i := range accounts {
		m.TotalSales += accounts[i].Sales
		m.TotalProducts += accounts[i].Products
	}
	for i := range products {
		m.TotalViews += products[i].Views
		m.TotalRevenue += products[i].Price * float64(products[i].Sales)
	}
	if m.TotalSales > 0 {
		m.AverageTicket = m.TotalRevenue / float64(m.TotalSales)
	}
	if m.TotalViews > 0 {
		m.ConversionRate = float64(m.TotalSales) / float64(m.TotalViews) * 100
	}
	return m
}
