// Package store defines the storage interface for the server and provides SQLite and PostgreSQL implementations.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrDuplicateName is returned when the user already owns a category with the same name.
	ErrDuplicateName = errors.New("event category name already exists")
	// ErrLimitReached is returned by CreateEventCategory when the user's
	// category count already reached the given limit.
	ErrLimitReached = errors.New("event category limit reached")
)

// Store is the persistence interface for the server.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*User, error)
	SetUserPlan(ctx context.Context, id, plan string) error

	// Event categories
	CountEventCategories(ctx context.Context, userID string) (int, error)
	// CreateEventCategory inserts cat unless the owner already has limit or
	// more categories. The count check and the insert are atomic.
	CreateEventCategory(ctx context.Context, cat *EventCategory, limit int) error
	ListEventCategories(ctx context.Context, userID string) ([]EventCategory, error)

	// Audit
	LogAuditEvent(ctx context.Context, event *AuditEvent) error
	ListAuditEvents(ctx context.Context, userID string, limit int) ([]AuditEvent, error)

	// Health
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// User represents an account. Plan is stored as text and parsed by the
// billing package; a value outside FREE/PRO is a data-integrity problem.
type User struct {
	ID           string    `json:"id"`
	ExternalID   string    `json:"external_id,omitempty"` // identity provider user id or empty
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // "admin" or "user"
	Plan         string    `json:"plan"`
	CreatedAt    time.Time `json:"created_at"`
}

// EventCategory is a user-defined label for tracked events.
type EventCategory struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     int       `json:"color"` // 24-bit RGB
	Emoji     string    `json:"emoji,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditEvent is a log entry for audit purposes.
type AuditEvent struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	UserID    string          `json:"user_id,omitempty"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
