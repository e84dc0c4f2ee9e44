// Package category implements event-category creation under plan quotas.
package category

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pingpanel/pingpanel/pkg/eventcategory"
	"github.com/pingpanel/pingpanel/server/internal/billing"
	"github.com/pingpanel/pingpanel/server/internal/store"
)

// Store is the subset of store.Store the service needs.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*store.User, error)
	CountEventCategories(ctx context.Context, userID string) (int, error)
	CreateEventCategory(ctx context.Context, cat *store.EventCategory, limit int) error
	ListEventCategories(ctx context.Context, userID string) ([]store.EventCategory, error)
	LogAuditEvent(ctx context.Context, event *store.AuditEvent) error
}

// Service creates event categories for authenticated users.
type Service struct {
	store  Store
	quotas billing.Quotas
	names  eventcategory.NameValidator
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithNameValidator replaces the default category-name rules.
func WithNameValidator(v eventcategory.NameValidator) Option {
	return func(s *Service) { s.names = v }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service. Quotas are read once and never change.
func NewService(st Store, quotas billing.Quotas, opts ...Option) *Service {
	s := &Service{
		store:  st,
		quotas: quotas,
		names:  eventcategory.DefaultNameValidator,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "category")
	return s
}

// Usage is a user's plan and category consumption.
type Usage struct {
	Plan  billing.Plan
	Used  int
	Limit int
}

// AtLimit reports whether another category would be refused.
func (u Usage) AtLimit() bool {
	return u.Used >= u.Limit
}

// Create validates in and stores it as a new category owned by userID. An
// empty userID means the caller is not authenticated. Every failure is a
// *Error.
func (s *Service) Create(ctx context.Context, userID string, in eventcategory.Input) error {
	if userID == "" {
		return errUnauthenticated()
	}

	user, count, err := s.loadContext(ctx, userID)
	if err != nil {
		return err
	}

	plan, err := billing.ParsePlan(user.Plan)
	if err != nil {
		s.logger.Error("user has invalid plan", "user_id", userID, "error", err)
		return errInvalidPlan(err)
	}

	decision, err := billing.CheckQuota(plan, count, s.quotas)
	if err != nil {
		s.logger.Error("quota check failed", "user_id", userID, "error", err)
		return errInvalidPlan(err)
	}
	if decision != billing.Admit {
		s.logger.Info("category quota reached", "user_id", userID, "plan", plan, "count", count, "decision", decision)
		return errQuota(variantFor(plan))
	}

	norm, err := eventcategory.Validate(in, s.names)
	if err != nil {
		var ve *eventcategory.ValidationError
		if errors.As(err, &ve) {
			return errInvalid(ve.Field, ve.Message, err)
		}
		return errInvalid("", err.Error(), err)
	}

	limits, _ := s.quotas.Limits(plan)
	cat := &store.EventCategory{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      norm.Name,
		Color:     norm.Color,
		Emoji:     norm.Emoji,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateEventCategory(ctx, cat, limits.MaxEventCategories); err != nil {
		switch {
		case errors.Is(err, store.ErrLimitReached):
			// Another request took the last slot after the quota gate.
			s.logger.Info("category quota reached on insert", "user_id", userID, "plan", plan)
			return errQuota(variantFor(plan))
		case errors.Is(err, store.ErrDuplicateName):
			return errDuplicate(err)
		default:
			s.logger.Error("create category failed", "user_id", userID, "error", err)
			return errStore(err)
		}
	}

	s.audit(ctx, userID, cat)
	s.logger.Info("category created", "user_id", userID, "category_id", cat.ID, "name", cat.Name)
	return nil
}

// Usage returns the plan, current count and ceiling for userID.
func (s *Service) Usage(ctx context.Context, userID string) (Usage, error) {
	if userID == "" {
		return Usage{}, errUnauthenticated()
	}
	user, count, err := s.loadContext(ctx, userID)
	if err != nil {
		return Usage{}, err
	}
	plan, err := billing.ParsePlan(user.Plan)
	if err != nil {
		s.logger.Error("user has invalid plan", "user_id", userID, "error", err)
		return Usage{}, errInvalidPlan(err)
	}
	limits, _ := s.quotas.Limits(plan)
	return Usage{Plan: plan, Used: count, Limit: limits.MaxEventCategories}, nil
}

// List returns the categories owned by userID.
func (s *Service) List(ctx context.Context, userID string) ([]store.EventCategory, error) {
	if userID == "" {
		return nil, errUnauthenticated()
	}
	cats, err := s.store.ListEventCategories(ctx, userID)
	if err != nil {
		s.logger.Error("list categories failed", "user_id", userID, "error", err)
		return nil, errStore(err)
	}
	return cats, nil
}

func (s *Service) loadContext(ctx context.Context, userID string) (*store.User, int, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error("load user failed", "user_id", userID, "error", err)
		return nil, 0, errStore(err)
	}
	if user == nil {
		s.logger.Warn("no user record for authenticated identity", "user_id", userID)
		return nil, 0, errNotProvisioned()
	}
	count, err := s.store.CountEventCategories(ctx, userID)
	if err != nil {
		s.logger.Error("count categories failed", "user_id", userID, "error", err)
		return nil, 0, errStore(err)
	}
	return user, count, nil
}

func (s *Service) audit(ctx context.Context, userID string, cat *store.EventCategory) {
	detail, _ := json.Marshal(map[string]any{
		"category_id": cat.ID,
		"name":        cat.Name,
		"color":       eventcategory.FormatColor(cat.Color),
		"emoji":       cat.Emoji,
	})
	err := s.store.LogAuditEvent(ctx, &store.AuditEvent{
		ID:        uuid.New().String(),
		Action:    "category.create",
		UserID:    userID,
		Detail:    detail,
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.logger.Warn("audit log failed", "user_id", userID, "error", err)
	}
}

func variantFor(plan billing.Plan) Variant {
	if plan == billing.PlanPro {
		return VariantPro
	}
	return VariantFree
}
