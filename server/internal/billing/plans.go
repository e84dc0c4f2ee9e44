// Package billing defines plan tiers and the per-plan resource quotas.
// Payment processing is not part of this package; plans change only through
// the admin CLI.
package billing

import (
	"fmt"
	"strings"
)

// Plan is a subscription tier.
type Plan string

const (
	PlanFree Plan = "FREE"
	PlanPro  Plan = "PRO"
)

// InvalidPlanError is returned for plan values outside {FREE, PRO}. It marks
// a configuration or data-integrity problem, not a user error.
type InvalidPlanError struct {
	Value string
}

func (e *InvalidPlanError) Error() string {
	return fmt.Sprintf("invalid plan %q", e.Value)
}

// ParsePlan converts a stored plan value into a Plan.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(s); p {
	case PlanFree, PlanPro:
		return p, nil
	}
	return "", &InvalidPlanError{Value: s}
}

// ParsePlanLoose is ParsePlan but ignores case and surrounding spaces; meant for CLI input.
func ParsePlanLoose(s string) (Plan, error) {
	return ParsePlan(strings.ToUpper(strings.TrimSpace(s)))
}

// PlanLimits defines the resource limits for a plan tier.
type PlanLimits struct {
	MaxEventCategories int `json:"max_event_categories"`
}

// Quotas holds the limits of every plan. It is loaded once at startup.
type Quotas struct {
	Free PlanLimits `json:"free"`
	Pro  PlanLimits `json:"pro"`
}

// DefaultQuotas are used when the config does not set a value.
var DefaultQuotas = Quotas{
	Free: PlanLimits{MaxEventCategories: 3},
	Pro:  PlanLimits{MaxEventCategories: 10},
}

// Limits returns the limits for a plan.
func (q Quotas) Limits(plan Plan) (PlanLimits, error) {
	switch plan {
	case PlanFree:
		return q.Free, nil
	case PlanPro:
		return q.Pro, nil
	}
	return PlanLimits{}, &InvalidPlanError{Value: string(plan)}
}

// Decision is the outcome of a quota check.
type Decision int

// The zero Decision is DecisionUnknown, returned only together with an
// error, so a caller that ignores the error never admits.
const (
	DecisionUnknown Decision = iota
	Admit
	DenyFreeLimitReached
	DenyProLimitReached
)

func (d Decision) String() string {
	switch d {
	case DecisionUnknown:
		return "unknown"
	case Admit:
		return "admit"
	case DenyFreeLimitReached:
		return "deny_free_limit"
	case DenyProLimitReached:
		return "deny_pro_limit"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// CheckQuota decides whether a user on plan who already owns count event
// categories may create another one.
func CheckQuota(plan Plan, count int, q Quotas) (Decision, error) {
	switch plan {
	case PlanPro:
		if count >= q.Pro.MaxEventCategories {
			return DenyProLimitReached, nil
		}
		return Admit, nil
	case PlanFree:
		if count >= q.Free.MaxEventCategories {
			return DenyFreeLimitReached, nil
		}
		return Admit, nil
	}
	return DecisionUnknown, &InvalidPlanError{Value: string(plan)}
}
