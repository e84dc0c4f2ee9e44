package category

import (
	"fmt"
	"net/http"
)

// Kind classifies a failed creation.
type Kind int

const (
	KindUnauthenticated Kind = iota + 1
	KindInvalid
	KindQuotaExceeded
	KindInvalidPlan
	KindNotProvisioned
	KindDuplicateName
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalid:
		return "invalid"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindInvalidPlan:
		return "invalid_plan"
	case KindNotProvisioned:
		return "not_provisioned"
	case KindDuplicateName:
		return "duplicate_name"
	case KindStoreUnavailable:
		return "store_unavailable"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// StatusCode returns the HTTP status for the kind.
func (k Kind) StatusCode() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindInvalid:
		return http.StatusUnprocessableEntity
	case KindQuotaExceeded:
		return http.StatusBadRequest
	case KindNotProvisioned:
		return http.StatusForbidden
	case KindDuplicateName:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Variant tells which plan ceiling a QuotaExceeded failure hit.
type Variant int

const (
	VariantNone Variant = iota
	VariantFree
	VariantPro
)

func (v Variant) String() string {
	switch v {
	case VariantFree:
		return "free"
	case VariantPro:
		return "pro"
	}
	return ""
}

// User-facing messages.
const (
	MsgUnauthorized     = "Unauthorized"
	MsgFreeLimitReached = "Categories limit reached. Please upgrade to PRO plan."
	MsgProLimitReached  = "Please remove categories to create a new one."
	MsgNotProvisioned   = "Account is not provisioned"
	MsgDuplicateName    = "A category with this name already exists"
	MsgInternal         = "Internal server error"
	MsgCreated          = "Category created successfully"
)

// Error is the only error type returned by Service. Message is safe to show
// to the user; Err holds the underlying cause, if any.
type Error struct {
	Kind    Kind
	Field   string  // set for KindInvalid
	Variant Variant // set for KindQuotaExceeded
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error.
func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

func errUnauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: MsgUnauthorized}
}

func errInvalid(field, message string, err error) *Error {
	return &Error{Kind: KindInvalid, Field: field, Message: message, Err: err}
}

func errQuota(v Variant) *Error {
	msg := MsgFreeLimitReached
	if v == VariantPro {
		msg = MsgProLimitReached
	}
	return &Error{Kind: KindQuotaExceeded, Variant: v, Message: msg}
}

func errInvalidPlan(err error) *Error {
	return &Error{Kind: KindInvalidPlan, Message: MsgInternal, Err: err}
}

func errNotProvisioned() *Error {
	return &Error{Kind: KindNotProvisioned, Message: MsgNotProvisioned}
}

func errDuplicate(err error) *Error {
	return &Error{Kind: KindDuplicateName, Field: "name", Message: MsgDuplicateName, Err: err}
}

func errStore(err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: MsgInternal, Err: err}
}
