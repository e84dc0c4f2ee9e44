// Package protocol defines the JSON bodies exchanged between the pingpanel
// server and its clients over HTTP.
package protocol

import "time"

// API paths.
const (
	PathLogin           = "/api/auth/login"
	PathAuthConfig      = "/api/auth/config"
	PathMe              = "/api/me"
	PathCategories      = "/api/v1/categories"
	PathCategoryOptions = "/api/v1/categories/options"
	PathUsage           = "/api/v1/usage"
	PathHealthz         = "/healthz"
	PathReadyz          = "/readyz"
)

// CreateCategoryRequest is the body of POST /api/v1/categories.
type CreateCategoryRequest struct {
	Name  string  `json:"name"`
	Color string  `json:"color"`           // "#RRGGBB"
	Emoji *string `json:"emoji,omitempty"` // absent means no emoji
}

// MessageResponse carries a user-facing message. Field is set when a
// request was rejected because of one input field.
type MessageResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Category is one event category as returned to its owner.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"` // "#RRGGBB"
	Emoji     string    `json:"emoji,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryList is the body of GET /api/v1/categories.
type CategoryList struct {
	Categories []Category `json:"categories"`
}

// UsageResponse is the body of GET /api/v1/usage.
type UsageResponse struct {
	Plan            string `json:"plan"`
	CategoriesUsed  int    `json:"categoriesUsed"`
	CategoriesLimit int    `json:"categoriesLimit"`
	PricingURL      string `json:"pricingUrl,omitempty"`
}

// ColorOption is a preset color offered by the create form.
type ColorOption struct {
	Hex   string `json:"hex"`
	Label string `json:"label"`
}

// EmojiOption is a preset emoji offered by the create form.
type EmojiOption struct {
	Emoji string `json:"emoji"`
	Label string `json:"label"`
}

// OptionsResponse is the body of GET /api/v1/categories/options.
type OptionsResponse struct {
	Colors []ColorOption `json:"colors"`
	Emojis []EmojiOption `json:"emojis"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// UserInfo describes the authenticated user.
type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Plan     string `json:"plan,omitempty"`
}

// AuthConfigResponse tells clients which auth provider the server uses.
type AuthConfigResponse struct {
	Provider string `json:"provider"`
}
