package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pingpanel/pingpanel/pkg/protocol"
)

func TestLoginStoresToken(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+protocol.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		var req protocol.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "alice" || req.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(protocol.MessageResponse{Message: "Invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(protocol.LoginResponse{
			Token: "tok-1",
			User:  protocol.UserInfo{ID: "u1", Username: "alice", Role: "user", Plan: "FREE"},
		})
	})
	mux.HandleFunc("GET "+protocol.PathMe, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(protocol.UserInfo{ID: "u1", Username: "alice"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL+"/", "", nil)
	resp, err := c.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.User.Plan != "FREE" {
		t.Errorf("plan = %q, want FREE", resp.User.Plan)
	}
	if _, err := c.Me(context.Background()); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-1")
	}

	_, err = c.Login(context.Background(), "alice", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || apiErr.Message != "Invalid credentials" {
		t.Errorf("bad login error = %v", err)
	}
}

func TestCreateCategory(t *testing.T) {
	var got protocol.CreateCategoryRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != protocol.PathCategories {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(protocol.MessageResponse{Message: "Category created successfully"})
	}))
	defer srv.Close()

	emoji := "💰"
	msg, err := New(srv.URL, "tok", nil).CreateCategory(context.Background(), protocol.CreateCategoryRequest{
		Name: "sales", Color: "#FF6B6B", Emoji: &emoji,
	})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if msg != "Category created successfully" {
		t.Errorf("message = %q", msg)
	}
	if got.Name != "sales" || got.Color != "#FF6B6B" || got.Emoji == nil || *got.Emoji != emoji {
		t.Errorf("server received %+v", got)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantMsg   string
		wantField string
	}{
		{"field error", http.StatusUnprocessableEntity, `{"message":"Invalid color format.","field":"color"}`, "Invalid color format.", "color"},
		{"quota", http.StatusBadRequest, `{"message":"Free plan limit reached"}`, "Free plan limit reached", ""},
		{"non-json body", http.StatusBadGateway, `<html>bad gateway</html>`, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, "tok", nil).CreateCategory(context.Background(), protocol.CreateCategoryRequest{})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.Status != tt.status || apiErr.Message != tt.wantMsg || apiErr.Field != tt.wantField {
				t.Errorf("got %+v", apiErr)
			}
			if tt.wantMsg == "" && apiErr.Error() == "" {
				t.Error("Error() should describe the status")
			}
		})
	}
}

func TestUsageListAndOptions(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+protocol.PathUsage, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(protocol.UsageResponse{Plan: "PRO", CategoriesUsed: 4, CategoriesLimit: 10})
	})
	mux.HandleFunc("GET "+protocol.PathCategories, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(protocol.CategoryList{Categories: []protocol.Category{
			{ID: "c1", Name: "sales", Color: "#FF6B6B", CreatedAt: created},
		}})
	})
	mux.HandleFunc("GET "+protocol.PathCategoryOptions, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(protocol.OptionsResponse{
			Colors: []protocol.ColorOption{{Hex: "#FF6B6B", Label: "Bright Red"}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, "tok", nil)
	ctx := context.Background()

	u, err := c.Usage(ctx)
	if err != nil || u.Plan != "PRO" || u.CategoriesUsed != 4 || u.CategoriesLimit != 10 {
		t.Errorf("Usage = %+v, %v", u, err)
	}
	cats, err := c.ListCategories(ctx)
	if err != nil || len(cats) != 1 || !cats[0].CreatedAt.Equal(created) {
		t.Errorf("ListCategories = %+v, %v", cats, err)
	}
	opts, err := c.Options(ctx)
	if err != nil || len(opts.Colors) != 1 {
		t.Errorf("Options = %+v, %v", opts, err)
	}
}
