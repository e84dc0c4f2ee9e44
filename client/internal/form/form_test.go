package form

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/pingpanel/pingpanel/client/internal/apiclient"
	"github.com/pingpanel/pingpanel/pkg/cli"
	"github.com/pingpanel/pingpanel/pkg/protocol"
)

type fakeAPI struct {
	usage      protocol.UsageResponse
	optionsErr error
	createErr  error
	created    []protocol.CreateCategoryRequest
}

func (f *fakeAPI) Usage(ctx context.Context) (*protocol.UsageResponse, error) {
	u := f.usage
	return &u, nil
}

func (f *fakeAPI) Options(ctx context.Context) (*protocol.OptionsResponse, error) {
	if f.optionsErr != nil {
		return nil, f.optionsErr
	}
	return &protocol.OptionsResponse{
		Colors: []protocol.ColorOption{{Hex: "#4ECDC4", Label: "Teal"}, {Hex: "#FF6B6B", Label: "Bright Red"}},
		Emojis: []protocol.EmojiOption{{Emoji: "🚀", Label: "Launch"}},
	}, nil
}

func (f *fakeAPI) CreateCategory(ctx context.Context, req protocol.CreateCategoryRequest) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, req)
	return "Category created successfully", nil
}

func run(t *testing.T, api *fakeAPI, input string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	p := &cli.Prompter{In: strings.NewReader(input), Out: out}
	err := New(api, p).Run(context.Background())
	return out.String(), err
}

func TestRun_PresetColorAndEmoji(t *testing.T) {
	api := &fakeAPI{usage: protocol.UsageResponse{Plan: "FREE", CategoriesUsed: 1, CategoriesLimit: 3}}
	out, err := run(t, api, "sales\n2\n2\n")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(api.created) != 1 {
		t.Fatalf("created %d categories, want 1", len(api.created))
	}
	got := api.created[0]
	if got.Name != "sales" || got.Color != "#FF6B6B" || got.Emoji == nil || *got.Emoji != "🚀" {
		t.Errorf("submitted %+v", got)
	}
	if !strings.Contains(out, "Category created successfully") {
		t.Errorf("output missing server message: %q", out)
	}
}

func TestRun_CustomColorNoEmoji(t *testing.T) {
	api := &fakeAPI{usage: protocol.UsageResponse{Plan: "PRO", CategoriesUsed: 0, CategoriesLimit: 10}}
	// Invalid name and color are re-asked before anything is submitted.
	out, err := run(t, api, "bad name\nsign-ups\n3\nred\n#abcdef\n1\n")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out, "letters, numbers or hypens") {
		t.Errorf("expected name validation message, got %q", out)
	}
	if !strings.Contains(out, "Invalid color format.") {
		t.Errorf("expected color validation message, got %q", out)
	}
	got := api.created[0]
	if got.Name != "sign-ups" || got.Color != "#abcdef" || got.Emoji != nil {
		t.Errorf("submitted %+v", got)
	}
}

func TestRun_AtLimitRedirects(t *testing.T) {
	api := &fakeAPI{usage: protocol.UsageResponse{
		Plan: "FREE", CategoriesUsed: 3, CategoriesLimit: 3, PricingURL: "https://pingpanel.dev/pricing",
	}}
	out, err := run(t, api, "")
	if !errors.Is(err, ErrAtLimit) {
		t.Fatalf("Run: got %v, want ErrAtLimit", err)
	}
	if !strings.Contains(out, "https://pingpanel.dev/pricing") {
		t.Errorf("output missing pricing url: %q", out)
	}
	if len(api.created) != 0 {
		t.Error("nothing should be submitted at the limit")
	}
}

func TestRun_ServerRejection(t *testing.T) {
	api := &fakeAPI{
		usage:     protocol.UsageResponse{Plan: "FREE", CategoriesUsed: 2, CategoriesLimit: 3},
		createErr: &apiclient.APIError{Status: http.StatusConflict, Message: "A category with this name already exists", Field: "name"},
	}
	out, err := run(t, api, "sales\n1\n1\n")
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Fatalf("Run: got %v", err)
	}
	if !strings.Contains(out, "A category with this name already exists") {
		t.Errorf("server message not shown verbatim: %q", out)
	}
}

func TestRun_FallsBackToBuiltinPresets(t *testing.T) {
	api := &fakeAPI{
		usage:      protocol.UsageResponse{Plan: "FREE", CategoriesUsed: 0, CategoriesLimit: 3},
		optionsErr: errors.New("unavailable"),
	}
	if _, err := run(t, api, "sales\n1\n1\n"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if api.created[0].Color != "#FF6B6B" {
		t.Errorf("color = %q, want first built-in preset", api.created[0].Color)
	}
}

func TestRun_InputEnds(t *testing.T) {
	api := &fakeAPI{usage: protocol.UsageResponse{Plan: "FREE", CategoriesUsed: 0, CategoriesLimit: 3}}
	if _, err := run(t, api, ""); !errors.Is(err, cli.ErrNoInput) {
		t.Fatalf("Run: got %v, want ErrNoInput", err)
	}
}
