// Package form implements the interactive create-category form of the CLI client.
package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/pingpanel/pingpanel/client/internal/apiclient"
	"github.com/pingpanel/pingpanel/pkg/cli"
	"github.com/pingpanel/pingpanel/pkg/eventcategory"
	"github.com/pingpanel/pingpanel/pkg/protocol"
)

// ErrAtLimit is returned when the caller's plan has no room for another category.
var ErrAtLimit = errors.New("category limit reached")

// API is the subset of the server API the form needs.
type API interface {
	Usage(ctx context.Context) (*protocol.UsageResponse, error)
	Options(ctx context.Context) (*protocol.OptionsResponse, error)
	CreateCategory(ctx context.Context, req protocol.CreateCategoryRequest) (string, error)
}

var _ API = (*apiclient.Client)(nil)

// Form collects a category from the terminal and submits it.
type Form struct {
	api API
	p   *cli.Prompter
}

// New creates a Form.
func New(api API, p *cli.Prompter) *Form {
	return &Form{api: api, p: p}
}

// Run checks usage, prompts for the fields, validates them locally and
// submits the category. Server rejections are printed verbatim and returned.
func (f *Form) Run(ctx context.Context) error {
	usage, err := f.api.Usage(ctx)
	if err != nil {
		return fmt.Errorf("fetch usage: %w", err)
	}
	if usage.CategoriesUsed >= usage.CategoriesLimit {
		f.p.Printf("You have used %d of %d categories on the %s plan.\n",
			usage.CategoriesUsed, usage.CategoriesLimit, usage.Plan)
		if usage.PricingURL != "" {
			f.p.Printf("Upgrade to add more: %s\n", usage.PricingURL)
		}
		return ErrAtLimit
	}
	f.p.Printf("Create event category (%d of %d used)\n\n", usage.CategoriesUsed, usage.CategoriesLimit)

	colors, emojis := f.options(ctx)

	in, err := f.collect(colors, emojis)
	if err != nil {
		return err
	}
	if _, err := eventcategory.Validate(in, nil); err != nil {
		return err
	}

	msg, err := f.api.CreateCategory(ctx, protocol.CreateCategoryRequest{
		Name:  in.Name,
		Color: in.Color,
		Emoji: in.Emoji,
	})
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			f.p.Printf("%s\n", apiErr.Message)
		}
		return err
	}
	f.p.Printf("%s\n", msg)
	return nil
}

// options fetches presets from the server, falling back to the built-in lists.
func (f *Form) options(ctx context.Context) ([]protocol.ColorOption, []protocol.EmojiOption) {
	if opts, err := f.api.Options(ctx); err == nil && len(opts.Colors) > 0 {
		return opts.Colors, opts.Emojis
	}
	colors := make([]protocol.ColorOption, 0, len(eventcategory.ColorOptions))
	for _, c := range eventcategory.ColorOptions {
		colors = append(colors, protocol.ColorOption{Hex: c.Hex, Label: c.Label})
	}
	emojis := make([]protocol.EmojiOption, 0, len(eventcategory.EmojiOptions))
	for _, e := range eventcategory.EmojiOptions {
		emojis = append(emojis, protocol.EmojiOption{Emoji: e.Emoji, Label: e.Label})
	}
	return colors, emojis
}

func (f *Form) collect(colors []protocol.ColorOption, emojis []protocol.EmojiOption) (eventcategory.Input, error) {
	var in eventcategory.Input

	name, err := f.p.AskValid("Category name", "", eventcategory.DefaultNameValidator.ValidateName)
	if err != nil {
		return in, err
	}
	in.Name = name

	colorLabels := make([]string, 0, len(colors)+1)
	for _, c := range colors {
		colorLabels = append(colorLabels, fmt.Sprintf("%s %s", c.Hex, c.Label))
	}
	colorLabels = append(colorLabels, "Custom hex")
	idx, err := f.p.Choose("Color", colorLabels, 0)
	if err != nil {
		return in, err
	}
	if idx < len(colors) {
		in.Color = colors[idx].Hex
	} else {
		in.Color, err = f.p.AskValid("  Hex color (#RRGGBB)", "", func(s string) error {
			_, err := eventcategory.ParseColor(s)
			return fieldMessage(err)
		})
		if err != nil {
			return in, err
		}
	}

	emojiLabels := make([]string, 0, len(emojis)+1)
	emojiLabels = append(emojiLabels, "None")
	for _, e := range emojis {
		emojiLabels = append(emojiLabels, fmt.Sprintf("%s %s", e.Emoji, e.Label))
	}
	idx, err = f.p.Choose("Emoji", emojiLabels, 0)
	if err != nil {
		return in, err
	}
	if idx > 0 {
		emoji := emojis[idx-1].Emoji
		in.Emoji = &emoji
	}
	return in, nil
}

// fieldMessage strips the field prefix so prompts show only the message.
func fieldMessage(err error) error {
	var ve *eventcategory.ValidationError
	if errors.As(err, &ve) {
		return errors.New(ve.Message)
	}
	return err
}
