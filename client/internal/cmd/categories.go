package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pingpanel/pingpanel/client/internal/form"
	"github.com/pingpanel/pingpanel/pkg/cli"
)

func newCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "List and create event categories",
	}
	cmd.AddCommand(newCategoriesListCmd())
	cmd.AddCommand(newCategoriesCreateCmd())
	return cmd
}

func newCategoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your event categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			cats, err := c.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			if len(cats) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No categories yet. Create one with: pingpanel categories create")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tCOLOR\tEMOJI\tCREATED")
			for _, cat := range cats {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", cat.Name, cat.Color, cat.Emoji, cat.CreatedAt.Local().Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}
}

func newCategoriesCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create an event category interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			f := form.New(c, &cli.Prompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()})
			err = f.Run(cmd.Context())
			if errors.Is(err, form.ErrAtLimit) {
				// The form already told the user where to upgrade.
				return nil
			}
			return err
		},
	}
}
