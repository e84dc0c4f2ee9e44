package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show your plan and category usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			u, err := c.Usage(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Plan:       %s\n", u.Plan)
			_, _ = fmt.Fprintf(out, "Categories: %d/%d\n", u.CategoriesUsed, u.CategoriesLimit)
			if u.CategoriesUsed >= u.CategoriesLimit && u.PricingURL != "" {
				_, _ = fmt.Fprintf(out, "Limit reached. Upgrade: %s\n", u.PricingURL)
			}
			return nil
		},
	}
}
