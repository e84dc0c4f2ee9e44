package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pingpanel/pingpanel/pkg/cli"
	"github.com/pingpanel/pingpanel/server/internal/auth"
	"github.com/pingpanel/pingpanel/server/internal/billing"
	"github.com/pingpanel/pingpanel/server/internal/config"
	"github.com/pingpanel/pingpanel/server/internal/store"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage local accounts and their plans",
	}
	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserSetPlanCmd())
	cmd.AddCommand(newUserAuditCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a builtin-auth user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, _ := cmd.Flags().GetString("plan")
			role, _ := cmd.Flags().GetString("role")

			p, err := billing.ParsePlanLoose(plan)
			if err != nil {
				return err
			}

			cfg, st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if cfg.Auth.Provider != "builtin" {
				return fmt.Errorf("user create requires the builtin auth provider, config uses %q", cfg.Auth.Provider)
			}

			prompter := &cli.Prompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
			password := prompter.AskPassword("Password")
			if len(password) < 8 {
				return errors.New("password must be at least 8 characters")
			}

			svc := auth.NewService(st, cfg.Auth)
			user, err := svc.Register(cmd.Context(), args[0], password, role, string(p))
			if err != nil {
				return err
			}
			prompter.Printf("Created %s (%s, %s)\n", user.Username, user.Role, user.Plan)
			return nil
		},
	}
	cmd.Flags().String("plan", string(billing.PlanFree), "plan: FREE or PRO")
	cmd.Flags().String("role", "user", "role: user or admin")
	return cmd
}

func newUserSetPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-plan <username> <plan>",
		Short: "Move a user to the FREE or PRO plan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := billing.ParsePlanLoose(args[1])
			if err != nil {
				return err
			}

			_, st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			user, err := st.GetUser(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get user: %w", err)
			}
			if user == nil {
				return fmt.Errorf("user %q not found", args[0])
			}
			if err := st.SetUserPlan(cmd.Context(), user.ID, string(p)); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", user.Username, user.Plan, p)
			return nil
		},
	}
}

func newUserAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit <username>",
		Short: "Show recent audit events for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			_, st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			user, err := st.GetUser(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get user: %w", err)
			}
			if user == nil {
				return fmt.Errorf("user %q not found", args[0])
			}
			events, err := st.ListAuditEvents(cmd.Context(), user.ID, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "TIME\tACTION\tDETAIL")
			for _, e := range events {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, string(e.Detail))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int("limit", 20, "maximum number of events")
	return cmd
}

func openStore(cmd *cobra.Command) (*config.Config, store.Store, error) {
	cfg, _, err := loadConfig(cmd, nil)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.New(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	return cfg, st, nil
}
