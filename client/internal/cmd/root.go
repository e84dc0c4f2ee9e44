// Package cmd implements the pingpanel command line client.
package cmd

import (
	"github.com/spf13/cobra"
)

var version = "dev"

// NewRootCmd creates the root cobra command for the pingpanel client.
func NewRootCmd(v string) *cobra.Command {
	version = v

	root := &cobra.Command{
		Use:           "pingpanel",
		Short:         "pingpanel client: manage your event categories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newLoginCmd())
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newUsageCmd())
	root.AddCommand(newCategoriesCmd())
	root.AddCommand(newVersionCmd())

	root.PersistentFlags().String("server", "", "server URL (env PINGPANEL_SERVER)")
	root.PersistentFlags().String("token", "", "bearer token (env PINGPANEL_TOKEN)")

	return root
}
