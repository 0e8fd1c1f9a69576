// Package legacyadmin is the operator CLI for account maintenance on
// the legacy game server, driving the tmwa-admin client the same way
// the API does.
package legacyadmin

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/themanaworld/api/internal/legacy"
)

func NewRootCommand() *cobra.Command {
	var adminPath, adminCwd string

	root := &cobra.Command{
		Use:           "legacyadmin",
		Short:         "manage accounts on the legacy game server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&adminPath, "admin", "tmwa-admin", "path to the tmwa-admin binary")
	root.PersistentFlags().StringVar(&adminCwd, "cwd", "", "working directory for tmwa-admin")

	newAdmin := func() *legacy.Admin {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		return legacy.NewAdmin(adminPath, adminCwd, logger)
	}

	create := &cobra.Command{
		Use:   "create <username> <gender> <email> <password>",
		Short: "create a game account",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newAdmin().CreateAccount(cmd.Context(), args[0], args[1], args[2], args[3])
		},
	}

	password := &cobra.Command{
		Use:   "password <username> <newpass>",
		Short: "set the password of a game account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newAdmin().SetPassword(cmd.Context(), args[0], args[1])
		},
	}

	root.AddCommand(create, password)
	return root
}
