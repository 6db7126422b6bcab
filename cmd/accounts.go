package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/mailfold/internal/auth"
	"github.com/teemow/mailfold/internal/logging"
)

func newAccountsCmd() *cobra.Command {
	var (
		keysPath  string
		debugMode bool
	)

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage authenticated accounts",
		Long: `Inspect and manage the locally registered Google accounts: list them,
change metadata, pick the default, validate stored credentials, or
remove an account and its credentials.`,
	}

	cmd.PersistentFlags().StringVar(&keysPath, "keys", "", "Path to the Google Cloud OAuth keys file. Can also use MAILFOLD_OAUTH_KEYS env var.")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	newManager := func() (*auth.Manager, error) {
		logger := logging.Setup(debugMode)
		if keysPath == "" {
			keysPath = auth.KeysPath()
		}
		keys, err := auth.LoadKeys(keysPath)
		if err != nil {
			return nil, err
		}
		return auth.NewManagerFromKeys(keys, logger), nil
	}

	cmd.AddCommand(newAccountsListCmd(newManager))
	cmd.AddCommand(newAccountsRemoveCmd(newManager))
	cmd.AddCommand(newAccountsUpdateCmd(newManager))
	cmd.AddCommand(newAccountsSetDefaultCmd(newManager))
	cmd.AddCommand(newAccountsValidateCmd(newManager))

	return cmd
}

type managerFactory func() (*auth.Manager, error)

func newAccountsListCmd(newManager managerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager()
			if err != nil {
				return err
			}

			accounts := manager.ListAccounts()
			if len(accounts) == 0 {
				fmt.Println("No accounts configured. Run 'mailfold auth' to add one.")
				return nil
			}

			for _, a := range accounts {
				marker := " "
				if a.Default {
					marker = "*"
				}
				line := fmt.Sprintf("%s %s", marker, a.ID)
				if a.Info.Name != "" {
					line += fmt.Sprintf(" (%s)", a.Info.Name)
				}
				if a.Info.Tag != "" {
					line += fmt.Sprintf(" [%s]", a.Info.Tag)
				}
				if a.Info.Email != "" {
					line += " <" + a.Info.Email + ">"
				}
				if !a.Info.LastUsed.IsZero() {
					line += " last used " + a.Info.LastUsed.Format(time.RFC3339)
				}
				fmt.Println(line)
			}
			fmt.Println("\n* marks the default account.")
			return nil
		},
	}
}

func newAccountsRemoveCmd(newManager managerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <account>",
		Short: "Remove an account and delete its stored credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager()
			if err != nil {
				return err
			}

			if !manager.RemoveAccount(args[0]) {
				return fmt.Errorf("account %s not found", args[0])
			}
			fmt.Printf("Account %s removed.\n", args[0])
			return nil
		},
	}
}

func newAccountsUpdateCmd(newManager managerFactory) *cobra.Command {
	var (
		name string
		tag  string
	)

	cmd := &cobra.Command{
		Use:   "update <account>",
		Short: "Update an account's display name or tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager()
			if err != nil {
				return err
			}

			var opts auth.UpdateOptions
			if cmd.Flags().Changed("name") {
				opts.Name = &name
			}
			if cmd.Flags().Changed("tag") {
				opts.Tag = &tag
			}
			if opts.Name == nil && opts.Tag == nil {
				return fmt.Errorf("nothing to update: pass --name and/or --tag")
			}

			if !manager.UpdateAccount(args[0], opts) {
				return fmt.Errorf("account %s not found", args[0])
			}
			fmt.Printf("Account %s updated.\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&tag, "tag", "", "New tag")

	return cmd
}

func newAccountsSetDefaultCmd(newManager managerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <account>",
		Short: "Set the default account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager()
			if err != nil {
				return err
			}

			if !manager.SetDefaultAccount(args[0]) {
				return fmt.Errorf("account %s not found", args[0])
			}
			fmt.Printf("Account %s is now the default.\n", args[0])
			return nil
		},
	}
}

func newAccountsValidateCmd(newManager managerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <account>",
		Short: "Check that an account's stored credentials still work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager()
			if err != nil {
				return err
			}

			if err := manager.ValidateAccount(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("account %s is not usable: %w", args[0], err)
			}
			fmt.Printf("Account %s has valid credentials.\n", args[0])
			return nil
		},
	}
}
