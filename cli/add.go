package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	var noSecret bool
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an account, optionally with an encrypted secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			var secret, password string
			if !noSecret {
				var err error
				if secret, err = a.prompt.Password("Secret (empty for none): "); err != nil {
					return err
				}
				if secret != "" {
					if password, err = a.prompt.NewPassword("Unlock password: "); err != nil {
						return err
					}
				}
			}

			err := withSpinner(a.errOut, "Encrypting...", func() error {
				return a.session.Create(cmd.Context(), name, secret, password)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, Success.Sprintf("Added %s.", name))
			return nil
		},
	}
	cmd.Flags().BoolVar(&noSecret, "no-secret", false, "create the account without a secret")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var newName string
	var replaceSecret bool
	cmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Rename an account or replace its secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if newName == "" {
				newName = name
			}

			var secret, password string
			if replaceSecret {
				var err error
				if secret, err = a.prompt.Password("New secret: "); err != nil {
					return err
				}
				if secret == "" {
					return fmt.Errorf("new secret is empty")
				}
				if password, err = a.prompt.NewPassword("Unlock password: "); err != nil {
					return err
				}
			}

			err := withSpinner(a.errOut, "Saving...", func() error {
				return a.session.Update(cmd.Context(), name, newName, secret, password)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, Success.Sprintf("Updated %s.", newName))
			return nil
		},
	}
	cmd.Flags().StringVar(&newName, "name", "", "new account name")
	cmd.Flags().BoolVar(&replaceSecret, "secret", false, "prompt for a new secret and unlock password")
	return cmd
}
