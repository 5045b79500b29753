package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fahmaliyi/acctvault/vault"
)

// encrypt and decrypt expose the codec on its own, without touching the
// account list.

func newEncryptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "encrypt",
		Short:       "Encrypt a message and print the encoded result",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipVault: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.prompt.Password("Message: ")
			if err != nil {
				return err
			}
			password, err := a.prompt.NewPassword("Password: ")
			if err != nil {
				return err
			}

			var encoded string
			err = withSpinner(a.errOut, "Encrypting...", func() error {
				var err error
				encoded, err = vault.Encode(msg, password)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, encoded)
			return nil
		},
	}
}

func newDecryptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "decrypt",
		Short:       "Decrypt an encoded message",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipVault: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			encoded, err := a.prompt.Line("Encoded message: ")
			if err != nil {
				return err
			}
			password, err := a.prompt.Password("Password: ")
			if err != nil {
				return err
			}

			var msg string
			err = withSpinner(a.errOut, "Decrypting...", func() error {
				var err error
				msg, err = vault.Decode(strings.TrimSpace(encoded), password)
				return err
			})
			if err != nil {
				return a.decryptError("", err)
			}
			fmt.Fprintln(a.out, msg)
			return nil
		},
	}
}
