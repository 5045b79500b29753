package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fahmaliyi/acctvault/logger"
	"github.com/fahmaliyi/acctvault/vault"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List accounts in their saved order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records := a.session.Vault().Records()
			if len(records) == 0 {
				fmt.Fprintln(a.out, Muted.Sprint("No accounts saved yet."))
				return nil
			}
			for i, r := range records {
				line := fmt.Sprintf("%2d) %s", i+1, r.Name)
				if !r.HasSecret() {
					line += " " + Muted.Sprint("(no secret)")
				}
				fmt.Fprintln(a.out, line)
			}
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"delete"},
		Short:   "Delete an account",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !a.session.Vault().Has(name) {
				return fmt.Errorf("%w: %q", vault.ErrNotFound, name)
			}
			if !yes {
				ok, err := a.prompt.Confirm(fmt.Sprintf("Delete %s? This cannot be undone.", name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(a.out, "Cancelled.")
					return nil
				}
			}
			if err := a.session.Remove(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintln(a.out, Success.Sprintf("Deleted %s.", name))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move FROM TO",
		Short: "Move the account at position FROM to position TO (1-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[0])
			}
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}
			if err := a.session.Reorder(cmd.Context(), from-1, to-1); err != nil {
				return err
			}
			fmt.Fprintln(a.out, Success.Sprintf("Moved %d to %d.", from, to))
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	var copyOnly bool
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Decrypt and print an account's secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			rec, ok := a.session.Vault().Get(name)
			if !ok {
				return fmt.Errorf("%w: %q", vault.ErrNotFound, name)
			}
			if !rec.HasSecret() {
				return fmt.Errorf("%w: %q", vault.ErrNoSecret, name)
			}

			password, err := a.prompt.Password("Unlock password: ")
			if err != nil {
				return err
			}

			var secret string
			err = withSpinner(a.errOut, "Decrypting...", func() error {
				var err error
				secret, err = a.session.Reveal(name, password)
				return err
			})
			if err != nil {
				return a.decryptError(name, err)
			}

			if !copyOnly {
				fmt.Fprintln(a.out, secret)
				return nil
			}
			return copyAndClear(cmd, a, name, secret)
		},
	}
	cmd.Flags().BoolVarP(&copyOnly, "copy", "c", false, "copy to the clipboard instead of printing, then clear it")
	return cmd
}

// copyAndClear puts secret on the clipboard and blocks until the clear
// delay passes or the command is interrupted, then clears it.
func copyAndClear(cmd *cobra.Command, a *app, name, secret string) error {
	cb := a.clipboard()
	if err := cb.WriteAll(secret); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	delay := a.cfg.ClipboardClear
	fmt.Fprintln(a.out, Success.Sprintf("Copied %s to the clipboard. Clearing in %s...", name, delay))
	logger.FromContext(cmd.Context()).Info().Str("name", name).Dur("clear_after", delay).Msg("secret copied")

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-cmd.Context().Done():
	}

	if err := clearIfUnchanged(cb, secret); err != nil {
		return fmt.Errorf("clear clipboard: %w", err)
	}
	fmt.Fprintln(a.out, "Clipboard cleared.")
	return nil
}

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunTUI(cmd.Context(), a, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
