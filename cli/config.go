package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fahmaliyi/acctvault/config"
	"github.com/fahmaliyi/acctvault/vault"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Show or change settings",
		Annotations: map[string]string{skipVault: "true"},
	}
	cmd.AddCommand(newConfigShowCmd(a), newConfigSetStorageCmd(a))
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := []struct{ key, value string }{
				{"storage", a.cfg.StoragePath},
				{"settings file", a.cfg.SettingsFile},
				{"log file", a.cfg.LogFile},
				{"log level", a.cfg.LogLevel},
				{"clipboard clear", a.cfg.ClipboardClear.String()},
			}
			for _, r := range rows {
				fmt.Fprintf(a.out, "%s %s\n", Info.Sprintf("%-16s", r.key+":"), r.value)
			}
			return nil
		},
	}
}

func newConfigSetStorageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-storage PATH",
		Short: "Save a new storage directory and reload the accounts from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(config.ExpandHome(args[0]))
			if err != nil {
				return err
			}

			// Nothing is saved until the new location has been read.
			a.session.SetStorage(vault.NewFileStorage(path))
			if err := a.session.Reload(cmd.Context()); err != nil {
				return fmt.Errorf("cannot load accounts from %s, setting not saved: %w", path, err)
			}

			settings, err := config.LoadSettings(a.cfg.SettingsFile)
			if err != nil {
				return err
			}
			settings.StoragePath = path
			if err := config.SaveSettings(a.cfg.SettingsFile, settings); err != nil {
				return err
			}
			a.cfg.StoragePath = path
			a.log.Info().Str("storage", path).Msg("storage location changed")

			fmt.Fprintln(a.out, Success.Sprintf("Storage set to %s (%d accounts).", path, a.session.Vault().Len()))
			if a.flags.StoragePath != "" || os.Getenv("VAULT_STORAGE_PATH") != "" {
				fmt.Fprintln(a.errOut, Warning.Sprint("Note: --storage or VAULT_STORAGE_PATH overrides the saved setting."))
			}
			return nil
		},
	}
}
