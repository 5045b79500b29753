package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fahmaliyi/acctvault/config"
	"github.com/fahmaliyi/acctvault/logger"
	"github.com/fahmaliyi/acctvault/vault"
)

var errDecrypt = errors.New("failed to decrypt. Wrong password?")

// skipVault marks commands that must work without reading the accounts
// file, including the one that repairs a bad storage location.
const skipVault = "acctvault/skip-vault"

// Options carries the collaborators that differ between the real binary
// and tests. Zero values select the real thing.
type Options struct {
	Clipboard Clipboard
	Logger    *logger.Logger
}

// app is the state shared by every command of one invocation.
type app struct {
	opts    Options
	flags   config.Config
	cfg     *config.Config
	log     *logger.Logger
	session *vault.Session
	prompt  *prompter
	out     io.Writer
	errOut  io.Writer

	closeLog func() error
}

func (a *app) clipboard() Clipboard {
	if a.opts.Clipboard != nil {
		return a.opts.Clipboard
	}
	return systemClipboard{}
}

// setup resolves configuration, opens the log and, unless cmd is marked
// with skipVault, loads the vault.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(&a.flags)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log = a.opts.Logger
	if a.log == nil {
		a.log, a.closeLog = logger.NewFileLogger("cli", cfg.LogFile, cfg.Level())
	}
	cmd.SetContext(a.log.WithContext(cmd.Context()))
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()
	a.prompt = newPrompter(cmd.InOrStdin(), a.errOut)

	a.session = vault.NewSession(vault.NewFileStorage(cfg.StoragePath), a.log)
	if skipsVault(cmd) {
		return nil
	}
	if err := a.session.Open(cmd.Context()); err != nil {
		return fmt.Errorf("cannot load accounts from %s: %w", cfg.StoragePath, err)
	}
	return nil
}

func (a *app) close() {
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}

func skipsVault(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipVault] != "" {
			return true
		}
	}
	return false
}

// decryptError hides which decode check failed. The kind goes to the log.
func (a *app) decryptError(name string, err error) error {
	if !vault.IsDecryptFailure(err) {
		return err
	}
	a.log.Debug().Str("name", name).Bool("format", errors.Is(err, vault.ErrFormat)).Msg("decrypt failed")
	return errDecrypt
}

// Execute runs the command tree with args from os.Args and releases the
// log file afterwards.
func Execute(ctx context.Context, opts Options) error {
	root, a := newRoot(opts)
	defer a.close()
	return root.ExecuteContext(ctx)
}

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the interactive UI.
func NewRootCmd(opts Options) *cobra.Command {
	root, _ := newRoot(opts)
	return root
}

func newRoot(opts Options) (*cobra.Command, *app) {
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:   "acctvault",
		Short: "Local password vault with a separate unlock password per account",
		Long: `acctvault keeps a list of named accounts. Each account can hold one secret,
encrypted on its own under the unlock password you choose when you set it.

Run without a command to open the interactive view.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunTUI(cmd.Context(), a, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.StoragePath, "storage", "", "directory holding accounts.csv")
	pf.StringVar(&a.flags.SettingsFile, "settings", "", "settings file path")
	pf.StringVar(&a.flags.LogFile, "log-file", "", "log file path")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.DurationVar(&a.flags.ClipboardClear, "clipboard-clear", 0, "how long a copied secret stays on the clipboard")

	root.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newRemoveCmd(a),
		newMoveCmd(a),
		newShowCmd(a),
		newEncryptCmd(a),
		newDecryptCmd(a),
		newConfigCmd(a),
		newTUICmd(a),
	)
	return root, a
}
