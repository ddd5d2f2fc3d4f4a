package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/memo/internal/config"
	"github.com/amirbrooks/memo/internal/logging"
	"github.com/amirbrooks/memo/internal/store"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitNotFound = 3
	ExitConflict = 4
	ExitInternal = 10
)

var version = "dev"

// Commands that touch the note file set annotStore. storeInit creates a
// missing file and applies auto-done first; storeRaw only opens it.
const (
	annotStore = "store"
	storeInit  = "init"
	storeRaw   = "raw"
)

var errAborted = errors.New("aborted")

type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// app carries what PersistentPreRunE resolved to the command handlers.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
	all    bool
	output string
}

func (a *app) view() store.View {
	return store.View{IncludePostponed: a.all}
}

// Run executes the memo command line and returns the process exit code.
func Run(args []string) int {
	return run(args, os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, in io.Reader, out, errOut io.Writer) int {
	a := &app{in: in, out: out, errOut: errOut, logger: logging.Discard()}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.Execute()
	code := exitCode(err)
	if err != nil {
		if errors.Is(err, errAborted) {
			fmt.Fprintln(errOut, "Aborted.")
		} else {
			fmt.Fprintln(errOut, "memo:", err)
		}
		if code == ExitUsage {
			fmt.Fprintln(errOut, "Run 'memo --help' for usage.")
		}
	}
	return code
}

func exitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ue),
		errors.Is(err, store.ErrInvalid),
		errors.Is(err, store.ErrInvalidDate),
		errors.Is(err, store.ErrInvalidPattern),
		errors.Is(err, config.ErrInvalid):
		return ExitUsage
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrRecordNotFound):
		return ExitNotFound
	case errors.Is(err, errAborted):
		return ExitConflict
	default:
		return ExitInternal
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "memo",
		Short: "memo: notes and tasks in one flat file",
		Long: `memo keeps notes in a single tab-separated text file (default ~/.memo).

Each line is <id> TAB <status> TAB <date> TAB <content>, status is U (undone),
D (done) or P (postponed). Postponed notes are hidden unless --all is given.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown command %q", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return usagef("no command given")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.String("file", "", "note file (default: $MEMO_PATH, config path, or ~/.memo)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVarP(&a.all, "all", "a", false, "include postponed notes")
	pf.StringVarP(&a.output, "output", "o", "plain", "listing style: plain or telegram")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newSearchCmd(a),
		newRegexCmd(a),
		newLatestCmd(a),
		newGroupCmd(a),
		newCountCmd(a),
		newTagsCmd(a),
		newTaggedCmd(a),
		newStatusCmd(a, "done", "Mark notes done", "Done", store.OpSetDone),
		newStatusCmd(a, "undone", "Mark notes undone", "Undone", store.OpSetUndone),
		newStatusCmd(a, "postpone", "Postpone undone notes", "Postponed", store.OpPostpone),
		newDoneAllCmd(a),
		newDoneBeforeCmd(a),
		newDeleteCmd(a),
		newDeleteDoneCmd(a),
		newDeleteAllCmd(a),
		newReorganizeCmd(a),
		newReplaceCmd(a),
		newExportCmd(a),
		newWatchCmd(a),
		newPathCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads config and builds the logger. For store commands it also opens
// the store, creates it when missing and applies the auto-done cutoff.
func (a *app) setup(cmd *cobra.Command) error {
	bootstrap := logging.New(a.errOut, slog.LevelError)
	cfg, err := config.Load(config.Options{Flags: cmd.Flags(), Logger: bootstrap})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(a.errOut, cfg.LogLevel())
	switch strings.ToLower(a.output) {
	case "plain", "telegram":
	default:
		return usagef("unknown output %q (plain or telegram)", a.output)
	}

	mode := cmd.Annotations[annotStore]
	if mode == "" {
		return nil
	}
	s, err := store.Open(store.Options{
		Path:     cfg.StorePath(),
		TempPath: cfg.TempPath,
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}
	a.store = s
	if mode == storeRaw {
		return nil
	}
	if _, err := s.Init(); err != nil {
		return err
	}
	if cutoff, ok := cfg.AutoDoneCutoff(); ok {
		n, err := s.MarkDoneBefore(cutoff)
		if err != nil {
			return fmt.Errorf("auto done: %w", err)
		}
		if n > 0 {
			a.logger.Info("marked old notes done", "count", n, "before", cutoff.String())
		}
	}
	return nil
}

func storeCmd(cmd *cobra.Command, mode string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotStore] = mode
	return cmd
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: memo %s", usage)
		}
		return nil
	}
}

func minArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usagef("usage: memo %s", usage)
		}
		return nil
	}
}

func maxArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return usagef("usage: memo %s", usage)
		}
		return nil
	}
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func printRecords(w io.Writer, recs []store.Record) {
	for _, r := range recs {
		fmt.Fprintln(w, r.String())
	}
}

// list prints recs in the selected output style.
func (a *app) list(title string, recs []store.Record) {
	if store.IsTelegramFormat(a.output) {
		fmt.Fprintln(a.out, store.RenderTelegramList(title, recs))
		return
	}
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No notes.")
		return
	}
	printRecords(a.out, recs)
}
