package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/memo/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Show or change settings",
		Args:    exactArgs(0, "config <show|set> ..."),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return usagef("usage: memo config <show|set> ...")
		},
	}

	var plain bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  exactArgs(0, "config show [--plain]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := a.cfg.File()
			if file == "" {
				file = config.DefaultFile() + " (not found; defaults shown)"
			}
			if plain {
				w := tabwriter.NewWriter(a.out, 2, 4, 2, ' ', 0)
				fmt.Fprintln(w, "KEY\tVALUE")
				fmt.Fprintf(w, "config_file\t%s\n", file)
				fmt.Fprintf(w, "path\t%s\n", a.cfg.StorePath())
				fmt.Fprintf(w, "temp_path\t%s\n", a.cfg.TempPath)
				fmt.Fprintf(w, "confirm_delete_all\t%t\n", a.cfg.ConfirmDeleteAll())
				fmt.Fprintf(w, "auto_done_before\t%s\n", a.cfg.AutoDoneBefore)
				fmt.Fprintf(w, "auto_done_days\t%d\n", a.cfg.AutoDoneDays)
				fmt.Fprintf(w, "log.level\t%s\n", a.cfg.Log.Level)
				return w.Flush()
			}
			data, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "# %s\n", file)
			_, err = a.out.Write(data)
			return err
		},
	}
	show.Flags().BoolVar(&plain, "plain", false, "aligned key/value output")

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write one setting to config.yaml",
		Long:  "Write one setting to config.yaml.\n\nKeys: " + strings.Join(config.Keys, ", "),
		Args:  minArgs(2, "config set <key> <value>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := a.cfg.Set(args[0], joinArgs(args[1:]))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated %s in %s\n", strings.ToLower(args[0]), file)
			return nil
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}

func newPathCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the note file path",
		Args:  exactArgs(0, "path"),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.out, a.store.Path())
			return nil
		},
	}
	return storeCmd(cmd, storeRaw)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  exactArgs(0, "version"),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
