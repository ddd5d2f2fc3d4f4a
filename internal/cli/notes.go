package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/memo/internal/store"
)

const defaultLatest = 5

func newAddCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "add <content>...",
		Short: "Add an undone note dated today (or --date)",
		Args:  minArgs(1, `add "<content>" [--date YYYY-MM-DD]`),
		RunE: func(cmd *cobra.Command, args []string) error {
			var d *store.Date
			if strings.TrimSpace(date) != "" {
				parsed, err := store.ParseDate(date)
				if err != nil {
					return err
				}
				d = &parsed
			}
			rec, err := a.store.Add(joinArgs(args), d)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added %d\n", rec.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "note date (YYYY-MM-DD)")
	return storeCmd(cmd, storeInit)
}

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list", "show-all"},
		Short:   "List notes in file order",
		Args:    exactArgs(0, "ls [--all]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.store.List(a.view())
			if err != nil {
				return err
			}
			a.list("Notes", recs)
			return nil
		},
	}
	return storeCmd(cmd, storeInit)
}

func newShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one note, whatever its status",
		Args:  exactArgs(1, "show <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rec, err := a.store.Get(id)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, rec.String())
			return nil
		},
	}
	return storeCmd(cmd, storeInit)
}

func newSearchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "search <words>...",
		Aliases: []string{"find"},
		Short:   "Notes containing any of the words, ignoring case",
		Args:    minArgs(1, "search <words>..."),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.store.Search(joinArgs(args), a.view())
			if err != nil {
				return err
			}
			a.list("Search: "+joinArgs(args), recs)
			return nil
		},
	}
	return storeCmd(cmd, storeInit)
}

func newRegexCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regex <pattern>",
		Short: "Notes whose line matches a regular expression, ignoring case",
		Args:  exactArgs(1, "regex <pattern>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.store.SearchRegex(args[0], a.view())
			if err != nil {
				return err
			}
			a.list("Regex: "+args[0], recs)
			return nil
		},
	}
	return storeCmd(cmd, storeInit)
}

func newLatestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "latest [N|all]",
		Short: fmt.Sprintf("Show the last N notes (default %d)", defaultLatest),
		Args:  maxArgs(1, "latest [N|all]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := defaultLatest
			if len(args) == 1 {
				if strings.EqualFold(args[0], "all") {
					n = -1
				} else {
					v, err := strconv.Atoi(args[0])
					if err != nil {
						return usagef("latest: %q is not a number", args[0])
					}
					n = v
				}
			}
			recs, err := a.store.Latest(n, a.view())
			if err != nil {
				return err
			}
			a.list("Latest", recs)
			return nil
		},
	}
	return storeCmd(cmd, storeInit)
}

func newGroupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Notes grouped by date, oldest first",
		Args:  exactArgs(0, "group [--all]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.store.GroupByDate(a.view())
			if err != nil {
				return err
			}
			if store.IsTelegramFormat(a.output) {
				fmt.Fprintln(a.out, store.RenderTelegramGroups(groups))
				return nil
			}
			if len(groups) == 0 {
				fmt.Fprintln(a.out, "No notes.")
				return nil
			}
			for i, g := range groups {
				if i > 0 {
					fmt.Fprintln(a.out)
				}
				fmt.Fprintln(a.out, g.Date)
				for _, r := range g.Records {
					fmt.Fprintf(a.out, "  %d\t%s\t%s\n", r.ID, r.StatusToken(), r.Content)
				}
			}
			return nil
		},
	}
	return storeCmd(cmd, storeInit)
}

func newCountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count lines in the note file",
		Args:  exactArgs(0, "count"),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.store.LineCount()
			if errors.Is(err, store.ErrEmptyStore) {
				fmt.Fprintln(a.out, "No notes.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d notes\n", n)
			return nil
		},
	}
	return storeCmd(cmd, storeInit)
}

func newTagsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Inline #tags and @mentions with their note counts",
		Args:  exactArgs(0, "tags [--all]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := a.store.TagCounts(a.view())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 2, 4, 2, ' ', 0)
			for _, c := range counts {
				fmt.Fprintf(w, "%s\t%d\n", c.Tag, c.Count)
			}
			return w.Flush()
		},
	}
	return storeCmd(cmd, storeInit)
}

func newTaggedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tagged <tag>",
		Short: "Notes carrying an inline #tag or @mention",
		Args:  exactArgs(1, "tagged <tag>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.store.Tagged(args[0], a.view())
			if err != nil {
				return err
			}
			a.list("Tagged "+args[0], recs)
			return nil
		},
	}
	return storeCmd(cmd, storeInit)
}

func newStatusCmd(a *app, name, short, verb string, op store.StatusOp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " <id>...",
		Short: short,
		Args:  minArgs(1, name+" <id>..."),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			var missing []int
			for _, id := range ids {
				found, err := a.store.MarkStatus(id, op)
				if err != nil {
					return err
				}
				if !found {
					missing = append(missing, id)
					continue
				}
				fmt.Fprintf(a.out, "%s %d\n", verb, id)
			}
			return missingErr(missing)
		},
	}
	return storeCmd(cmd, storeInit)
}

func newDoneAllCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done-all",
		Short: "Mark every note done",
		Args:  exactArgs(0, "done-all"),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.store.MarkAllDone()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Marked %d notes done\n", n)
			return nil
		},
	}
	return storeCmd(cmd, storeInit)
}

func newDoneBeforeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done-before <YYYY-MM-DD>",
		Short: "Mark every note dated before a day done",
		Args:  exactArgs(1, "done-before <YYYY-MM-DD>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cutoff, err := store.ParseDate(args[0])
			if err != nil {
				return err
			}
			n, err := a.store.MarkDoneBefore(cutoff)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Marked %d notes done\n", n)
			return nil
		},
	}
	return storeCmd(cmd, storeInit)
}

func newDeleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete notes by id",
		Args:    minArgs(1, "rm <id>..."),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			var missing []int
			for _, id := range ids {
				found, err := a.store.Delete(id)
				if err != nil {
					return err
				}
				if !found {
					missing = append(missing, id)
					continue
				}
				fmt.Fprintf(a.out, "Deleted %d\n", id)
			}
			return missingErr(missing)
		},
	}
	return storeCmd(cmd, storeInit)
}

func newDeleteDoneCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm-done",
		Short: "Delete every done note",
		Args:  exactArgs(0, "rm-done"),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.store.DeleteDone()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %d done notes\n", n)
			return nil
		},
	}
	return storeCmd(cmd, storeInit)
}

func newDeleteAllCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm-all",
		Short: "Delete the note file",
		Args:  exactArgs(0, "rm-all [--yes]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.ConfirmDeleteAll() && !yes {
				ok, err := confirm(a.in, a.out, fmt.Sprintf("Delete all notes in %s?", a.store.Path()))
				if err != nil {
					return err
				}
				if !ok {
					return errAborted
				}
			}
			if err := a.store.DeleteAll(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Deleted", a.store.Path())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return storeCmd(cmd, storeRaw)
}

func newReorganizeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorganize",
		Short: "Renumber notes 1..N in file order",
		Args:  exactArgs(0, "reorganize"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Reorganize(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Reorganized", a.store.Path())
			return nil
		},
	}
	return storeCmd(cmd, storeInit)
}

func newReplaceCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "replace <id> [content]...",
		Short: "Replace the content and/or --date of a note",
		Args:  minArgs(1, `replace <id> ["<content>"] [--date YYYY-MM-DD]`),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			content := joinArgs(args[1:])
			if content == "" && strings.TrimSpace(date) == "" {
				return usagef(`replace: give new content, --date, or both`)
			}
			var d *store.Date
			if strings.TrimSpace(date) != "" {
				parsed, err := store.ParseDate(date)
				if err != nil {
					return err
				}
				d = &parsed
			}
			found, err := a.store.Replace(id, content, d)
			if err != nil {
				return err
			}
			if !found {
				return missingErr([]int{id})
			}
			fmt.Fprintf(a.out, "Updated %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "new date (YYYY-MM-DD)")
	return storeCmd(cmd, storeInit)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id < 1 {
		return 0, usagef("invalid note id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func missingErr(ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return fmt.Errorf("%w: %s", store.ErrRecordNotFound, strings.Join(parts, ", "))
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	v, ok := parseYes(line)
	return ok && v, nil
}

func parseYes(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true, true
	case "", "n", "no":
		return false, true
	default:
		return false, false
	}
}
