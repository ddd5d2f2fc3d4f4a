package cli

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/amirbrooks/memo/internal/config"
	"github.com/amirbrooks/memo/internal/store"
)

var timeNow = func() time.Time { return time.Now().UTC() }

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

type exportPayload struct {
	Store      string         `json:"store"`
	ExportedAt time.Time      `json:"exported_at"`
	Notes      []store.Record `json:"notes"`
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		dir    string
		stdout bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write notes as JSON or NDJSON",
		Long: `Write the visible notes (all of them with --all) to
<dir>/notes-<ULID>.json or .ndjson. File names sort by export time.`,
		Args: exactArgs(0, "export [--format json|ndjson] [--dir <path>] [--stdout]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.store.List(a.view())
			if err != nil {
				return err
			}
			if recs == nil {
				recs = []store.Record{}
			}
			var data []byte
			switch strings.ToLower(format) {
			case "json":
				data, err = encodeJSON(exportPayload{Store: a.store.Path(), ExportedAt: timeNow(), Notes: recs})
			case "ndjson":
				data, err = encodeNDJSON(recs)
			default:
				return usagef("export: unknown format %q (json or ndjson)", format)
			}
			if err != nil {
				return err
			}
			if stdout {
				_, err := a.out.Write(data)
				return err
			}
			if strings.TrimSpace(dir) == "" {
				dir = filepath.Join(config.Dir(), "exports")
			}
			path, err := writeExportFile(dir, "notes", strings.ToLower(format), data)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(a.out, "Wrote %d notes to: %s\n", len(recs), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json or ndjson")
	cmd.Flags().StringVar(&dir, "dir", "", "export directory (default: <config dir>/exports)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "write to stdout instead of a file")
	return storeCmd(cmd, storeInit)
}

func encodeJSON(payload any) ([]byte, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func encodeNDJSON(recs []store.Record) ([]byte, error) {
	var b strings.Builder
	for _, r := range recs {
		line, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

func writeExportFile(dir, base, ext string, data []byte) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("export directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.%s", base, newULID(), ext))
	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%d", timeNow().UnixNano()))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return path, nil
}

func newULID() string {
	t := ulid.Timestamp(timeNow())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return id.String()
}
