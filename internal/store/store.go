package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amirbrooks/memo/internal/logging"
)

// TempSuffix is appended to the store path to get the rewrite temp file.
const TempSuffix = ".tmp"

var (
	ErrNotFound        = errors.New("store not found")
	ErrIO              = errors.New("i/o error")
	ErrMalformedRecord = errors.New("malformed record")
	ErrInvalidPattern  = errors.New("invalid pattern")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyStore      = errors.New("no notes")
	ErrInvalid         = errors.New("invalid")
	ErrRecordNotFound  = errors.New("no such note")
	timeNow            = time.Now
)

// Options configures a Store. Path is required; everything else is optional.
type Options struct {
	Path     string
	TempPath string
	Logger   *slog.Logger
}

// Store is a flat file of tab-separated note records. It holds no records in
// memory: every call re-reads the file.
type Store struct {
	path    string
	tmpPath string
	logger  *slog.Logger
}

// Open returns a Store for opts.Path. It does not create files until Init is
// called.
func Open(opts Options) (*Store, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, fmt.Errorf("%w: store path is required", ErrInvalid)
	}
	path, err := filepath.Abs(expandHome(path))
	if err != nil {
		return nil, fmt.Errorf("resolve store path: %w", err)
	}
	tmp := strings.TrimSpace(opts.TempPath)
	if tmp == "" {
		tmp = path + TempSuffix
	}
	logger := logging.Default(opts.Logger)
	return &Store{
		path:    path,
		tmpPath: tmp,
		logger:  logger.With("component", "store"),
	}, nil
}

func (s *Store) Path() string     { return s.path }
func (s *Store) TempPath() string { return s.tmpPath }

// Init creates the store directory and an empty store file if they are
// missing. It reports whether the file was created.
func (s *Store) Init() (bool, error) {
	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return false, fmt.Errorf("%w: %v", ErrIO, err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrIO, err)
	}
	s.logger.Info("created store", "path", s.path)
	return true, nil
}

// Add appends a new undone record. A nil date means today.
func (s *Store) Add(content string, date *Date) (Record, error) {
	content = cleanContent(content)
	if strings.TrimSpace(content) == "" {
		return Record{}, fmt.Errorf("%w: content is required", ErrInvalid)
	}
	d := Today()
	if date != nil {
		if !date.Valid() {
			return Record{}, fmt.Errorf("%w: %s", ErrInvalidDate, date)
		}
		d = *date
	}
	id, err := s.NextID()
	if err != nil {
		return Record{}, err
	}
	rec := Record{ID: id, Status: StatusUndone, Date: d.String(), Content: content}
	if err := s.appendLine(rec.String()); err != nil {
		return Record{}, err
	}
	s.logger.Debug("added record", "id", rec.ID)
	return rec, nil
}

// appendLine never creates the store; a missing file is ErrNotFound so Add
// and the scanner agree on what "no store" means.
func (s *Store) appendLine(line string) error {
	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return wrapOpenErr(err)
	}
	prefix, err := missingNewline(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if _, err := f.WriteString(prefix + line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// missingNewline returns "\n" when the file is non-empty and its last byte is
// not a newline, which happens after hand edits.
func missingNewline(f *os.File) (string, error) {
	st, err := f.Stat()
	if err != nil {
		return "", err
	}
	if st.Size() == 0 {
		return "", nil
	}
	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, st.Size()-1); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if buf[0] == '\n' {
		return "", nil
	}
	return "\n", nil
}

// DeleteAll removes the store file and any stale temp file. Confirmation is
// the caller's business.
func (s *Store) DeleteAll() error {
	if err := os.Remove(s.path); err != nil {
		return wrapOpenErr(err)
	}
	_ = os.Remove(s.tmpPath)
	s.logger.Info("deleted store", "path", s.path)
	return nil
}

func wrapOpenErr(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrIO, err)
}

func cleanContent(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.ReplaceAll(s, "\r", "")
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) || path == "~" {
		home, _ := os.UserHomeDir()
		if home != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
