package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrStopScan can be returned by a visitor to end a scan early without error.
var ErrStopScan = errors.New("stop scan")

// LineCount returns the number of complete records. Malformed and blank
// lines are not counted. A store with no records is ErrEmptyStore, not
// zero, so callers can report "no notes".
func (s *Store) LineCount() (int, error) {
	n := 0
	err := s.ForEachLine(func(line string) error {
		if _, err := ParseRecord(line); err == nil {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrEmptyStore
	}
	return n, nil
}

// ForEachLine calls fn for every non-blank line in file order. The file is
// opened per call and always closed before returning.
func (s *Store) ForEachLine(fn func(line string) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return wrapOpenErr(err)
	}
	defer f.Close()
	return eachLine(f, fn)
}

func eachLine(r io.Reader, fn func(line string) error) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimRight(line, "\r\n")
			if strings.TrimSpace(line) != "" {
				if ferr := fn(line); ferr != nil {
					if errors.Is(ferr, ErrStopScan) {
						return nil
					}
					return ferr
				}
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
	}
}

// ForEachRecord is ForEachLine over parsed records. Malformed lines are
// logged and skipped.
func (s *Store) ForEachRecord(fn func(Record) error) error {
	lineNo := 0
	return s.ForEachLine(func(line string) error {
		lineNo++
		rec, err := ParseRecord(line)
		if err != nil {
			s.logger.Warn("skipping malformed line", "line", lineNo, "error", err)
			return nil
		}
		return fn(rec)
	})
}

// Records returns every well-formed record in file order.
func (s *Store) Records() ([]Record, error) {
	var out []Record
	err := s.ForEachRecord(func(r Record) error {
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
