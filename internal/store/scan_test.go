package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestLineCount(t *testing.T) {
	s := newTestStore(t, threeNotes+"\n")
	n, err := s.LineCount()
	if err != nil {
		t.Fatalf("LineCount() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("LineCount() = %d, want 3", n)
	}
}

func TestLineCountEmptyIsDistinct(t *testing.T) {
	s := newTestStore(t, "")
	if _, err := s.LineCount(); !errors.Is(err, ErrEmptyStore) {
		t.Fatalf("LineCount() error = %v, want ErrEmptyStore", err)
	}

	missing, err := Open(Options{Path: filepath.Join(t.TempDir(), "nope")})
	if err != nil {
		t.Fatal(err)
	}
	_, err = missing.LineCount()
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("LineCount() on missing store error = %v, want ErrNotFound", err)
	}
	if errors.Is(err, ErrEmptyStore) {
		t.Fatal("missing store must not look empty")
	}
}

func TestLineCountSkipsMalformed(t *testing.T) {
	s := newTestStore(t, "garbage\n2\tjunk\n")
	if n, err := s.LineCount(); !errors.Is(err, ErrEmptyStore) {
		t.Fatalf("LineCount() = %d, %v, want ErrEmptyStore", n, err)
	}

	s = newTestStore(t, threeNotes+"garbage\n")
	n, err := s.LineCount()
	if err != nil {
		t.Fatalf("LineCount() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("LineCount() = %d, want 3", n)
	}
}

func TestForEachLineStopsEarly(t *testing.T) {
	s := newTestStore(t, threeNotes)
	var seen []string
	err := s.ForEachLine(func(line string) error {
		seen = append(seen, line)
		if len(seen) == 2 {
			return ErrStopScan
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachLine() error = %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("visited %d lines, want 2", len(seen))
	}
}

func TestForEachLinePropagatesVisitorError(t *testing.T) {
	s := newTestStore(t, threeNotes)
	errVisit := errors.New("visit")
	if err := s.ForEachLine(func(string) error { return errVisit }); !errors.Is(err, errVisit) {
		t.Fatalf("ForEachLine() error = %v, want %v", err, errVisit)
	}
}

func TestRecordsSkipsMalformed(t *testing.T) {
	s := newTestStore(t, "1\tU\t2014-11-01\tok\njunk\n2\tQ\t2014-11-01\todd status\nlast line without newline\t\t")
	recs, err := s.Records()
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("Records() = %d records, want 2", len(recs))
	}
	if recs[1].Status != StatusInvalid {
		t.Fatalf("second record status = %v, want invalid", recs[1].Status)
	}
}
