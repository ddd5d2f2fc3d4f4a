package store

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert"
)

func TestNextID(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 1},
		{"sequential", threeNotes, 4},
		{"gaps", "3\tU\t2014-11-01\ta\n10\tU\t2014-11-01\tb\n", 11},
		{"malformed last line", threeNotes + "oops\n", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, tt.content)
			got, err := s.NextID()
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextIDWarnsWhenLastIsNotMax(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), ".memo")
	assert.NoError(t, os.WriteFile(path, []byte("9\tU\t2014-11-01\ta\n2\tU\t2014-11-01\tb\n"), 0o644))
	s, err := Open(Options{Path: path, Logger: slog.New(slog.NewTextHandler(&buf, nil))})
	assert.NoError(t, err)

	got, err := s.NextID()
	assert.NoError(t, err)
	assert.Equal(t, 10, got)
	assert.True(t, strings.Contains(buf.String(), "highest id"), buf.String())
}

func TestReorganize(t *testing.T) {
	s := newTestStore(t, "4\tU\t2014-11-01\ta\nbroken\n9\tD\t2014-11-02\tb\n12\tP\t2014-11-03\tc\n")
	assert.NoError(t, s.Reorganize())
	want := "1\tU\t2014-11-01\ta\nbroken\n2\tD\t2014-11-02\tb\n3\tP\t2014-11-03\tc\n"
	assert.Equal(t, want, readStore(t, s))

	assert.NoError(t, s.Reorganize())
	assert.Equal(t, want, readStore(t, s))

	next, err := s.NextID()
	assert.NoError(t, err)
	assert.Equal(t, 4, next)
}
