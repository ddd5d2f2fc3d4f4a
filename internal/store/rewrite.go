package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// Transform maps one input line to its replacement. keep=false drops the
// line. A non-nil error aborts the rewrite and leaves the store untouched.
type Transform func(line string) (out string, keep bool, err error)

// Rewrite streams the store through fn into the temp file and renames the
// temp file over the store once the whole pass succeeded. Readers see either
// the old file or the new one, never a partial write.
func (s *Store) Rewrite(fn Transform) (err error) {
	in, err := os.Open(s.path)
	if err != nil {
		return wrapOpenErr(err)
	}
	defer in.Close()

	tmp, err := os.OpenFile(s.tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return wrapOpenErr(err)
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = tmp.Close()
			_ = os.Remove(s.tmpPath)
		}
	}()

	w := bufio.NewWriter(tmp)
	kept, dropped := 0, 0
	err = eachLine(in, func(line string) error {
		out, keep, terr := fn(line)
		if terr != nil {
			return terr
		}
		if !keep {
			dropped++
			return nil
		}
		kept++
		if _, werr := w.WriteString(out + "\n"); werr != nil {
			return fmt.Errorf("%w: %v", ErrIO, werr)
		}
		return nil
	})
	if err != nil {
		s.logger.Debug("rewrite aborted", "error", err)
		return err
	}

	// https://www.joeshaw.org/dont-defer-close-on-writable-files/
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := in.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	// rename over an existing file is atomic on the same filesystem
	if err := os.Rename(s.tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	renamed = true
	syncDir(filepath.Dir(s.path))
	_ = os.Remove(s.tmpPath)
	s.logger.Debug("rewrote store", "kept", kept, "dropped", dropped)
	return nil
}

// syncDir makes the rename durable. Failures are ignored: the rename already
// happened and some platforms cannot fsync a directory.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
