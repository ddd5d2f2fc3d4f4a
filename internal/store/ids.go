package store

import "errors"

// NextID returns the id for a new record: the last record's id + 1, or 1 for
// an empty store. If hand edits left a higher id earlier in the file, the
// maximum wins so ids never collide.
func (s *Store) NextID() (int, error) {
	last, maxID := 0, 0
	err := s.ForEachRecord(func(r Record) error {
		last = r.ID
		if r.ID > maxID {
			maxID = r.ID
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrEmptyStore) {
		return 0, err
	}
	if last != maxID {
		s.logger.Warn("last record does not hold the highest id; run reorganize",
			"last_id", last, "max_id", maxID)
		return maxID + 1, nil
	}
	return last + 1, nil
}

// Reorganize renumbers well-formed records 1..N in file order. Malformed
// lines are kept verbatim and do not consume an id. Stored ids change, so
// this only runs on explicit request.
func (s *Store) Reorganize() error {
	next := 1
	err := s.Rewrite(func(line string) (string, bool, error) {
		rec, err := ParseRecord(line)
		if err != nil {
			return line, true, nil
		}
		rec.ID = next
		next++
		return rec.String(), true, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("reorganized store", "records", next-1)
	return nil
}
