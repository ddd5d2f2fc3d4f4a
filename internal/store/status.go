package store

import "fmt"

// StatusOp is a requested status change.
type StatusOp uint8

const (
	OpSetDone StatusOp = iota + 1
	OpSetUndone
	OpPostpone
)

func (op StatusOp) String() string {
	switch op {
	case OpSetDone:
		return "done"
	case OpSetUndone:
		return "undone"
	case OpPostpone:
		return "postpone"
	default:
		return fmt.Sprintf("StatusOp(%d)", uint8(op))
	}
}

// Apply returns the status after op. Postponing only applies to undone
// records; anything else stays as it is. Done and undone can always be set,
// which also repairs invalid tokens.
func (s Status) Apply(op StatusOp) Status {
	switch op {
	case OpSetDone:
		return StatusDone
	case OpSetUndone:
		return StatusUndone
	case OpPostpone:
		if s == StatusUndone {
			return StatusPostponed
		}
		return s
	default:
		return s
	}
}

// MarkStatus applies op to the record with id. An unknown id rewrites the
// file unchanged and reports false.
func (s *Store) MarkStatus(id int, op StatusOp) (bool, error) {
	found := false
	err := s.Rewrite(func(line string) (string, bool, error) {
		if lid, ok := recordID(line); !ok || lid != id {
			return line, true, nil
		}
		rec, err := ParseRecord(line)
		if err != nil {
			return line, true, nil
		}
		found = true
		next := rec.Status.Apply(op)
		if next == rec.Status {
			return line, true, nil
		}
		rec.Status = next
		return rec.String(), true, nil
	})
	if err != nil {
		return false, err
	}
	s.logger.Debug("marked status", "id", id, "op", op.String(), "found", found)
	return found, nil
}

// MarkAllDone forces every record to done and returns how many changed.
func (s *Store) MarkAllDone() (int, error) {
	return s.markDoneWhere(func(Record) bool { return true })
}

// MarkDoneBefore marks done every record dated strictly before cutoff.
// Records with unreadable dates are left alone.
func (s *Store) MarkDoneBefore(cutoff Date) (int, error) {
	return s.markDoneWhere(func(r Record) bool {
		d, ok := r.Day()
		return ok && d.Before(cutoff)
	})
}

func (s *Store) markDoneWhere(match func(Record) bool) (int, error) {
	changed := 0
	err := s.Rewrite(func(line string) (string, bool, error) {
		rec, err := ParseRecord(line)
		if err != nil || rec.Status == StatusDone || !match(rec) {
			return line, true, nil
		}
		rec.Status = StatusDone
		changed++
		return rec.String(), true, nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// Delete drops the first well-formed record with id. Malformed lines and
// later records reusing the id are kept.
func (s *Store) Delete(id int) (bool, error) {
	found := false
	err := s.Rewrite(func(line string) (string, bool, error) {
		if found {
			return line, true, nil
		}
		if lid, ok := recordID(line); !ok || lid != id {
			return line, true, nil
		}
		if _, err := ParseRecord(line); err != nil {
			return line, true, nil
		}
		found = true
		return "", false, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// DeleteDone drops every done record and returns how many were removed.
func (s *Store) DeleteDone() (int, error) {
	removed := 0
	err := s.Rewrite(func(line string) (string, bool, error) {
		rec, err := ParseRecord(line)
		if err == nil && rec.Status == StatusDone {
			removed++
			return "", false, nil
		}
		return line, true, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
