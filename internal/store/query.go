package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// RegexTimeout bounds a single regex match against one line.
var RegexTimeout = 2 * time.Second

// View filters what the listing operations return. Postponed records are
// hidden from every view unless IncludePostponed is set.
type View struct {
	IncludePostponed bool
}

func (v View) visible(r Record) bool {
	return v.IncludePostponed || r.Status != StatusPostponed
}

// DateGroup is the set of records sharing one date field.
type DateGroup struct {
	Date    string   `json:"date"`
	Records []Record `json:"records"`
}

func (s *Store) scanView(v View, fn func(rec Record, line string) error) error {
	lineNo := 0
	return s.ForEachLine(func(line string) error {
		lineNo++
		rec, err := ParseRecord(line)
		if err != nil {
			s.logger.Warn("skipping malformed line", "line", lineNo, "error", err)
			return nil
		}
		if !v.visible(rec) {
			return nil
		}
		return fn(rec, line)
	})
}

// List returns the visible records in file order.
func (s *Store) List(v View) ([]Record, error) {
	var out []Record
	err := s.scanView(v, func(rec Record, _ string) error {
		out = append(out, rec)
		return nil
	})
	return out, err
}

// Get returns the record with id, whatever its status.
func (s *Store) Get(id int) (Record, error) {
	var found *Record
	err := s.ForEachRecord(func(r Record) error {
		if r.ID == id {
			found = &r
			return ErrStopScan
		}
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	if found == nil {
		return Record{}, fmt.Errorf("%w: %d", ErrRecordNotFound, id)
	}
	return *found, nil
}

// Search splits term on whitespace and returns records whose line contains
// any token, ignoring case.
func (s *Store) Search(term string, v View) ([]Record, error) {
	tokens := strings.Fields(strings.ToLower(term))
	if len(tokens) == 0 {
		return nil, nil
	}
	var out []Record
	err := s.scanView(v, func(rec Record, line string) error {
		lower := strings.ToLower(line)
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				out = append(out, rec)
				return nil
			}
		}
		return nil
	})
	return out, err
}

// SearchRegex returns records whose line matches pattern, ignoring case. The
// pattern is compiled before the store is opened.
func (s *Store) SearchRegex(pattern string, v View) ([]Record, error) {
	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	re.MatchTimeout = RegexTimeout
	var out []Record
	err = s.scanView(v, func(rec Record, line string) error {
		ok, merr := re.MatchString(line)
		if merr != nil {
			return fmt.Errorf("%w: match note %d: %v", ErrIO, rec.ID, merr)
		}
		if ok {
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Latest returns the last n visible records, oldest first. A negative n, or
// one at least the record count, returns everything.
func (s *Store) Latest(n int, v View) ([]Record, error) {
	all, err := s.List(v)
	if err != nil {
		return nil, err
	}
	if n < 0 || n >= len(all) {
		return all, nil
	}
	return all[len(all)-n:], nil
}

// GroupByDate groups the visible records by date field, dates ascending by
// year, month and day. Dates that are not three numbers sort last in the
// order first seen. Records keep file order inside a group.
func (s *Store) GroupByDate(v View) ([]DateGroup, error) {
	var order []string
	byDate := map[string][]Record{}
	err := s.scanView(v, func(rec Record, _ string) error {
		if _, seen := byDate[rec.Date]; !seen {
			order = append(order, rec.Date)
		}
		byDate[rec.Date] = append(byDate[rec.Date], rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortDates(order)
	groups := make([]DateGroup, 0, len(order))
	for _, d := range order {
		groups = append(groups, DateGroup{Date: d, Records: byDate[d]})
	}
	return groups, nil
}

func sortDates(dates []string) {
	sort.SliceStable(dates, func(i, j int) bool {
		a, aok := parseDateLenient(dates[i])
		b, bok := parseDateLenient(dates[j])
		switch {
		case aok && bok:
			return a.Before(b)
		case aok:
			return true
		default:
			return false
		}
	})
}

// ReplaceDate sets the date of the record with id.
func (s *Store) ReplaceDate(id int, d Date) (bool, error) {
	return s.Replace(id, "", &d)
}

// ReplaceContent sets the content of the record with id. Newlines are
// stripped as on Add.
func (s *Store) ReplaceContent(id int, content string) (bool, error) {
	if strings.TrimSpace(cleanContent(content)) == "" {
		return false, fmt.Errorf("%w: content is required", ErrInvalid)
	}
	return s.Replace(id, content, nil)
}

// Replace sets the content and the date of the record with id in a single
// rewrite. Empty content or a nil date leaves that field as it is.
func (s *Store) Replace(id int, content string, date *Date) (bool, error) {
	content = cleanContent(content)
	if strings.TrimSpace(content) == "" && date == nil {
		return false, fmt.Errorf("%w: content or date is required", ErrInvalid)
	}
	if date != nil && !date.Valid() {
		return false, fmt.Errorf("%w: %s", ErrInvalidDate, *date)
	}
	return s.replace(id, func(r *Record) {
		if strings.TrimSpace(content) != "" {
			r.Content = content
		}
		if date != nil {
			r.Date = date.String()
		}
	})
}

func (s *Store) replace(id int, edit func(*Record)) (bool, error) {
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
		edit(&rec)
		return rec.String(), true, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}
