package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is the state of a record. StatusInvalid covers any token other than
// U, D or P found in a hand-edited file.
type Status uint8

const (
	StatusInvalid Status = iota
	StatusUndone
	StatusDone
	StatusPostponed
)

// ParseStatus decodes a status token. Unknown tokens map to StatusInvalid.
func ParseStatus(token string) Status {
	switch token {
	case "U":
		return StatusUndone
	case "D":
		return StatusDone
	case "P":
		return StatusPostponed
	default:
		return StatusInvalid
	}
}

// Token is the on-disk encoding of s.
func (s Status) Token() string {
	switch s {
	case StatusUndone:
		return "U"
	case StatusDone:
		return "D"
	case StatusPostponed:
		return "P"
	default:
		return "?"
	}
}

func (s Status) String() string {
	switch s {
	case StatusUndone:
		return "undone"
	case StatusDone:
		return "done"
	case StatusPostponed:
		return "postponed"
	default:
		return "invalid"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts both the long names and the on-disk tokens, so
// exported JSON reads back.
func (s *Status) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "undone", "u":
		*s = StatusUndone
	case "done", "d":
		*s = StatusDone
	case "postponed", "p":
		*s = StatusPostponed
	case "invalid":
		*s = StatusInvalid
	default:
		return fmt.Errorf("%w: unknown status %q", ErrMalformedRecord, text)
	}
	return nil
}

// Record is one line of the store.
type Record struct {
	ID      int    `json:"id"`
	Status  Status `json:"status"`
	Date    string `json:"date"`
	Content string `json:"content"`

	// raw status token, kept only when Status is StatusInvalid
	rawStatus string
}

// ParseRecord decodes "id\tstatus\tdate\tcontent". Tabs after the third one
// belong to the content.
func ParseRecord(line string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.SplitN(line, "\t", 4)
	if len(parts) < 4 {
		return Record{}, fmt.Errorf("%w: want 4 fields, got %d", ErrMalformedRecord, len(parts))
	}
	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || id < 1 {
		return Record{}, fmt.Errorf("%w: bad id %q", ErrMalformedRecord, parts[0])
	}
	rec := Record{
		ID:      id,
		Status:  ParseStatus(parts[1]),
		Date:    parts[2],
		Content: parts[3],
	}
	if rec.Status == StatusInvalid {
		rec.rawStatus = parts[1]
	}
	return rec, nil
}

// StatusToken is the status field as stored. An unrecognised token read from
// the file is returned unchanged.
func (r Record) StatusToken() string {
	if r.Status == StatusInvalid && r.rawStatus != "" {
		return r.rawStatus
	}
	return r.Status.Token()
}

// String encodes r as one store line without the trailing newline.
func (r Record) String() string {
	return strconv.Itoa(r.ID) + "\t" + r.StatusToken() + "\t" + r.Date + "\t" + r.Content
}

// Day returns the record date, leniently parsed. ok is false when the date
// field is not three numeric components.
func (r Record) Day() (Date, bool) {
	return parseDateLenient(r.Date)
}

// recordID extracts the id of a line without parsing the rest, so transforms
// can leave untargeted lines alone.
func recordID(line string) (int, bool) {
	head, _, _ := strings.Cut(line, "\t")
	id, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, false
	}
	return id, true
}
