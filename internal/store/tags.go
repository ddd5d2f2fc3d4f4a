package store

import (
	"sort"
	"strings"
)

// TagCount is one inline tag and the number of visible records carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Tags returns the inline #tag and @tag words of the record content,
// lowercased and without duplicates, in order of appearance.
func (r Record) Tags() []string {
	return dedupeStrings(extractInlineTags(r.Content))
}

// HasTag reports whether the record carries tag, ignoring case and any
// leading #, @ or +.
func (r Record) HasTag(tag string) bool {
	tag = cleanTag(tag)
	if tag == "" {
		return false
	}
	for _, t := range r.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}

// TagCounts returns every tag of the visible records, most used first and
// alphabetical among equals.
func (s *Store) TagCounts(v View) ([]TagCount, error) {
	counts := map[string]int{}
	err := s.scanView(v, func(rec Record, _ string) error {
		for _, t := range rec.Tags() {
			counts[t]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]TagCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TagCount{Tag: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}

// Tagged returns the visible records carrying tag, in file order.
func (s *Store) Tagged(tag string, v View) ([]Record, error) {
	if cleanTag(tag) == "" {
		return nil, nil
	}
	var out []Record
	err := s.scanView(v, func(rec Record, _ string) error {
		if rec.HasTag(tag) {
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

func cleanTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimLeft(tag, "#@+")
	return strings.ToLower(strings.TrimSpace(tag))
}

func extractInlineTags(line string) []string {
	var tags []string
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if ch != '#' && ch != '@' {
			continue
		}
		if i > 0 && isTagChar(line[i-1]) {
			continue
		}
		if i+1 >= len(line) || !isTagChar(line[i+1]) {
			continue
		}
		j := i + 1
		for j < len(line) && isTagChar(line[j]) {
			j++
		}
		tags = append(tags, strings.ToLower(line[i+1:j]))
		i = j - 1
	}
	return tags
}

func isTagChar(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '-' || b == '_':
		return true
	}
	return false
}

func dedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
