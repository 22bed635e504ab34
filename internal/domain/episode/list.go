package episode

import (
	"github.com/cockroachdb/errors"
)

// List is an ordered sequence of episodes.
type List []Episode

// IDs returns all episode IDs in order.
func (l List) IDs() []string {
	ids := make([]string, len(l))
	for i, e := range l {
		ids[i] = e.ID
	}
	return ids
}

// TotalDuration returns the total duration of all episodes in seconds.
func (l List) TotalDuration() int64 {
	var total int64
	for _, e := range l {
		total += int64(e.Duration)
	}
	return total
}

// IndexOf returns the position of the episode with the given ID, or -1.
func (l List) IndexOf(id string) int {
	for i, e := range l {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Validate checks that every episode has a unique, non-empty ID and a
// non-negative duration.
func (l List) Validate() error {
	seen := make(map[string]bool, len(l))
	for i, e := range l {
		if e.ID == "" {
			return errors.Newf("episode at position %d has an empty id", i)
		}
		if seen[e.ID] {
			return errors.Newf("duplicate episode id %q at position %d", e.ID, i)
		}
		if e.Duration < 0 {
			return errors.Newf("episode %q has a negative duration", e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}

// Clone returns a copy that shares no backing array with l.
func (l List) Clone() List {
	if l == nil {
		return List{}
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}
