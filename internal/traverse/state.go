package traverse

import (
	"fmt"
	"strings"
	"time"
)

// Runtime is the crawl strategy governing how Seed paginates.
type Runtime string

const (
	RuntimeHist Runtime = "hist"
	RuntimeIdx  Runtime = "idx"
	RuntimeDate Runtime = "date"
)

func ParseRuntime(s string) (Runtime, error) {
	switch rt := Runtime(strings.ToLower(strings.TrimSpace(s))); rt {
	case RuntimeHist, RuntimeIdx, RuntimeDate:
		return rt, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedRuntime, s)
	}
}

// Indexer tracks pagination. Page is 1-based; MaxIdx counts the records the
// issued seeds cover.
type Indexer struct {
	Page   int
	MaxIdx int
}

// Calendar is the active date window.
type Calendar struct {
	From time.Time
	To   time.Time
}

// State is the scheduler-owned state handed to Seed and Sections. Total is
// the record count discovered for the current window; the scheduler must
// serialize writes to it and reset it per window.
type State struct {
	Runtime  Runtime
	Indexer  Indexer
	Calendar Calendar
	Seeds    int
	Total    int
}

func NewState(rt Runtime, pageStart int, cal Calendar) *State {
	if pageStart < 1 {
		pageStart = 1
	}
	return &State{
		Runtime:  rt,
		Indexer:  Indexer{Page: pageStart},
		Calendar: cal,
	}
}

// Offset is the index of the first record the current page covers.
func (s *State) Offset(pageSize int) int {
	return (s.Indexer.Page - 1) * pageSize
}

// Exhausted reports whether the current page starts at or past the
// discovered total. It never holds before the first seed, since the total is
// unknown until a results page has been sectioned.
func (s *State) Exhausted(pageSize int) bool {
	return s.Seeds > 0 && s.Total <= s.Offset(pageSize)
}

// Advance records one issued seed covering pageSize records.
func (s *State) Advance(pageSize int) {
	s.Seeds++
	s.Indexer.Page++
	s.Indexer.MaxIdx += pageSize
}

// ResetWindow starts a new date window.
func (s *State) ResetWindow(cal Calendar) {
	s.Calendar = cal
	s.Seeds = 0
	s.Total = 0
	s.Indexer = Indexer{Page: 1}
}

// Windows splits the inclusive date range [from, to] into consecutive
// windows spanning at most days days each. A non-positive span yields one
// window; an inverted range yields none.
func Windows(from, to time.Time, days int) []Calendar {
	from, to = truncateDay(from), truncateDay(to)
	if to.Before(from) {
		return nil
	}
	if days <= 0 {
		return []Calendar{{From: from, To: to}}
	}
	var out []Calendar
	for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, days) {
		end := cur.AddDate(0, 0, days-1)
		if end.After(to) {
			end = to
		}
		out = append(out, Calendar{From: cur, To: end})
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
