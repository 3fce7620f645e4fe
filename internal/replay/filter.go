package replay

import (
	"strconv"
	"strings"
	"time"

	"github.com/SmitUplenchwar2687/logmon/internal/accesslog"
)

// Filter defines criteria for selecting log records during replay.
type Filter struct {
	Sections []string  // Only include these sections; "/" selects the root section (empty = all)
	Statuses []string  // Status classes ("5xx") or exact codes ("404") (empty = all)
	After    time.Time // Only include records after this time (zero = no limit)
	Before   time.Time // Only include records before this time (zero = no limit)
}

// Match returns true if the record passes the filter.
func (f *Filter) Match(r accesslog.Record) bool {
	if len(f.Sections) > 0 && !matchSection(f.Sections, r.Section) {
		return false
	}
	if len(f.Statuses) > 0 && !matchStatus(f.Statuses, r.Status) {
		return false
	}
	if !f.After.IsZero() && !r.Time.After(f.After) {
		return false
	}
	if !f.Before.IsZero() && !r.Time.Before(f.Before) {
		return false
	}
	return true
}

func matchSection(sections []string, section string) bool {
	for _, s := range sections {
		s = strings.Trim(s, "/")
		if s == section {
			return true
		}
	}
	return false
}

func matchStatus(patterns []string, status int) bool {
	class := accesslog.StatusClass(status)
	code := strconv.Itoa(status)
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == class || p == code {
			return true
		}
	}
	return false
}
