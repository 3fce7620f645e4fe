package accesslog

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrMalformed is wrapped by every ParseError.
var ErrMalformed = errors.New("malformed access log line")

// ParseError reports a line that could not be turned into a Record.
type ParseError struct {
	Line   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformed, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformed, e.Reason)
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformed, e.Err}
	}
	return []error{ErrMalformed}
}

// host ident user [time] "request" status size, then anything (referrer, agent).
// Servers escape a quote inside the request as \".
var linePattern = regexp.MustCompile(
	`^(\S+)\s+(\S+)\s+(\S+)\s+\[([^\]]+)\]\s+"((?:[^"\\]|\\.)*)"\s+(\d+)\s+(\S+)(?:\s.*)?$`)

const (
	groupTime    = 4
	groupRequest = 5
	groupStatus  = 6
	groupSize    = 7
)

// Parse turns one CLF line into a Record. It never panics; any line it
// cannot interpret yields a *ParseError.
func Parse(line string) (Record, error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Record{}, &ParseError{Line: line, Reason: "line does not match common log format"}
	}

	ts, err := time.Parse(TimeLayout, m[groupTime])
	if err != nil {
		return Record{}, &ParseError{Line: line, Reason: "invalid time field", Err: err}
	}

	status, err := strconv.Atoi(m[groupStatus])
	if err != nil {
		return Record{}, &ParseError{Line: line, Reason: "invalid status field", Err: err}
	}
	if status <= 0 {
		return Record{}, &ParseError{Line: line, Reason: fmt.Sprintf("status %d is not positive", status)}
	}

	// "-" means no body was sent.
	size, err := strconv.ParseInt(m[groupSize], 10, 64)
	if err != nil || size < 0 {
		size = 0
	}

	return Record{
		Time:    ts,
		Section: Section(m[groupRequest]),
		Size:    size,
		Status:  status,
	}, nil
}

// Section extracts the first path segment from a request line such as
// "GET /api/users?id=1 HTTP/1.1". It returns "" when the request has no
// path or targets the root.
func Section(request string) string {
	fields := strings.Fields(request)
	if len(fields) < 2 {
		return ""
	}
	target := fields[1]

	if !strings.HasPrefix(target, "/") {
		// Absolute-form targets, as sent to proxies.
		u, err := url.Parse(target)
		if err != nil {
			return ""
		}
		target = u.Path
	}
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}

	for _, seg := range strings.Split(target, "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}
