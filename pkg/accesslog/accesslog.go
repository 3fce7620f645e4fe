// Package accesslog parses and formats Common Log Format lines.
package accesslog

import internalaccesslog "github.com/SmitUplenchwar2687/logmon/internal/accesslog"

// TimeLayout is the CLF timestamp layout.
const TimeLayout = internalaccesslog.TimeLayout

// Record is the parsed form of one access log line.
type Record = internalaccesslog.Record

// Entry describes a full CLF line for writers.
type Entry = internalaccesslog.Entry

// ParseError reports a line that is not a valid CLF line.
type ParseError = internalaccesslog.ParseError

// ErrMalformed is wrapped by every ParseError.
var ErrMalformed = internalaccesslog.ErrMalformed

// Parse parses one CLF line.
func Parse(line string) (Record, error) {
	return internalaccesslog.Parse(line)
}

// Format renders e as a CLF line without a trailing newline.
func Format(e Entry) string {
	return internalaccesslog.Format(e)
}
