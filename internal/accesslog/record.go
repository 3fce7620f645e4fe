// Package accesslog parses Common Log Format (CLF) access log lines.
package accesslog

import (
	"fmt"
	"strconv"
	"time"
)

// TimeLayout is the CLF timestamp layout, e.g. 10/Oct/2000:13:55:36 -0700.
const TimeLayout = "02/Jan/2006:15:04:05 -0700"

// Record is the parsed form of one access log line.
type Record struct {
	Time    time.Time `json:"time"`
	Section string    `json:"section"`
	Size    int64     `json:"size"`
	Status  int       `json:"status"`
}

// StatusClass returns the status family of the record, e.g. "2xx".
func (r Record) StatusClass() string {
	return StatusClass(r.Status)
}

// StatusClass returns the family of an HTTP status code, e.g. 404 -> "4xx".
func StatusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}

// Entry describes a full CLF line for writers such as the traffic generator.
type Entry struct {
	Host     string
	User     string
	Time     time.Time
	Method   string
	Path     string
	Protocol string
	Status   int
	Size     int64 // negative renders as "-"
	Referrer string
	Agent    string
}

// Format renders e as a combined-log-format line without a trailing newline.
func Format(e Entry) string {
	user := e.User
	if user == "" {
		user = "-"
	}
	proto := e.Protocol
	if proto == "" {
		proto = "HTTP/1.0"
	}
	size := "-"
	if e.Size >= 0 {
		size = strconv.FormatInt(e.Size, 10)
	}
	ref := e.Referrer
	if ref == "" {
		ref = "-"
	}
	agent := e.Agent
	if agent == "" {
		agent = "-"
	}
	return fmt.Sprintf("%s - %s [%s] \"%s %s %s\" %d %s \"%s\" \"%s\"",
		e.Host, user, e.Time.Format(TimeLayout), e.Method, e.Path, proto,
		e.Status, size, ref, agent)
}
