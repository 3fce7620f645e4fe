package replay

import (
	"testing"
	"time"

	"github.com/SmitUplenchwar2687/logmon/internal/accesslog"
)

func TestFilter_Empty_MatchesAll(t *testing.T) {
	f := Filter{}
	r := accesslog.Record{Time: epoch, Section: "any", Status: 200}
	if !f.Match(r) {
		t.Error("empty filter should match all records")
	}
}

func TestFilter_Sections(t *testing.T) {
	f := Filter{Sections: []string{"/api", "report", "/"}}

	tests := []struct {
		section string
		want    bool
	}{
		{"api", true},
		{"report", true},
		{"", true},
		{"static", false},
	}
	for _, tt := range tests {
		if got := f.Match(accesslog.Record{Section: tt.section}); got != tt.want {
			t.Errorf("Match(section %q) = %v, want %v", tt.section, got, tt.want)
		}
	}
}

func TestFilter_Statuses(t *testing.T) {
	f := Filter{Statuses: []string{"5XX", "404"}}

	tests := []struct {
		status int
		want   bool
	}{
		{500, true},
		{503, true},
		{404, true},
		{403, false},
		{200, false},
	}
	for _, tt := range tests {
		if got := f.Match(accesslog.Record{Status: tt.status}); got != tt.want {
			t.Errorf("Match(status %d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestFilter_After(t *testing.T) {
	f := Filter{After: epoch.Add(5 * time.Minute)}

	if f.Match(accesslog.Record{Time: epoch}) {
		t.Error("should not match record before After")
	}
	if f.Match(accesslog.Record{Time: epoch.Add(5 * time.Minute)}) {
		t.Error("should not match record exactly at After")
	}
	if !f.Match(accesslog.Record{Time: epoch.Add(6 * time.Minute)}) {
		t.Error("should match record after After")
	}
}

func TestFilter_Before(t *testing.T) {
	f := Filter{Before: epoch.Add(5 * time.Minute)}

	if !f.Match(accesslog.Record{Time: epoch}) {
		t.Error("should match record before Before")
	}
	if f.Match(accesslog.Record{Time: epoch.Add(5 * time.Minute)}) {
		t.Error("should not match record exactly at Before")
	}
}

func TestFilter_Combined(t *testing.T) {
	f := Filter{
		Sections: []string{"api"},
		Statuses: []string{"2xx"},
		After:    epoch,
	}

	if !f.Match(accesslog.Record{Time: epoch.Add(time.Second), Section: "api", Status: 201}) {
		t.Error("should match all criteria")
	}
	if f.Match(accesslog.Record{Time: epoch.Add(time.Second), Section: "api", Status: 500}) {
		t.Error("should not match wrong status")
	}
	if f.Match(accesslog.Record{Time: epoch.Add(time.Second), Section: "web", Status: 200}) {
		t.Error("should not match wrong section")
	}
}
