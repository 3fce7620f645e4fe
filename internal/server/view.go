package server

import (
	"fmt"
	"time"

	"github.com/SmitUplenchwar2687/logmon/internal/monitor"
	"github.com/SmitUplenchwar2687/logmon/internal/stats"
)

// Info describes the monitoring session shown in the info panel.
type Info struct {
	File    string
	Started time.Time
	Config  monitor.Config
}

// View is everything the dashboard and the terminal display render for
// one poll.
type View struct {
	Time            time.Time            `json:"time"`
	File            string               `json:"file"`
	Runtime         string               `json:"runtime"`
	RefreshInterval string               `json:"refresh_interval"`
	AlertThreshold  float64              `json:"alert_threshold"`
	AlertWindow     string               `json:"alert_window"`
	Capacity        float64              `json:"capacity"`
	TotalRequests   int64                `json:"total_requests"`
	TotalKB         float64              `json:"total_kb"`
	AverageHits     float64              `json:"average_hits"`
	ShortHits       int                  `json:"short_hits"`
	LongHits        int                  `json:"long_hits"`
	Sections        []stats.SectionCount `json:"sections"`
	Statuses        []stats.StatusCount  `json:"statuses"`
	Alert           *AlertView           `json:"alert,omitempty"`
	Process         *ProcessStats        `json:"process,omitempty"`
}

// AlertView is the alert state at the time of a view.
type AlertView struct {
	ID          string    `json:"id"`
	Active      bool      `json:"active"`
	Hits        int       `json:"hits"`
	TriggeredAt time.Time `json:"triggered_at"`
	Message     string    `json:"message"`
}

// NewView builds the view of res at now. Empty sections are shown as "/".
func NewView(res monitor.Result, info Info, now time.Time) View {
	snap := res.Snapshot
	runtime := now.Sub(info.Started)

	v := View{
		Time:            now,
		File:            info.File,
		Runtime:         FormatRuntime(runtime),
		RefreshInterval: info.Config.RefreshInterval.String(),
		AlertThreshold:  info.Config.AlertThreshold,
		AlertWindow:     info.Config.AlertDuration.String(),
		Capacity:        info.Config.AlertDuration.Seconds() * info.Config.AlertThreshold,
		TotalRequests:   snap.TotalRequests,
		TotalKB:         float64(snap.TotalBytes) / 1024,
		AverageHits:     AverageHits(snap.TotalRequests, runtime),
		ShortHits:       snap.ShortHits,
		LongHits:        snap.LongHits,
		Sections:        make([]stats.SectionCount, len(snap.Sections)),
		Statuses:        append([]stats.StatusCount{}, snap.Statuses...),
	}
	for i, sc := range snap.Sections {
		if sc.Section == "" {
			sc.Section = "/"
		}
		v.Sections[i] = sc
	}
	if a := res.Alert; a != nil {
		v.Alert = &AlertView{
			ID:          a.ID.String(),
			Active:      !a.Recovered,
			Hits:        a.Hits,
			TriggeredAt: a.TriggeredAt,
			Message:     a.Message(),
		}
	}
	return v
}

// FormatRuntime renders d as HH:MM:SS.
func FormatRuntime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

// AverageHits is the mean request rate over runtime, counting whole
// seconds; the first second reports the raw total.
func AverageHits(total int64, runtime time.Duration) float64 {
	secs := int64(runtime / time.Second)
	if secs <= 0 {
		return float64(total)
	}
	return float64(total) / float64(secs)
}
