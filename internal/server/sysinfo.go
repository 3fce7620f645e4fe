package server

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats is the resource usage of the logmon process.
type ProcessStats struct {
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	Threads    int32   `json:"threads"`
}

// ProcessSampler reads resource usage of the current process.
type ProcessSampler struct {
	proc *process.Process
}

// NewProcessSampler attaches to the running process.
func NewProcessSampler() (*ProcessSampler, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("inspecting process: %w", err)
	}
	return &ProcessSampler{proc: p}, nil
}

// Sample returns current memory and CPU usage. CPU is averaged over the
// lifetime of the process.
func (s *ProcessSampler) Sample() (ProcessStats, error) {
	mem, err := s.proc.MemoryInfo()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("reading memory info: %w", err)
	}
	cpu, err := s.proc.CPUPercent()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("reading cpu usage: %w", err)
	}
	threads, err := s.proc.NumThreads()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("reading thread count: %w", err)
	}
	return ProcessStats{RSSBytes: mem.RSS, CPUPercent: cpu, Threads: threads}, nil
}
