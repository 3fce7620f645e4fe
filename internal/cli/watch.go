package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/logmon/internal/clock"
	"github.com/SmitUplenchwar2687/logmon/internal/config"
	"github.com/SmitUplenchwar2687/logmon/internal/monitor"
	"github.com/SmitUplenchwar2687/logmon/internal/notify"
	"github.com/SmitUplenchwar2687/logmon/internal/recorder"
	"github.com/SmitUplenchwar2687/logmon/internal/server"
)

// minWakeInterval bounds how often file-write events can trigger a poll.
const minWakeInterval = 100 * time.Millisecond

const shutdownTimeout = 5 * time.Second

func newWatchCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Tail an access log and report statistics and alerts",
		Long: `Tail an access log from its current end, print the most visited sections
every refresh interval, and print an alert when the average request rate
over the alert window exceeds the threshold.

Examples:
  logmon watch -f /var/log/access.log
  logmon watch -f access.log -r 5s -d 2m -t 10 --addr :8080
  logmon watch -f access.log --webhook-url http://hooks.local/alerts --record alerts.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSession(cmd, *configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, cmd.OutOrStdout(), cfg, logger)
		},
	}

	config.RegisterFlags(cmd.Flags())
	config.RegisterOutputFlags(cmd.Flags())
	return cmd
}

// watchSession holds everything a running watch loop touches.
type watchSession struct {
	out        io.Writer
	cfg        config.Config
	logger     *zap.Logger
	clock      clock.Clock
	mon        *monitor.Monitor
	dispatcher *notify.Dispatcher
	dashboard  *server.Server
	info       server.Info
	lastPoll   time.Time
}

// runWatch monitors cfg.File until ctx is done. Configuration and open
// errors are returned before the first poll.
func runWatch(ctx context.Context, out io.Writer, cfg config.Config, logger *zap.Logger) error {
	logger = logger.Named("watch")
	clk := clock.NewRealClock()

	mon, tailer, err := monitor.Open(cfg.File, cfg.Monitor(), monitor.WithLogger(logger))
	if err != nil {
		return err
	}
	defer tailer.Close()

	rec := recorder.New(nil)
	sinks, err := buildNotifiers(ctx, cfg.Notify, logger, rec)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(sinks, notify.WithDispatchLogger(logger))

	s := &watchSession{
		out:        out,
		cfg:        cfg,
		logger:     logger,
		clock:      clk,
		mon:        mon,
		dispatcher: dispatcher,
		info:       server.Info{File: cfg.File, Started: clk.Now(), Config: mon.Config()},
	}

	serveErr := make(chan error, 1)
	if cfg.Dashboard.Addr != "" {
		opts := []server.Option{
			server.WithRecorder(rec),
			server.WithClock(clk),
			server.WithLogger(logger),
		}
		if ps, err := server.NewProcessSampler(); err == nil {
			opts = append(opts, server.WithProcessSampler(ps))
		} else {
			logger.Warn("Process stats unavailable", zap.Error(err))
		}
		s.dashboard = server.New(cfg.Dashboard.Addr, s.info, opts...)
		go func() { serveErr <- s.dashboard.Start() }()
		fmt.Fprintf(out, "Dashboard on http://%s/dashboard/\n", displayAddr(cfg.Dashboard.Addr))
	}

	events, watchErrs, closeWatcher := watchFile(cfg.File, logger)
	defer closeWatcher()

	fmt.Fprintf(out, "Monitoring %s (refresh %s, alert window %s, threshold %g/s)\n",
		tailer.Path(), cfg.RefreshInterval, cfg.AlertDuration, cfg.AlertThreshold)
	logger.Info("Watch started",
		zap.String("file", tailer.Path()),
		zap.Int64("offset", tailer.Offset()),
		zap.Duration("refresh_interval", cfg.RefreshInterval),
		zap.Duration("alert_duration", cfg.AlertDuration),
		zap.Float64("alert_threshold", cfg.AlertThreshold),
		zap.Float64("capacity", mon.Capacity()),
	)

	pollTicker := time.NewTicker(cfg.PollInterval)
	defer pollTicker.Stop()
	refreshTicker := time.NewTicker(cfg.RefreshInterval)
	defer refreshTicker.Stop()

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-serveErr:
			if err != nil {
				runErr = fmt.Errorf("dashboard server: %w", err)
				break loop
			}
			serveErr = nil
		case <-pollTicker.C:
			s.poll()
		case <-refreshTicker.C:
			res := s.poll()
			renderStats(out, server.NewView(res, s.info, s.clock.Now()))
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Has(fsnotify.Write) && s.clock.Since(s.lastPoll) >= minWakeInterval {
				s.poll()
			}
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			logger.Warn("File watcher error", zap.Error(err))
		}
	}

	return errors.Join(runErr, s.shutdown(rec))
}

// poll runs one monitor cycle and fans out its side effects.
func (s *watchSession) poll() monitor.Result {
	now := s.clock.Now()
	s.lastPoll = now
	res := s.mon.Poll(now)

	if res.Changed() {
		renderAlert(s.out, res.Message())
		if ev, ok := notify.FromResult(res, s.mon.Config()); ok {
			s.dispatcher.Send(ev)
		}
	}
	if s.dashboard != nil {
		s.dashboard.Publish(res)
	}
	return res
}

func (s *watchSession) shutdown(rec *recorder.Recorder) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.dispatcher.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("closing notifiers: %w", err))
	}
	if s.cfg.Record != "" {
		if err := rec.ExportFile(s.cfg.Record); err != nil {
			errs = append(errs, err)
		} else {
			fmt.Fprintf(s.out, "Alert history (%d events) written to %s\n", rec.Len(), s.cfg.Record)
		}
	}
	if s.dashboard != nil {
		if err := s.dashboard.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("dashboard shutdown: %w", err))
		}
	}
	s.logger.Info("Watch stopped", zap.Int64("dropped_events", s.dispatcher.Dropped()))
	return errors.Join(errs...)
}

// watchFile subscribes to write events on path. When the watcher cannot
// be created the returned channels are nil and polling alone drives the
// monitor.
func watchFile(path string, logger *zap.Logger) (<-chan fsnotify.Event, <-chan error, func()) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("File watcher unavailable, relying on polling", zap.Error(err))
		return nil, nil, func() {}
	}
	if err := w.Add(path); err != nil {
		logger.Warn("File watcher unavailable, relying on polling", zap.String("file", path), zap.Error(err))
		_ = w.Close()
		return nil, nil, func() {}
	}
	return w.Events, w.Errors, func() { _ = w.Close() }
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
