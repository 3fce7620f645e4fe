package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Notifier delivers alert events to one destination.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
	Close() error
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, n := range m {
		if err := n.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes events to a zap logger.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("alerts")}
}

func (n *LogNotifier) Notify(_ context.Context, ev Event) error {
	fields := []zap.Field{
		zap.String("alert_id", ev.ID),
		zap.String("kind", string(ev.Kind)),
		zap.Int("hits", ev.Hits),
		zap.Time("triggered_at", ev.TriggeredAt),
	}
	if ev.RecoveredAt != nil {
		fields = append(fields, zap.Time("recovered_at", *ev.RecoveredAt))
	}
	switch ev.Kind {
	case KindTriggered:
		n.logger.Warn(ev.Message, fields...)
	case KindRecovered:
		n.logger.Info(ev.Message, fields...)
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return nil
}

func (n *LogNotifier) Close() error {
	return nil
}
