package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultRunTimeout = 30 * time.Second

// Cron fires a trigger on a standard five-field schedule. Descriptors such
// as "@daily" and "@every 6h" are accepted too.
type Cron struct {
	cron    *cron.Cron
	spec    string
	name    string
	trigger func(context.Context) error
	timeout time.Duration
	logger  *slog.Logger
}

func NewCron(name, spec string, trigger func(context.Context) error, logger *slog.Logger) (*Cron, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("schedule for %s is empty", name)
	}
	if logger == nil {
		logger = slog.Default()
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := &Cron{
		cron:    cron.New(cron.WithParser(parser)),
		spec:    spec,
		name:    name,
		trigger: trigger,
		timeout: defaultRunTimeout,
		logger:  logger.With("component", "scheduler", "job", name),
	}
	if _, err := c.cron.AddFunc(spec, c.run); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return c, nil
}

func (c *Cron) run() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.trigger(ctx); err != nil {
		c.logger.Error("scheduled_trigger_failed", "error", err)
		return
	}
	c.logger.Info("scheduled_trigger_fired", "next", c.Next())
}

// Start runs the schedule until ctx is done.
func (c *Cron) Start(ctx context.Context) {
	c.cron.Start()
	c.logger.Info("schedule_started", "spec", c.spec, "next", c.Next())
	go func() {
		<-ctx.Done()
		<-c.cron.Stop().Done()
	}()
}

func (c *Cron) Next() time.Time {
	entries := c.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	if next := entries[0].Next; !next.IsZero() {
		return next
	}
	return entries[0].Schedule.Next(time.Now())
}
