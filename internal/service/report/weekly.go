package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/ports"
)

// WeeklyNotifier pushes a top-consumer ranking every Monday at 09:00 local
// time. It sleeps until the next scheduled instant instead of polling.
type WeeklyNotifier struct {
	reports  ports.ReportRepository
	users    ports.UserRepository
	notifier ports.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewWeeklyNotifier(
	reports ports.ReportRepository,
	users ports.UserRepository,
	notifier ports.Notifier,
	log *zap.Logger,
) *WeeklyNotifier {
	return &WeeklyNotifier{
		reports:  reports,
		users:    users,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Run blocks until the context is cancelled.
func (w *WeeklyNotifier) Run(ctx context.Context) {
	for {
		next := nextMondayNine(w.now())
		w.log.Info("Weekly report scheduled", zap.Time("next_run", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := w.SendOnce(ctx); err != nil {
			w.log.Error("Weekly report failed", zap.Error(err))
		}
	}
}

// SendOnce builds and pushes the ranking for the trailing seven days. No
// closed transactions in the window means no message.
func (w *WeeklyNotifier) SendOnce(ctx context.Context) error {
	since := w.now().AddDate(0, 0, -7)
	rows, err := w.reports.TopConsumersSince(ctx, since, 5)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		w.log.Info("Weekly report: no transactions in window, skipping")
		return nil
	}

	var b strings.Builder
	b.WriteString("📊 一週用電排行（依 idTag）:\n")
	for i, row := range rows {
		fmt.Fprintf(&b, "%d. %s：%.2f kWh\n", i+1, row.Key, row.TotalEnergyWh/1000.0)
	}

	recipients, err := w.users.RecipientsFor(ctx, nil)
	if err != nil {
		return err
	}
	return w.notifier.Push(ctx, b.String(), recipients)
}

// nextMondayNine is the next Monday 09:00 strictly after t.
func nextMondayNine(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), 9, 0, 0, 0, t.Location())
	daysAhead := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, daysAhead)
	if !next.After(t) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}
