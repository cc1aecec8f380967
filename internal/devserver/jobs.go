// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jeranaias/aisuite/internal/model"
)

// DefaultDueSoon is the reminder look-ahead when none is configured.
const DefaultDueSoon = 24 * time.Hour

// ReminderReport lists the items a sweep found.
type ReminderReport struct {
	Overdue []*model.ActionItem
	DueSoon []*model.ActionItem
}

// ============================================================================
// REMINDER SWEEP
// ============================================================================

// SweepReminders logs every open item that is overdue or due within the
// configured look-ahead.
func (s *Server) SweepReminders(ctx context.Context) (ReminderReport, error) {
	now := s.now()
	ahead := DefaultDueSoon
	if s.cfg.DueSoonHours > 0 {
		ahead = time.Duration(s.cfg.DueSoonHours) * time.Hour
	}

	overdue, err := s.store.OverdueActionItems(ctx, now)
	if err != nil {
		return ReminderReport{}, fmt.Errorf("overdue sweep: %w", err)
	}
	dueSoon, err := s.store.DueSoonActionItems(ctx, now, now.Add(ahead))
	if err != nil {
		return ReminderReport{}, fmt.Errorf("due soon sweep: %w", err)
	}

	for _, item := range overdue {
		s.logger.Info("action item overdue", itemFields(item, now)...)
	}
	for _, item := range dueSoon {
		s.logger.Info("action item due soon", itemFields(item, now)...)
	}
	s.logger.Debug("reminder sweep done",
		zap.Int("overdue", len(overdue)),
		zap.Int("due_soon", len(dueSoon)),
	)
	return ReminderReport{Overdue: overdue, DueSoon: dueSoon}, nil
}

func itemFields(item *model.ActionItem, now time.Time) []zap.Field {
	return []zap.Field{
		zap.String("id", item.ID),
		zap.String("assignee_id", item.AssigneeID),
		zap.String("priority", string(item.Priority)),
		zap.Time("due", item.Due()),
		zap.Duration("until_due", item.Due().Sub(now).Round(time.Minute)),
	}
}

// runReminders runs SweepReminders on schedule until ctx is done.
func (s *Server) runReminders(ctx context.Context, schedule string) error {
	cronLog := cron.PrintfLogger(zap.NewStdLog(s.logger.Named("cron")))
	c := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := c.AddFunc(schedule, func() {
		if _, err := s.SweepReminders(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("reminder sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}

	c.Start()
	s.logger.Info("reminder sweep scheduled", zap.String("schedule", schedule))
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// ============================================================================
// FIXTURE RELOAD
// ============================================================================

// ReloadFixtures reads the fixtures file again. On error the current
// fixtures stay in place.
func (s *Server) ReloadFixtures(path string) error {
	f, err := LoadFixtures(path)
	if err != nil {
		return err
	}
	s.SetFixtures(f)
	s.logger.Info("fixtures reloaded",
		zap.String("path", path),
		zap.Int("channels", len(f.Channels)),
		zap.Int("posts", len(f.Posts)),
	)
	return nil
}

// watchFixtures reloads path whenever it changes. The directory is watched
// so editors that replace the file on save are seen too.
func (s *Server) watchFixtures(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fixture watcher: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := s.ReloadFixtures(target); err != nil {
				s.logger.Warn("fixture reload failed", zap.String("path", target), zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("fixture watcher error", zap.Error(err))
		}
	}
}
