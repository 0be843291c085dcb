package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// SweepResult summarizes an overdue sweep.
type SweepResult struct {
	MarkedOverdue int `json:"markedOverdue"`
	Reminded      int `json:"reminded"`
	Failed        int `json:"failed"`
}

// SweepOverdue marks past-due invoices overdue and, when remind is set, texts
// the customer of every overdue invoice that has not been reminded yet.
// Invoices flipped earlier by a read still get their reminder.
func (s *Services) SweepOverdue(remind bool) (SweepResult, error) {
	var res SweepResult
	flipped, err := s.Invoices.RefreshOverdue()
	if err != nil {
		return res, err
	}
	res.MarkedOverdue = len(flipped)

	if remind {
		if err := s.remindOverdue(&res); err != nil {
			return res, err
		}
	}
	log.Printf("[OVERDUE] %d invoices marked overdue, %d reminders sent, %d failed",
		res.MarkedOverdue, res.Reminded, res.Failed)
	return res, nil
}

func (s *Services) remindOverdue(res *SweepResult) error {
	if s.Notifications.SMS == nil {
		log.Printf("[OVERDUE] sms is not configured, skipping reminders")
		return nil
	}
	pending, err := s.Invoices.OverdueAwaitingReminder()
	if err != nil {
		return err
	}
	for _, inv := range pending {
		if inv.Customer == nil || inv.Customer.Phone == "" {
			continue
		}
		if err := s.Notifications.SendPaymentReminder(inv.ID); err != nil {
			if errors.Is(err, ErrSMSNotConfigured) {
				log.Printf("[OVERDUE] sms is not configured, skipping reminders")
				return nil
			}
			res.Failed++
			continue
		}
		if err := s.Invoices.MarkOverdueReminded(inv.ID); err != nil {
			log.Printf("[OVERDUE] failed to record reminder for invoice %s: %v", inv.InvoiceNumber, err)
		}
		res.Reminded++
	}
	return nil
}

// ScheduleConfig holds the cron specs for the background jobs.
type ScheduleConfig struct {
	Recurring     string
	Overdue       string
	OverdueRemind bool
	Backup        string
	BackupEnabled bool
}

// Scheduler runs recurring generation, the overdue sweep and backups on cron schedules.
type Scheduler struct {
	cron *cron.Cron
	svc  *Services
	cfg  ScheduleConfig
}

func NewScheduler(svc *Services, cfg ScheduleConfig) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		svc:  svc,
		cfg:  cfg,
	}

	if cfg.Recurring != "" {
		if _, err := s.cron.AddFunc(cfg.Recurring, s.runRecurring); err != nil {
			return nil, fmt.Errorf("recurring schedule %q: %w", cfg.Recurring, err)
		}
	}
	if cfg.Overdue != "" {
		if _, err := s.cron.AddFunc(cfg.Overdue, s.runOverdue); err != nil {
			return nil, fmt.Errorf("overdue schedule %q: %w", cfg.Overdue, err)
		}
	}
	if cfg.BackupEnabled && cfg.Backup != "" {
		if _, err := s.cron.AddFunc(cfg.Backup, s.runBackup); err != nil {
			return nil, fmt.Errorf("backup schedule %q: %w", cfg.Backup, err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("[SCHEDULER] started with %d jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) runRecurring() {
	if _, err := s.svc.Recurring.GenerateDue(); err != nil {
		log.Printf("[RECURRING] run failed: %v", err)
	}
}

func (s *Scheduler) runOverdue() {
	if _, err := s.svc.SweepOverdue(s.cfg.OverdueRemind); err != nil {
		log.Printf("[OVERDUE] sweep failed: %v", err)
	}
}

func (s *Scheduler) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	if _, err := s.svc.Backups.Create(ctx); err != nil {
		return
	}
	if _, err := s.svc.Backups.Cleanup(); err != nil {
		log.Printf("[BACKUP] cleanup failed: %v", err)
	}
}
