package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ukmcatur/caturbot/config"
	"github.com/ukmcatur/caturbot/internal/domain"
	"github.com/ukmcatur/caturbot/internal/service"
	"github.com/ukmcatur/caturbot/internal/storage"
)

type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

// Scheduler drives the recurring jobs: the morning digest, day-before
// reminders, and CalDAV publishing. Everything runs in the club's
// timezone.
type Scheduler struct {
	cron      *cron.Cron
	cfg       *config.Config
	storage   *storage.Storage
	schedules *service.ScheduleService
	calendar  *service.CalendarService
	sender    MessageSender
}

func New(cfg *config.Config, storage *storage.Storage, schedSvc *service.ScheduleService, calSvc *service.CalendarService) *Scheduler {
	c := cron.New(cron.WithLocation(cfg.Timezone))

	return &Scheduler{
		cron:      c,
		cfg:       cfg,
		storage:   storage,
		schedules: schedSvc,
		calendar:  calSvc,
	}
}

func (s *Scheduler) SetSender(sender MessageSender) {
	s.sender = sender
}

// digestSpec turns "07:00" into the cron line "0 7 * * *".
func digestSpec(digestTime string) (string, error) {
	parts := strings.SplitN(digestTime, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid digest time %q, want HH:MM", digestTime)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid digest hour %q", parts[0])
	}
	min, err := strconv.Atoi(parts[1])
	if err != nil || min < 0 || min > 59 {
		return "", fmt.Errorf("invalid digest minute %q", parts[1])
	}
	return fmt.Sprintf("%d %d * * *", min, hour), nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	spec, err := digestSpec(s.cfg.DigestTime)
	if err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(spec, s.morningDigest); err != nil {
		return fmt.Errorf("add morning digest: %w", err)
	}

	if _, err := s.cron.AddFunc("0 * * * *", s.dayBeforeReminders); err != nil {
		return fmt.Errorf("add day-before reminders: %w", err)
	}

	if _, err := s.cron.AddFunc("15 */6 * * *", s.publishCalendar); err != nil {
		return fmt.Errorf("add calendar publish: %w", err)
	}

	s.cron.Start()
	log.Printf("Scheduler started (TZ: %s, digest: %s)", s.cfg.Timezone, s.cfg.DigestTime)

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

// morningDigest sends every logged-in chat the upcoming activity list.
func (s *Scheduler) morningDigest() {
	if s.sender == nil {
		return
	}

	now := time.Now().In(s.cfg.Timezone)
	upcoming, err := s.schedules.List(domain.TabUpcoming, now)
	if err != nil {
		log.Printf("Digest: list schedules: %v", err)
		return
	}
	if len(upcoming) == 0 {
		return
	}

	today := fmt.Sprintf("%d %s %d", now.Day(), domain.MonthName(now.Month()), now.Year())
	text := fmt.Sprintf("☀️ <b>Selamat pagi!</b> Hari ini %s.\n\n<b>Kegiatan yang akan datang:</b>\n\n%s",
		today, s.schedules.FormatList(upcoming, domain.TabUpcoming, now))

	sessions, err := s.storage.ListActiveSessions()
	if err != nil {
		log.Printf("Digest: list sessions: %v", err)
		return
	}
	for _, sess := range sessions {
		if err := s.sender.SendMessage(sess.ChatID, text); err != nil {
			log.Printf("Digest: send to %d: %v", sess.ChatID, err)
		}
	}
}

// dayBeforeReminders pings every logged-in chat once per activity the
// day before it happens. Dedupe is persistent, so restarts do not
// re-send.
func (s *Scheduler) dayBeforeReminders() {
	if s.sender == nil {
		return
	}

	now := time.Now().In(s.cfg.Timezone)
	tomorrow := now.AddDate(0, 0, 1)

	schedules, err := s.schedules.List(domain.TabUpcoming, now)
	if err != nil {
		log.Printf("Reminders: list schedules: %v", err)
		return
	}

	var due []*domain.Schedule
	for _, sched := range schedules {
		date, ok := domain.ParseDateLabel(sched.DateTime)
		if !ok {
			continue
		}
		y1, m1, d1 := date.Date()
		y2, m2, d2 := tomorrow.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			due = append(due, sched)
		}
	}
	if len(due) == 0 {
		return
	}

	sessions, err := s.storage.ListActiveSessions()
	if err != nil {
		log.Printf("Reminders: list sessions: %v", err)
		return
	}

	for _, sched := range due {
		text := fmt.Sprintf("⏰ <b>Besok:</b> %s %s\n📅 %s", sched.TypeEmoji(), sched.Title, sched.DateTime)
		if sched.Location != "" {
			text += "\n📍 " + sched.Location
		}

		for _, sess := range sessions {
			fresh, err := s.storage.MarkNotified(sess.ChatID, sched.ID, "daybefore")
			if err != nil {
				log.Printf("Reminders: mark notified: %v", err)
				continue
			}
			if !fresh {
				continue
			}
			if err := s.sender.SendMessage(sess.ChatID, text); err != nil {
				log.Printf("Reminders: send to %d: %v", sess.ChatID, err)
			}
		}
	}
}

func (s *Scheduler) publishCalendar() {
	if s.calendar == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	now := time.Now().In(s.cfg.Timezone)
	n, err := s.calendar.PublishUpcoming(ctx, now)
	if err != nil {
		log.Printf("CalDAV publish: %v", err)
		return
	}
	if n > 0 {
		log.Printf("CalDAV publish: %d events", n)
	}
}
