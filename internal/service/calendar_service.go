package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ukmcatur/caturbot/internal/clients/caldav"
	"github.com/ukmcatur/caturbot/internal/domain"
)

type calendarPublisher interface {
	IsConfigured() bool
	PutEvent(ctx context.Context, event *caldav.Event) error
}

// CalendarService turns upcoming club activities into iCalendar events,
// for CalDAV publishing and for .ics export.
type CalendarService struct {
	schedules *ScheduleService
	publisher calendarPublisher
	location  *time.Location
}

func NewCalendarService(schedules *ScheduleService, publisher calendarPublisher, loc *time.Location) *CalendarService {
	return &CalendarService{schedules: schedules, publisher: publisher, location: loc}
}

// EventFor converts one schedule. Activities without a parseable date
// have no place on a calendar, so it returns nil for them. A missing
// time component makes an all-day event.
func (s *CalendarService) EventFor(sched *domain.Schedule) *caldav.Event {
	date, ok := domain.ParseDateLabel(sched.DateTime)
	if !ok {
		return nil
	}

	event := &caldav.Event{
		UID:         fmt.Sprintf("schedule-%d@caturbot", sched.ID),
		Summary:     fmt.Sprintf("%s %s", sched.TypeEmoji(), sched.Title),
		Description: sched.Description,
		Location:    sched.Location,
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.location)
	if clock, err := time.Parse("15:04", sched.TimeLabel()); err == nil {
		event.StartTime = start.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
	} else {
		event.StartTime = start
		event.AllDay = true
	}
	return event
}

// UpcomingEvents converts every upcoming activity.
func (s *CalendarService) UpcomingEvents(now time.Time) ([]*caldav.Event, error) {
	schedules, err := s.schedules.List(domain.TabUpcoming, now)
	if err != nil {
		return nil, err
	}
	var events []*caldav.Event
	for _, sched := range schedules {
		if event := s.EventFor(sched); event != nil {
			events = append(events, event)
		}
	}
	return events, nil
}

// ExportICS renders the upcoming activities as one .ics document.
func (s *CalendarService) ExportICS(now time.Time) (string, error) {
	events, err := s.UpcomingEvents(now)
	if err != nil {
		return "", err
	}
	return caldav.Serialize(caldav.EventsToICS(events))
}

// PublishUpcoming pushes every upcoming activity to the configured
// CalDAV collection. UIDs are derived from schedule ids, so edits
// replace instead of duplicating.
func (s *CalendarService) PublishUpcoming(ctx context.Context, now time.Time) (int, error) {
	if s.publisher == nil || !s.publisher.IsConfigured() {
		return 0, nil
	}

	events, err := s.UpcomingEvents(now)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, event := range events {
		if err := s.publisher.PutEvent(ctx, event); err != nil {
			return published, err
		}
		published++
	}
	return published, nil
}
