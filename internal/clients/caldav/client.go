package caldav

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
)

// Client publishes club activities to a CalDAV calendar collection.
type Client struct {
	baseURL      string
	username     string
	password     string
	calendarPath string
	client       *caldav.Client
}

func NewClient(baseURL, username, password, calendarPath string) *Client {
	return &Client{
		baseURL:      baseURL,
		username:     username,
		password:     password,
		calendarPath: calendarPath,
	}
}

// IsConfigured reports whether publishing is enabled.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.username != "" && c.password != "" && c.calendarPath != ""
}

func (c *Client) connect() (*caldav.Client, error) {
	if c.client != nil {
		return c.client, nil
	}

	httpClient := &http.Client{
		Transport: &basicAuthTransport{
			username: c.username,
			password: c.password,
		},
		Timeout: 30 * time.Second,
	}

	client, err := caldav.NewClient(httpClient, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to CalDAV: %w", err)
	}

	c.client = client
	return client, nil
}

type basicAuthTransport struct {
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return http.DefaultTransport.RoundTrip(req)
}

func (c *Client) eventPath(uid string) string {
	path := c.calendarPath
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path + uid + ".ics"
}

// PutEvent creates or replaces one event. PUT on the same UID replaces,
// so republishing an edited activity just works.
func (c *Client) PutEvent(ctx context.Context, event *Event) error {
	client, err := c.connect()
	if err != nil {
		return err
	}

	if _, err := client.PutCalendarObject(ctx, c.eventPath(event.UID), EventToICS(event)); err != nil {
		return fmt.Errorf("put event %s: %w", event.UID, err)
	}
	return nil
}

// DeleteEvent removes one event by UID. Missing events are not an
// error worth surfacing here.
func (c *Client) DeleteEvent(ctx context.Context, uid string) error {
	client, err := c.connect()
	if err != nil {
		return err
	}

	if err := client.RemoveAll(ctx, c.eventPath(uid)); err != nil {
		return fmt.Errorf("delete event %s: %w", uid, err)
	}
	return nil
}

// EventToICS renders one event as a standalone VCALENDAR.
func EventToICS(event *Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//UKM Catur//caturbot//ID")

	cal.Children = append(cal.Children, eventComponent(event))
	return cal
}

// EventsToICS renders several events into one VCALENDAR, for file
// export.
func EventsToICS(events []*Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//UKM Catur//caturbot//ID")

	for _, event := range events {
		cal.Children = append(cal.Children, eventComponent(event))
	}
	return cal
}

// Serialize encodes a calendar to its wire form.
func Serialize(cal *ical.Calendar) (string, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("encode calendar: %w", err)
	}
	return buf.String(), nil
}

func eventComponent(event *Event) *ical.Component {
	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, event.UID)
	vevent.Props.SetText(ical.PropSummary, event.Summary)
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

	if event.Description != "" {
		vevent.Props.SetText(ical.PropDescription, event.Description)
	}
	if event.Location != "" {
		vevent.Props.SetText(ical.PropLocation, event.Location)
	}

	if event.AllDay {
		vevent.Props.SetDate(ical.PropDateTimeStart, event.StartTime)
		end := event.EndTime
		if end.IsZero() {
			end = event.StartTime.AddDate(0, 0, 1)
		}
		vevent.Props.SetDate(ical.PropDateTimeEnd, end)
	} else {
		vevent.Props.SetDateTime(ical.PropDateTimeStart, event.StartTime.UTC())
		end := event.EndTime
		if end.IsZero() {
			end = event.StartTime.Add(2 * time.Hour)
		}
		vevent.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
	}

	return vevent.Component
}
