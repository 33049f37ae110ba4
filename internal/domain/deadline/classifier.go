// Package deadline classifies quotation submission deadlines by calendar days remaining.
package deadline

import (
	"fmt"
	"time"

	"github.com/garyjia/rfq-portal/internal/domain/servicedate"
)

// Icon tags
const (
	IconInfo          = "info"
	IconClosed        = "x"
	IconAlertCircle   = "alert-circle"
	IconAlertTriangle = "alert-triangle"
	IconClock         = "clock"
	IconCalendarDays  = "calendar-days"
	IconCalendarCheck = "calendar-check"
)

// Classification describes how a deadline should be presented
type Classification struct {
	State    State  `json:"state"`
	Status   string `json:"status"`
	Tier     Tier   `json:"tier"`
	Icon     string `json:"icon"`
	Palette  string `json:"palette"`
	DaysText string `json:"days_text"`
	Days     int    `json:"days"`
	HasDate  bool   `json:"has_date"`
}

// NoDate is the classification of a missing or unparseable deadline
func NoDate() Classification {
	return Classification{
		State:    StateNoDate,
		Status:   "No date",
		Tier:     TierNone,
		Icon:     IconInfo,
		Palette:  "gray",
		DaysText: "No deadline",
	}
}

// ForDays maps a deadline-minus-today day difference to its classification
func ForDays(days int) Classification {
	c := Classification{Days: days, HasDate: true}

	switch {
	case days < 0:
		c.State, c.Status, c.Icon, c.Palette, c.DaysText =
			StateExpired, "Expired", IconClosed, "red", "Submission closed"
	case days == 0:
		c.State, c.Status, c.Icon, c.Palette, c.DaysText =
			StateDueToday, "Due today", IconAlertCircle, "red", "Last day to submit"
	case days == 1:
		c.State, c.Status, c.Icon, c.Palette, c.DaysText =
			StateDueTomorrow, "Due tomorrow", IconAlertTriangle, "orange", "Expiring soon"
	case days <= 3:
		c.State, c.Status, c.Icon, c.Palette, c.DaysText =
			StateDueSoon, dueIn(days), IconClock, "orange", daysLeft(days)
	case days <= 7:
		c.State, c.Status, c.Icon, c.Palette, c.DaysText =
			StateDueThisWeek, dueIn(days), IconCalendarDays, "blue", daysLeft(days)
	default:
		c.State, c.Status, c.Icon, c.Palette, c.DaysText =
			StateActive, dueIn(days), IconCalendarCheck, "green", "Active"
	}

	c.Tier = c.State.Tier()
	return c
}

func dueIn(days int) string {
	return fmt.Sprintf("Due in %d days", days)
}

func daysLeft(days int) string {
	return fmt.Sprintf("%d days left", days)
}

// Classifier classifies deadlines against the current local calendar day
type Classifier struct {
	now func() time.Time
	loc *time.Location
}

// Option configures a Classifier
type Option func(*Classifier)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		c.now = now
	}
}

// WithLocation sets the location whose calendar days are compared
func WithLocation(loc *time.Location) Option {
	return func(c *Classifier) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// NewClassifier creates a Classifier using the wall clock in time.Local
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify parses a service date and classifies it. Empty or unparseable
// input is NoDate.
func (c *Classifier) Classify(raw string) Classification {
	if raw == "" {
		return NoDate()
	}
	t, ok := servicedate.Parse(raw, c.loc)
	if !ok {
		return NoDate()
	}
	return c.ClassifyTime(t)
}

// ClassifyTime classifies a deadline instant by its calendar day. A zero time is NoDate.
func (c *Classifier) ClassifyTime(t time.Time) Classification {
	if t.IsZero() {
		return NoDate()
	}
	today := c.now().In(c.loc)
	return ForDays(servicedate.CivilDays(today, t.In(c.loc)))
}

// Location returns the location used for calendar-day comparison
func (c *Classifier) Location() *time.Location {
	return c.loc
}
