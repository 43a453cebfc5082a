package services

import (
	"math"
	"time"

	"github.com/localnerve/recipe-journal/internal/models"
)

// Calendar resolves "today" and month boundaries in the service time zone
type Calendar struct {
	Location *time.Location
	Now      func() time.Time
}

// NewCalendar returns a Calendar for loc using the wall clock
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Location: loc, Now: time.Now}
}

func (c Calendar) now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	if c.Now == nil {
		return time.Now().In(loc)
	}
	return c.Now().In(loc)
}

// Today is the current calendar date in the service time zone
func (c Calendar) Today() models.CalendarDate {
	return models.NewCalendarDate(c.now())
}

// DDay is the signed number of days from today until date
func (c Calendar) DDay(date models.CalendarDate) int {
	diff := date.Time().Sub(c.Today().Time())
	return int(math.Ceil(diff.Hours() / 24))
}

// MonthBounds returns the UTC instants at which the current month starts,
// the previous month starts and the next month starts
func (c Calendar) MonthBounds() (current, previous, next time.Time) {
	now := c.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start.UTC(), start.AddDate(0, -1, 0).UTC(), start.AddDate(0, 1, 0).UTC()
}
