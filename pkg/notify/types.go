// Package notify defines the notification sink boundary: the component that
// actually delivers or schedules user-facing notifications. Everything above
// it (monitors, dispatch) only ever hands payloads to a Sink.
package notify

import "context"

// Payload is the unit of content exchanged with a Sink.
// Data carries routing metadata for the receiving client; the "type" key is
// always set by the dispatcher and identifies the originating event kind.
type Payload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}

// Type returns the payload's routing type, or "" when unset.
func (p Payload) Type() string {
	if p.Data == nil {
		return ""
	}
	s, _ := p.Data["type"].(string)
	return s
}

// Schedule describes when a notification fires. A zero Schedule means
// "deliver immediately". Seconds takes precedence as a relative one-shot
// delay; otherwise the calendar fields apply, optionally recurring.
type Schedule struct {
	Seconds int  `json:"seconds,omitempty"`
	Minute  *int `json:"minute,omitempty"`
	Hour    *int `json:"hour,omitempty"`
	Day     *int `json:"day,omitempty"`
	Month   *int `json:"month,omitempty"`
	Year    *int `json:"year,omitempty"`
	Weekday *int `json:"weekday,omitempty"` // 1=Sunday .. 7=Saturday
	Repeats bool `json:"repeats,omitempty"`
}

// After returns a relative one-shot schedule.
func After(seconds int) Schedule {
	return Schedule{Seconds: seconds}
}

// DailyAt returns a recurring calendar schedule firing every day at the
// given local time.
func DailyAt(hour, minute int) Schedule {
	return Schedule{Hour: &hour, Minute: &minute, Repeats: true}
}

// WeeklyAt returns a recurring calendar schedule firing weekly on the given
// weekday (1=Sunday .. 7=Saturday) at the given local time.
func WeeklyAt(weekday, hour, minute int) Schedule {
	return Schedule{Weekday: &weekday, Hour: &hour, Minute: &minute, Repeats: true}
}

// Request is a scheduled notification as known to the sink.
type Request struct {
	ID       string   `json:"id"`
	Payload  Payload  `json:"payload"`
	Schedule Schedule `json:"schedule"`
}

// Sink delivers and schedules notifications. The sink owns all scheduling
// state and is authoritative for what is actually pending; callers hold only
// the ids they need to cancel their own schedules.
type Sink interface {
	// Name returns the sink identifier.
	Name() string

	// Send delivers a notification immediately and returns its id.
	Send(ctx context.Context, p Payload) (string, error)

	// Schedule registers a notification for future delivery and returns its id.
	Schedule(ctx context.Context, p Payload, s Schedule) (string, error)

	// Cancel removes a pending scheduled notification by id.
	Cancel(ctx context.Context, id string) error

	// CancelAll removes every pending scheduled notification.
	CancelAll(ctx context.Context) error

	// Scheduled lists the pending scheduled notifications.
	Scheduled(ctx context.Context) ([]Request, error)
}
