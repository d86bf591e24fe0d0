package domain

import "time"

// FiresideChat is a scheduled group session hosted by a mentor.
type FiresideChat struct {
	ID              string
	HostID          string
	Title           string
	Description     *string
	ScheduledAt     time.Time
	DurationMinutes int
	Capacity        int
	Registered      int
	MeetingURL      *string
	CreatedAt       time.Time
}

// IsFull reports whether registration has reached capacity.
func (f FiresideChat) IsFull() bool {
	return f.Capacity > 0 && f.Registered >= f.Capacity
}

// FiresideRegistration records a member's seat in a fireside chat.
type FiresideRegistration struct {
	ChatID       string
	ProfileID    string
	RegisteredAt time.Time
}

// Masterclass is a hosted teaching event; past events keep a recording URL
// visible to registered members.
type Masterclass struct {
	ID           string
	HostID       string
	Title        string
	Description  *string
	ScheduledAt  time.Time
	RecordingURL *string
	CreatedAt    time.Time
}

// IsRecorded reports whether the masterclass already has a published
// recording.
func (m Masterclass) IsRecorded() bool {
	return m.RecordingURL != nil && *m.RecordingURL != ""
}

// MasterclassRegistration records attendance intent for a masterclass.
type MasterclassRegistration struct {
	MasterclassID string
	ProfileID     string
	RegisteredAt  time.Time
}
