package domain

import "time"

// Profile is the user-facing record backing every screen on the platform. It
// is keyed by the auth user id; the profiles table is the source of truth for
// role and credits, and permission checks must always read the role from the
// profile row, never from a previously cached copy.
type Profile struct {
	ID                     string
	Email                  string
	FullName               *string
	AvatarURL              *string
	Bio                    *string
	Role                   Role
	Credits                int
	MentorExperience       []string
	ExpertiseAreas         []string
	YearsOfExperience      *int
	LanguagesSpoken        []string
	SessionRate            *int
	ProfessionalBackground *string
	Approved               bool
	OrganizationID         *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// IsMentor reports whether the profile belongs to a mentor account.
func (p Profile) IsMentor() bool {
	return p.Role == RoleMentor
}

// MentorCalendar links a mentor to their scheduling handle. The booking embed
// is an external widget; this record only stores the handle passed to it.
type MentorCalendar struct {
	MentorID    string
	CalUsername string
	Platform    string
	UpdatedAt   time.Time
}

// MentorReview is a post-session rating left by a mentee. Aggregation into a
// mentor's displayed rating happens in the get_mentor_rating database
// procedure, not in this service.
type MentorReview struct {
	ID        string
	MentorID  string
	AuthorID  string
	SessionID string
	Rating    int
	Comment   *string
	CreatedAt time.Time
}

// MentorSearchFilter captures the mentor directory filters exposed to
// subscribers.
type MentorSearchFilter struct {
	ExpertiseArea    string
	MentorExperience string
	Language         string
	MinRate          *int
	MaxRate          *int
	Query            string
	Limit            int
	Offset           int
}
