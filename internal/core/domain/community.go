package domain

import "time"

// Discussion is a Coffee Talk thread started by any member.
type Discussion struct {
	ID         string
	AuthorID   string
	Title      string
	Body       string
	Category   *string
	ReplyCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DiscussionReply is a response within a discussion thread.
type DiscussionReply struct {
	ID           string
	DiscussionID string
	AuthorID     string
	Body         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Message is a direct message between two members, or a platform-wide
// announcement when Global is set.
type Message struct {
	ID          string
	SenderID    string
	RecipientID *string
	Subject     *string
	Body        string
	Global      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// MessageThread summarizes a conversation for the inbox view.
type MessageThread struct {
	CounterpartID string
	LastMessage   Message
	UnreadCount   int
}
