package domain

import "time"

// VaultResource is a shared document in the resource vault. Uploads go through
// an approval queue before appearing in listings.
type VaultResource struct {
	ID          string
	UploaderID  string
	Title       string
	Description *string
	Category    *string
	FileURL     string
	Approved    bool
	CreatedAt   time.Time
}

// ResourceRequest is an open ask for a document the vault does not yet hold.
type ResourceRequest struct {
	ID          string
	RequesterID string
	Title       string
	Details     *string
	Resolved    bool
	CreatedAt   time.Time
}

// ResourceResponse links a fulfilling resource or note to a request.
type ResourceResponse struct {
	ID         string
	RequestID  string
	AuthorID   string
	ResourceID *string
	Note       *string
	CreatedAt  time.Time
}
