package domain

import "time"

// DirectoryProduct is a third-party product or service listed in the product
// directory.
type DirectoryProduct struct {
	ID          string
	SubmitterID string
	Name        string
	Description *string
	Category    *string
	WebsiteURL  *string
	Approved    bool
	AvgRating   *float64
	RatingCount int
	CreatedAt   time.Time
}

// ProductRating is a 1-5 member rating of a directory product.
type ProductRating struct {
	ID        string
	ProductID string
	AuthorID  string
	Rating    int
	Comment   *string
	CreatedAt time.Time
}
