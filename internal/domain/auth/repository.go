package auth

import "context"

// Repository abstracts athlete persistence. Emails are stored normalized.
type Repository interface {
	Create(ctx context.Context, athlete Athlete) (Athlete, error)
	GetByEmail(ctx context.Context, email string) (Athlete, bool, error)
	GetByID(ctx context.Context, id int64) (Athlete, bool, error)
	// UpdateProfile replaces name and location; false means no such athlete.
	UpdateProfile(ctx context.Context, id int64, name, location string) (Athlete, bool, error)
}
