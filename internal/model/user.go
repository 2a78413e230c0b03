package model

import "time"

// User is one person talking to the bot, keyed by the transport platform's
// identity. Created on first contact and never deleted.
type User struct {
	CreatedAt  time.Time
	ExternalID string
	FullName   string
	ID         int64
}
