package entity

import "time"

// User is a chat-platform account, keyed by the platform's own id.
type User struct {
	Id        string
	Username  string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
