package models

import "time"

// User is the public profile of a signed-in player.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	SubjectHash *string   `json:"-"` // Hash of the sign-in subject, never exposed
	CreatedAt   time.Time `json:"createdAt"`
}

// UserID derives the profile identifier from an identity provider subject.
func UserID(subject string) string {
	return "user_" + subject
}
