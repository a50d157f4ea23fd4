package domain

import "time"

// VerificationRecord is one issued verification token. Records are written
// once by the mail sender and never mutated; the token is the lookup key.
type VerificationRecord struct {
	Email     string    `json:"email" db:"email" dynamodbav:"email"`
	Token     string    `json:"token" db:"token" dynamodbav:"token"`
	ExpiresAt time.Time `json:"expiry_time" db:"expiry_time" dynamodbav:"expiry_time"`
}

// Expired reports whether the record is no longer usable at now.
// The expiry instant itself already counts as expired.
func (r *VerificationRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// VerificationMessage is the payload published on the delivery channel.
type VerificationMessage struct {
	Email string `json:"email"`
}

// VerificationLink is a freshly generated token with its link and expiry.
type VerificationLink struct {
	Token     string
	Link      string
	ExpiresAt time.Time
}

// VerifyResult describes a successful confirmation.
type VerifyResult struct {
	Email           string
	AlreadyVerified bool
}

// Email is an outbound message handed to a mail provider.
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}
