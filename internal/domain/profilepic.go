package domain

import "time"

// ProfilePic is the single profile picture a user may own.
type ProfilePic struct {
	ID         string    `json:"id" db:"id" dynamodbav:"image_id"`
	UserID     string    `json:"user_id" db:"user_id" dynamodbav:"user_id"`
	FileName   string    `json:"file_name" db:"file_name" dynamodbav:"file_name"`
	URL        string    `json:"url" db:"url" dynamodbav:"url"`
	UploadDate time.Time `json:"upload_date" db:"upload_date" dynamodbav:"upload_date"`
}

// ObjectKeyPrefix is the bucket folder holding profile pictures.
const ObjectKeyPrefix = "profile-pics/"

// ObjectKey returns the storage key of the picture's object.
func (p *ProfilePic) ObjectKey() string { return ObjectKeyPrefix + p.FileName }
