package domain

import "time"

type User struct {
	ID             string    `json:"id" db:"id" dynamodbav:"user_id"`
	FirstName      string    `json:"first_name" db:"first_name" dynamodbav:"first_name"`
	LastName       string    `json:"last_name" db:"last_name" dynamodbav:"last_name"`
	Email          string    `json:"email" db:"email" dynamodbav:"email"`
	PasswordHash   string    `json:"-" db:"password_hash" dynamodbav:"password_hash"`
	Verified       bool      `json:"is_verified" db:"is_verified" dynamodbav:"is_verified"`
	AccountCreated time.Time `json:"account_created" db:"account_created" dynamodbav:"account_created"`
	AccountUpdated time.Time `json:"account_updated" db:"account_updated" dynamodbav:"account_updated"`
}

type CreateUserRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,max=72"`
}

// UpdateUserRequest lists the only fields a user may change on their own account.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password"`
}

// UserUpdate is the storage-level patch built from an UpdateUserRequest.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	PasswordHash *string
	UpdatedAt    time.Time
}

func (u UserUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.PasswordHash == nil
}
