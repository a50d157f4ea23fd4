package dynamo

// DynamoDB attribute names used in keys and expressions across all repos.
const (
	fieldUserID         = "user_id"
	fieldEmail          = "email"
	fieldToken          = "token"
	fieldVerified       = "is_verified"
	fieldFirstName      = "first_name"
	fieldLastName       = "last_name"
	fieldPasswordHash   = "password_hash"
	fieldAccountUpdated = "account_updated"

	emailIndex = "email-index"
)
