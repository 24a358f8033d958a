package models

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the unique login name.
	Username string

	// Name is the user's given name.
	Name string

	// Surname is the user's family name.
	Surname string

	// Email is the user's email address (unique).
	// Used for confirmation codes and debt reminders.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// EmailConfirmed reports whether the user completed email confirmation.
	// Unconfirmed users cannot log in.
	EmailConfirmed bool

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// RefreshToken is a stored refresh token. Tokens are rotated on every use:
// issuing a new pair invalidates all previously issued tokens for the user.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Valid     bool
	CreatedAt int64
}

// ConfirmationCode is a short numeric code mailed to a user to confirm
// ownership of an email address.
type ConfirmationCode struct {
	ID        string
	UserID    string
	Code      string
	CreatedAt int64
}
