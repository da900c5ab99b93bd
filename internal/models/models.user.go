// FilePath: internal/models/models.user.go
package models

import "time"

// User is a registered dashboard account. PasswordHash is a bcrypt hash;
// the cleartext password never leaves the auth service.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Credentials is the register/login request body. Accepted as JSON or as a
// form-encoded body.
type Credentials struct {
	Username string `json:"username" schema:"username"`
	Password string `json:"password" schema:"password"`
}
