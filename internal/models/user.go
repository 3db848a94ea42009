package models

// User represents a registered account
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // Not serialized
}

// Identity is the set of claims carried by an identity token
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Credentials is the signup/login request body
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
