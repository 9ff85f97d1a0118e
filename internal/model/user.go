package model

// User is the single persisted session record. It exists only while a
// session is active; logout or a full board reset removes it.
type User struct {
	Email      string `json:"email"`
	RememberMe bool   `json:"rememberMe"`
}
