// FILE: internal/entity/user_entity.go
package entity

import "time"

type User struct {
	Id        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// AuthSession is the locally persisted sign-in state. Token is an opaque
// client-generated value and is never used to authenticate against the backend.
type AuthSession struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *AuthSession) IsValidAt(now time.Time) bool {
	return s != nil && s.User != nil && now.Before(s.ExpiresAt)
}
