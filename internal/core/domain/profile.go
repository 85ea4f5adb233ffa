package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is the application-side record of a signed-in identity.
type Profile struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	FullName     *string   `json:"full_name,omitempty"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func ProfileFromRow(r Row) Profile {
	return Profile{
		ID:           r.String("id"),
		UserID:       r.String("user_id"),
		Email:        r.String("email"),
		FullName:     r.OptString("full_name"),
		AvatarURL:    r.OptString("avatar_url"),
		Role:         Role(r.String("role")),
		PasswordHash: r.String("password_hash"),
		CreatedAt:    r.Time("created_at"),
		UpdatedAt:    r.Time("updated_at"),
	}
}
