package models

import "gorm.io/gorm"

// Role values carried in the auth token and stored on the user row.
const (
	RoleUser         = "USER"
	RoleCommissioner = "COMMISSIONER"
)

// User rows are created by the account service; this app only reads them to
// denormalize sender identity and to resolve conversation counterparts.
type User struct {
	gorm.Model
	Email string `gorm:"uniqueIndex;size:120;not null" json:"email"`
	Name  string `gorm:"size:120" json:"name"`
	Phone string `gorm:"size:32" json:"phone"`
	Role  string `gorm:"size:32;not null;default:USER" json:"role"`
}

// PublicProfile is the counterpart shape embedded in conversation listings.
type PublicProfile struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

// DisplayName falls back to the email when no name is set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
