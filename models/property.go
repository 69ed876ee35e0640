package models

import (
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Property listing. Full listing CRUD lives in the marketplace service; the
// chat relay reads properties to resolve the owning commissioner and to
// snapshot display fields onto first-contact messages.
type Property struct {
	gorm.Model
	CommissionerID uint           `json:"commissionerId" gorm:"not null;index"`
	Title          string         `json:"title" gorm:"size:256;not null"`
	Description    string         `json:"description" gorm:"type:text"`
	Price          float64        `json:"price"`
	Currency       string         `json:"currency" gorm:"size:8"`
	City           string         `json:"city" gorm:"size:120"`
	Address        string         `json:"address" gorm:"size:256"`
	Status         string         `json:"status" gorm:"size:20;default:ACTIVE;index"`
	Amenities      datatypes.JSON `json:"amenities" gorm:"type:json"`

	Media []PropertyMedia `json:"media" gorm:"constraint:OnDelete:CASCADE"`
}

type PropertyMedia struct {
	gorm.Model
	PropertyID uint   `json:"propertyId" gorm:"not null;index"`
	URL        string `json:"url" gorm:"size:512;not null"`
	Position   int    `json:"position" gorm:"not null;default:0"`
}

// CanonicalLink is the UI route for the listing, stored on messages so chat
// history keeps working if the property is unpublished.
func (p *Property) CanonicalLink() string {
	return fmt.Sprintf("/properties/%d", p.ID)
}

// FirstMediaURL returns the lead image, or "" when the listing has none.
func (p *Property) FirstMediaURL() string {
	if len(p.Media) == 0 {
		return ""
	}
	return p.Media[0].URL
}
