package models

// Venue is a playable location. Check-in rules live elsewhere; matches only
// reference the id.
type Venue struct {
	ID          string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	DisplayName string  `json:"display_name"`
	Slug        string  `gorm:"uniqueIndex;not null" json:"slug"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	Timestamps
}
