package services

import (
	"errors"

	apperrors "sports-match-system/errors"
	"sports-match-system/models"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// VenueService manages the playable-location catalog matches reference.
type VenueService struct {
	DB *gorm.DB
}

func NewVenueService(db *gorm.DB) *VenueService {
	return &VenueService{DB: db}
}

var titleCaser = cases.Title(language.English)

// CreateVenue registers a venue, deriving a unique slug and a canonical
// display name from the raw name.
func (s *VenueService) CreateVenue(name, address string, lat, lng float64) (*models.Venue, error) {
	if name == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "name is required")
	}
	v := &models.Venue{
		Name:        name,
		DisplayName: titleCaser.String(name),
		Slug:        slug.Make(name),
		Address:     address,
		Latitude:    lat,
		Longitude:   lng,
	}
	if err := s.DB.Create(v).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "venue with this name already exists", err)
	}
	return v, nil
}

// GetVenueBySlug resolves a venue from its URL slug.
func (s *VenueService) GetVenueBySlug(sl string) (*models.Venue, error) {
	var v models.Venue
	err := s.DB.Where("slug = ?", sl).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "venue not found")
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVenues returns all venues ordered by name.
func (s *VenueService) ListVenues() ([]models.Venue, error) {
	var venues []models.Venue
	err := s.DB.Order("name ASC").Find(&venues).Error
	return venues, err
}
