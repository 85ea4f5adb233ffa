package domain

import "strings"

// ListingForm is the admin create/edit form. An empty ID means create.
type ListingForm struct {
	ID            string   `json:"id"`
	Title         string   `json:"title" validate:"required"`
	TitleBn       string   `json:"title_bn" validate:"required"`
	Description   string   `json:"description"`
	DescriptionBn string   `json:"description_bn"`
	CategoryID    string   `json:"category_id" validate:"required"`
	PricePerNight float64  `json:"price_per_night" validate:"gt=0"`
	Location      string   `json:"location" validate:"required"`
	LocationBn    string   `json:"location_bn" validate:"required"`
	MaxGuests     int      `json:"max_guests" validate:"min=1"`
	Bedrooms      int      `json:"bedrooms" validate:"min=1"`
	Bathrooms     int      `json:"bathrooms" validate:"min=1"`
	Images        []string `json:"images" validate:"min=1,dive,required"`
	AmenityIDs    []string `json:"amenity_ids"`
}

// IsEdit reports whether the form targets an existing listing.
func (f ListingForm) IsEdit() bool {
	return f.ID != ""
}

// Normalized trims free-text fields so whitespace-only values count as missing.
func (f ListingForm) Normalized() ListingForm {
	f.Title = strings.TrimSpace(f.Title)
	f.TitleBn = strings.TrimSpace(f.TitleBn)
	f.Description = strings.TrimSpace(f.Description)
	f.DescriptionBn = strings.TrimSpace(f.DescriptionBn)
	f.CategoryID = strings.TrimSpace(f.CategoryID)
	f.Location = strings.TrimSpace(f.Location)
	f.LocationBn = strings.TrimSpace(f.LocationBn)
	images := make([]string, 0, len(f.Images))
	for _, img := range f.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	f.Images = images
	return f
}

// ListingRow maps the form onto properties columns. Optional descriptions
// are written as null when empty.
func (f ListingForm) ListingRow() Row {
	return Row{
		"title":           f.Title,
		"title_bn":        f.TitleBn,
		"description":     nullIfEmpty(f.Description),
		"description_bn":  nullIfEmpty(f.DescriptionBn),
		"category_id":     nullIfEmpty(f.CategoryID),
		"price_per_night": f.PricePerNight,
		"location":        f.Location,
		"location_bn":     f.LocationBn,
		"max_guests":      f.MaxGuests,
		"bedrooms":        f.Bedrooms,
		"bathrooms":       f.Bathrooms,
	}
}

// FormFromListing fills the edit form from a stored listing.
func FormFromListing(l Listing) ListingForm {
	f := ListingForm{
		ID:            l.ID,
		Title:         l.Title,
		TitleBn:       l.TitleBn,
		PricePerNight: l.PricePerNight,
		Location:      l.Location,
		LocationBn:    l.LocationBn,
		MaxGuests:     l.MaxGuests,
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		AmenityIDs:    append([]string(nil), l.AmenityIDs...),
	}
	if l.Description != nil {
		f.Description = *l.Description
	}
	if l.DescriptionBn != nil {
		f.DescriptionBn = *l.DescriptionBn
	}
	if l.CategoryID != nil {
		f.CategoryID = *l.CategoryID
	}
	for _, img := range SortImages(l.Images) {
		f.Images = append(f.Images, img.ImageURL)
	}
	return f
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
