package domain

import "time"

// Listing is a rentable property as stored in the properties table,
// optionally joined with its images, category and amenity links.
type Listing struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	TitleBn       string    `json:"title_bn"`
	Description   *string   `json:"description,omitempty"`
	DescriptionBn *string   `json:"description_bn,omitempty"`
	CategoryID    *string   `json:"category_id,omitempty"`
	PricePerNight float64   `json:"price_per_night"`
	Location      string    `json:"location"`
	LocationBn    string    `json:"location_bn"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	MaxGuests     int       `json:"max_guests"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"review_count"`
	IsActive      bool      `json:"is_active"`
	AdminID       *string   `json:"admin_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Images     []ListingImage `json:"images,omitempty"`
	Category   *Category      `json:"category,omitempty"`
	AmenityIDs []string       `json:"amenity_ids,omitempty"`
}

// ListingImage is one row of property_images.
type ListingImage struct {
	ID           string    `json:"id"`
	PropertyID   string    `json:"property_id"`
	ImageURL     string    `json:"image_url"`
	AltText      *string   `json:"alt_text,omitempty"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// Category groups listings (apartment, villa, ...).
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NameBn    string    `json:"name_bn"`
	Icon      *string   `json:"icon,omitempty"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Amenity is a feature a listing can offer (wifi, parking, ...).
type Amenity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NameBn    string    `json:"name_bn"`
	Icon      *string   `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListingFromRow decodes a properties row. Joined data is left empty.
func ListingFromRow(r Row) Listing {
	return Listing{
		ID:            r.String("id"),
		Title:         r.String("title"),
		TitleBn:       r.String("title_bn"),
		Description:   r.OptString("description"),
		DescriptionBn: r.OptString("description_bn"),
		CategoryID:    r.OptString("category_id"),
		PricePerNight: r.Float("price_per_night"),
		Location:      r.String("location"),
		LocationBn:    r.String("location_bn"),
		Latitude:      r.OptFloat("latitude"),
		Longitude:     r.OptFloat("longitude"),
		MaxGuests:     r.Int("max_guests"),
		Bedrooms:      r.Int("bedrooms"),
		Bathrooms:     r.Int("bathrooms"),
		Rating:        r.Float("rating"),
		ReviewCount:   r.Int("review_count"),
		IsActive:      r.Bool("is_active"),
		AdminID:       r.OptString("admin_id"),
		CreatedAt:     r.Time("created_at"),
		UpdatedAt:     r.Time("updated_at"),
	}
}

func ImageFromRow(r Row) ListingImage {
	return ListingImage{
		ID:           r.String("id"),
		PropertyID:   r.String("property_id"),
		ImageURL:     r.String("image_url"),
		AltText:      r.OptString("alt_text"),
		DisplayOrder: r.Int("display_order"),
		CreatedAt:    r.Time("created_at"),
	}
}

func CategoryFromRow(r Row) Category {
	return Category{
		ID:        r.String("id"),
		Name:      r.String("name"),
		NameBn:    r.String("name_bn"),
		Icon:      r.OptString("icon"),
		Slug:      r.String("slug"),
		CreatedAt: r.Time("created_at"),
	}
}

func AmenityFromRow(r Row) Amenity {
	return Amenity{
		ID:        r.String("id"),
		Name:      r.String("name"),
		NameBn:    r.String("name_bn"),
		Icon:      r.OptString("icon"),
		CreatedAt: r.Time("created_at"),
	}
}
