// Package presentation turns listings into what a visitor sees: localized
// text, an ordered image carousel and a local favorite flag.
package presentation

import (
	"fmt"
	"rental-project/internal/core/domain"
	"rental-project/internal/locale"
	"sync"

	"golang.org/x/text/number"
)

// CardImage is one carousel slide.
type CardImage struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text"`
}

// ListingCard is a listing rendered for one locale.
type ListingCard struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Location    string      `json:"location"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category,omitempty"`
	Price       string      `json:"price"`
	PriceUnit   string      `json:"price_unit"`
	Rating      string      `json:"rating"`
	ReviewCount int         `json:"review_count"`
	Capacity    string      `json:"capacity"`
	Images      []CardImage `json:"images"`

	carousel *Carousel
	mu       sync.Mutex
	favorite bool
}

// NewListingCard renders l for loc using catalog for fixed strings.
func NewListingCard(l domain.Listing, loc locale.Locale, catalog *locale.Catalog) *ListingCard {
	title := loc.Pick(l.Title, l.TitleBn)
	card := &ListingCard{
		ID:          l.ID,
		Title:       title,
		Location:    loc.Pick(l.Location, l.LocationBn),
		Description: loc.Pick(deref(l.Description), deref(l.DescriptionBn)),
		Price:       FormatPrice(loc, l.PricePerNight),
		PriceUnit:   catalog.Lookup(loc, "night"),
		Rating:      fmt.Sprintf("%.1f", l.Rating),
		ReviewCount: l.ReviewCount,
		Capacity: fmt.Sprintf("%d %s · %d %s · %d %s",
			l.MaxGuests, catalog.Lookup(loc, "guests"),
			l.Bedrooms, catalog.Lookup(loc, "beds"),
			l.Bathrooms, catalog.Lookup(loc, "baths")),
	}
	if l.Category != nil {
		card.Category = loc.Pick(l.Category.Name, l.Category.NameBn)
	}

	for _, img := range domain.SortImages(l.Images) {
		alt := title
		if img.AltText != nil && *img.AltText != "" {
			alt = *img.AltText
		}
		card.Images = append(card.Images, CardImage{URL: img.ImageURL, AltText: alt})
	}
	if card.Images == nil {
		card.Images = []CardImage{}
	}
	card.carousel = NewCarousel(len(card.Images))
	return card
}

// NewListingCards renders a page of results in order.
func NewListingCards(listings []domain.Listing, loc locale.Locale, catalog *locale.Catalog) []*ListingCard {
	cards := make([]*ListingCard, 0, len(listings))
	for _, l := range listings {
		cards = append(cards, NewListingCard(l, loc, catalog))
	}
	return cards
}

// Carousel is the card's image slider.
func (c *ListingCard) Carousel() *Carousel {
	return c.carousel
}

// ToggleFavorite flips the favorite mark and returns the new value. The
// mark lives only in this card and is never stored.
func (c *ListingCard) ToggleFavorite() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.favorite = !c.favorite
	return c.favorite
}

func (c *ListingCard) IsFavorite() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.favorite
}

// FormatPrice writes a nightly price with the locale's digit grouping.
// Cents are kept, trailing zeros are not.
func FormatPrice(loc locale.Locale, amount float64) string {
	return "$" + loc.Printer().Sprint(number.Decimal(amount, number.MaxFractionDigits(2)))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
