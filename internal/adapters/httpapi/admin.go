package httpapi

import (
	"rental-project/internal/core/domain"

	"github.com/kataras/iris/v12"
)

// listingFormInput is the wire shape of the admin form. Field rules live
// with the curation workflow so every caller gets the same messages.
type listingFormInput struct {
	Title         string   `json:"title"`
	TitleBn       string   `json:"title_bn"`
	Description   string   `json:"description"`
	DescriptionBn string   `json:"description_bn"`
	CategoryID    string   `json:"category_id"`
	PricePerNight float64  `json:"price_per_night"`
	Location      string   `json:"location"`
	LocationBn    string   `json:"location_bn"`
	MaxGuests     int      `json:"max_guests"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	Images        []string `json:"images"`
	AmenityIDs    []string `json:"amenity_ids"`
}

func (in listingFormInput) form(id string) domain.ListingForm {
	return domain.ListingForm{
		ID:            id,
		Title:         in.Title,
		TitleBn:       in.TitleBn,
		Description:   in.Description,
		DescriptionBn: in.DescriptionBn,
		CategoryID:    in.CategoryID,
		PricePerNight: in.PricePerNight,
		Location:      in.Location,
		LocationBn:    in.LocationBn,
		MaxGuests:     in.MaxGuests,
		Bedrooms:      in.Bedrooms,
		Bathrooms:     in.Bathrooms,
		Images:        in.Images,
		AmenityIDs:    in.AmenityIDs,
	}
}

func (s *Server) adminListings(ctx iris.Context) {
	listings, err := s.deps.Catalog.Refresh(ctx.Request().Context())
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"listings": listings})
}

func (s *Server) listingForm(ctx iris.Context) {
	form, err := s.deps.Curation.LoadForm(ctx.Request().Context(), ctx.Params().Get("id"))
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	ctx.JSON(form)
}

func (s *Server) createListing(ctx iris.Context) {
	s.saveListing(ctx, "", iris.StatusCreated, "property_added")
}

func (s *Server) updateListing(ctx iris.Context) {
	s.saveListing(ctx, ctx.Params().Get("id"), iris.StatusOK, "property_updated")
}

func (s *Server) saveListing(ctx iris.Context, id string, status int, messageKey string) {
	var input listingFormInput
	if err := ctx.ReadJSON(&input); err != nil {
		s.writeBindError(ctx, err)
		return
	}

	savedID, err := s.deps.Curation.Save(ctx.Request().Context(), actor(ctx), input.form(id))
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	ctx.StatusCode(status)
	ctx.JSON(iris.Map{
		"id":      savedID,
		"message": s.text(ctx, messageKey),
	})
}

func (s *Server) toggleListing(ctx iris.Context) {
	listing, err := s.deps.Catalog.ToggleActive(ctx.Request().Context(), actor(ctx), ctx.Params().Get("id"))
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	messageKey := "property_deactivated"
	if listing.IsActive {
		messageKey = "property_activated"
	}
	ctx.JSON(iris.Map{
		"listing": listing,
		"message": s.text(ctx, messageKey),
	})
}

func (s *Server) deleteListing(ctx iris.Context) {
	if err := s.deps.Catalog.Delete(ctx.Request().Context(), actor(ctx), ctx.Params().Get("id")); err != nil {
		s.writeError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"message": s.text(ctx, "property_deleted")})
}

func (s *Server) listAmenities(ctx iris.Context) {
	amenities, err := s.deps.Curation.Amenities(ctx.Request().Context())
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"amenities": amenities})
}
