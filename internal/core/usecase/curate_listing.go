package usecase

import (
	"context"
	"fmt"
	"log"
	"rental-project/internal/constants"
	"rental-project/internal/core/domain"
	"rental-project/internal/core/port"
	"time"

	"github.com/go-playground/validator/v10"
)

// CurationUseCase saves listings from the admin form.
type CurationUseCase struct {
	gateway  port.GatewayPort
	events   *eventNotifier
	validate *validator.Validate
	now      func() time.Time
}

// NewCurationUseCase creates the use case. events may be nil when change
// notifications are disabled.
func NewCurationUseCase(gateway port.GatewayPort, events port.ListingEventsPort) (*CurationUseCase, error) {
	if gateway == nil {
		return nil, fmt.Errorf("curation use case: gateway cannot be nil")
	}
	return &CurationUseCase{
		gateway:  gateway,
		events:   newEventNotifier(events),
		validate: newFormValidator(),
		now:      time.Now,
	}, nil
}

// Save creates or updates a listing together with its images and amenity
// links and returns the listing id. The form is validated and the actor's
// role checked before anything is sent to the gateway.
//
// An edit rewrites the properties row, then replaces all images and
// amenity links. A create inserts the properties row first so the children
// can reference the generated id. A failure part way through leaves the
// earlier writes in place.
func (uc *CurationUseCase) Save(ctx context.Context, actor domain.Profile, form domain.ListingForm) (string, error) {
	form, err := ValidateListingForm(uc.validate, form)
	if err != nil {
		return "", err
	}
	if !actor.IsAdmin() {
		return "", domain.ErrNotAdmin
	}

	now := uc.now().UTC()
	row := form.ListingRow()
	row["admin_id"] = actor.ID
	row["updated_at"] = now

	var (
		listingID string
		eventType domain.ListingEventType
	)
	if form.IsEdit() {
		listingID = form.ID
		eventType = domain.ListingUpdated
		log.Printf("CurationUseCase: Updating listing %s\n", listingID)
		if err := uc.gateway.Update(ctx, constants.TableProperties, listingID, row); err != nil {
			return "", fmt.Errorf("update listing %s: %w", listingID, err)
		}
		if err := uc.clearChildren(ctx, listingID); err != nil {
			return "", err
		}
	} else {
		eventType = domain.ListingCreated
		row["is_active"] = true
		row["created_at"] = now
		log.Printf("CurationUseCase: Creating listing %q\n", form.Title)
		inserted, err := uc.gateway.Insert(ctx, constants.TableProperties, row)
		if err != nil {
			return "", fmt.Errorf("create listing: %w", err)
		}
		listingID = inserted.String("id")
		if listingID == "" {
			return "", &domain.GatewayError{Op: "insert", Table: constants.TableProperties, Message: "no id returned for new listing"}
		}
	}

	if err := uc.insertChildren(ctx, listingID, form, now); err != nil {
		return "", err
	}

	log.Printf("CurationUseCase: Listing %s saved with %d images and %d amenities\n", listingID, len(form.Images), len(form.AmenityIDs))
	uc.events.notify(ctx, eventType, listingID, actor.ID)
	return listingID, nil
}

func (uc *CurationUseCase) clearChildren(ctx context.Context, listingID string) error {
	byListing := domain.Filter{All: []domain.Predicate{domain.Eq("property_id", listingID)}}
	if err := uc.gateway.DeleteWhere(ctx, constants.TablePropertyImages, byListing); err != nil {
		return fmt.Errorf("delete images of listing %s: %w", listingID, err)
	}
	if err := uc.gateway.DeleteWhere(ctx, constants.TablePropertyAmenities, byListing); err != nil {
		return fmt.Errorf("delete amenities of listing %s: %w", listingID, err)
	}
	return nil
}

func (uc *CurationUseCase) insertChildren(ctx context.Context, listingID string, form domain.ListingForm, now time.Time) error {
	for i, url := range form.Images {
		_, err := uc.gateway.Insert(ctx, constants.TablePropertyImages, domain.Row{
			"property_id":   listingID,
			"image_url":     url,
			"display_order": i,
			"created_at":    now,
		})
		if err != nil {
			return fmt.Errorf("insert image %d of listing %s: %w", i, listingID, err)
		}
	}
	for _, amenityID := range form.AmenityIDs {
		_, err := uc.gateway.Insert(ctx, constants.TablePropertyAmenities, domain.Row{
			"property_id": listingID,
			"amenity_id":  amenityID,
			"created_at":  now,
		})
		if err != nil {
			return fmt.Errorf("link amenity %s to listing %s: %w", amenityID, listingID, err)
		}
	}
	return nil
}

// LoadForm reads a listing back into the edit form: its fields, image URLs
// in display order and the linked amenity ids.
func (uc *CurationUseCase) LoadForm(ctx context.Context, listingID string) (domain.ListingForm, error) {
	rows, err := uc.gateway.Query(ctx, domain.Query{
		Table:  constants.TableProperties,
		Filter: domain.Filter{All: []domain.Predicate{domain.Eq("id", listingID)}},
	})
	if err != nil {
		return domain.ListingForm{}, fmt.Errorf("load listing %s: %w", listingID, err)
	}
	if len(rows) == 0 {
		return domain.ListingForm{}, domain.ErrListingNotFound
	}
	listing := domain.ListingFromRow(rows[0])

	imageRows, err := uc.gateway.Query(ctx, domain.Query{
		Table:  constants.TablePropertyImages,
		Filter: domain.Filter{All: []domain.Predicate{domain.Eq("property_id", listingID)}},
		Sort:   []domain.SortSpec{{Column: "display_order"}, {Column: "created_at"}},
	})
	if err != nil {
		return domain.ListingForm{}, fmt.Errorf("load images of listing %s: %w", listingID, err)
	}
	for _, row := range imageRows {
		listing.Images = append(listing.Images, domain.ImageFromRow(row))
	}

	amenityRows, err := uc.gateway.Query(ctx, domain.Query{
		Table:  constants.TablePropertyAmenities,
		Filter: domain.Filter{All: []domain.Predicate{domain.Eq("property_id", listingID)}},
	})
	if err != nil {
		return domain.ListingForm{}, fmt.Errorf("load amenities of listing %s: %w", listingID, err)
	}
	for _, row := range amenityRows {
		listing.AmenityIDs = append(listing.AmenityIDs, row.String("amenity_id"))
	}

	return domain.FormFromListing(listing), nil
}

// Categories lists categories by name.
func (uc *CurationUseCase) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := uc.gateway.Query(ctx, domain.Query{
		Table: constants.TableCategories,
		Sort:  []domain.SortSpec{{Column: "name"}},
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.CategoryFromRow(row))
	}
	return out, nil
}

// Amenities lists amenities by name.
func (uc *CurationUseCase) Amenities(ctx context.Context) ([]domain.Amenity, error) {
	rows, err := uc.gateway.Query(ctx, domain.Query{
		Table: constants.TableAmenities,
		Sort:  []domain.SortSpec{{Column: "name"}},
	})
	if err != nil {
		return nil, fmt.Errorf("list amenities: %w", err)
	}
	out := make([]domain.Amenity, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.AmenityFromRow(row))
	}
	return out, nil
}
