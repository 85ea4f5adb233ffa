package usecase

import (
	"context"
	"errors"
	"rental-project/internal/adapters/filestorage"
	"rental-project/internal/constants"
	"rental-project/internal/core/domain"
	"sync"
	"testing"
)

var (
	testAdmin = domain.Profile{ID: "admin-1", Email: "admin@example.com", Role: domain.RoleAdmin}
	testGuest = domain.Profile{ID: "user-1", Email: "guest@example.com", Role: domain.RoleUser}
)

type recordingEvents struct {
	mu     sync.Mutex
	events []domain.ListingEvent
	err    error
}

func (r *recordingEvents) Publish(_ context.Context, e domain.ListingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingEvents) types() []domain.ListingEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ListingEventType
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func validForm() domain.ListingForm {
	return domain.ListingForm{
		Title:         "Lake view apartment",
		TitleBn:       "লেক ভিউ অ্যাপার্টমেন্ট",
		CategoryID:    "cat-apartment",
		PricePerNight: 4500,
		Location:      "Gulshan, Dhaka",
		LocationBn:    "গুলশান, ঢাকা",
		MaxGuests:     4,
		Bedrooms:      2,
		Bathrooms:     2,
		Images:        []string{"one.jpg", "two.jpg", "three.jpg"},
		AmenityIDs:    []string{"wifi", "parking"},
	}
}

func newCurationFixture(t *testing.T) (*CurationUseCase, *countingGateway, *filestorage.Gateway, *recordingEvents) {
	t.Helper()
	store, err := filestorage.NewGateway("")
	if err != nil {
		t.Fatalf("filestorage.NewGateway() error = %v", err)
	}
	gw := &countingGateway{inner: store}
	events := &recordingEvents{}
	uc, err := NewCurationUseCase(gw, events)
	if err != nil {
		t.Fatalf("NewCurationUseCase() error = %v", err)
	}
	return uc, gw, store, events
}

func rowsWhere(t *testing.T, store *filestorage.Gateway, table, column, value string) []domain.Row {
	t.Helper()
	rows, err := store.Query(context.Background(), domain.Query{
		Table:  table,
		Filter: domain.Filter{All: []domain.Predicate{domain.Eq(column, value)}},
		Sort:   []domain.SortSpec{{Column: "id"}},
	})
	if err != nil {
		t.Fatalf("Query(%s) error = %v", table, err)
	}
	return rows
}

func TestSaveRejectsFormWithoutImages(t *testing.T) {
	uc, gw, _, _ := newCurationFixture(t)
	form := validForm()
	form.Images = nil

	_, err := uc.Save(context.Background(), testAdmin, form)

	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Save() error = %v, want ValidationErrors", err)
	}
	if !verrs.Has("images") {
		t.Fatalf("validation errors = %v, want one for images", verrs)
	}
	if gw.count() != 0 {
		t.Fatalf("gateway calls = %d, want 0", gw.count())
	}
}

func TestSaveValidationFieldErrors(t *testing.T) {
	uc, gw, _, _ := newCurationFixture(t)

	tests := []struct {
		name  string
		edit    func(f *domain.ListingForm)
		field   string
		message string
	}{
		{"blank title", func(f *domain.ListingForm) { f.Title = "   " }, "title", "Title is required"},
		{"missing bengali title", func(f *domain.ListingForm) { f.TitleBn = "" }, "title_bn", "Bengali title is required"},
		{"missing location", func(f *domain.ListingForm) { f.Location = "" }, "location", "Location is required"},
		{"missing bengali location", func(f *domain.ListingForm) { f.LocationBn = "" }, "location_bn", "Bengali location is required"},
		{"missing category", func(f *domain.ListingForm) { f.CategoryID = "" }, "category_id", "Category is required"},
		{"zero price", func(f *domain.ListingForm) { f.PricePerNight = 0 }, "price_per_night", "Price must be greater than 0"},
		{"negative price", func(f *domain.ListingForm) { f.PricePerNight = -10 }, "price_per_night", "Price must be greater than 0"},
		{"zero guests", func(f *domain.ListingForm) { f.MaxGuests = 0 }, "max_guests", "Max guests must be at least 1"},
		{"zero bedrooms", func(f *domain.ListingForm) { f.Bedrooms = 0 }, "bedrooms", "Bedrooms must be at least 1"},
		{"zero bathrooms", func(f *domain.ListingForm) { f.Bathrooms = 0 }, "bathrooms", "Bathrooms must be at least 1"},
		{"only blank image urls", func(f *domain.ListingForm) { f.Images = []string{" ", ""} }, "images", "Please add at least one image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.edit(&form)
			_, err := uc.Save(context.Background(), testAdmin, form)
			var verrs domain.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Save() error = %v, want ValidationErrors", err)
			}
			var got string
			for _, v := range verrs {
				if v.Field == tt.field {
					got = v.Message
				}
			}
			if got != tt.message {
				t.Fatalf("message for %s = %q, want %q (errors %v)", tt.field, got, tt.message, verrs)
			}
		})
	}
	if gw.count() != 0 {
		t.Fatalf("gateway calls = %d, want 0", gw.count())
	}
}

func TestSaveRequiresAdmin(t *testing.T) {
	uc, gw, _, _ := newCurationFixture(t)

	_, err := uc.Save(context.Background(), testGuest, validForm())
	if !errors.Is(err, domain.ErrNotAdmin) {
		t.Fatalf("Save() error = %v, want ErrNotAdmin", err)
	}
	if gw.count() != 0 {
		t.Fatalf("gateway calls = %d, want 0", gw.count())
	}
}

func TestSaveCreatesListingWithChildren(t *testing.T) {
	ctx := context.Background()
	uc, _, store, events := newCurationFixture(t)

	id, err := uc.Save(ctx, testAdmin, validForm())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	props := rowsWhere(t, store, constants.TableProperties, "id", id)
	if len(props) != 1 {
		t.Fatalf("properties rows = %d, want 1", len(props))
	}
	listing := domain.ListingFromRow(props[0])
	if !listing.IsActive {
		t.Fatalf("new listing is_active = false, want true")
	}
	if listing.AdminID == nil || *listing.AdminID != testAdmin.ID {
		t.Fatalf("admin_id = %v, want %s", listing.AdminID, testAdmin.ID)
	}
	if listing.Description != nil {
		t.Fatalf("description = %q, want null for empty input", *listing.Description)
	}

	form, err := uc.LoadForm(ctx, id)
	if err != nil {
		t.Fatalf("LoadForm() error = %v", err)
	}
	if got := form.Images; len(got) != 3 || got[0] != "one.jpg" || got[2] != "three.jpg" {
		t.Fatalf("images = %v, want one, two, three in order", got)
	}
	if len(form.AmenityIDs) != 2 {
		t.Fatalf("amenities = %v, want 2", form.AmenityIDs)
	}
	if got := events.types(); len(got) != 1 || got[0] != domain.ListingCreated {
		t.Fatalf("events = %v, want [created]", got)
	}
}

func TestSaveEditReplacesImagesAndAmenities(t *testing.T) {
	ctx := context.Background()
	uc, _, store, events := newCurationFixture(t)

	id, err := uc.Save(ctx, testAdmin, validForm())
	if err != nil {
		t.Fatalf("Save(create) error = %v", err)
	}

	edit, err := uc.LoadForm(ctx, id)
	if err != nil {
		t.Fatalf("LoadForm() error = %v", err)
	}
	edit.Images = []string{"only.jpg"}
	edit.AmenityIDs = []string{"pool"}
	edit.Title = "Renamed"
	if _, err := uc.Save(ctx, testAdmin, edit); err != nil {
		t.Fatalf("Save(edit) error = %v", err)
	}

	images := rowsWhere(t, store, constants.TablePropertyImages, "property_id", id)
	if len(images) != 1 {
		t.Fatalf("image rows = %d, want exactly 1", len(images))
	}
	if img := domain.ImageFromRow(images[0]); img.ImageURL != "only.jpg" || img.DisplayOrder != 0 {
		t.Fatalf("image = %+v, want only.jpg at order 0", img)
	}
	amenities := rowsWhere(t, store, constants.TablePropertyAmenities, "property_id", id)
	if len(amenities) != 1 || amenities[0].String("amenity_id") != "pool" {
		t.Fatalf("amenity rows = %v, want only pool", amenities)
	}
	props := rowsWhere(t, store, constants.TableProperties, "id", id)
	if len(props) != 1 || props[0].String("title") != "Renamed" {
		t.Fatalf("properties = %v, want one row titled Renamed", props)
	}
	if got := events.types(); len(got) != 2 || got[1] != domain.ListingUpdated {
		t.Fatalf("events = %v, want [created updated]", got)
	}
}

func TestSaveSurvivesPublishFailure(t *testing.T) {
	uc, _, _, events := newCurationFixture(t)
	events.err = errors.New("broker down")

	if _, err := uc.Save(context.Background(), testAdmin, validForm()); err != nil {
		t.Fatalf("Save() error = %v, want nil when publishing fails", err)
	}
}

func TestLoadFormUnknownListing(t *testing.T) {
	uc, _, _, _ := newCurationFixture(t)
	if _, err := uc.LoadForm(context.Background(), "missing"); !errors.Is(err, domain.ErrListingNotFound) {
		t.Fatalf("LoadForm() error = %v, want ErrListingNotFound", err)
	}
}

func TestCategoriesSortedByName(t *testing.T) {
	ctx := context.Background()
	uc, _, store, _ := newCurationFixture(t)
	for _, name := range []string{"Villa", "Apartment", "Cottage"} {
		if _, err := store.Insert(ctx, constants.TableCategories, domain.Row{"name": name, "name_bn": name, "slug": name}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	cats, err := uc.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(cats) != 3 || cats[0].Name != "Apartment" || cats[2].Name != "Villa" {
		t.Fatalf("categories = %v, want sorted by name", cats)
	}
}
