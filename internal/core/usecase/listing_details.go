package usecase

import (
	"context"
	"rental-project/internal/constants"
	"rental-project/internal/core/domain"
	"rental-project/internal/core/port"
)

// loadListingPage runs q against properties and attaches images and
// categories to the resulting listings.
func loadListingPage(ctx context.Context, gateway port.GatewayPort, q domain.Query) ([]domain.Listing, error) {
	rows, err := gateway.Query(ctx, q)
	if err != nil {
		return nil, domain.NewGatewayError("query", q.Table, err)
	}
	listings := make([]domain.Listing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, domain.ListingFromRow(row))
	}
	if err := attachListingDetails(ctx, gateway, listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func attachListingDetails(ctx context.Context, gateway port.GatewayPort, listings []domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	ids := make([]string, 0, len(listings))
	var categoryIDs []string
	seen := make(map[string]bool)
	for _, l := range listings {
		ids = append(ids, l.ID)
		if l.CategoryID != nil && !seen[*l.CategoryID] {
			seen[*l.CategoryID] = true
			categoryIDs = append(categoryIDs, *l.CategoryID)
		}
	}

	imageRows, err := gateway.Query(ctx, domain.Query{
		Table:  constants.TablePropertyImages,
		Filter: domain.Filter{All: []domain.Predicate{domain.In("property_id", ids)}},
		Sort:   []domain.SortSpec{{Column: "display_order"}, {Column: "created_at"}},
	})
	if err != nil {
		return domain.NewGatewayError("query", constants.TablePropertyImages, err)
	}
	images := make(map[string][]domain.ListingImage)
	for _, row := range imageRows {
		img := domain.ImageFromRow(row)
		images[img.PropertyID] = append(images[img.PropertyID], img)
	}

	categories := make(map[string]domain.Category)
	if len(categoryIDs) > 0 {
		categoryRows, err := gateway.Query(ctx, domain.Query{
			Table:  constants.TableCategories,
			Filter: domain.Filter{All: []domain.Predicate{domain.In("id", categoryIDs)}},
		})
		if err != nil {
			return domain.NewGatewayError("query", constants.TableCategories, err)
		}
		for _, row := range categoryRows {
			c := domain.CategoryFromRow(row)
			categories[c.ID] = c
		}
	}

	for i := range listings {
		listings[i].Images = domain.SortImages(images[listings[i].ID])
		if listings[i].CategoryID != nil {
			if c, ok := categories[*listings[i].CategoryID]; ok {
				listings[i].Category = &c
			}
		}
	}
	return nil
}
