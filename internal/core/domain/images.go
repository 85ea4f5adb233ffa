package domain

import "sort"

// SortImages returns a copy ordered by display_order. Images sharing an
// order keep their insertion order.
func SortImages(images []ListingImage) []ListingImage {
	out := append([]ListingImage(nil), images...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}
