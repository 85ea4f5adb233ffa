package constants

// Tables of the data platform.
const (
	TableProfiles          = "profiles"
	TableCategories        = "categories"
	TableProperties        = "properties"
	TablePropertyImages    = "property_images"
	TableAmenities         = "amenities"
	TablePropertyAmenities = "property_amenities"
)

// DefaultPageSize is how many listings one search page holds.
const DefaultPageSize = 12

// Columns lists the known columns of every table. Adapters refuse any
// identifier that is not listed here.
var Columns = map[string][]string{
	TableProfiles: {
		"id", "user_id", "email", "full_name", "avatar_url", "role", "password_hash",
		"created_at", "updated_at",
	},
	TableCategories: {
		"id", "name", "name_bn", "icon", "slug", "created_at",
	},
	TableProperties: {
		"id", "title", "title_bn", "description", "description_bn", "category_id",
		"price_per_night", "location", "location_bn", "latitude", "longitude",
		"max_guests", "bedrooms", "bathrooms", "rating", "review_count", "is_active",
		"admin_id", "created_at", "updated_at",
	},
	TablePropertyImages: {
		"id", "property_id", "image_url", "alt_text", "display_order", "created_at",
	},
	TableAmenities: {
		"id", "name", "name_bn", "icon", "created_at",
	},
	TablePropertyAmenities: {
		"id", "property_id", "amenity_id", "created_at",
	},
}

// HasColumn reports whether column belongs to table.
func HasColumn(table, column string) bool {
	for _, c := range Columns[table] {
		if c == column {
			return true
		}
	}
	return false
}

// HasTable reports whether table is known.
func HasTable(table string) bool {
	_, ok := Columns[table]
	return ok
}

// TableHasUpdatedAt reports whether rows of table carry an updated_at column.
func TableHasUpdatedAt(table string) bool {
	return HasColumn(table, "updated_at")
}

// ForeignKey is a column of Table referencing the id of a parent table.
type ForeignKey struct {
	Table  string
	Column string
}

// ChildTables lists, per parent table, the rows removed together with a
// parent row.
var ChildTables = map[string][]ForeignKey{
	TableProperties: {
		{Table: TablePropertyImages, Column: "property_id"},
		{Table: TablePropertyAmenities, Column: "property_id"},
	},
	TableAmenities: {
		{Table: TablePropertyAmenities, Column: "amenity_id"},
	},
}
