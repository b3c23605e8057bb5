package schema

// MarketListingTagTable represents the 'listing_tags' junction table
type MarketListingTagTable struct {
	Table     string
	ListingID string
	TagID     string
}

// MarketListingTag is the schema definition for listing_tags
var MarketListingTag = MarketListingTagTable{
	Table:     "listing_tags",
	ListingID: "listing_id",
	TagID:     "tag_id",
}
