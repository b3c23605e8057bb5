package schema

// MarketListingTable represents the 'listings' table
type MarketListingTable struct {
	Table       string
	ID          string
	SellerID    string
	ListingType string
	ProductID   string
	Status      string
	CreatedAt   string
}

// MarketListing is the schema definition for listings
var MarketListing = MarketListingTable{
	Table:       "listings",
	ID:          "id",
	SellerID:    "seller_id",
	ListingType: "listing_type",
	ProductID:   "product_id",
	Status:      "status",
	CreatedAt:   "created_at",
}

func (t MarketListingTable) Columns() []string {
	return []string{t.ID, t.SellerID, t.ListingType, t.ProductID, t.Status, t.CreatedAt}
}
