package schema

// ProductNotionTable represents the 'notions' table
type ProductNotionTable struct {
	Table       string
	ID          string
	Pictures    string
	Name        string
	Quantity    string
	Quality     string
	TradeType   string
	Price       string
	Location    string
	UserID      string
	Description string
	CreatedAt   string
}

// ProductNotion is the schema definition for notions
var ProductNotion = ProductNotionTable{
	Table:       "notions",
	ID:          "id",
	Pictures:    "pictures",
	Name:        "name",
	Quantity:    "quantity",
	Quality:     "quality",
	TradeType:   "trade_type",
	Price:       "price",
	Location:    "location",
	UserID:      "user_id",
	Description: "description",
	CreatedAt:   "created_at",
}
