package schema

// ProductFinishedObjectTable represents the 'finished_objects' table
type ProductFinishedObjectTable struct {
	Table       string
	ID          string
	Pictures    string
	Name        string
	Size        string
	Quality     string
	TradeType   string
	Price       string
	Location    string
	UserID      string
	Description string
	CreatedAt   string
}

// ProductFinishedObject is the schema definition for finished_objects
var ProductFinishedObject = ProductFinishedObjectTable{
	Table:       "finished_objects",
	ID:          "id",
	Pictures:    "pictures",
	Name:        "name",
	Size:        "size",
	Quality:     "quality",
	TradeType:   "trade_type",
	Price:       "price",
	Location:    "location",
	UserID:      "user_id",
	Description: "description",
	CreatedAt:   "created_at",
}
