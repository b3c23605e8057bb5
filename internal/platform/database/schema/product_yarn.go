package schema

// ProductYarnTable represents the 'yarn' table
type ProductYarnTable struct {
	Table        string
	ID           string
	Pictures     string
	Brand        string
	Amount       string
	LengthYards  string
	LengthMeters string
	Weight       string
	Color        string
	Composition  string
	Quality      string
	TradeType    string
	Price        string
	Location     string
	NeedleSize   string
	HookSize     string
	UserID       string
	Description  string
	CreatedAt    string
}

// ProductYarn is the schema definition for yarn
var ProductYarn = ProductYarnTable{
	Table:        "yarn",
	ID:           "id",
	Pictures:     "pictures",
	Brand:        "brand",
	Amount:       "amount",
	LengthYards:  "length_yards",
	LengthMeters: "length_meters",
	Weight:       "weight",
	Color:        "color",
	Composition:  "composition",
	Quality:      "quality",
	TradeType:    "trade_type",
	Price:        "price",
	Location:     "location",
	NeedleSize:   "needle_size",
	HookSize:     "hook_size",
	UserID:       "user_id",
	Description:  "description",
	CreatedAt:    "created_at",
}
