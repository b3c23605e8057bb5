package schema

// MarketTagTable represents the 'tags' table
type MarketTagTable struct {
	Table string
	ID    string
	Name  string
}

// MarketTag is the schema definition for tags
var MarketTag = MarketTagTable{
	Table: "tags",
	ID:    "id",
	Name:  "name",
}
