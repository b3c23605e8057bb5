package schema

// MarketUserTable represents the 'users' table
type MarketUserTable struct {
	Table    string
	ID       string
	Name     string
	Email    string
	Location string
}

// MarketUser is the schema definition for users
var MarketUser = MarketUserTable{
	Table:    "users",
	ID:       "id",
	Name:     "name",
	Email:    "email",
	Location: "location",
}
