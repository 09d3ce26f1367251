package core

// DefaultCategories returns the built-in categories seeded on first run.
// Ids and timestamps are left empty for the caller to assign.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Food & Drink", Icon: "restaurant", Color: "#4CAF50", IsDefault: true},
		{Name: "Shopping", Icon: "shopping_cart", Color: "#2196F3", IsDefault: true},
		{Name: "Transportation", Icon: "directions_car", Color: "#FFC107", IsDefault: true},
		{Name: "Entertainment", Icon: "movie", Color: "#9C27B0", IsDefault: true},
		{Name: "Bills & Utilities", Icon: "receipt", Color: "#F44336", IsDefault: true},
		{Name: "Health", Icon: "local_hospital", Color: "#00BCD4", IsDefault: true},
		{Name: "Other", Icon: "more_horiz", Color: "#607D8B", IsDefault: true},
	}
}
