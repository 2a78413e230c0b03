package model

// Category is a purely descriptive label a user files transactions under.
// Transactions store the name, not the ID, so deleting a category is
// non-destructive to history. Duplicate names are permitted.
type Category struct {
	Name      string
	Direction Direction
	ID        int64
	UserID    int64
}

// DefaultExpenseCategories are seeded for new users.
var DefaultExpenseCategories = []string{
	"Ăn uống", "Đi lại", "Nhà cửa", "Giải trí", "Giáo dục", "Khác",
}

// DefaultIncomeCategories are seeded for new users.
var DefaultIncomeCategories = []string{
	"Lương", "Thưởng", "Thu nhập khác",
}
