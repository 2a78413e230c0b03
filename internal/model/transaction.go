package model

import "time"

// Direction indicates whether money flows in or out.
type Direction string

const (
	// DirectionIncome marks money flowing into the ledger.
	DirectionIncome Direction = "income"
	// DirectionExpense marks money flowing out of the ledger.
	DirectionExpense Direction = "expense"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == DirectionIncome || d == DirectionExpense
}

// Transaction is a single ledger entry. The amount is always positive;
// Direction carries the sign. Category is a name snapshot, not a reference,
// so deleting a category never touches existing transactions. Only Amount,
// Category and Note may be edited after creation.
type Transaction struct {
	CreatedAt time.Time
	Category  string
	Note      string
	ID        int64
	UserID    int64
	WalletID  int64 // 0 when the transaction is not tied to a wallet
	Amount    float64
	Direction Direction
}
