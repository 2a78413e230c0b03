package model

import "time"

// WalletPurpose tags a wallet with its budget-rule bucket, if any.
type WalletPurpose string

const (
	// PurposeEssential is the 40% day-to-day spending bucket.
	PurposeEssential WalletPurpose = "4-2-2-2 essential"
	// PurposeLongTerm is the 20% long-term savings bucket.
	PurposeLongTerm WalletPurpose = "4-2-2-2 long_term"
	// PurposeInvest is the 20% investing bucket.
	PurposeInvest WalletPurpose = "4-2-2-2 invest"
	// PurposePersonal is the 20% personal spending bucket.
	PurposePersonal WalletPurpose = "4-2-2-2 personal"
)

// Wallet is a named sub-ledger partitioning a user's transactions.
// Its balance is never stored; it is derived from transactions.
type Wallet struct {
	CreatedAt time.Time
	Name      string
	Purpose   WalletPurpose
	ID        int64
	UserID    int64
}

// DefaultWallet pairs a display name with a canonical purpose for
// first-contact provisioning.
type DefaultWallet struct {
	Name    string
	Purpose WalletPurpose
}

// DefaultWallets are the four canonical wallets of the 4-2-2-2 rule,
// auto-created the first time a user is seen with no wallets.
var DefaultWallets = []DefaultWallet{
	{Name: "Chi tiêu thiết yếu", Purpose: PurposeEssential},
	{Name: "Tiết kiệm dài hạn", Purpose: PurposeLongTerm},
	{Name: "Đầu tư & Tự do tài chính", Purpose: PurposeInvest},
	{Name: "Chi tiêu cá nhân & Phát triển", Purpose: PurposePersonal},
}
