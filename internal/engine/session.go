package engine

import "github.com/hxngan/vitien/internal/model"

// flowID names one multi-step conversational task.
type flowID int

const (
	flowNone flowID = iota
	flowAddTransaction
	flowTransfer
	flowCreateGoal
	flowGoalDeposit
	flowGoalWithdraw
	flowBudget
	flowSetLimit
	flowAddCategory
	flowEditTransaction
	flowSalarySplit
	flowAddWallet
	flowExportMonth
)

// Step numbers within each flow. Flows are short and linear; a failed
// validation keeps the step unchanged.
const (
	stepTxnDirection = iota
	stepTxnAmount
	stepTxnCategory
	stepTxnWallet
)

const (
	stepTransferSource = iota
	stepTransferDest
	stepTransferAmount
	stepTransferNote
)

const (
	stepGoalName = iota
	stepGoalTarget
)

const (
	stepGoalAmount = iota
	stepGoalNote
)

const (
	stepLimitCategory = iota
	stepLimitAmount
)

const (
	stepCategoryDirection = iota
	stepCategoryName
)

const (
	stepEditField = iota
	stepEditValue
)

// session is the single authoritative per-user conversation state. It is
// created when a flow starts, mutated on each valid turn, and destroyed on
// completion, abort, or replacement by a new flow.
type session struct {
	flow flowID
	step int

	direction model.Direction
	amount    float64
	note      string
	category  string
	name      string

	walletID     int64
	destWalletID int64
	goalID       int64
	txnID        int64
	editField    string
}
