package engine

import (
	"strings"

	"github.com/hxngan/vitien/internal/service"
)

// Commands start or replace a flow. Transports map their own surface
// (slash commands, buttons, typed words) onto these.
const (
	CommandStart    = "start"
	CommandAdd      = "add"
	CommandTransfer = "transfer"
	CommandGoals    = "goals"
	CommandGoalNew  = "goal_new"
	CommandBudget   = "budget"
	CommandLimit    = "limit"
	CommandCategory = "category_add"
	CommandSalary   = "salary"
	CommandWallet   = "wallet_new"
	CommandRecent   = "recent"
	CommandExport   = "export"
)

// Callback tags. A callback event carries "tag|payload".
const (
	cbDirection    = "dir"
	cbCategory     = "cat"
	cbWallet       = "wallet"
	cbSource       = "src"
	cbDestination  = "dst"
	cbDeleteCat    = "cat_del"
	cbGoalDeposit  = "goal_dep"
	cbGoalWithdraw = "goal_wd"
	cbBudgetSave   = "budget_save"
	cbBudgetGoals  = "budget_goals"
	cbEditTxn      = "tx_edit"
	cbDeleteTxn    = "tx_del"
	cbEditField    = "edit_field"
)

// Event is one inbound user turn: a command, a menu callback, or a line of
// free text. Exactly one of the three should be set; command wins, then
// callback.
type Event struct {
	Command  string
	Callback string
	Text     string
}

// OutcomeKind classifies what the transport should render.
type OutcomeKind int

const (
	// OutcomePrompt asks the user for the next piece of input.
	OutcomePrompt OutcomeKind = iota
	// OutcomeConfirmation reports a completed action.
	OutcomeConfirmation
	// OutcomeValidationError rejects the last input; unless the session was
	// cleared, the same step is expected again.
	OutcomeValidationError
)

// Option is one selectable menu entry. Data round-trips through the
// transport as Event.Callback.
type Option struct {
	Label string
	Data  string
}

// Outcome is the engine's reply for one turn.
type Outcome struct {
	Kind    OutcomeKind
	Message string
	Options []Option
	// Export is set when the user completed an export flow; the transport
	// serializes the matching transactions.
	Export *service.ExportFilter
}

func prompt(msg string, options ...Option) *Outcome {
	return &Outcome{Kind: OutcomePrompt, Message: msg, Options: options}
}

func confirm(msg string, options ...Option) *Outcome {
	return &Outcome{Kind: OutcomeConfirmation, Message: msg, Options: options}
}

func reject(msg string) *Outcome {
	return &Outcome{Kind: OutcomeValidationError, Message: msg}
}

func callback(tag, payload string) string {
	return tag + "|" + payload
}

func splitCallback(data string) (tag, payload string) {
	tag, payload, _ = strings.Cut(data, "|")
	return tag, payload
}
