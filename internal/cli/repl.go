package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hxngan/vitien/internal/engine"
	"github.com/hxngan/vitien/internal/report"
)

// replUserKey identifies the local terminal user.
const replUserKey = "repl:local"

// REPL is a line-based chat loop against the engine, mirroring what a
// messaging transport would do: commands, numbered menu replies, free text.
type REPL struct {
	engine   *engine.Engine
	reporter *report.Reporter
	in       io.Reader
	out      io.Writer

	pending []engine.Option
}

// NewREPL creates a REPL on stdin/stdout.
func NewREPL(eng *engine.Engine, reporter *report.Reporter) *REPL {
	return &REPL{engine: eng, reporter: reporter, in: os.Stdin, out: os.Stdout}
}

var replCommands = map[string]string{
	"/start":    engine.CommandStart,
	"/ghi":      engine.CommandAdd,
	"/chuyen":   engine.CommandTransfer,
	"/muctieu":  engine.CommandGoals,
	"/tieumoi":  engine.CommandGoalNew,
	"/ngansach": engine.CommandBudget,
	"/hanmuc":   engine.CommandLimit,
	"/danhmuc":  engine.CommandCategory,
	"/luong":    engine.CommandSalary,
	"/vimoi":    engine.CommandWallet,
	"/giaodich": engine.CommandRecent,
	"/xuat":     engine.CommandExport,
}

// Run reads lines until EOF, /quit, or context cancellation.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, TitleStyle.Render("vitien — sổ chi tiêu hội thoại"))
	fmt.Fprintln(r.out, OptionStyle.Render("Gõ \"35k ăn sáng\", /ghi, /sodu… — /quit để thoát."))

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, PromptStyle.Render("> "))
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		if r.handleReport(ctx, line) {
			continue
		}

		out, err := r.engine.HandleEvent(ctx, replUserKey, "bạn", r.eventFromLine(line))
		if err != nil {
			fmt.Fprintln(r.out, ErrorStyle.Render("Có lỗi xảy ra: "+err.Error()))
			continue
		}
		r.render(ctx, out)
	}
}

func (r *REPL) eventFromLine(line string) engine.Event {
	if cmd, ok := replCommands[strings.ToLower(line)]; ok {
		return engine.Event{Command: cmd}
	}
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(r.pending) {
		return engine.Event{Callback: r.pending[n-1].Data}
	}
	return engine.Event{Text: line}
}

func (r *REPL) handleReport(ctx context.Context, line string) bool {
	var run func(userID int64) (string, error)
	switch strings.ToLower(line) {
	case "/sodu":
		run = func(id int64) (string, error) { return r.reporter.Overview(ctx, id) }
	case "/thongke":
		run = func(id int64) (string, error) { return r.reporter.MonthBreakdown(ctx, id) }
	case "/vi":
		run = func(id int64) (string, error) { return r.reporter.Wallets(ctx, id) }
	case "/sosanh":
		run = func(id int64) (string, error) { return r.reporter.Insights(ctx, id) }
	default:
		return false
	}

	var reply string
	userID, err := r.reporter.UserID(ctx, replUserKey)
	if err == nil {
		reply, err = run(userID)
	}
	if err != nil {
		fmt.Fprintln(r.out, ErrorStyle.Render("Có lỗi xảy ra: "+err.Error()))
		return true
	}
	fmt.Fprintln(r.out, reply)
	return true
}

func (r *REPL) render(ctx context.Context, out *engine.Outcome) {
	switch out.Kind {
	case engine.OutcomeConfirmation:
		fmt.Fprintln(r.out, SuccessStyle.Render(out.Message))
	case engine.OutcomeValidationError:
		fmt.Fprintln(r.out, ErrorStyle.Render(out.Message))
	default:
		fmt.Fprintln(r.out, out.Message)
	}

	r.pending = out.Options
	for i, o := range out.Options {
		fmt.Fprintln(r.out, OptionStyle.Render(fmt.Sprintf("  %d. %s", i+1, o.Label)))
	}

	if out.Export != nil {
		userID, err := r.reporter.UserID(ctx, replUserKey)
		if err == nil {
			err = r.reporter.WriteCSV(ctx, r.out, userID, *out.Export)
		}
		if err != nil {
			fmt.Fprintln(r.out, ErrorStyle.Render("Không xuất được dữ liệu: "+err.Error()))
		}
	}
}
