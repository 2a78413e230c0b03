// Package discord adapts the conversation engine to a Discord channel:
// messages become engine events, outcomes become replies with numbered
// menus, and exports become file uploads.
package discord

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/hxngan/vitien/internal/common"
	"github.com/hxngan/vitien/internal/engine"
	"github.com/hxngan/vitien/internal/report"
	"github.com/hxngan/vitien/internal/service"
)

// Config holds the bot's transport settings.
type Config struct {
	Token      string
	ChannelID  string
	HealthAddr string
}

// Bot bridges one Discord channel and the conversation engine.
type Bot struct {
	session   *discordgo.Session
	engine    *engine.Engine
	reporter  *report.Reporter
	channelID string
	startTime time.Time

	healthAddr string
	healthSrv  *http.Server

	// pending remembers the last rendered menu per user so a bare number
	// reply can be resolved back to the option it names.
	mu      sync.Mutex
	pending map[string][]engine.Option
}

// NewBot creates the Discord transport. The engine and reporter share one
// storage underneath.
func NewBot(cfg Config, eng *engine.Engine, reporter *report.Reporter) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: discord token", common.ErrMissingConfig)
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	bot := &Bot{
		session:    session,
		engine:     eng,
		reporter:   reporter,
		channelID:  cfg.ChannelID,
		healthAddr: cfg.HealthAddr,
		startTime:  time.Now(),
		pending:    make(map[string][]engine.Option),
	}

	session.AddHandler(bot.handleMessage)
	session.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentMessageContent | discordgo.IntentDirectMessages

	return bot, nil
}

// Start opens the gateway connection and the health endpoint.
func (b *Bot) Start() error {
	if b.healthAddr != "" {
		go b.startHealthServer()
	}
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord connection: %w", err)
	}
	slog.Info("discord bot connected", "channel_id", b.channelID)
	return nil
}

// Stop closes the gateway connection and the health endpoint.
func (b *Bot) Stop() {
	if b.healthSrv != nil {
		_ = b.healthSrv.Close()
	}
	_ = b.session.Close()
}

// commandWords maps typed !commands onto engine flows.
var commandWords = map[string]string{
	"!start":    engine.CommandStart,
	"!ghi":      engine.CommandAdd,
	"!chuyen":   engine.CommandTransfer,
	"!muctieu":  engine.CommandGoals,
	"!tieumoi":  engine.CommandGoalNew,
	"!ngansach": engine.CommandBudget,
	"!hanmuc":   engine.CommandLimit,
	"!danhmuc":  engine.CommandCategory,
	"!luong":    engine.CommandSalary,
	"!vimoi":    engine.CommandWallet,
	"!giaodich": engine.CommandRecent,
	"!xuat":     engine.CommandExport,
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}
	if b.channelID != "" && m.ChannelID != b.channelID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userKey := "discord:" + m.Author.ID
	content := strings.TrimSpace(m.Content)

	// Report commands are read-only and bypass the engine.
	if reply, handled := b.handleReportCommand(ctx, userKey, content); handled {
		b.reply(m.ChannelID, reply)
		return
	}

	ev, ok := b.eventFromMessage(userKey, content)
	if !ok {
		b.reply(m.ChannelID, "Mình chưa hiểu lựa chọn đó. Gõ !menu để xem các lệnh.")
		return
	}

	out, err := b.engine.HandleEvent(ctx, userKey, m.Author.Username, ev)
	if err != nil {
		slog.Error("engine failed", "user", userKey, "error", err)
		b.reply(m.ChannelID, "Có lỗi xảy ra, thử lại sau nhé.")
		return
	}

	b.renderOutcome(ctx, m.ChannelID, userKey, out)
}

// eventFromMessage classifies one message: a !command, a bare number picking
// a pending menu option, or free text.
func (b *Bot) eventFromMessage(userKey, content string) (engine.Event, bool) {
	if cmd, ok := commandWords[strings.ToLower(content)]; ok {
		return engine.Event{Command: cmd}, true
	}

	if n, err := strconv.Atoi(content); err == nil {
		b.mu.Lock()
		options := b.pending[userKey]
		b.mu.Unlock()
		if len(options) > 0 {
			if n < 1 || n > len(options) {
				return engine.Event{}, false
			}
			return engine.Event{Callback: options[n-1].Data}, true
		}
	}

	return engine.Event{Text: content}, true
}

func (b *Bot) handleReportCommand(ctx context.Context, userKey, content string) (string, bool) {
	var run func(userID int64) (string, error)
	switch strings.ToLower(content) {
	case "!menu":
		return menuText, true
	case "!sodu":
		run = func(id int64) (string, error) { return b.reporter.Overview(ctx, id) }
	case "!thongke":
		run = func(id int64) (string, error) { return b.reporter.MonthBreakdown(ctx, id) }
	case "!vi":
		run = func(id int64) (string, error) { return b.reporter.Wallets(ctx, id) }
	case "!sosanh":
		run = func(id int64) (string, error) { return b.reporter.Insights(ctx, id) }
	default:
		return "", false
	}

	userID, err := b.reporterUser(ctx, userKey)
	if err == nil {
		var reply string
		if reply, err = run(userID); err == nil {
			return reply, true
		}
	}
	slog.Error("report failed", "user", userKey, "error", err)
	return "Có lỗi xảy ra, thử lại sau nhé.", true
}

const menuText = `📒 Các lệnh:
!ghi — ghi thu/chi  ·  !chuyen — chuyển giữa ví  ·  !luong — chia lương 4-2-2-2
!muctieu — mục tiêu tiết kiệm  ·  !tieumoi — tạo mục tiêu  ·  !ngansach — chia ngân sách
!hanmuc — đặt hạn mức  ·  !danhmuc — thêm danh mục  ·  !vimoi — tạo ví
!giaodich — giao dịch gần đây (sửa/xóa)  ·  !xuat — xuất CSV
!sodu · !thongke · !vi · !sosanh — báo cáo
Hoặc gõ thẳng "35k ăn sáng" để ghi chi tiêu nhanh.`

func (b *Bot) renderOutcome(ctx context.Context, channelID, userKey string, out *engine.Outcome) {
	var msg strings.Builder
	msg.WriteString(out.Message)

	b.mu.Lock()
	if len(out.Options) > 0 {
		msg.WriteString("\n")
		for i, o := range out.Options {
			fmt.Fprintf(&msg, "\n%d. %s", i+1, o.Label)
		}
		msg.WriteString("\n\nTrả lời bằng số để chọn.")
		b.pending[userKey] = out.Options
	} else {
		delete(b.pending, userKey)
	}
	b.mu.Unlock()

	b.reply(channelID, msg.String())

	if out.Export != nil {
		b.sendExport(ctx, channelID, userKey, out.Export)
	}
}

func (b *Bot) sendExport(ctx context.Context, channelID, userKey string, filter *service.ExportFilter) {
	user, err := b.reporterUser(ctx, userKey)
	if err != nil {
		b.reply(channelID, "Không xuất được dữ liệu.")
		return
	}

	var buf bytes.Buffer
	if err := b.reporter.WriteCSV(ctx, &buf, user, *filter); err != nil {
		slog.Error("csv export failed", "user", userKey, "error", err)
		b.reply(channelID, "Không xuất được dữ liệu.")
		return
	}

	name := "giao-dich.csv"
	if filter.Year != 0 {
		name = fmt.Sprintf("giao-dich-%02d-%d.csv", int(filter.Month), filter.Year)
	}
	if _, err := b.session.ChannelFileSend(channelID, name, &buf); err != nil {
		slog.Error("failed to upload export", "error", err)
	}
}

// reply sends one message, retrying transient transport failures.
func (b *Bot) reply(channelID, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := common.WithRetry(ctx, func() error {
		_, sendErr := b.session.ChannelMessageSend(channelID, content)
		return sendErr
	}, service.RetryOptions{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond})
	if err != nil {
		slog.Error("failed to send reply", "channel_id", channelID, "error", err)
	}
}

func (b *Bot) reporterUser(ctx context.Context, userKey string) (int64, error) {
	return b.reporter.UserID(ctx, userKey)
}

func (b *Bot) startHealthServer() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		code := http.StatusOK
		if b.session == nil || b.session.State == nil {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"status":%q,"uptime":%q}`, status, time.Since(b.startTime).Round(time.Second))
	})

	b.healthSrv = &http.Server{Addr: b.healthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	slog.Info("health endpoint listening", "addr", b.healthAddr)
	if err := b.healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("health server failed", "error", err)
	}
}
