// Package bot dispatches Telegram updates to the upload, retrieval, batch,
// admin and broadcast flows.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"filestore-bot/internal/config"
	"filestore-bot/internal/repositories"
	"filestore-bot/internal/session"
)

// Client is the slice of the Telegram API the bot uses. *tgbotapi.BotAPI
// satisfies it; tests plug in a fake.
type Client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	CopyMessage(c tgbotapi.CopyMessageConfig) (tgbotapi.MessageID, error)
	GetChatMember(c tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetInviteLink(c tgbotapi.ChatInviteLinkConfig) (string, error)
}

type Bot struct {
	api      Client
	username string
	selfID   int64
	cfg      *config.Config
	store    *repositories.Store
	sessions *session.Store

	// deliver paces batch fan-out inside one chat; broadcast paces the
	// global fan-out. Both are rate policy, not correctness.
	deliver   *rate.Limiter
	broadcast *rate.Limiter

	mu             sync.Mutex
	pendingAdmin   map[int64]string // admin id -> awaited panel action
	pendingConnect map[int64]bool   // users asked to forward a channel message
}

// New builds a Bot around an authorized API client. username and selfID
// come from the client's own identity.
func New(api Client, username string, selfID int64, cfg *config.Config, store *repositories.Store, sessions *session.Store) *Bot {
	return &Bot{
		api:            api,
		username:       username,
		selfID:         selfID,
		cfg:            cfg,
		store:          store,
		sessions:       sessions,
		deliver:        rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		broadcast:      rate.NewLimiter(rate.Limit(20), 20),
		pendingAdmin:   make(map[int64]string),
		pendingConnect: make(map[int64]bool),
	}
}

// Run drains the long-poll update stream until ctx is canceled. A closed
// stream is reopened after a short pause; a panicking handler is logged
// and polling continues.
func (b *Bot) Run(ctx context.Context, api *tgbotapi.BotAPI) error {
	for {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := api.GetUpdatesChan(u)

		open := true
		for open {
			select {
			case <-ctx.Done():
				api.StopReceivingUpdates()
				return ctx.Err()
			case update, ok := <-updates:
				if !ok {
					open = false
					break
				}
				b.handleUpdate(ctx, update)
			}
		}

		slog.Warn("update stream closed, resuming polling")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("handler panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	if m.From == nil {
		return
	}
	if !b.allow(m) {
		return
	}

	// An admin who clicked a panel button gets their next message consumed
	// as that action's input, whatever it is.
	if action, ok := b.takePendingAdmin(m.From.ID); ok {
		b.handleAdminInput(ctx, action, m)
		return
	}

	if m.IsCommand() {
		b.handleCommand(ctx, m)
		return
	}

	if b.takePendingConnect(m.From.ID) {
		b.finishConnect(m)
		return
	}

	if media, ok := classifyMedia(m); ok {
		b.handleUpload(m, media)
		return
	}
}

func (b *Bot) handleCommand(ctx context.Context, m *tgbotapi.Message) {
	switch m.Command() {
	case "start":
		b.handleStart(ctx, m.Chat.ID, m.From, m.CommandArguments())
	case "help":
		b.reply(m.Chat.ID, helpText)
	case "myfiles":
		b.handleMyFiles(m)
	case "search":
		b.handleSearch(m)
	case "connect":
		b.handleConnect(m)
	case "newbatch":
		b.handleNewBatch(m)
	case "savebatch":
		b.handleSaveBatch(m)
	case "cancelbatch":
		b.handleCancelBatch(m)
	case "qr":
		b.handleQR(m)
	case "admin", "stats":
		b.handleAdminPanel(m)
	case "broadcast":
		b.handleBroadcastCommand(m)
	case "ban":
		b.handleBanCommand(m, true)
	case "unban":
		b.handleBanCommand(m, false)
	case "del":
		b.handleDeleteCommand(m)
	case "maintenance":
		b.handleMaintenanceCommand(m)
	case "setfsub":
		b.handleSetForceSubCommand(m)
	}
}

func (b *Bot) takePendingAdmin(userID int64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	action, ok := b.pendingAdmin[userID]
	if ok {
		delete(b.pendingAdmin, userID)
	}
	return action, ok
}

func (b *Bot) setPendingAdmin(userID int64, action string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pendingAdmin[userID] = action
}

func (b *Bot) takePendingConnect(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	ok := b.pendingConnect[userID]
	if ok {
		delete(b.pendingConnect, userID)
	}
	return ok
}

func (b *Bot) setPendingConnect(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pendingConnect[userID] = true
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("send failed", "chat", chatID, "error", err)
	}
}

// DeepLink builds the shareable entry-point URL for a payload.
func (b *Bot) DeepLink(payload string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", b.username, payload)
}

// logEvent mirrors notable events into the configured log channel.
func (b *Bot) logEvent(text string) {
	if b.cfg.LogChannel == 0 {
		return
	}
	msg := tgbotapi.NewMessage(b.cfg.LogChannel, "📝 LOG: "+text)
	if _, err := b.api.Send(msg); err != nil {
		slog.Warn("log channel send failed", "error", err)
	}
}

const helpText = `📖 Commands

📤 Send me any file to store it and get a share link.
/myfiles - your recent uploads
/search <text> - find your files by name
/connect - store uploads in your own channel
/newbatch - start collecting files into one link
/savebatch <name> - finish the batch
/cancelbatch - discard the open batch
/qr <code> - QR image for a share link`
