package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"filestore-bot/internal/repositories"
)

// handleAdminPanel shows aggregate counts plus the action keyboard.
// Non-admin callers are dropped without any response.
func (b *Bot) handleAdminPanel(m *tgbotapi.Message) {
	if !b.requireAdmin(m.From.ID) {
		return
	}
	stats, err := b.store.Stats()
	if err != nil {
		slog.Error("stats failed", "error", err)
		b.reply(m.Chat.ID, "⚠️ Could not read stats.")
		return
	}

	maintenance, _ := b.store.MaintenanceMode()
	fsub, _ := b.store.ForceSubChannel()

	msg := tgbotapi.NewMessage(m.Chat.ID, fmt.Sprintf(
		"🛡 Admin panel\n\n👤 Users: %d\n📂 Files: %d\n🚫 Banned: %d\n🛠 Maintenance: %v\n📢 Force-sub channel: %d",
		stats.Users, stats.Files, stats.Banned, maintenance, fsub))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📢 Broadcast", "admin:broadcast"),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete file", "admin:del"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 Ban user", "admin:ban"),
			tgbotapi.NewInlineKeyboardButtonData("🔓 Unban user", "admin:unban"),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("admin panel send failed", "error", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.From == nil || q.Message == nil {
		return
	}
	action, arg, _ := strings.Cut(q.Data, ":")

	// Acknowledge the tap; errors here are cosmetic.
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		slog.Warn("callback ack failed", "error", err)
	}

	switch action {
	case "retry":
		b.retryEntry(ctx, q.Message.Chat.ID, q.From, arg)
	case "admin":
		if !b.requireAdmin(q.From.ID) {
			return
		}
		b.promptAdminAction(q.Message.Chat.ID, q.From.ID, arg)
	}
}

// retryEntry replays a /start payload after the user claims to have joined
// the forced channel. The membership check runs again, still fail-open.
func (b *Bot) retryEntry(ctx context.Context, chatID int64, from *tgbotapi.User, payload string) {
	if err := b.store.EnsureUser(from.ID); err != nil {
		slog.Error("ensure user failed", "user", from.ID, "error", err)
	}
	if banned, _ := b.store.IsBanned(from.ID); banned {
		return
	}

	channelID, err := b.store.ForceSubChannel()
	if err == nil && channelID != 0 && !b.cfg.IsAdmin(from.ID) {
		member, err := b.isChannelMember(channelID, from.ID)
		if err == nil && !member {
			b.sendJoinPrompt(chatID, channelID, payload)
			return
		}
	}
	b.handleStart(ctx, chatID, from, payload)
}

func (b *Bot) promptAdminAction(chatID, adminID int64, action string) {
	prompts := map[string]string{
		"broadcast": "Send the message you want to broadcast (text, photo, anything).",
		"ban":       "Send the user id to ban:",
		"unban":     "Send the user id to unban:",
		"del":       "Send the file code to delete:",
	}
	prompt, ok := prompts[action]
	if !ok {
		return
	}
	b.setPendingAdmin(adminID, action)
	b.reply(chatID, prompt)
}

// handleAdminInput consumes the message following a panel button tap.
func (b *Bot) handleAdminInput(ctx context.Context, action string, m *tgbotapi.Message) {
	switch action {
	case "broadcast":
		b.startBroadcast(m)
	case "ban":
		b.applyBan(m, strings.TrimSpace(m.Text), true)
	case "unban":
		b.applyBan(m, strings.TrimSpace(m.Text), false)
	case "del":
		b.applyDelete(m, strings.TrimSpace(m.Text))
	}
}

func (b *Bot) handleBanCommand(m *tgbotapi.Message, ban bool) {
	if !b.requireAdmin(m.From.ID) {
		return
	}
	b.applyBan(m, strings.TrimSpace(m.CommandArguments()), ban)
}

func (b *Bot) applyBan(m *tgbotapi.Message, arg string, ban bool) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		b.reply(m.Chat.ID, "Invalid user id.")
		return
	}
	if err := b.store.SetBanned(id, ban); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			b.reply(m.Chat.ID, "User not found.")
			return
		}
		slog.Error("ban update failed", "user", id, "error", err)
		b.reply(m.Chat.ID, "⚠️ Could not update the user.")
		return
	}
	verb := "unbanned"
	if ban {
		verb = "banned"
	}
	b.reply(m.Chat.ID, fmt.Sprintf("User %d %s.", id, verb))
	b.logEvent(fmt.Sprintf("admin %d %s user %d", m.From.ID, verb, id))
}

func (b *Bot) handleDeleteCommand(m *tgbotapi.Message) {
	if !b.requireAdmin(m.From.ID) {
		return
	}
	b.applyDelete(m, strings.TrimSpace(m.CommandArguments()))
}

func (b *Bot) applyDelete(m *tgbotapi.Message, code string) {
	if code == "" {
		b.reply(m.Chat.ID, "Usage: /del <code>")
		return
	}
	if err := b.store.DeleteFile(code); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			b.reply(m.Chat.ID, "File not found.")
			return
		}
		slog.Error("file delete failed", "code", code, "error", err)
		b.reply(m.Chat.ID, "⚠️ Could not delete the file.")
		return
	}
	b.reply(m.Chat.ID, fmt.Sprintf("File %s removed from the index. The message in the storage channel remains.", code))
	b.logEvent(fmt.Sprintf("admin %d deleted file %s", m.From.ID, code))
}

func (b *Bot) handleMaintenanceCommand(m *tgbotapi.Message) {
	if !b.requireAdmin(m.From.ID) {
		return
	}
	arg := strings.ToLower(strings.TrimSpace(m.CommandArguments()))
	var on bool
	switch arg {
	case "on":
		on = true
	case "off":
		on = false
	default:
		b.reply(m.Chat.ID, "Usage: /maintenance on|off")
		return
	}
	if err := b.store.SetMaintenanceMode(on); err != nil {
		slog.Error("maintenance toggle failed", "error", err)
		b.reply(m.Chat.ID, "⚠️ Could not update the setting.")
		return
	}
	b.reply(m.Chat.ID, fmt.Sprintf("🛠 Maintenance mode: %s", arg))
	b.logEvent(fmt.Sprintf("admin %d set maintenance %s", m.From.ID, arg))
}

// handleSetForceSubCommand configures the forced-subscription channel.
// An id of 0 clears it.
func (b *Bot) handleSetForceSubCommand(m *tgbotapi.Message) {
	if !b.requireAdmin(m.From.ID) {
		return
	}
	arg := strings.TrimSpace(m.CommandArguments())
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		b.reply(m.Chat.ID, "Usage: /setfsub <channel-id> (0 to disable)")
		return
	}
	if err := b.store.SetForceSubChannel(id); err != nil {
		slog.Error("force-sub update failed", "error", err)
		b.reply(m.Chat.ID, "⚠️ Could not update the setting.")
		return
	}
	if id == 0 {
		b.reply(m.Chat.ID, "📢 Forced subscription disabled.")
	} else {
		b.reply(m.Chat.ID, fmt.Sprintf("📢 Forced subscription channel set to %d.", id))
	}
	b.logEvent(fmt.Sprintf("admin %d set fsub channel %d", m.From.ID, id))
}
