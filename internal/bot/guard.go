package bot

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// guardFunc checks one precondition. proceed=false short-circuits the
// handler; the guard has already sent any response it wants to.
type guardFunc func(m *tgbotapi.Message) (proceed bool, err error)

// allow runs the guard chain in order: register, ban, maintenance,
// forced subscription. A guard error is logged and treated as proceed so
// a flaky store or membership lookup never locks users out.
func (b *Bot) allow(m *tgbotapi.Message) bool {
	guards := []guardFunc{
		b.registerGuard,
		b.banGuard,
		b.maintenanceGuard,
		b.forceSubGuard,
	}
	for _, g := range guards {
		proceed, err := g(m)
		if err != nil {
			slog.Error("guard error", "user", m.From.ID, "error", err)
			continue
		}
		if !proceed {
			return false
		}
	}
	return true
}

func (b *Bot) registerGuard(m *tgbotapi.Message) (bool, error) {
	return true, b.store.EnsureUser(m.From.ID)
}

// banGuard drops banned users silently. They get no signal at all.
func (b *Bot) banGuard(m *tgbotapi.Message) (bool, error) {
	banned, err := b.store.IsBanned(m.From.ID)
	if err != nil {
		return true, err
	}
	return !banned, nil
}

func (b *Bot) maintenanceGuard(m *tgbotapi.Message) (bool, error) {
	on, err := b.store.MaintenanceMode()
	if err != nil {
		return true, err
	}
	if !on || b.cfg.IsAdmin(m.From.ID) {
		return true, nil
	}
	b.reply(m.Chat.ID, "🛠 The bot is under maintenance. Please try again later.")
	return false, nil
}

// forceSubGuard gates entry-point commands behind membership in the
// configured channel. Lookup failures FAIL OPEN: when the bot cannot see
// the channel it treats the caller as subscribed.
func (b *Bot) forceSubGuard(m *tgbotapi.Message) (bool, error) {
	if !m.IsCommand() || m.Command() != "start" {
		return true, nil
	}
	channelID, err := b.store.ForceSubChannel()
	if err != nil || channelID == 0 {
		return true, err
	}
	if b.cfg.IsAdmin(m.From.ID) {
		return true, nil
	}

	member, err := b.isChannelMember(channelID, m.From.ID)
	if err != nil {
		slog.Warn("subscription check failed, allowing", "user", m.From.ID, "error", err)
		return true, nil
	}
	if member {
		return true, nil
	}

	b.sendJoinPrompt(m.Chat.ID, channelID, m.CommandArguments())
	return false, nil
}

func (b *Bot) isChannelMember(channelID, userID int64) (bool, error) {
	cm, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: channelID,
			UserID: userID,
		},
	})
	if err != nil {
		return false, fmt.Errorf("get chat member: %w", err)
	}
	switch cm.Status {
	case "creator", "administrator", "member", "restricted":
		return true, nil
	}
	return false, nil
}

// sendJoinPrompt offers an invite link and a retry button that replays the
// original /start payload.
func (b *Bot) sendJoinPrompt(chatID, channelID int64, payload string) {
	rows := [][]tgbotapi.InlineKeyboardButton{}

	invite, err := b.api.GetInviteLink(tgbotapi.ChatInviteLinkConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: channelID},
	})
	if err != nil {
		slog.Warn("invite link fetch failed", "channel", channelID, "error", err)
	} else {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📢 Join channel", invite),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 I joined, retry", "retry:"+payload),
	))

	msg := tgbotapi.NewMessage(chatID, "🔒 Please join our channel to use this bot, then retry.")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("join prompt send failed", "chat", chatID, "error", err)
	}
}

// requireAdmin drops non-admin callers with no response, leaking nothing.
func (b *Bot) requireAdmin(userID int64) bool {
	return b.cfg.IsAdmin(userID)
}
