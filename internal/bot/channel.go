package bot

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleConnect starts the channel-linking handshake: the user forwards
// any message from their channel so the bot learns its id.
func (b *Bot) handleConnect(m *tgbotapi.Message) {
	b.setPendingConnect(m.From.ID)
	b.reply(m.Chat.ID, "📡 Forward a message from your channel to connect it. I must be an admin there!")
}

func (b *Bot) finishConnect(m *tgbotapi.Message) {
	if m.ForwardFromChat == nil || m.ForwardFromChat.Type != "channel" {
		b.reply(m.Chat.ID, "❌ That is not a forwarded channel message.")
		return
	}

	channelID := m.ForwardFromChat.ID
	title := m.ForwardFromChat.Title

	cm, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: channelID,
			UserID: b.selfID,
		},
	})
	if err != nil {
		slog.Warn("connect membership check failed", "channel", channelID, "error", err)
		b.reply(m.Chat.ID, "❌ I can't see that channel. Add me there first.")
		return
	}
	if cm.Status != "administrator" && cm.Status != "creator" {
		b.reply(m.Chat.ID, "❌ I am not an admin in that channel.")
		return
	}

	if err := b.store.SetChannel(m.From.ID, channelID, title); err != nil {
		slog.Error("channel binding failed", "user", m.From.ID, "error", err)
		b.reply(m.Chat.ID, "❌ Could not connect the channel. Please try again.")
		return
	}

	b.reply(m.Chat.ID, fmt.Sprintf("✅ Connected to %s.\nYour future uploads will be stored there.", title))
	b.logEvent(fmt.Sprintf("user %d connected channel %d", m.From.ID, channelID))
}
