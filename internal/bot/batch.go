package bot

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"filestore-bot/internal/models"
	"filestore-bot/internal/utils"
)

func (b *Bot) handleNewBatch(m *tgbotapi.Message) {
	if !b.sessions.Open(m.From.ID) {
		b.reply(m.Chat.ID, "⚠️ You already have an open batch. /savebatch <name> or /cancelbatch first.")
		return
	}
	b.reply(m.Chat.ID, "📦 Batch started. Send me files, then /savebatch <name>.")
}

func (b *Bot) handleSaveBatch(m *tgbotapi.Message) {
	name := strings.TrimSpace(m.CommandArguments())
	if name == "" {
		b.reply(m.Chat.ID, "Usage: /savebatch <name>")
		return
	}
	if !b.sessions.Active(m.From.ID) {
		b.reply(m.Chat.ID, "⚠️ No open batch. Start one with /newbatch.")
		return
	}

	codes, _ := b.sessions.Take(m.From.ID)
	if len(codes) == 0 {
		b.reply(m.Chat.ID, "⚠️ The batch was empty, nothing saved.")
		return
	}

	batch := &models.Batch{
		ID:      utils.NewBatchID(),
		Name:    name,
		OwnerID: m.From.ID,
	}
	if err := batch.SetCodes(codes); err != nil {
		slog.Error("batch encode failed", "error", err)
		b.reply(m.Chat.ID, "❌ Could not save the batch. Please try again.")
		return
	}
	if err := b.store.CreateBatch(batch); err != nil {
		slog.Error("batch insert failed", "id", batch.ID, "error", err)
		b.reply(m.Chat.ID, "❌ Could not save the batch. Please try again.")
		return
	}

	link := b.DeepLink(batchPayloadPrefix + batch.ID)
	b.reply(m.Chat.ID, fmt.Sprintf("✅ Batch saved!\n\n📦 Name: %s\n📄 Files: %d\n🔗 Link: %s", name, len(codes), link))
	b.logEvent(fmt.Sprintf("user %d saved batch %s (%d files)", m.From.ID, batch.ID, len(codes)))
}

func (b *Bot) handleCancelBatch(m *tgbotapi.Message) {
	if !b.sessions.Cancel(m.From.ID) {
		b.reply(m.Chat.ID, "⚠️ No open batch to cancel.")
		return
	}
	b.reply(m.Chat.ID, "🗑 Batch canceled. Already uploaded files keep their individual links.")
}
