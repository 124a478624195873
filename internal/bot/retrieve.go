package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"filestore-bot/internal/health"
	"filestore-bot/internal/repositories"
)

const batchPayloadPrefix = "batch_"

// handleStart serves the entry point: a bare /start is the welcome, a
// payload is a file code or a batch_<id> reference.
func (b *Bot) handleStart(ctx context.Context, chatID int64, from *tgbotapi.User, payload string) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		b.reply(chatID, fmt.Sprintf(
			"👋 Hi %s!\n\nI am your personal file store bot.\n📤 Send me any file to store it.\n🔗 I will give you a shareable link.\n\nUse /help for all commands.",
			from.FirstName))
		return
	}

	if id, ok := strings.CutPrefix(payload, batchPayloadPrefix); ok {
		b.deliverBatch(ctx, chatID, from.ID, id)
		return
	}
	b.deliverFile(ctx, chatID, from.ID, payload, true)
}

// deliverFile copies the stored message into the chat. Copy, not forward:
// the storage channel's identity stays hidden. The download counter moves
// only after a successful delivery. When loud is false (batch members)
// failures stay silent.
func (b *Bot) deliverFile(ctx context.Context, chatID, userID int64, code string, loud bool) bool {
	f, err := b.store.GetFile(code)
	if errors.Is(err, repositories.ErrNotFound) {
		health.RetrievalsTotal.WithLabelValues("not_found").Inc()
		if loud {
			b.reply(chatID, "⚠️ File not found or deleted.")
		}
		return false
	}
	if err != nil {
		health.RetrievalsTotal.WithLabelValues("error").Inc()
		slog.Error("file lookup failed", "code", code, "error", err)
		if loud {
			b.reply(chatID, "⚠️ Something went wrong. Please try again.")
		}
		return false
	}

	copyCfg := tgbotapi.NewCopyMessage(chatID, f.ChannelID, f.MessageID)
	copyCfg.Caption = fmt.Sprintf("📄 %s\n\n🤖 via @%s", f.Name, b.username)
	if _, err := b.api.CopyMessage(copyCfg); err != nil {
		health.RetrievalsTotal.WithLabelValues("unavailable").Inc()
		slog.Warn("stored message unavailable", "code", code, "error", err)
		if loud {
			b.reply(chatID, "⚠️ File unavailable. It might have been deleted from storage.")
		}
		return false
	}

	if err := b.store.IncrementDownloads(code); err != nil {
		slog.Error("download counter update failed", "code", code, "error", err)
	}
	health.RetrievalsTotal.WithLabelValues("ok").Inc()
	b.logEvent(fmt.Sprintf("user %d accessed file %s", userID, code))
	return true
}

// deliverBatch announces the batch and then delivers its members in stored
// order, sequentially and paced. A member that fails is skipped; the rest
// still arrive.
func (b *Bot) deliverBatch(ctx context.Context, chatID, userID int64, id string) {
	batch, err := b.store.GetBatch(id)
	if errors.Is(err, repositories.ErrNotFound) {
		b.reply(chatID, "⚠️ Batch not found or deleted.")
		return
	}
	if err != nil {
		slog.Error("batch lookup failed", "id", id, "error", err)
		b.reply(chatID, "⚠️ Something went wrong. Please try again.")
		return
	}

	codes, err := batch.CodeList()
	if err != nil {
		slog.Error("batch decode failed", "id", id, "error", err)
		b.reply(chatID, "⚠️ Something went wrong. Please try again.")
		return
	}

	b.reply(chatID, fmt.Sprintf("📦 %s — %d file(s) incoming.", batch.Name, len(codes)))
	for i, code := range codes {
		if i > 0 {
			if err := b.deliver.Wait(ctx); err != nil {
				return
			}
		}
		b.deliverFile(ctx, chatID, userID, code, false)
	}
}
