package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"filestore-bot/internal/health"
	"filestore-bot/internal/models"
)

func (b *Bot) handleBroadcastCommand(m *tgbotapi.Message) {
	if !b.requireAdmin(m.From.ID) {
		return
	}
	if m.ReplyToMessage != nil {
		b.startBroadcast(m.ReplyToMessage)
		return
	}
	b.promptAdminAction(m.Chat.ID, m.From.ID, "broadcast")
}

// startBroadcast spins the fan-out onto its own goroutine so ordinary
// handlers keep running while it works through the user set.
func (b *Bot) startBroadcast(src *tgbotapi.Message) {
	b.reply(src.Chat.ID, "🚀 Broadcast started...")
	go b.runBroadcast(context.Background(), src)
}

// runBroadcast streams registered users in bounded pages and best-effort
// copies the source message to each. Per-user failures (blocked bot,
// deactivated account) are counted and skipped. There is no checkpointing:
// a crash mid-run loses the remaining progress.
func (b *Bot) runBroadcast(ctx context.Context, src *tgbotapi.Message) {
	taskID := uuid.NewString()
	start := time.Now()
	slog.Info("broadcast started", "task", taskID, "admin", src.Chat.ID)

	// Archive the source in the log channel.
	if b.cfg.LogChannel != 0 {
		if _, err := b.api.CopyMessage(tgbotapi.NewCopyMessage(b.cfg.LogChannel, src.Chat.ID, src.MessageID)); err != nil {
			slog.Warn("broadcast archive failed", "task", taskID, "error", err)
		}
	}

	var sent, failed int
	err := b.store.ForEachUserPage(b.cfg.BroadcastPageSize, func(users []models.User) error {
		for _, u := range users {
			if err := b.broadcast.Wait(ctx); err != nil {
				return err
			}
			_, err := b.api.CopyMessage(tgbotapi.NewCopyMessage(u.ID, src.Chat.ID, src.MessageID))
			if err != nil {
				failed++
				health.BroadcastsTotal.WithLabelValues("failed").Inc()
				continue
			}
			sent++
			health.BroadcastsTotal.WithLabelValues("ok").Inc()
		}
		return nil
	})
	if err != nil {
		slog.Error("broadcast aborted", "task", taskID, "error", err)
	}

	elapsed := time.Since(start)
	slog.Info("broadcast finished", "task", taskID, "sent", sent, "failed", failed, "elapsed", elapsed)
	b.reply(src.Chat.ID, fmt.Sprintf(
		"✅ Broadcast complete\n\n👥 Sent: %d\n❌ Failed: %d\n⏱ Time: %.2fs",
		sent, failed, elapsed.Seconds()))
}
