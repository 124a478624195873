package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	qrcode "github.com/skip2/go-qrcode"

	"filestore-bot/internal/models"
	"filestore-bot/internal/repositories"
)

const listLimit = 20

func (b *Bot) handleMyFiles(m *tgbotapi.Message) {
	files, err := b.store.UserFiles(m.From.ID, listLimit, 0)
	if err != nil {
		slog.Error("list files failed", "user", m.From.ID, "error", err)
		b.reply(m.Chat.ID, "⚠️ Something went wrong. Please try again.")
		return
	}
	if len(files) == 0 {
		b.reply(m.Chat.ID, "You haven't uploaded any files yet.")
		return
	}
	b.reply(m.Chat.ID, formatFileList("📂 Your recent files:", files, b))
}

func (b *Bot) handleSearch(m *tgbotapi.Message) {
	query := strings.TrimSpace(m.CommandArguments())
	if query == "" {
		b.reply(m.Chat.ID, "Usage: /search <part of a file name>")
		return
	}
	files, err := b.store.SearchUserFiles(m.From.ID, query, listLimit)
	if err != nil {
		slog.Error("search failed", "user", m.From.ID, "error", err)
		b.reply(m.Chat.ID, "⚠️ Something went wrong. Please try again.")
		return
	}
	if len(files) == 0 {
		b.reply(m.Chat.ID, fmt.Sprintf("No files matching %q.", query))
		return
	}
	b.reply(m.Chat.ID, formatFileList(fmt.Sprintf("🔎 Files matching %q:", query), files, b))
}

func formatFileList(header string, files []models.File, b *Bot) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")
	for _, f := range files {
		fmt.Fprintf(&sb, "🔹 %s\n   └ 🔗 %s | 📥 %d\n\n", f.Name, b.DeepLink(f.Code), f.Downloads)
	}
	return sb.String()
}

// handleQR sends the share link for a code as a QR image.
func (b *Bot) handleQR(m *tgbotapi.Message) {
	code := strings.TrimSpace(m.CommandArguments())
	if code == "" {
		b.reply(m.Chat.ID, "Usage: /qr <code>")
		return
	}
	f, err := b.store.GetFile(code)
	if errors.Is(err, repositories.ErrNotFound) {
		b.reply(m.Chat.ID, "⚠️ File not found or deleted.")
		return
	}
	if err != nil {
		slog.Error("file lookup failed", "code", code, "error", err)
		b.reply(m.Chat.ID, "⚠️ Something went wrong. Please try again.")
		return
	}

	png, err := qrcode.Encode(b.DeepLink(code), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr encode failed", "code", code, "error", err)
		b.reply(m.Chat.ID, "⚠️ Could not generate the QR code.")
		return
	}

	photo := tgbotapi.NewPhoto(m.Chat.ID, tgbotapi.FileBytes{Name: "qr.png", Bytes: png})
	photo.Caption = fmt.Sprintf("📄 %s\n🔗 %s", f.Name, b.DeepLink(code))
	if _, err := b.api.Send(photo); err != nil {
		slog.Error("qr send failed", "chat", m.Chat.ID, "error", err)
	}
}
