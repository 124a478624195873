package bot

import (
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"filestore-bot/internal/health"
	"filestore-bot/internal/models"
	"filestore-bot/internal/repositories"
	"filestore-bot/internal/utils"
)

type mediaInfo struct {
	Kind         string
	Name         string
	MimeType     string
	FileID       string
	FileUniqueID string
}

// classifyMedia extracts the single attachment from a message. For photos
// Telegram offers several sizes; the largest one is last.
func classifyMedia(m *tgbotapi.Message) (*mediaInfo, bool) {
	switch {
	case m.Document != nil:
		name := m.Document.FileName
		if name == "" {
			name = "file"
		}
		return &mediaInfo{
			Kind:         "document",
			Name:         name,
			MimeType:     m.Document.MimeType,
			FileID:       m.Document.FileID,
			FileUniqueID: m.Document.FileUniqueID,
		}, true
	case m.Video != nil:
		name := m.Video.FileName
		if name == "" {
			name = "video.mp4"
		}
		mime := m.Video.MimeType
		if mime == "" {
			mime = "video/mp4"
		}
		return &mediaInfo{
			Kind:         "video",
			Name:         name,
			MimeType:     mime,
			FileID:       m.Video.FileID,
			FileUniqueID: m.Video.FileUniqueID,
		}, true
	case m.Audio != nil:
		name := m.Audio.FileName
		if name == "" {
			name = "audio.mp3"
		}
		mime := m.Audio.MimeType
		if mime == "" {
			mime = "audio/mpeg"
		}
		return &mediaInfo{
			Kind:         "audio",
			Name:         name,
			MimeType:     mime,
			FileID:       m.Audio.FileID,
			FileUniqueID: m.Audio.FileUniqueID,
		}, true
	case len(m.Photo) > 0:
		p := m.Photo[len(m.Photo)-1]
		return &mediaInfo{
			Kind:         "photo",
			Name:         "photo.jpg",
			MimeType:     "image/jpeg",
			FileID:       p.FileID,
			FileUniqueID: p.FileUniqueID,
		}, true
	}
	return nil, false
}

// handleUpload relays the attachment into a storage channel and mints a
// share code for it.
func (b *Bot) handleUpload(m *tgbotapi.Message, media *mediaInfo) {
	userID := m.From.ID

	// Resolved per upload: the binding can change between uploads.
	dest := b.cfg.StorageChannel
	if binding, err := b.store.GetChannel(userID); err == nil {
		dest = binding.ChannelID
	} else if !errors.Is(err, repositories.ErrNotFound) {
		slog.Error("channel lookup failed", "user", userID, "error", err)
	}

	// Forward keeps the original media bytes; the bot never re-uploads.
	forwarded, err := b.api.Send(tgbotapi.NewForward(dest, m.Chat.ID, m.MessageID))
	if err != nil {
		health.UploadsTotal.WithLabelValues("relay_failed").Inc()
		slog.Error("relay to storage failed", "user", userID, "channel", dest, "error", err)
		b.reply(m.Chat.ID, "❌ Could not save your file. Check that I can post in the storage channel.")
		return
	}

	code, err := utils.NewFileCode()
	if err != nil {
		health.UploadsTotal.WithLabelValues("error").Inc()
		b.reply(m.Chat.ID, "❌ Could not save your file. Please try again.")
		return
	}

	record := &models.File{
		Code:         code,
		Name:         media.Name,
		MimeType:     media.MimeType,
		FileID:       media.FileID,
		FileUniqueID: media.FileUniqueID,
		MessageID:    forwarded.MessageID,
		ChannelID:    dest,
		UploaderID:   userID,
	}
	if err := b.store.CreateFile(record); err != nil {
		health.UploadsTotal.WithLabelValues("error").Inc()
		slog.Error("file record insert failed", "code", code, "error", err)
		b.reply(m.Chat.ID, "❌ Could not save your file. Please try again.")
		return
	}

	health.UploadsTotal.WithLabelValues("ok").Inc()
	b.logEvent(fmt.Sprintf("user %d uploaded %s (%s)", userID, media.Name, code))

	// Inside an open batch the code is collected instead of linked.
	if count, ok := b.sessions.Append(userID, code); ok {
		b.reply(m.Chat.ID, fmt.Sprintf("➕ Added to batch (%d so far). /savebatch <name> when done.", count))
		return
	}

	b.reply(m.Chat.ID, fmt.Sprintf("✅ File saved!\n\n📂 Name: %s\n🔗 Link: %s", media.Name, b.DeepLink(code)))
}
