package bot

import (
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"filestore-bot/internal/config"
	"filestore-bot/internal/models"
	"filestore-bot/internal/repositories"
	"filestore-bot/internal/session"
)

// fakeAPI records outbound Telegram calls and lets tests script failures.
type fakeAPI struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	copies    []tgbotapi.CopyMessageConfig
	nextMsgID int

	forwardErr error
	copyErr    func(c tgbotapi.CopyMessageConfig) error
	member     tgbotapi.ChatMember
	memberErr  error
	invite     string
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := c.(tgbotapi.ForwardConfig); ok && f.forwardErr != nil {
		return tgbotapi.Message{}, f.forwardErr
	}
	f.sent = append(f.sent, c)
	f.nextMsgID++
	return tgbotapi.Message{MessageID: f.nextMsgID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) CopyMessage(c tgbotapi.CopyMessageConfig) (tgbotapi.MessageID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.copyErr != nil {
		if err := f.copyErr(c); err != nil {
			return tgbotapi.MessageID{}, err
		}
	}
	f.copies = append(f.copies, c)
	return tgbotapi.MessageID{MessageID: len(f.copies)}, nil
}

func (f *fakeAPI) GetChatMember(c tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	return f.member, f.memberErr
}

func (f *fakeAPI) GetInviteLink(c tgbotapi.ChatInviteLinkConfig) (string, error) {
	return f.invite, nil
}

// sentTexts returns the text of every plain message sent so far.
func (f *fakeAPI) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var texts []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func (f *fakeAPI) lastText() string {
	texts := f.sentTexts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func (f *fakeAPI) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func containsText(texts []string, substr string) bool {
	for _, t := range texts {
		if strings.Contains(t, substr) {
			return true
		}
	}
	return false
}

const (
	testOwnerID     = int64(42)
	testStorageChan = int64(-100500)
)

// linkPayload pulls the ?start= payload out of a reply carrying a deep link.
func linkPayload(t *testing.T, text string) string {
	t.Helper()
	i := strings.LastIndex(text, "?start=")
	if i < 0 {
		t.Fatalf("no deep link in %q", text)
	}
	payload := text[i+len("?start="):]
	if j := strings.IndexAny(payload, " \n"); j >= 0 {
		payload = payload[:j]
	}
	return payload
}

func newTestBot(t *testing.T) (*Bot, *fakeAPI, *repositories.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.File{},
		&models.Batch{},
		&models.ChannelBinding{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := repositories.NewStore(db)

	cfg := &config.Config{
		BotToken:          "test-token",
		OwnerID:           testOwnerID,
		StorageChannel:    testStorageChan,
		BroadcastPageSize: 2,
		SessionTTL:        time.Hour,
	}

	api := &fakeAPI{member: tgbotapi.ChatMember{Status: "member"}}
	b := New(api, "testbot", 777, cfg, store, session.NewStore(time.Hour))
	// Tests should not sit in pacing delays.
	b.deliver = rate.NewLimiter(rate.Inf, 0)
	b.broadcast = rate.NewLimiter(rate.Inf, 0)
	return b, api, store
}

func textMsg(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID, FirstName: "Test"},
		Chat:      &tgbotapi.Chat{ID: userID, Type: "private"},
		Text:      text,
	}
}

func cmdMsg(userID int64, text string) *tgbotapi.Message {
	m := textMsg(userID, text)
	cmd, _, _ := strings.Cut(text, " ")
	m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	return m
}

func docMsg(userID int64, name string) *tgbotapi.Message {
	m := textMsg(userID, "")
	m.Document = &tgbotapi.Document{
		FileID:       "file-id-" + name,
		FileUniqueID: "unique-" + name,
		FileName:     name,
		MimeType:     "application/pdf",
	}
	return m
}
