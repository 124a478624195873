package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestBroadcastDeniedToRegularUsers(t *testing.T) {
	b, api, _ := newTestBot(t)

	b.handleMessage(context.Background(), cmdMsg(100, "/broadcast"))

	if n := api.sentCount(); n != 0 {
		t.Fatalf("non-admin got %d responses from /broadcast, want 0", n)
	}
}

func TestBroadcastWithoutReplyPrompts(t *testing.T) {
	b, api, _ := newTestBot(t)

	b.handleMessage(context.Background(), cmdMsg(testOwnerID, "/broadcast"))

	if !strings.Contains(api.lastText(), "broadcast") {
		t.Fatalf("got %q, want broadcast prompt", api.lastText())
	}
}

func TestBroadcastReachesEveryUserAndCountsFailures(t *testing.T) {
	b, api, store := newTestBot(t)

	// Five users across three pages (page size 2 in the test config).
	for _, id := range []int64{1, 2, 3, 4, 5} {
		if err := store.EnsureUser(id); err != nil {
			t.Fatalf("ensure user: %v", err)
		}
	}
	api.copyErr = func(c tgbotapi.CopyMessageConfig) error {
		if c.ChatID == 3 {
			return errors.New("Forbidden: bot was blocked by the user")
		}
		return nil
	}

	src := textMsg(testOwnerID, "big announcement")
	b.runBroadcast(context.Background(), src)

	var reached []int64
	for _, c := range api.copies {
		reached = append(reached, c.ChatID)
	}
	if len(reached) != 4 {
		t.Fatalf("copies reached %v, want every user except the blocked one", reached)
	}
	for _, id := range reached {
		if id == 3 {
			t.Fatalf("blocked user 3 still received a copy")
		}
	}

	report := api.lastText()
	if !strings.Contains(report, "Sent: 4") || !strings.Contains(report, "Failed: 1") {
		t.Fatalf("report %q missing sent/failed counts", report)
	}
}

func TestBroadcastArchivesSourceToLogChannel(t *testing.T) {
	b, api, store := newTestBot(t)
	b.cfg.LogChannel = -100321

	if err := store.EnsureUser(1); err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	b.runBroadcast(context.Background(), textMsg(testOwnerID, "note"))

	if len(api.copies) == 0 || api.copies[0].ChatID != -100321 {
		t.Fatalf("first copy should archive to the log channel, got %v", api.copies)
	}
}
