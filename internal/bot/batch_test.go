package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBatchLifecycle(t *testing.T) {
	b, api, store := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, cmdMsg(100, "/newbatch"))
	if !strings.Contains(api.lastText(), "Batch started") {
		t.Fatalf("got %q, want batch start confirmation", api.lastText())
	}

	b.handleMessage(ctx, docMsg(100, "one.txt"))
	b.handleMessage(ctx, docMsg(100, "two.txt"))

	b.handleMessage(ctx, cmdMsg(100, "/savebatch My Pack"))
	reply := api.lastText()
	if !strings.Contains(reply, "Batch saved") || !strings.Contains(reply, "Files: 2") {
		t.Fatalf("got %q, want save confirmation with 2 files", reply)
	}

	payload := linkPayload(t, reply)
	id, ok := strings.CutPrefix(payload, batchPayloadPrefix)
	if !ok {
		t.Fatalf("batch link payload %q lacks the batch prefix", payload)
	}

	batch, err := store.GetBatch(id)
	if err != nil {
		t.Fatalf("saved batch lookup: %v", err)
	}
	if batch.Name != "My Pack" || batch.OwnerID != 100 {
		t.Errorf("batch = %+v, want name and owner preserved", batch)
	}

	codes, err := batch.CodeList()
	if err != nil {
		t.Fatalf("decode codes: %v", err)
	}
	files, err := store.UserFiles(100, 10, 0)
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	uploaded := map[string]bool{}
	for _, f := range files {
		uploaded[f.Code] = true
	}
	if len(codes) != 2 || !uploaded[codes[0]] || !uploaded[codes[1]] {
		t.Errorf("batch codes %v do not match the uploads", codes)
	}
}

func TestSaveBatchRequiresName(t *testing.T) {
	b, api, _ := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, cmdMsg(100, "/newbatch"))
	b.handleMessage(ctx, docMsg(100, "one.txt"))
	b.handleMessage(ctx, cmdMsg(100, "/savebatch"))

	if !strings.Contains(api.lastText(), "Usage") {
		t.Fatalf("got %q, want usage hint", api.lastText())
	}

	// The batch stays open; saving with a name still works.
	b.handleMessage(ctx, cmdMsg(100, "/savebatch Late Name"))
	if !strings.Contains(api.lastText(), "Batch saved") {
		t.Fatalf("got %q, want the batch to survive a missing name", api.lastText())
	}
}

func TestSaveBatchWithoutOpenSession(t *testing.T) {
	b, api, _ := newTestBot(t)

	b.handleMessage(context.Background(), cmdMsg(100, "/savebatch Nothing"))

	if !strings.Contains(api.lastText(), "No open batch") {
		t.Fatalf("got %q, want no-open-batch notice", api.lastText())
	}
}

func TestSaveEmptyBatch(t *testing.T) {
	b, api, store := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, cmdMsg(100, "/newbatch"))
	b.handleMessage(ctx, cmdMsg(100, "/savebatch Empty"))

	if !strings.Contains(api.lastText(), "empty") {
		t.Fatalf("got %q, want empty-batch notice", api.lastText())
	}
	if _, err := store.GetBatch("Empty"); err == nil {
		t.Fatalf("empty batch was persisted")
	}
}

func TestCancelBatchDiscardsSession(t *testing.T) {
	b, api, _ := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, cmdMsg(100, "/newbatch"))
	b.handleMessage(ctx, docMsg(100, "one.txt"))
	b.handleMessage(ctx, cmdMsg(100, "/cancelbatch"))
	if !strings.Contains(api.lastText(), "canceled") {
		t.Fatalf("got %q, want cancel confirmation", api.lastText())
	}

	// After a cancel the next upload links individually again.
	b.handleMessage(ctx, docMsg(100, "solo.txt"))
	if !strings.Contains(api.lastText(), "File saved") {
		t.Fatalf("got %q, want an individual link after cancel", api.lastText())
	}
}

func TestCancelWithoutOpenBatch(t *testing.T) {
	b, api, _ := newTestBot(t)

	b.handleMessage(context.Background(), cmdMsg(100, "/cancelbatch"))

	if !strings.Contains(api.lastText(), "No open batch") {
		t.Fatalf("got %q, want no-open-batch notice", api.lastText())
	}
}

func TestDoubleNewBatchRejected(t *testing.T) {
	b, api, _ := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, cmdMsg(100, "/newbatch"))
	b.handleMessage(ctx, cmdMsg(100, "/newbatch"))

	if !strings.Contains(api.lastText(), "already have an open batch") {
		t.Fatalf("got %q, want already-open notice", api.lastText())
	}
}

func TestBatchCodesRoundTrip(t *testing.T) {
	b, api, store := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, cmdMsg(100, "/newbatch"))
	b.handleMessage(ctx, docMsg(100, "a.txt"))
	b.handleMessage(ctx, docMsg(100, "b.txt"))
	b.handleMessage(ctx, docMsg(100, "c.txt"))
	b.handleMessage(ctx, cmdMsg(100, "/savebatch Ordered"))

	id, _ := strings.CutPrefix(linkPayload(t, api.lastText()), batchPayloadPrefix)
	batch, err := store.GetBatch(id)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	got, err := batch.CodeList()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Upload order is the delivery order.
	var want []string
	files, err := store.UserFiles(100, 10, 0)
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	byName := map[string]string{}
	for _, f := range files {
		byName[f.Name] = f.Code
	}
	for _, n := range []string{"a.txt", "b.txt", "c.txt"} {
		want = append(want, byName[n])
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stored code order mismatch (-want +got):\n%s", diff)
	}
}
