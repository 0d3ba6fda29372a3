package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"dompet/internal/core"
)

type captured struct {
	path   string
	auth   string
	fields map[string]string
}

// fakeGateway records every JSON POST and fails for chat ids listed in fail.
type fakeGateway struct {
	mu   sync.Mutex
	reqs []captured
	fail map[string]bool
}

func (f *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.reqs = append(f.reqs, captured{path: r.URL.Path, auth: r.Header.Get("Authorization"), fields: fields})
	f.mu.Unlock()
	if f.fail[fields["chat_id"]] || f.fail[fields["target"]] {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
		return
	}
	w.Write([]byte(`{"ok":true}`))
}

func newGateway(t *testing.T, fail ...string) (*fakeGateway, *httptest.Server) {
	t.Helper()
	gw := &fakeGateway{fail: map[string]bool{}}
	for _, f := range fail {
		gw.fail[f] = true
	}
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)
	return gw, srv
}

func TestTelegramSendMessage(t *testing.T) {
	gw, srv := newGateway(t)
	c := NewTelegramClient("TOKEN", srv.URL, srv.Client())

	if err := c.SendMessage(context.Background(), "42", "*halo*"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(gw.reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(gw.reqs))
	}
	got := gw.reqs[0]
	if got.path != "/botTOKEN/sendMessage" || got.fields["chat_id"] != "42" || got.fields["parse_mode"] != "Markdown" || got.fields["text"] != "*halo*" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestTelegramBroadcast(t *testing.T) {
	gw, srv := newGateway(t, "2")
	c := NewTelegramClient("T", srv.URL, srv.Client())

	err := c.Broadcast(context.Background(), []string{"1", "2", "3"}, "hi")
	if err == nil || !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("expected failure for chat 2, got %v", err)
	}
	var ids []string
	for _, r := range gw.reqs {
		ids = append(ids, r.fields["chat_id"])
	}
	sort.Strings(ids)
	if strings.Join(ids, ",") != "1,2,3" {
		t.Fatalf("every chat must be attempted, got %v", ids)
	}
}

func TestFonnteSend(t *testing.T) {
	gw, srv := newGateway(t)
	c := NewFonnteClient("secret", srv.URL, srv.Client())
	if err := c.Send(context.Background(), "62812", "tagihan"); err != nil {
		t.Fatalf("send: %v", err)
	}
	got := gw.reqs[0]
	if got.path != "/send" || got.auth != "secret" || got.fields["target"] != "62812" || got.fields["message"] != "tagihan" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestRouterNotify(t *testing.T) {
	tests := []struct {
		name         string
		kind         core.NotificationKind
		wantTelegram int
		wantWhatsApp int
	}{
		{"bill reminder goes everywhere", core.NotifyBillReminder, 2, 1},
		{"auto debit goes to telegram", core.NotifyAutoDebit, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg, tgSrv := newGateway(t)
			wa, waSrv := newGateway(t)
			r := &Router{
				Telegram:       NewTelegramClient("T", tgSrv.URL, tgSrv.Client()),
				TelegramChats:  []string{"1", "2"},
				WhatsApp:       NewFonnteClient("F", waSrv.URL, waSrv.Client()),
				WhatsAppTarget: "62812",
			}
			if err := r.Notify(context.Background(), core.Notification{Kind: tt.kind, Text: "x"}); err != nil {
				t.Fatalf("notify: %v", err)
			}
			if len(tg.reqs) != tt.wantTelegram || len(wa.reqs) != tt.wantWhatsApp {
				t.Fatalf("telegram=%d whatsapp=%d", len(tg.reqs), len(wa.reqs))
			}
		})
	}
}

func TestRouterKeepsGoingAfterFailure(t *testing.T) {
	tg, tgSrv := newGateway(t, "1")
	wa, waSrv := newGateway(t)
	r := &Router{
		Telegram:       NewTelegramClient("T", tgSrv.URL, tgSrv.Client()),
		TelegramChats:  []string{"1"},
		WhatsApp:       NewFonnteClient("F", waSrv.URL, waSrv.Client()),
		WhatsAppTarget: "62812",
	}
	err := r.Notify(context.Background(), core.Notification{Kind: core.NotifyBillReminder, Text: "x"})
	if err == nil {
		t.Fatal("expected telegram failure to surface")
	}
	if len(tg.reqs) != 1 || len(wa.reqs) != 1 {
		t.Fatalf("whatsapp must still be attempted: telegram=%d whatsapp=%d", len(tg.reqs), len(wa.reqs))
	}
}

func TestRouterSkipsUnconfigured(t *testing.T) {
	if err := (&Router{}).Notify(context.Background(), core.Notification{Kind: core.NotifyBillReminder, Text: "x"}); err != nil {
		t.Fatalf("empty router should be a no-op, got %v", err)
	}
}

type recordingPublisher struct {
	got []core.Notification
	err error
}

func (p *recordingPublisher) PublishNotification(_ context.Context, n core.Notification) error {
	p.got = append(p.got, n)
	return p.err
}

func TestQueueNotifier(t *testing.T) {
	pub := &recordingPublisher{}
	q := &QueueNotifier{Publisher: pub}
	n := core.Notification{Kind: core.NotifyAutoDebit, Text: "Netflix"}
	if err := q.Notify(context.Background(), n); err != nil || len(pub.got) != 1 || pub.got[0] != n {
		t.Fatalf("unexpected publish: %v %+v", err, pub.got)
	}

	pub.err = errors.New("broker down")
	if err := q.Notify(context.Background(), n); err == nil {
		t.Fatal("publish error must surface")
	}
}

func TestSplitChatIDs(t *testing.T) {
	if got := SplitChatIDs(" 1, 2,,3 "); strings.Join(got, "|") != "1|2|3" {
		t.Fatalf("SplitChatIDs = %v", got)
	}
}
