package webserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"f1livebot/pkg/caster"
	"f1livebot/pkg/model"
	"f1livebot/pkg/pubsub"

	"github.com/gorilla/websocket"
)

func publish(t *testing.T, feed *pubsub.PubSub[string], lb model.LiveLeaderboard) string {
	t.Helper()
	payload, err := caster.JSONChannelCaster[model.LiveLeaderboard]{}.To(lb)
	if err != nil {
		t.Fatal(err)
	}
	feed.Publish(pubsub.TopicLeaderboard, payload)
	return payload
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func TestLeaderboardRoute(t *testing.T) {
	feed := pubsub.NewPubSub[string]()
	srv := httptest.NewServer(NewManager("", feed).Router())
	defer srv.Close()

	if code, _ := get(t, srv.URL+"/leaderboard"); code != http.StatusServiceUnavailable {
		t.Errorf("before first tick: status = %d", code)
	}

	publish(t, feed, model.LiveLeaderboard{Text: "🥇Max Verstappen (1)"})
	code, body := get(t, srv.URL+"/leaderboard")
	if code != http.StatusOK || body != "🥇Max Verstappen (1)" {
		t.Errorf("leaderboard = %d %q", code, body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := httptest.NewServer(NewManager("", pubsub.NewPubSub[string]()).Router())
	defer srv.Close()

	if code, body := get(t, srv.URL+"/healthz"); code != http.StatusOK || body != "ok" {
		t.Errorf("healthz = %d %q", code, body)
	}
	if code, body := get(t, srv.URL+"/metrics"); code != http.StatusOK || !strings.Contains(body, "go_goroutines") {
		t.Errorf("metrics = %d", code)
	}
}

func TestWebsocketStream(t *testing.T) {
	feed := pubsub.NewPubSub[string]()
	first := publish(t, feed, model.LiveLeaderboard{Tick: "1"})

	srv := httptest.NewServer(NewManager("", feed).Router())
	defer srv.Close()

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	_ = c.SetReadDeadline(time.Now().Add(5 * time.Second))

	_, msg, err := c.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if string(msg) != first {
		t.Errorf("first message = %s, want %s", msg, first)
	}

	second := publish(t, feed, model.LiveLeaderboard{Tick: "2"})
	_, msg, err = c.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if string(msg) != second {
		t.Errorf("second message = %s, want %s", msg, second)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	m := NewManager("127.0.0.1:0", pubsub.NewPubSub[string]())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
