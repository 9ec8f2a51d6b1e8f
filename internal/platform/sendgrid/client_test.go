package sendgrid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/httpx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

func newTestClient(t *testing.T, url string) *client {
	t.Helper()
	c, err := New(logger.Nop(), Config{APIKey: "k", BaseURL: url, DefaultFromEmail: "noreply@skilledup.test", MaxRetries: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	impl := c.(*client)
	impl.api.Sleep = func(context.Context, time.Duration) error { return nil }
	return impl
}

func TestSend_RetriesOnServerError(t *testing.T) {
	var calls int32
	var got mailSend
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("authorization header: got=%q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("X-Message-Id", "m-1")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	res, err := newTestClient(t, srv.URL).Send(context.Background(), SendEmailRequest{
		To:      []EmailAddress{{Email: "a@b.test"}},
		Subject: "New Task Unlocked",
		Text:    "body",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls: want=2 got=%d", calls)
	}
	if res.MessageID != "m-1" || res.StatusCode != http.StatusAccepted {
		t.Fatalf("result: got=%+v", res)
	}
	if got.From.Email != "noreply@skilledup.test" || got.From.Name != "" {
		t.Fatalf("from: got=%+v", got.From)
	}
}

func TestSend_NoRetryOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad to"}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Send(context.Background(), SendEmailRequest{
		To:      []EmailAddress{{Email: "a@b.test"}},
		Subject: "s",
		Text:    "b",
	})
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusBadRequest || he.Error() != "sendgrid http 400: bad to" {
		t.Fatalf("err: got=%v", err)
	}
	if calls != 1 {
		t.Fatalf("calls: want=1 got=%d", calls)
	}
}

func TestSend_Validation(t *testing.T) {
	c := newTestClient(t, "http://unused")
	if _, err := c.Send(context.Background(), SendEmailRequest{Subject: "s", Text: "b"}); err == nil {
		t.Fatalf("missing To should fail")
	}
	if _, err := c.Send(context.Background(), SendEmailRequest{To: []EmailAddress{{Email: "a@b"}}, Subject: "s"}); err == nil {
		t.Fatalf("missing content should fail")
	}
}

func TestSend_ExhaustedRetriesAreUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Send(context.Background(), SendEmailRequest{
		To:      []EmailAddress{{Email: "a@b.test"}},
		Subject: "Deadline Approaching",
		HTML:    "<p>b</p>",
	})
	if !errors.Is(err, httpx.ErrUpstreamUnavailable) {
		t.Fatalf("err: want upstream unavailable got=%v", err)
	}
}
