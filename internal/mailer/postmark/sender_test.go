package postmark_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/po-followup-mailer/internal/mailer"
	"github.com/ginjaninja78/po-followup-mailer/internal/mailer/postmark"
)

// recorder is a fake Postmark API that keeps every decoded request body.
type recorder struct {
	mu     sync.Mutex
	bodies []map[string]any
	tokens []string
	status int
}

func newServer(t *testing.T, status int) (*httptest.Server, *recorder) {
	t.Helper()

	rec := &recorder{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/email", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		rec.mu.Lock()
		rec.bodies = append(rec.bodies, body)
		rec.tokens = append(rec.tokens, r.Header.Get("X-Postmark-Server-Token"))
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rec.status)
		if rec.status >= http.StatusBadRequest {
			_, _ = w.Write([]byte(`{"ErrorCode":300,"Message":"Invalid email request"}`))
			return
		}
		_, _ = w.Write([]byte(`{"To":"acme@example.com","MessageID":"abc","ErrorCode":0,"Message":"OK"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newSender(t *testing.T, baseURL string, mutate func(*postmark.Config)) *postmark.Sender {
	t.Helper()

	cfg := postmark.Config{
		ServerToken: "server-token",
		From:        "purchasing@example.com",
		ReplyTo:     "buyer@example.com",
		Tag:         "po-followup",
		BaseURL:     baseURL,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := postmark.New(cfg)
	require.NoError(t, err)
	return s
}

func message(cc ...string) *mailer.Message {
	return &mailer.Message{
		To:      "acme@example.com",
		Subject: "Delivery Follow-up",
		HTML:    "<p>Hello</p>",
		CC:      cc,
		Headers: map[string]string{"X-Followup-Run-ID": "run-1"},
	}
}

func TestSend_JoinsCCWithCommas(t *testing.T) {
	t.Parallel()

	srv, rec := newServer(t, http.StatusOK)
	s := newSender(t, srv.URL, nil)

	require.NoError(t, s.Send(context.Background(), message("a@x.com", "b@x.com")))

	require.Len(t, rec.bodies, 1)
	body := rec.bodies[0]
	assert.Equal(t, "a@x.com,b@x.com", body["Cc"])
	assert.Equal(t, "acme@example.com", body["To"])
	assert.Equal(t, "purchasing@example.com", body["From"])
	assert.Equal(t, "buyer@example.com", body["ReplyTo"])
	assert.Equal(t, "po-followup", body["Tag"])
	assert.Equal(t, "<p>Hello</p>", body["HtmlBody"])
	assert.Equal(t, "server-token", rec.tokens[0])

	headers, ok := body["Headers"].([]any)
	require.True(t, ok)
	require.Len(t, headers, 1)
	assert.Equal(t, map[string]any{"Name": "X-Followup-Run-ID", "Value": "run-1"}, headers[0])
}

func TestSend_OmitsEmptyCCAndTracking(t *testing.T) {
	t.Parallel()

	srv, rec := newServer(t, http.StatusOK)
	s := newSender(t, srv.URL, nil)

	require.NoError(t, s.Send(context.Background(), message()))

	require.Len(t, rec.bodies, 1)
	body := rec.bodies[0]
	assert.NotContains(t, body, "Cc")
	assert.NotContains(t, body, "TrackOpens")
	assert.NotContains(t, body, "TrackLinks")
}

func TestSend_TrackingWhenEnabled(t *testing.T) {
	t.Parallel()

	srv, rec := newServer(t, http.StatusOK)
	s := newSender(t, srv.URL, func(c *postmark.Config) {
		c.TrackOpens = true
		c.TrackLinks = postmark.TrackLinksHTMLOnly
	})

	require.NoError(t, s.Send(context.Background(), message()))

	require.Len(t, rec.bodies, 1)
	assert.Equal(t, true, rec.bodies[0]["TrackOpens"])
	assert.Equal(t, "HtmlOnly", rec.bodies[0]["TrackLinks"])
}

func TestSend_APIError(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, http.StatusUnprocessableEntity)
	s := newSender(t, srv.URL, nil)

	err := s.Send(context.Background(), message())
	require.Error(t, err)
	assert.ErrorIs(t, err, mailer.ErrSendFailed)
}

func TestSend_InvalidMessage(t *testing.T) {
	t.Parallel()

	srv, rec := newServer(t, http.StatusOK)
	s := newSender(t, srv.URL, nil)

	err := s.Send(context.Background(), &mailer.Message{Subject: "x", HTML: "<p>x</p>"})
	assert.ErrorIs(t, err, mailer.ErrNoRecipient)
	assert.Empty(t, rec.bodies)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := postmark.New(postmark.Config{From: "purchasing@example.com"})
	assert.ErrorIs(t, err, mailer.ErrInvalidConfig)

	_, err = postmark.New(postmark.Config{ServerToken: "server"})
	assert.ErrorIs(t, err, mailer.ErrInvalidConfig)

	_, err = postmark.New(postmark.Config{ServerToken: "server", From: "p@example.com", TrackLinks: "Always"})
	assert.ErrorIs(t, err, mailer.ErrInvalidConfig)

	_, err = postmark.New(postmark.Config{ServerToken: "server", From: "p@example.com"})
	assert.NoError(t, err)
}
