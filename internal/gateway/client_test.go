package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonDecode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// rewriteTransport redirects every request to a local test server while
// keeping the request path intact.
type rewriteTransport struct {
	target *url.URL
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

type fakeSessions struct {
	signedIn     bool
	client       *http.Client
	refreshCalls atomic.Int32
	refreshErr   error
}

func (f *fakeSessions) IsSignedIn() bool { return f.signedIn }

func (f *fakeSessions) HTTPClient(ctx context.Context) *http.Client {
	if f.client != nil {
		return f.client
	}
	return http.DefaultClient
}

func (f *fakeSessions) Refresh(ctx context.Context) error {
	f.refreshCalls.Add(1)
	return f.refreshErr
}

func newTestGateway(t *testing.T, handler http.Handler) (*Gateway, *fakeSessions) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	target, err := url.Parse(server.URL)
	require.NoError(t, err)

	sessions := &fakeSessions{
		signedIn: true,
		client:   &http.Client{Transport: &rewriteTransport{target: target}},
	}
	return New(sessions), sessions
}

func TestGatewayRequiresSession(t *testing.T) {
	g := New(&fakeSessions{signedIn: false})
	ctx := context.Background()

	_, err := g.ListMessages(ctx, TypeInbox, 10)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	assert.ErrorIs(t, g.SendMessage(ctx, "to@example.com", "s", "b", nil), ErrNotAuthenticated)
	assert.ErrorIs(t, g.SetStarred(ctx, "id", true), ErrNotAuthenticated)
	assert.ErrorIs(t, g.Trash(ctx, "id"), ErrNotAuthenticated)
	assert.ErrorIs(t, g.DeletePermanently(ctx, "id"), ErrNotAuthenticated)
}

func TestSendMessage_RequiresRecipient(t *testing.T) {
	g := New(&fakeSessions{signedIn: true})

	err := g.SendMessage(context.Background(), "  ", "subject", "body", nil)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
}

func TestListMessages_EmptyFolder(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"resultSizeEstimate": 0}`))
	}))

	emails, err := g.ListMessages(context.Background(), TypeInbox, 10)
	require.NoError(t, err)
	require.NotNil(t, emails)
	assert.Empty(t, emails)
}

func TestSearch_PassesQueryThrough(t *testing.T) {
	var gotQuery string
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"resultSizeEstimate": 0}`))
	}))

	emails, err := g.Search(context.Background(), "from:alice has:attachment", 5)
	require.NoError(t, err)
	assert.Empty(t, emails)
	assert.Equal(t, "from:alice has:attachment", gotQuery)
}

func TestListMessages_FetchesAndSorts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages": [{"id": "old"}, {"id": "new"}]}`))
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/old", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "old",
			"labelIds": ["INBOX"],
			"payload": {"headers": [
				{"name": "From", "value": "a@example.com"},
				{"name": "Subject", "value": "Older"},
				{"name": "Date", "value": "Mon, 01 Jan 2024 10:00:00 +0000"}
			]}
		}`))
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "new",
			"labelIds": ["INBOX"],
			"payload": {"headers": [
				{"name": "From", "value": "b@example.com"},
				{"name": "Subject", "value": "Newer"},
				{"name": "Date", "value": "Tue, 02 Jan 2024 10:00:00 +0000"}
			]}
		}`))
	})

	g, _ := newTestGateway(t, mux)

	emails, err := g.ListMessages(context.Background(), TypeInbox, 10)
	require.NoError(t, err)
	require.Len(t, emails, 2)

	assert.Equal(t, "new", emails[0].ID, "newest message should sort first")
	assert.Equal(t, "old", emails[1].ID)
}

func TestListMessages_FailsWholeJoinOnFetchError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages": [{"id": "ok"}, {"id": "broken"}]}`))
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "ok", "payload": {"headers": []}}`))
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/broken", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"code": 500, "message": "backend error"}}`))
	})

	g, _ := newTestGateway(t, mux)

	_, err := g.ListMessages(context.Background(), TypeInbox, 10)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "getMessage", fetchErr.Op)
}

func TestRetryAfterCredentialRejection(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages/stale/trash", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": {"code": 401, "message": "Invalid Credentials"}}`))
			return
		}
		w.Write([]byte(`{"id": "stale"}`))
	})

	g, sessions := newTestGateway(t, mux)

	err := g.Trash(context.Background(), "stale")
	require.NoError(t, err)

	assert.Equal(t, int32(1), sessions.refreshCalls.Load(), "expected exactly one refresh")
	assert.Equal(t, int32(2), calls.Load(), "expected exactly one retry")
}

func TestNoRetryWhenRefreshFails(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages/stale/trash", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"code": 401, "message": "Invalid Credentials"}}`))
	})

	g, sessions := newTestGateway(t, mux)
	sessions.refreshErr = errors.New("refresh token revoked")

	err := g.Trash(context.Background(), "stale")
	require.Error(t, err)

	assert.Equal(t, int32(1), sessions.refreshCalls.Load())
	assert.Equal(t, int32(1), calls.Load(), "failed refresh must not trigger a retry")
}

func TestRetryHappensAtMostOnce(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages/stale/trash", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"code": 401, "message": "Invalid Credentials"}}`))
	})

	g, sessions := newTestGateway(t, mux)

	err := g.Trash(context.Background(), "stale")
	require.Error(t, err)

	assert.Equal(t, int32(1), sessions.refreshCalls.Load())
	assert.Equal(t, int32(2), calls.Load(), "persistent rejection stops after one retry")
}

func TestSendMessage_Success(t *testing.T) {
	var gotRaw string
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages/send", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Raw string `json:"raw"`
		}
		if err := jsonDecode(r, &body); err == nil {
			gotRaw = body.Raw
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "sent-1"}`))
	})

	g, _ := newTestGateway(t, mux)

	err := g.SendMessage(context.Background(), "to@example.com", "Hello", "Body", nil)
	require.NoError(t, err)

	require.NotEmpty(t, gotRaw)
	assert.False(t, strings.ContainsAny(gotRaw, "+/="), "raw payload must use the base64url alphabet")
}
