package notify

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remindful/remindful/internal/push"
)

// newTestKeys generates a browser-side key pair the way a real subscription
// would, so the library can encrypt payloads against it.
func newTestKeys(t *testing.T) (p256dh, auth string) {
	t.Helper()

	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	authBytes := make([]byte, 16)
	_, err = rand.Read(authBytes)
	require.NoError(t, err)

	return base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		base64.RawURLEncoding.EncodeToString(authBytes)
}

func newWebPushFixture(t *testing.T, handler http.Handler) (*WebPushTransport, *push.InMemoryRepository, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	privKey, pubKey, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)

	repo := push.NewInMemoryRepository()
	transport := NewWebPush(repo, WebPushConfig{
		Subscriber:      "mailto:ops@example.com",
		VAPIDPublicKey:  pubKey,
		VAPIDPrivateKey: privKey,
	}, zerolog.Nop())
	return transport, repo, server
}

func subscribe(t *testing.T, repo *push.InMemoryRepository, endpoint string) {
	t.Helper()

	p256dh, auth := newTestKeys(t)
	require.NoError(t, repo.Save(context.Background(), &push.Subscription{
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	}))
}

func TestWebPush_FanOutIsolatesFailures(t *testing.T) {
	// The middle endpoint fails with a server error; the other two must
	// still receive the payload.
	mux := http.NewServeMux()
	var delivered []string
	mux.HandleFunc("/ok/", func(w http.ResponseWriter, r *http.Request) {
		delivered = append(delivered, r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	transport, repo, server := newWebPushFixture(t, mux)
	subscribe(t, repo, server.URL+"/ok/first")
	subscribe(t, repo, server.URL+"/broken")
	subscribe(t, repo, server.URL+"/ok/third")

	results := transport.Send(context.Background(), Notification{Title: "due", Body: "now"})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.ElementsMatch(t, []string{"/ok/first", "/ok/third"}, delivered)
}

func TestWebPush_PrunesGoneEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	transport, repo, server := newWebPushFixture(t, mux)
	subscribe(t, repo, server.URL+"/gone")
	subscribe(t, repo, server.URL+"/live")

	results := transport.Send(context.Background(), Notification{Title: "due", Body: "now"})

	require.Len(t, results, 2)
	assert.True(t, results[0].Pruned)
	assert.NoError(t, results[0].Err, "a pruned endpoint is not a delivery error")
	assert.False(t, results[1].Pruned)

	remaining, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, server.URL+"/live", remaining[0].Endpoint)
}

func TestWebPush_NoSubscribersIsNoop(t *testing.T) {
	transport, _, _ := newWebPushFixture(t, http.NotFoundHandler())

	results := transport.Send(context.Background(), Notification{Title: "due", Body: "now"})
	assert.Empty(t, results)
}
