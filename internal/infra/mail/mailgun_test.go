package mail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"parish/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailgunSender_PostsFormWithBasicAuth(t *testing.T) {
	var gotPath string
	var gotForm map[string][]string
	var gotUser, gotPass string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		_, _ = w.Write([]byte(`{"id":"<msg@example>","message":"Queued"}`))
	}))
	defer srv.Close()

	sender, err := NewMailgunSender(map[string]any{
		"domain":   "mg.example.com",
		"api_key":  "key-123",
		"base_url": srv.URL,
	})
	require.NoError(t, err)

	err = sender.Send(context.Background(), &service.EmailMessage{
		Subject:    "New prayer request",
		Body:       "Please pray",
		Sender:     "noreply@example.com",
		Recipients: []string{"a@example.com", "b@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/mg.example.com/messages", gotPath)
	assert.Equal(t, "api", gotUser)
	assert.Equal(t, "key-123", gotPass)
	assert.Equal(t, []string{"noreply@example.com"}, gotForm["from"])
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, gotForm["to"])
	assert.Equal(t, []string{"New prayer request"}, gotForm["subject"])
	assert.Equal(t, []string{"Please pray"}, gotForm["text"])
}

func TestMailgunSender_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sender, err := NewMailgunSender(map[string]any{
		"domain":   "mg.example.com",
		"api_key":  "bad",
		"base_url": srv.URL,
	})
	require.NoError(t, err)

	err = sender.Send(context.Background(), &service.EmailMessage{
		Subject:    "x",
		Sender:     "noreply@example.com",
		Recipients: []string{"a@example.com"},
	})
	assert.Error(t, err)
}

func TestNewMailgunSender_RequiresCredentials(t *testing.T) {
	_, err := NewMailgunSender(map[string]any{"domain": "mg.example.com"})
	assert.Error(t, err)
}
