package repl

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BridgeTech-DC/AtlasAI/internal/api"
	"github.com/BridgeTech-DC/AtlasAI/internal/cookies"
	"github.com/BridgeTech-DC/AtlasAI/internal/email"
	"github.com/BridgeTech-DC/AtlasAI/internal/models"
	"github.com/BridgeTech-DC/AtlasAI/internal/session"
	"github.com/BridgeTech-DC/AtlasAI/internal/view"
)

const testConversationID = "7b59a0e5-9c7e-4a4f-9a46-8f22e76f5a10"

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/ai/conversations", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.Conversation{ID: testConversationID})
	})
	mux.HandleFunc("GET /api/v1/ai/conversations/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]models.Conversation{{ID: testConversationID, Title: "Planning"}})
	})
	mux.HandleFunc("GET /api/v1/ai/conversations/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]models.Message{})
	})
	mux.HandleFunc("GET /api/v1/ai/conversations/{id}/sent-emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]models.SentEmail{})
	})
	mux.HandleFunc("POST /api/v1/ai/conversations/{id}/generate-title", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.TitleResponse{Title: "t"})
	})
	mux.HandleFunc("POST /api/v1/ai/respond", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.AIResponse{Response: "hello there"})
	})
	mux.HandleFunc("POST /api/v1/gmail/draft", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.DraftEmailResponse{
			Draft:          models.EmailDraft{EmailDraftID: 42, DraftedSubject: "Q3", DraftedBody: "Hi Alice"},
			RecipientNames: []string{"Alice"},
		})
	})
	mux.HandleFunc("POST /api/v1/gmail/search_contacts", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.ContactSearchResponse{
			SuggestedRecipients: []models.Contact{{Name: "Alice Smith", Email: "alice@co.com"}},
		})
	})
	mux.HandleFunc("POST /api/v1/gmail/send", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/v1/auth/user", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.User{GoogleUsername: "Jess", Email: "jess@co.com"})
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	store, err := cookies.NewStore(filepath.Join(t.TempDir(), "cookies"))
	require.NoError(t, err)
	require.NoError(t, store.Set(cookies.AuthCookieName, "Bearer t"))

	state := view.NewState()
	client := api.New(server.URL, server.Client(), store, zerolog.Nop())
	sess := session.New(client, state, 10, zerolog.Nop())
	workflow := email.NewWorkflow(client, sess, state, zerolog.Nop())

	var out bytes.Buffer
	return NewApp(client, sess, workflow, state, &out, zerolog.Nop()), &out
}

func TestExecute_ChatMessage(t *testing.T) {
	app, out := newTestApp(t)

	quit := app.Execute(context.Background(), "hi there")
	assert.False(t, quit)
	assert.Contains(t, out.String(), "You: hi there")
	assert.Contains(t, out.String(), "Atlas: hello there")
}

func TestExecute_History(t *testing.T) {
	app, out := newTestApp(t)

	app.Execute(context.Background(), "history")
	assert.Contains(t, out.String(), "1. Planning")
}

func TestExecute_OpenByNumber(t *testing.T) {
	app, out := newTestApp(t)
	ctx := context.Background()

	app.Execute(ctx, "history")
	app.Execute(ctx, "open 1")
	assert.Equal(t, testConversationID, app.session.ConversationID())
	assert.NotContains(t, out.String(), "Something went wrong")
}

func TestExecute_EmailFlow(t *testing.T) {
	app, out := newTestApp(t)
	ctx := context.Background()

	app.Execute(ctx, "email Email Alice about the Q3 report")
	assert.Contains(t, out.String(), "Subject: Q3")
	assert.Contains(t, out.String(), "Alice Smith")

	app.Execute(ctx, "pick 1")
	app.Execute(ctx, "confirm")
	assert.Contains(t, out.String(), "Type 'send' to send this email.")

	app.Execute(ctx, "send")
	assert.Contains(t, out.String(), "Email sent successfully!")
}

func TestExecute_RegenerateWithoutDraft(t *testing.T) {
	app, out := newTestApp(t)

	app.Execute(context.Background(), "regen")
	assert.Contains(t, out.String(), "no AI response to regenerate")
}

func TestExecute_ConfirmInvalidAddress(t *testing.T) {
	app, out := newTestApp(t)

	app.Execute(context.Background(), "to not-an-address")
	app.Execute(context.Background(), "confirm")
	assert.Contains(t, out.String(), "valid email address")
}

func TestExecute_Whoami(t *testing.T) {
	app, out := newTestApp(t)

	app.Execute(context.Background(), "whoami")
	assert.Contains(t, out.String(), "Full Name: Jess")
	assert.Contains(t, out.String(), "Subscription: Free")
}

func TestExecute_Exit(t *testing.T) {
	app, _ := newTestApp(t)
	assert.True(t, app.Execute(context.Background(), "exit"))
	assert.True(t, app.Execute(context.Background(), "quit"))
}

func TestExecute_Logout(t *testing.T) {
	app, out := newTestApp(t)
	ctx := context.Background()

	app.Execute(ctx, "hello")
	require.NotEmpty(t, app.session.ConversationID())

	app.Execute(ctx, "logout")
	assert.Contains(t, out.String(), "Signed out.")
	assert.Empty(t, app.session.ConversationID())
}

func TestExecute_LinkWithoutConversation(t *testing.T) {
	app, out := newTestApp(t)

	app.Execute(context.Background(), "link")
	assert.Contains(t, out.String(), "No active conversation.")
}
