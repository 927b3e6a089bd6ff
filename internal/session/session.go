// Package session owns the lifecycle of the active conversation: bootstrap,
// message exchange, history browsing, credential refresh and deep-link
// restoration.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BridgeTech-DC/AtlasAI/internal/api"
	"github.com/BridgeTech-DC/AtlasAI/internal/models"
	"github.com/BridgeTech-DC/AtlasAI/internal/view"
)

// Phase tracks the conversation bootstrap state machine:
// NONE -> CREATING -> ACTIVE, back to NONE on a failed create.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseCreating
	PhaseActive
)

var (
	// ErrBusy means a request of the same action class is already in flight.
	ErrBusy = errors.New("request already in flight")
	// ErrNoConversation means an operation needs a conversation that could not be resolved.
	ErrNoConversation = errors.New("no active conversation")
)

// In-flight action classes. One request per class at a time.
const (
	actionCreate = "create-conversation"
	actionSend   = "send-message"
)

// Controller drives the conversation session against the backend.
// All state is owned by the controller instance; nothing is package-global,
// so independent sessions can coexist.
type Controller struct {
	api    *api.Client
	logger zerolog.Logger
	state  *view.State

	mu             sync.Mutex
	conversationID string
	phase          Phase
	page           int
	pageSize       int
	inflight       map[string]bool
}

// New creates a session controller rendering into state.
func New(client *api.Client, state *view.State, pageSize int, logger zerolog.Logger) *Controller {
	return &Controller{
		api:      client,
		logger:   logger,
		state:    state,
		pageSize: pageSize,
		inflight: make(map[string]bool),
	}
}

// ConversationID returns the current conversation id, empty when none is active.
func (c *Controller) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// Phase returns the bootstrap phase of the current conversation.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// begin marks an action class as in flight. Returns ErrBusy when a request of
// the same class has not finished yet, making duplicate submission impossible.
func (c *Controller) begin(action string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[action] {
		return ErrBusy
	}
	c.inflight[action] = true
	return nil
}

func (c *Controller) end(action string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, action)
}

// GetOrCreateConversation returns the held conversation id, creating one on
// the backend when none is active. A second call without an intervening reset
// is a no-op returning the same id. On failure the id stays unset and callers
// must not proceed to dependent calls.
func (c *Controller) GetOrCreateConversation(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.conversationID != "" {
		id := c.conversationID
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	if err := c.begin(actionCreate); err != nil {
		return "", err
	}
	defer c.end(actionCreate)

	c.setPhase(PhaseCreating)
	conversation, err := c.api.CreateConversation(ctx)
	if err != nil {
		c.setPhase(PhaseNone)
		c.logger.Error().Err(err).Msg("failed to create conversation")
		return "", err
	}

	c.adopt(conversation.ID)
	c.state.Transcript.Clear()
	c.state.Transcript.Append(view.Entry{Role: view.LabelSystem, Content: "New conversation started."})
	c.state.InputVisible = true
	c.logger.Info().Str("conversation_id", conversation.ID).Msg("new conversation created")
	return conversation.ID, nil
}

// NewConversation discards the current conversation and creates a fresh one.
func (c *Controller) NewConversation(ctx context.Context) (string, error) {
	c.mu.Lock()
	c.conversationID = ""
	c.phase = PhaseNone
	c.mu.Unlock()
	return c.GetOrCreateConversation(ctx)
}

// SendMessage submits a user prompt and appends the assistant's reply.
// The user's entry is appended optimistically before the network call and is
// never rolled back; on failure only the loading marker is removed.
func (c *Controller) SendMessage(ctx context.Context, prompt string) error {
	if err := c.begin(actionSend); err != nil {
		return err
	}
	defer c.end(actionSend)

	conversationID, err := c.GetOrCreateConversation(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoConversation, err)
	}

	c.AutoTitle(ctx, conversationID, prompt)

	c.state.Transcript.Append(view.Entry{Role: view.LabelUser, Content: prompt})
	c.state.Transcript.Loading = true

	reply, err := c.api.Respond(ctx, prompt, conversationID)
	c.state.Transcript.Loading = false
	if err != nil {
		c.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("assistant request failed")
		return err
	}

	c.state.Transcript.Append(view.Entry{Role: view.LabelAssistant, Content: reply, Markdown: true})
	return nil
}

// AutoTitle derives a title from the conversation's first message. Titling is
// best-effort: any failure is logged and never blocks the send.
func (c *Controller) AutoTitle(ctx context.Context, conversationID, content string) {
	messages, err := c.api.ListMessages(ctx, conversationID)
	if err != nil {
		c.logger.Warn().Err(err).Msg("could not check for first message, skipping title")
		return
	}
	if len(messages) > 0 {
		return
	}
	if _, err := c.api.GenerateTitle(ctx, conversationID, content); err != nil {
		c.logger.Warn().Err(err).Msg("failed to generate conversation title")
	}
}

// LoadConversation replaces the current conversation and renders its full
// message list, followed by the conversation's sent-email records.
func (c *Controller) LoadConversation(ctx context.Context, conversationID string) error {
	c.adopt(conversationID)
	c.state.Transcript.Clear()

	messages, err := c.api.ListMessages(ctx, conversationID)
	if err != nil {
		c.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to load conversation")
		return err
	}
	for _, message := range messages {
		c.state.Transcript.Append(entryFor(message))
	}

	c.appendSentEmails(ctx, conversationID)
	c.state.InputVisible = true
	return nil
}

// appendSentEmails fetches historical sent emails and appends them after the
// messages in sent_at order. Failure is logged only; the transcript is still valid.
func (c *Controller) appendSentEmails(ctx context.Context, conversationID string) {
	sent, err := c.api.ListSentEmails(ctx, conversationID)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to load sent emails")
		return
	}
	sort.Slice(sent, func(i, j int) bool { return sent[i].SentAt.Before(sent[j].SentAt) })
	for _, record := range sent {
		c.state.Transcript.Append(view.Entry{
			Role:    view.LabelSystem,
			Content: view.FormatSentEmail(record.RecipientEmail, record.EmailDraft.Subject, record.EmailDraft.Body),
		})
	}
}

// LoadHistory fetches one page of conversation summaries. Page zero replaces
// the list; later pages append, so scrolled-in pages accumulate.
func (c *Controller) LoadHistory(ctx context.Context, page int) error {
	conversations, err := c.api.ListConversations(ctx, page*c.pageSize, c.pageSize)
	if err != nil {
		c.logger.Error().Err(err).Int("page", page).Msg("failed to load conversation history")
		return err
	}

	items := make([]view.HistoryItem, 0, len(conversations))
	for i, conversation := range conversations {
		label := conversation.Title
		if label == "" {
			label = fmt.Sprintf("Conversation %d", page*c.pageSize+i+1)
		}
		items = append(items, view.HistoryItem{ID: conversation.ID, Label: label})
	}

	if page == 0 {
		c.state.History.Replace(items)
	} else {
		c.state.History.Extend(items)
	}

	c.mu.Lock()
	c.page = page
	c.mu.Unlock()
	return nil
}

// NextHistoryPage loads the page after the last one fetched.
func (c *Controller) NextHistoryPage(ctx context.Context) error {
	c.mu.Lock()
	next := c.page + 1
	c.mu.Unlock()
	return c.LoadHistory(ctx, next)
}

// StartTokenRefresh rotates the bearer token on a fixed interval until ctx is
// done. A failed refresh is logged and never disturbs in-flight conversation
// state or forces a sign-out.
func (c *Controller) StartTokenRefresh(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.api.RefreshToken(ctx); err != nil {
					c.logger.Warn().Err(err).Msg("token refresh failed")
					continue
				}
				c.logger.Debug().Msg("token refreshed")
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Restore applies a deep-link query string ("conversation_id=<uuid>"). With a
// valid id the conversation is loaded and the input shown; without one the
// display is cleared and the input hidden.
func (c *Controller) Restore(ctx context.Context, rawQuery string) error {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return fmt.Errorf("parse deep link: %w", err)
	}

	conversationID := values.Get("conversation_id")
	if conversationID == "" {
		c.state.Transcript.Clear()
		c.state.InputVisible = false
		return nil
	}
	if _, err := uuid.Parse(conversationID); err != nil {
		return fmt.Errorf("invalid conversation id %q: %w", conversationID, err)
	}
	return c.LoadConversation(ctx, conversationID)
}

// Location returns the query string that deep-links back to the current
// conversation, empty when none is active.
func (c *Controller) Location() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conversationID == "" {
		return ""
	}
	return "?conversation_id=" + c.conversationID
}

// Reset clears the session after a sign-out.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.conversationID = ""
	c.phase = PhaseNone
	c.page = 0
	c.mu.Unlock()
	c.state.Transcript.Clear()
	c.state.History.Replace(nil)
	c.state.InputVisible = false
	c.state.ResumeLink = ""
}

// adopt switches the controller to the given conversation id.
func (c *Controller) adopt(conversationID string) {
	c.mu.Lock()
	c.conversationID = conversationID
	c.phase = PhaseActive
	c.mu.Unlock()
	c.state.ResumeLink = "?conversation_id=" + conversationID
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// entryFor maps a backend message onto a transcript entry. Assistant and
// persona turns render as markdown, user turns verbatim.
func entryFor(message models.Message) view.Entry {
	switch message.Role {
	case models.RoleUser:
		return view.Entry{Role: view.LabelUser, Content: message.Content}
	case models.RoleSystem:
		return view.Entry{Role: view.LabelSystem, Content: message.Content}
	default:
		return view.Entry{Role: view.LabelAssistant, Content: message.Content, Markdown: true}
	}
}
