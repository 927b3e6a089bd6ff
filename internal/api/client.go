// Package api provides a typed HTTP client for the Atlas backend.
// Every call attaches the bearer token from the cookie store, honors the
// caller's context, and surfaces non-2xx responses as *Error. No call is
// retried; retry policy belongs to the user, not the client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/BridgeTech-DC/AtlasAI/internal/cookies"
	"github.com/BridgeTech-DC/AtlasAI/internal/models"
)

// TokenSource supplies and receives the Authorization cookie value.
// *cookies.Store satisfies it.
type TokenSource interface {
	Get(name string) (string, error)
	Set(name, value string) error
	Delete(name string) error
}

// Error is a non-2xx response from the backend
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Body)
}

// Client is the typed API client for the Atlas backend
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  zerolog.Logger
}

// New creates an API client rooted at baseURL
func New(baseURL string, httpClient *http.Client, tokens TokenSource, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		logger:  logger,
	}
}

// CreateConversation creates a new conversation and returns its handle
func (c *Client) CreateConversation(ctx context.Context) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := c.do(ctx, http.MethodPost, "/api/v1/ai/conversations", nil, nil, &conversation); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return &conversation, nil
}

// ListConversations fetches one page of conversation summaries, newest first
func (c *Client) ListConversations(ctx context.Context, skip, limit int) ([]models.Conversation, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var conversations []models.Conversation
	if err := c.do(ctx, http.MethodGet, "/api/v1/ai/conversations/", query, nil, &conversations); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return conversations, nil
}

// ListMessages fetches the full message list of a conversation in order
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	path := fmt.Sprintf("/api/v1/ai/conversations/%s/messages", conversationID)

	var messages []models.Message
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &messages); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// GenerateTitle asks the backend to derive a conversation title from the first message
func (c *Client) GenerateTitle(ctx context.Context, conversationID, messageContent string) (string, error) {
	path := fmt.Sprintf("/api/v1/ai/conversations/%s/generate-title", conversationID)
	query := url.Values{}
	query.Set("message_content", messageContent)

	var title models.TitleResponse
	if err := c.do(ctx, http.MethodPost, path, query, nil, &title); err != nil {
		return "", fmt.Errorf("generate title: %w", err)
	}
	return title.Title, nil
}

// Respond sends a prompt and returns the assistant's reply
func (c *Client) Respond(ctx context.Context, prompt, conversationID string) (string, error) {
	body := models.PromptRequest{Prompt: prompt, ConversationID: conversationID}

	var response models.AIResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/ai/respond", nil, body, &response); err != nil {
		return "", fmt.Errorf("respond: %w", err)
	}
	return response.Response, nil
}

// DraftEmail asks the backend to draft an email from a natural-language prompt.
// The conversation id travels as a query parameter; the body carries only the
// prompt, matching the backend's route signature.
func (c *Client) DraftEmail(ctx context.Context, userPrompt, conversationID string) (*models.DraftEmailResponse, error) {
	query := url.Values{}
	query.Set("conversation_id", conversationID)
	body := models.DraftEmailRequest{UserPrompt: userPrompt}

	var draft models.DraftEmailResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/gmail/draft", query, body, &draft); err != nil {
		return nil, fmt.Errorf("draft email: %w", err)
	}
	return &draft, nil
}

// SearchContacts resolves recipient names against the user's contacts
func (c *Client) SearchContacts(ctx context.Context, recipientNames []string) ([]models.Contact, error) {
	body := models.ContactSearchRequest{RecipientName: recipientNames}

	var response models.ContactSearchResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/gmail/search_contacts", nil, body, &response); err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	return response.SuggestedRecipients, nil
}

// SendEmail sends a drafted email. The draft and conversation ids travel as
// query parameters as correlation keys for the backend.
func (c *Client) SendEmail(ctx context.Context, emailDraftID int, conversationID string, req models.SendEmailRequest) error {
	query := url.Values{}
	query.Set("email_draft_id", strconv.Itoa(emailDraftID))
	query.Set("conversation_id", conversationID)
	req.ConversationID = conversationID

	if err := c.do(ctx, http.MethodPost, "/api/v1/gmail/send", query, req, nil); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// ListSentEmails fetches the sent-email history of a conversation
func (c *Client) ListSentEmails(ctx context.Context, conversationID string) ([]models.SentEmail, error) {
	path := fmt.Sprintf("/api/v1/ai/conversations/%s/sent-emails", conversationID)

	var sent []models.SentEmail
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &sent); err != nil {
		return nil, fmt.Errorf("list sent emails: %w", err)
	}
	return sent, nil
}

// RefreshToken rotates the bearer token and overwrites the Authorization cookie
func (c *Client) RefreshToken(ctx context.Context) error {
	var token models.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/jwt/refresh", nil, nil, &token); err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	if err := c.tokens.Set(cookies.AuthCookieName, "Bearer "+token.AccessToken); err != nil {
		return fmt.Errorf("store refreshed token: %w", err)
	}
	return nil
}

// CurrentUser fetches the authenticated user's profile
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/user", nil, nil, &user); err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return &user, nil
}

// Logout ends the backend session and clears the Authorization cookie
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if err := c.tokens.Delete(cookies.AuthCookieName); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// SelectPersona sets the active assistant persona
func (c *Client) SelectPersona(ctx context.Context, personaID int) error {
	path := fmt.Sprintf("/api/v1/personas/select/%d", personaID)
	if err := c.do(ctx, http.MethodPost, path, nil, nil, nil); err != nil {
		return fmt.Errorf("select persona: %w", err)
	}
	return nil
}

// UploadProfilePicture uploads a new profile picture and returns its URL
func (c *Client) UploadProfilePicture(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open picture: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("read picture: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/auth/upload-profile-picture", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload picture: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.asError(resp)
	}

	var upload models.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return upload.ProfileImageURL, nil
}

// do performs a JSON request against the backend and decodes the response into out.
// A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.asError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// setAuthHeader copies the cookie token into the Authorization header.
// A missing cookie sends no header; the backend answers 401 and the caller
// surfaces it like any other failure.
func (c *Client) setAuthHeader(req *http.Request) {
	token, err := c.tokens.Get(cookies.AuthCookieName)
	if err != nil {
		c.logger.Debug().Str("path", req.URL.Path).Msg("no auth cookie, sending unauthenticated request")
		return
	}
	req.Header.Set("Authorization", token)
}

// asError drains the response body into an *Error
func (c *Client) asError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
}
