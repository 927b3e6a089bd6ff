// Package models defines the request and response payloads exchanged with the
// Atlas backend API.
package models

import "time"

// Message roles as stored by the backend.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation represents a conversation summary returned by the history endpoint
type Conversation struct {
	ID    string `json:"id"`              // Server-assigned conversation UUID
	Title string `json:"title,omitempty"` // Empty until the first message triggers titling
}

// Message represents a single turn in a conversation
type Message struct {
	ID             int       `json:"id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Role           string    `json:"role"`    // user, assistant or system
	Content        string    `json:"content"` // Plain text or markdown
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// PromptRequest is the body of the /ai/respond endpoint
type PromptRequest struct {
	Prompt         string `json:"prompt"`
	ConversationID string `json:"conversation_id"`
}

// AIResponse is the assistant's reply to a prompt
type AIResponse struct {
	Response string `json:"response"` // Markdown-formatted assistant reply
}

// TitleResponse is returned by the generate-title endpoint
type TitleResponse struct {
	Title string `json:"title"`
}

// DraftEmailRequest is the body of the /gmail/draft endpoint
type DraftEmailRequest struct {
	UserPrompt string `json:"user_prompt"`
}

// EmailDraft is the drafted subject/body pair with its server-assigned id
type EmailDraft struct {
	EmailDraftID   int    `json:"email_draft_id"`
	DraftedSubject string `json:"drafted_subject"`
	DraftedBody    string `json:"drafted_body"` // Markdown
}

// DraftEmailResponse bundles the draft with the recipient names the backend
// extracted from the prompt
type DraftEmailResponse struct {
	Draft          EmailDraft `json:"draft"`
	RecipientNames []string   `json:"recipient_names"`
}

// ContactSearchRequest asks the backend to resolve names against the user's contacts
type ContactSearchRequest struct {
	RecipientName []string `json:"recipient_name"`
}

// Contact is a suggested recipient matched from the user's address book
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ContactSearchResponse lists the matched contacts
type ContactSearchResponse struct {
	SuggestedRecipients []Contact `json:"suggested_recipients"`
}

// SendEmailRequest is the body of the /gmail/send endpoint
type SendEmailRequest struct {
	To             string `json:"to"`
	Subject        string `json:"subject"`
	MessageBody    string `json:"message_body"`
	ConversationID string `json:"conversation_id"`
}

// SentEmail is a historical record of an email sent from a conversation
type SentEmail struct {
	RecipientEmail string         `json:"recipient_email"`
	EmailDraft     SentEmailDraft `json:"email_draft"`
	SentAt         time.Time      `json:"sent_at"`
}

// SentEmailDraft is the subject/body of a previously sent email
type SentEmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// TokenResponse is returned by the JWT refresh endpoint
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// User represents the authenticated user's profile
type User struct {
	Email           string    `json:"email"`
	GoogleUsername  string    `json:"google_username"`
	ProfileImageURL string    `json:"profile_image_url"`
	Subscription    string    `json:"subscription,omitempty"` // Empty means Free
	CreatedAt       time.Time `json:"created_at"`
}

// UploadResponse is returned after a profile picture upload
type UploadResponse struct {
	ProfileImageURL string `json:"profile_image_url"`
}
