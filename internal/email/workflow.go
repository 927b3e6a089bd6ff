// Package email drives the prompt-to-draft-to-send pipeline: drafting,
// contact resolution, the edit/regenerate loop and the final send.
package email

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/BridgeTech-DC/AtlasAI/internal/api"
	"github.com/BridgeTech-DC/AtlasAI/internal/models"
	"github.com/BridgeTech-DC/AtlasAI/internal/session"
	"github.com/BridgeTech-DC/AtlasAI/internal/view"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	// ErrNoDraft means the operation needs an existing draft.
	ErrNoDraft = errors.New("no email draft to work with")
	// ErrNothingToRegenerate means the draft area holds only the placeholder.
	ErrNothingToRegenerate = errors.New("no AI response to regenerate")
	// ErrNothingToEdit means edit was invoked without a draft body.
	ErrNothingToEdit = errors.New("no AI response to edit")
	// ErrInvalidEmail means the chosen or typed address failed validation.
	ErrInvalidEmail = errors.New("please enter a valid email address")
	// ErrBusy means a conflicting request is still in flight.
	ErrBusy = errors.New("request already in flight")
)

// Fixed instruction appended to the original prompt and current body on regenerate.
const rewriteInstruction = " Please regenerate/rewrite the above email and make it even better and professional from scratch"

// Workflow owns the email drafting state: the held draft id, the pending
// recipient, and the edit/regenerate flags. The draft id is overwritten
// wholesale on every draft response so a stale id can never reach the send call.
type Workflow struct {
	api     *api.Client
	session *session.Controller
	state   *view.State
	logger  zerolog.Logger

	mu             sync.Mutex
	draftID        int
	lastPrompt     string
	typedRecipient string
	regenerating   bool
	sending        bool
	drafting       bool
}

// NewWorkflow creates an email workflow bound to the session's conversation.
func NewWorkflow(client *api.Client, sess *session.Controller, state *view.State, logger zerolog.Logger) *Workflow {
	return &Workflow{api: client, session: sess, state: state, logger: logger}
}

// DraftID returns the currently held draft id, zero when none.
func (w *Workflow) DraftID() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draftID
}

// Draft resolves a conversation, asks the backend to draft an email from the
// prompt, replaces any displayed draft wholesale, and kicks off contact
// resolution for the drafted recipient names.
func (w *Workflow) Draft(ctx context.Context, prompt string) error {
	w.mu.Lock()
	if w.drafting {
		w.mu.Unlock()
		return ErrBusy
	}
	w.drafting = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.drafting = false
		w.mu.Unlock()
	}()

	conversationID, err := w.session.GetOrCreateConversation(ctx)
	if err != nil {
		return err
	}

	// First prompt also titles the conversation, prefixed so email drafts are
	// recognizable in the history list.
	w.session.AutoTitle(ctx, conversationID, "New Email Draft "+prompt)

	response, err := w.api.DraftEmail(ctx, prompt, conversationID)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to draft email")
		return err
	}

	w.applyDraft(prompt, response)
	w.state.Modal = view.ModalContacts
	return w.SearchContacts(ctx, response.RecipientNames)
}

// applyDraft replaces subject, body, recipients and the held draft id in one
// step. Partial updates would leave an inconsistent id/body pairing.
func (w *Workflow) applyDraft(prompt string, response *models.DraftEmailResponse) {
	w.mu.Lock()
	w.draftID = response.Draft.EmailDraftID
	w.lastPrompt = prompt
	w.mu.Unlock()

	w.state.Draft = view.DraftPanel{
		Recipients: strings.Join(response.RecipientNames, ", "),
		Subject:    response.Draft.DraftedSubject,
		Body:       response.Draft.DraftedBody,
	}
}

// SearchContacts resolves the drafted recipient names against the user's
// contacts. Zero candidates still render guidance so the user always has a
// next action.
func (w *Workflow) SearchContacts(ctx context.Context, recipientNames []string) error {
	contacts, err := w.api.SearchContacts(ctx, recipientNames)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to search contacts")
		return err
	}

	picker := view.ContactPicker{Selected: -1}
	if len(contacts) == 0 {
		picker.Guidance = view.NoContactsGuidance
	} else {
		for _, contact := range contacts {
			picker.Options = append(picker.Options, view.ContactOption{Name: contact.Name, Email: contact.Email})
		}
		picker.Guidance = view.OtherContactHint
	}
	w.state.Contacts = picker
	return nil
}

// SelectContact marks candidate i (zero-based) as the single selected contact.
func (w *Workflow) SelectContact(i int) {
	w.state.Contacts.Select(i)
}

// EnterRecipient records a manually typed address, the fallback when no
// candidate matches.
func (w *Workflow) EnterRecipient(address string) {
	w.mu.Lock()
	w.typedRecipient = address
	w.mu.Unlock()
}

// ConfirmContact validates the chosen or typed address and commits it as the
// draft's recipient, moving the workflow to the confirmation step. The check
// is deliberately just local@domain.tld, enough to catch obvious typos.
func (w *Workflow) ConfirmContact() error {
	recipient := w.state.Contacts.SelectedEmail()
	if recipient == "" {
		w.mu.Lock()
		recipient = w.typedRecipient
		w.mu.Unlock()
	}
	if !emailRegex.MatchString(recipient) {
		return ErrInvalidEmail
	}

	w.state.Draft.Recipients = recipient
	w.state.Modal = view.ModalConfirm
	return nil
}

// Regenerate asks the backend for a fresh draft built from the original
// instruction plus the current body. The old draft id is discarded wholesale;
// Send is rejected while the regeneration is in flight.
func (w *Workflow) Regenerate(ctx context.Context) error {
	if !w.state.Draft.HasDraft() {
		return ErrNothingToRegenerate
	}

	w.mu.Lock()
	if w.regenerating {
		w.mu.Unlock()
		return ErrBusy
	}
	w.regenerating = true
	prompt := w.lastPrompt + " " + w.state.Draft.Body + rewriteInstruction
	w.mu.Unlock()

	w.state.Draft.Regenerating = true
	defer func() {
		w.state.Draft.Regenerating = false
		w.mu.Lock()
		w.regenerating = false
		w.mu.Unlock()
	}()

	response, err := w.api.DraftEmail(ctx, prompt, w.session.ConversationID())
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to regenerate draft")
		return err
	}

	w.mu.Lock()
	lastPrompt := w.lastPrompt
	w.mu.Unlock()
	w.applyDraft(lastPrompt, response)
	return nil
}

// ToggleEdit flips the draft body between view and edit mode. Leaving edit
// mode writes the edited text back as the canonical body.
func (w *Workflow) ToggleEdit(edited string) error {
	if !w.state.Draft.HasDraft() {
		return ErrNothingToEdit
	}

	if !w.state.Draft.Editing {
		w.state.Draft.Editing = true
		return nil
	}
	w.state.Draft.Editing = false
	if edited != "" {
		w.state.Draft.Body = edited
	}
	return nil
}

// Confirm copies the displayed recipient, subject and body into the final
// confirmation view.
func (w *Workflow) Confirm() error {
	if !w.state.Draft.HasDraft() {
		return ErrNoDraft
	}
	w.state.Modal = view.ModalConfirm
	return nil
}

// Send submits the drafted email with the held draft id and conversation id
// as correlation keys. On success the sent email is appended to the
// transcript and the draft is discarded.
func (w *Workflow) Send(ctx context.Context) error {
	w.mu.Lock()
	if w.regenerating || w.sending {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.draftID == 0 {
		w.mu.Unlock()
		return ErrNoDraft
	}
	w.sending = true
	draftID := w.draftID
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.sending = false
		w.mu.Unlock()
	}()

	to := w.state.Draft.Recipients
	subject := w.state.Draft.Subject
	body := w.state.Draft.Body

	err := w.api.SendEmail(ctx, draftID, w.session.ConversationID(), models.SendEmailRequest{
		To:          to,
		Subject:     subject,
		MessageBody: body,
	})
	if err != nil {
		w.logger.Error().Err(err).Int("email_draft_id", draftID).Msg("failed to send email")
		return err
	}

	w.state.Transcript.Append(view.Entry{
		Role:    view.LabelSystem,
		Content: view.FormatSentEmail(to, subject, body),
	})

	// Draft is spent; reset so a stale id cannot be reused
	w.mu.Lock()
	w.draftID = 0
	w.typedRecipient = ""
	w.mu.Unlock()
	w.state.Draft = view.DraftPanel{Body: view.PlaceholderBody}
	w.state.Contacts = view.ContactPicker{Selected: -1}
	w.state.Modal = view.ModalNone

	w.logger.Info().Int("email_draft_id", draftID).Str("to", to).Msg("email sent")
	return nil
}
