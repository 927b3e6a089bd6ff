// Package view holds the client's explicit view state and renders it to a
// terminal. Controllers mutate State values; rendering is a pure function of
// the state, so the state-to-output mapping is testable without simulating
// input sequences.
package view

// Speaker labels shown in the transcript.
const (
	LabelUser      = "You"
	LabelAssistant = "Atlas"
	LabelSystem    = "System"
)

// UI copy carried over from the product.
const (
	PlaceholderBody    = "This is a placeholder text that will be replaced by the AI response."
	NoContactsGuidance = "Hmm! Seems you haven't interacted with this person before, why not type in their mail ID so that we can send a mail to them on your behalf"
	OtherContactHint   = "Not the contact you are looking for? Type in the mail ID to whom you wanna send the email"
)

// Entry is one rendered block in the conversation transcript.
type Entry struct {
	Role     string // LabelUser, LabelAssistant or LabelSystem
	Content  string // Raw text; assistant content is markdown
	Markdown bool   // Render content as markdown
}

// Transcript is the ordered conversation display.
type Transcript struct {
	Entries []Entry
	Loading bool // An assistant turn is in flight
}

// Append adds an entry to the end of the transcript.
func (t *Transcript) Append(e Entry) {
	t.Entries = append(t.Entries, e)
}

// Clear resets the transcript to empty.
func (t *Transcript) Clear() {
	t.Entries = nil
	t.Loading = false
}

// HistoryItem is one clickable conversation in the history list.
type HistoryItem struct {
	ID    string
	Label string // Title, or "Conversation N" when untitled
}

// HistoryList is the paged conversation history display.
type HistoryList struct {
	Items []HistoryItem
}

// Replace swaps the whole list (first page load).
func (h *HistoryList) Replace(items []HistoryItem) {
	h.Items = items
}

// Extend appends a further page without clearing prior entries.
func (h *HistoryList) Extend(items []HistoryItem) {
	h.Items = append(h.Items, items...)
}

// ContactOption is one selectable contact candidate.
type ContactOption struct {
	Name  string
	Email string
}

// ContactPicker is the contact-selection display.
type ContactPicker struct {
	Options  []ContactOption
	Selected int    // Index of the selected option, -1 when none
	Guidance string // Always set: a next action for the user
}

// Select marks exactly one option as selected, clearing any prior mark.
func (p *ContactPicker) Select(i int) {
	if i < 0 || i >= len(p.Options) {
		return
	}
	p.Selected = i
}

// SelectedEmail returns the email of the selected option, or empty.
func (p *ContactPicker) SelectedEmail() string {
	if p.Selected < 0 || p.Selected >= len(p.Options) {
		return ""
	}
	return p.Options[p.Selected].Email
}

// Modal identifies which workflow panel is in front.
type Modal int

const (
	ModalNone     Modal = iota
	ModalResponse       // Drafted email under review
	ModalContacts       // Contact selection
	ModalConfirm        // Final confirmation before send
)

// DraftPanel is the drafted-email display.
type DraftPanel struct {
	Recipients   string // Comma-joined names, later the confirmed address
	Subject      string
	Body         string // Markdown source; PlaceholderBody until a draft exists
	Editing      bool
	Regenerating bool
}

// HasDraft reports whether the panel holds a real draft rather than the placeholder.
func (d *DraftPanel) HasDraft() bool {
	body := d.Body
	return body != "" && body != PlaceholderBody
}

// State is the whole client view.
type State struct {
	Transcript   Transcript
	History      HistoryList
	Draft        DraftPanel
	Contacts     ContactPicker
	Modal        Modal
	InputVisible bool   // Whether the prompt input is shown
	ResumeLink   string // ?conversation_id=<id> query for deep linking
}

// NewState returns an empty view with no selection and no draft.
func NewState() *State {
	return &State{
		Draft:    DraftPanel{Body: PlaceholderBody},
		Contacts: ContactPicker{Selected: -1},
	}
}
