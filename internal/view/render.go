package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/BridgeTech-DC/AtlasAI/internal/markdown"
)

// Renderer writes a State to a terminal. Each Render call produces a full
// frame, so repeated renders of the same state are identical.
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Render writes the whole view.
func (r *Renderer) Render(s *State) {
	r.RenderTranscript(&s.Transcript)

	switch s.Modal {
	case ModalResponse:
		r.RenderDraft(&s.Draft)
	case ModalContacts:
		r.RenderContacts(&s.Contacts)
	case ModalConfirm:
		r.RenderDraft(&s.Draft)
		fmt.Fprintln(r.out, "Type 'send' to send this email.")
	}
}

// RenderTranscript writes the conversation display.
func (r *Renderer) RenderTranscript(t *Transcript) {
	for _, entry := range t.Entries {
		fmt.Fprintln(r.out, FormatEntry(entry))
	}
	if t.Loading {
		fmt.Fprintln(r.out, "Atlas is typing...")
	}
}

// RenderDraft writes the drafted-email panel.
func (r *Renderer) RenderDraft(d *DraftPanel) {
	fmt.Fprintf(r.out, "To:      %s\n", d.Recipients)
	fmt.Fprintf(r.out, "Subject: %s\n", d.Subject)
	if d.Regenerating {
		fmt.Fprintln(r.out, "Regenerating draft...")
		return
	}
	fmt.Fprintln(r.out, markdown.Render(d.Body))
	if d.Editing {
		fmt.Fprintln(r.out, "(editing - type the new body, then 'edit' again to save)")
	}
}

// RenderContacts writes the contact picker. A zero-candidate search still
// shows guidance, never an empty panel.
func (r *Renderer) RenderContacts(p *ContactPicker) {
	for i, option := range p.Options {
		marker := " "
		if i == p.Selected {
			marker = ">"
		}
		fmt.Fprintf(r.out, "%s %d. Name: %s  Email ID: %s\n", marker, i+1, option.Name, option.Email)
	}
	if p.Guidance != "" {
		fmt.Fprintln(r.out, p.Guidance)
	}
}

// FormatEntry renders one transcript entry as a single block of text.
func FormatEntry(e Entry) string {
	if e.Markdown {
		return e.Role + ": " + markdown.Render(e.Content)
	}
	return e.Role + ": " + e.Content
}

// FormatSentEmail renders a sent-email record for the transcript.
func FormatSentEmail(recipient, subject, body string) string {
	var b strings.Builder
	b.WriteString("Subject: " + subject + "\n")
	b.WriteString("Recipients: " + recipient + "\n")
	b.WriteString("Body:\n" + markdown.Render(body))
	return b.String()
}
