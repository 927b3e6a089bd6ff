package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranscript_AppendAndClear(t *testing.T) {
	var transcript Transcript
	transcript.Append(Entry{Role: LabelUser, Content: "hi"})
	transcript.Append(Entry{Role: LabelAssistant, Content: "hello", Markdown: true})
	assert.Len(t, transcript.Entries, 2)

	transcript.Loading = true
	transcript.Clear()
	assert.Empty(t, transcript.Entries)
	assert.False(t, transcript.Loading)
}

func TestHistoryList_ReplaceAndExtend(t *testing.T) {
	var history HistoryList
	history.Replace([]HistoryItem{{ID: "a", Label: "Conversation 1"}})
	history.Extend([]HistoryItem{{ID: "b", Label: "Conversation 2"}})
	assert.Len(t, history.Items, 2)

	// Replace drops previously accumulated pages
	history.Replace([]HistoryItem{{ID: "c", Label: "Conversation 1"}})
	assert.Len(t, history.Items, 1)
	assert.Equal(t, "c", history.Items[0].ID)
}

func TestContactPicker_ExclusiveSelection(t *testing.T) {
	picker := ContactPicker{
		Options: []ContactOption{
			{Name: "Alice Smith", Email: "alice@co.com"},
			{Name: "Bob Jones", Email: "bob@co.com"},
		},
		Selected: -1,
	}

	picker.Select(0)
	assert.Equal(t, "alice@co.com", picker.SelectedEmail())

	// Selecting B leaves exactly one selected, never both
	picker.Select(1)
	assert.Equal(t, 1, picker.Selected)
	assert.Equal(t, "bob@co.com", picker.SelectedEmail())
}

func TestContactPicker_SelectOutOfRangeIsIgnored(t *testing.T) {
	picker := ContactPicker{Options: []ContactOption{{Email: "a@b.co"}}, Selected: -1}
	picker.Select(5)
	assert.Equal(t, -1, picker.Selected)
	assert.Equal(t, "", picker.SelectedEmail())
}

func TestDraftPanel_HasDraft(t *testing.T) {
	d := DraftPanel{Body: PlaceholderBody}
	assert.False(t, d.HasDraft())

	d.Body = ""
	assert.False(t, d.HasDraft())

	d.Body = "Dear Alice,"
	assert.True(t, d.HasDraft())
}

func TestRenderContacts_ZeroCandidatesShowsGuidance(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewRenderer(&buf)

	renderer.RenderContacts(&ContactPicker{Selected: -1, Guidance: NoContactsGuidance})

	assert.Contains(t, buf.String(), "haven't interacted with this person before")
}

func TestRenderContacts_SelectionMarker(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewRenderer(&buf)

	renderer.RenderContacts(&ContactPicker{
		Options: []ContactOption{
			{Name: "Alice Smith", Email: "alice@co.com"},
			{Name: "Bob Jones", Email: "bob@co.com"},
		},
		Selected: 1,
		Guidance: OtherContactHint,
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "  1."))
	assert.True(t, strings.HasPrefix(lines[1], "> 2."))
}

func TestRenderTranscript_OrderAndLoadingMarker(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewRenderer(&buf)

	transcript := Transcript{
		Entries: []Entry{
			{Role: LabelUser, Content: "hi"},
		},
		Loading: true,
	}
	renderer.RenderTranscript(&transcript)

	out := buf.String()
	assert.Contains(t, out, "You: hi")
	assert.Contains(t, out, "Atlas is typing...")
	assert.True(t, strings.Index(out, "You: hi") < strings.Index(out, "Atlas is typing..."))
}

func TestFormatEntry_MarkdownFlag(t *testing.T) {
	plain := FormatEntry(Entry{Role: LabelUser, Content: "**hi**"})
	assert.Equal(t, "You: **hi**", plain)

	rendered := FormatEntry(Entry{Role: LabelAssistant, Content: "**hi**", Markdown: true})
	assert.Equal(t, "Atlas: \x1b[1mhi\x1b[0m", rendered)
}

func TestFormatSentEmail(t *testing.T) {
	out := FormatSentEmail("alice@co.com", "Q3 report", "Hi Alice")
	assert.Contains(t, out, "Subject: Q3 report")
	assert.Contains(t, out, "Recipients: alice@co.com")
	assert.Contains(t, out, "Hi Alice")
}

func TestRenderDraft_RegeneratingHidesBody(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewRenderer(&buf)

	renderer.RenderDraft(&DraftPanel{Subject: "Q3", Body: "old body", Regenerating: true})

	assert.Contains(t, buf.String(), "Regenerating draft...")
	assert.NotContains(t, buf.String(), "old body")
}

func TestNewState_Defaults(t *testing.T) {
	s := NewState()
	assert.Equal(t, PlaceholderBody, s.Draft.Body)
	assert.Equal(t, -1, s.Contacts.Selected)
	assert.Equal(t, ModalNone, s.Modal)
	assert.False(t, s.Draft.HasDraft())
}
