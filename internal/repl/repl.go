// Package repl is the interactive command loop of the Atlas client.
// Each line is one user action; plain text is a chat message, slash-free
// commands drive the history and email workflow.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/BridgeTech-DC/AtlasAI/internal/api"
	"github.com/BridgeTech-DC/AtlasAI/internal/email"
	"github.com/BridgeTech-DC/AtlasAI/internal/session"
	"github.com/BridgeTech-DC/AtlasAI/internal/view"
)

// App wires the controllers to the terminal.
type App struct {
	api      *api.Client
	session  *session.Controller
	email    *email.Workflow
	state    *view.State
	renderer *view.Renderer
	out      io.Writer
	logger   zerolog.Logger
}

// NewApp creates the REPL application.
func NewApp(client *api.Client, sess *session.Controller, workflow *email.Workflow, state *view.State, out io.Writer, logger zerolog.Logger) *App {
	return &App{
		api:      client,
		session:  sess,
		email:    workflow,
		state:    state,
		renderer: view.NewRenderer(out),
		out:      out,
		logger:   logger,
	}
}

// Run reads commands until EOF or "exit".
func (a *App) Run(ctx context.Context, scanner *bufio.Scanner) {
	a.printHelp()
	for {
		fmt.Fprint(a.out, "atlas> ")
		if !scanner.Scan() {
			return
		}
		if quit := a.Execute(ctx, scanner.Text()); quit {
			fmt.Fprintln(a.out, "Bye!")
			return
		}
	}
}

// Execute runs a single command line. Returns true when the user asked to quit.
func (a *App) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		a.printHelp()

	case "new":
		if _, err := a.session.NewConversation(ctx); err != nil {
			a.report(err)
			break
		}
		a.renderer.RenderTranscript(&a.state.Transcript)

	case "history":
		if err := a.session.LoadHistory(ctx, 0); err != nil {
			a.report(err)
			break
		}
		a.printHistory()

	case "more":
		if err := a.session.NextHistoryPage(ctx); err != nil {
			a.report(err)
			break
		}
		a.printHistory()

	case "open":
		a.open(ctx, rest)

	case "say":
		a.say(ctx, rest)

	case "email":
		if rest == "" {
			fmt.Fprintln(a.out, "Usage: email <prompt>")
			break
		}
		if err := a.email.Draft(ctx, rest); err != nil {
			a.report(err)
			break
		}
		a.renderer.RenderDraft(&a.state.Draft)
		a.renderer.RenderContacts(&a.state.Contacts)

	case "pick":
		index, err := strconv.Atoi(rest)
		if err != nil || index < 1 {
			fmt.Fprintln(a.out, "Usage: pick <number>")
			break
		}
		a.email.SelectContact(index - 1)
		a.renderer.RenderContacts(&a.state.Contacts)

	case "to":
		a.email.EnterRecipient(rest)

	case "confirm":
		if err := a.email.ConfirmContact(); err != nil {
			a.report(err)
			break
		}
		a.renderer.RenderDraft(&a.state.Draft)
		fmt.Fprintln(a.out, "Type 'send' to send this email.")

	case "edit":
		if err := a.email.ToggleEdit(rest); err != nil {
			a.report(err)
			break
		}
		if a.state.Draft.Editing {
			fmt.Fprintln(a.out, "Editing. Type: edit <new body> to save.")
		} else {
			a.renderer.RenderDraft(&a.state.Draft)
		}

	case "regen":
		if err := a.email.Regenerate(ctx); err != nil {
			a.report(err)
			break
		}
		a.renderer.RenderDraft(&a.state.Draft)

	case "send":
		if err := a.email.Send(ctx); err != nil {
			a.report(err)
			break
		}
		fmt.Fprintln(a.out, "Email sent successfully!")

	case "link":
		if location := a.session.Location(); location != "" {
			fmt.Fprintln(a.out, "Resume with: atlas --conversation "+strings.TrimPrefix(location, "?conversation_id="))
		} else {
			fmt.Fprintln(a.out, "No active conversation.")
		}

	case "whoami":
		a.whoami(ctx)

	case "avatar":
		if rest == "" {
			fmt.Fprintln(a.out, "Usage: avatar <path>")
			break
		}
		url, err := a.api.UploadProfilePicture(ctx, rest)
		if err != nil {
			a.report(err)
			break
		}
		fmt.Fprintln(a.out, "Profile picture updated: "+url)

	case "persona":
		index, err := strconv.Atoi(rest)
		if err != nil {
			fmt.Fprintln(a.out, "Usage: persona <id>")
			break
		}
		if err := a.api.SelectPersona(ctx, index); err != nil {
			a.report(err)
			break
		}
		fmt.Fprintln(a.out, "Persona selected.")

	case "logout":
		if err := a.api.Logout(ctx); err != nil {
			a.report(err)
			break
		}
		a.session.Reset()
		fmt.Fprintln(a.out, "Signed out.")

	case "exit", "quit":
		return true

	default:
		// Anything else is a chat message
		a.say(ctx, line)
	}
	return false
}

func (a *App) say(ctx context.Context, prompt string) {
	if prompt == "" {
		return
	}
	if err := a.session.SendMessage(ctx, prompt); err != nil {
		a.report(err)
		return
	}
	// Show only the latest exchange; the transcript was already on screen
	entries := a.state.Transcript.Entries
	if len(entries) >= 2 {
		fmt.Fprintln(a.out, view.FormatEntry(entries[len(entries)-2]))
		fmt.Fprintln(a.out, view.FormatEntry(entries[len(entries)-1]))
	}
}

func (a *App) open(ctx context.Context, arg string) {
	if arg == "" {
		fmt.Fprintln(a.out, "Usage: open <number|conversation-id>")
		return
	}

	conversationID := arg
	if index, err := strconv.Atoi(arg); err == nil {
		if index < 1 || index > len(a.state.History.Items) {
			fmt.Fprintln(a.out, "No such history entry. Run 'history' first.")
			return
		}
		conversationID = a.state.History.Items[index-1].ID
	}

	if err := a.session.LoadConversation(ctx, conversationID); err != nil {
		a.report(err)
		return
	}
	a.renderer.RenderTranscript(&a.state.Transcript)
}

func (a *App) whoami(ctx context.Context) {
	user, err := a.api.CurrentUser(ctx)
	if err != nil {
		a.report(err)
		return
	}
	subscription := user.Subscription
	if subscription == "" {
		subscription = "Free"
	}
	fmt.Fprintf(a.out, "Full Name: %s\n", user.GoogleUsername)
	fmt.Fprintf(a.out, "Email: %s\n", user.Email)
	fmt.Fprintf(a.out, "Member Since: %s\n", user.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(a.out, "Subscription: %s\n", subscription)
}

func (a *App) printHistory() {
	if len(a.state.History.Items) == 0 {
		fmt.Fprintln(a.out, "No conversations yet.")
		return
	}
	for i, item := range a.state.History.Items {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, item.Label)
	}
}

// report prints an actionable message for precondition failures and a generic
// one for network errors, mirroring alert() vs console.error in the product.
func (a *App) report(err error) {
	switch {
	case errors.Is(err, email.ErrInvalidEmail),
		errors.Is(err, email.ErrNothingToRegenerate),
		errors.Is(err, email.ErrNothingToEdit),
		errors.Is(err, email.ErrNoDraft),
		errors.Is(err, email.ErrBusy),
		errors.Is(err, session.ErrBusy):
		fmt.Fprintln(a.out, err.Error())
	default:
		a.logger.Error().Err(err).Msg("command failed")
		fmt.Fprintln(a.out, "Something went wrong. Please try again.")
	}
}

func (a *App) printHelp() {
	fmt.Fprintln(a.out, `Commands:
  <text>           chat with Atlas
  new              start a new conversation
  history / more   list conversations (next page with 'more')
  open <n|id>      open a conversation
  email <prompt>   draft an email from a prompt
  pick <n>         choose a suggested contact
  to <address>     type a recipient address instead
  confirm          confirm the recipient
  edit [body]      toggle edit mode / save the edited body
  regen            regenerate the draft
  send             send the drafted email
  link             print the resume link
  whoami           show your profile
  persona <id>     switch assistant persona
  logout           sign out
  exit             quit`)
}
