package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fahmaliyi/acctvault/logger"
	"github.com/fahmaliyi/acctvault/vault"
)

type screen int

const (
	listScreen screen = iota
	detailScreen
	unlockScreen
	formScreen
	confirmScreen
)

const (
	fieldName = iota
	fieldSecret
	fieldPassword
)

// Results of work started from Update. They come back through Update.
type (
	savedMsg struct {
		op     string
		name   string
		cursor int
		err    error
	}
	revealedMsg struct {
		name   string
		secret string
		err    error
	}
	copiedMsg struct {
		secret string
		err    error
	}
	clearClipboardMsg struct {
		secret string
	}
)

type model struct {
	ctx        context.Context
	session    *vault.Session
	clipboard  Clipboard
	clearAfter time.Duration
	log        *logger.Logger

	screen   screen
	cursor   int
	selected string
	// revealed is the plaintext of selected while it is on screen.
	revealed string
	// copied is the secret waiting to be cleared from the clipboard.
	copied string

	inputs  []textinput.Model
	focus   int
	editing string
	unlock  textinput.Model

	busy   string
	status string
	err    error
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	msgStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("0"))
)

// RunTUI runs the interactive view until the user quits or ctx is done.
func RunTUI(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	m := newModel(ctx, a.session, a.clipboard(), a.cfg.ClipboardClear, logger.FromContext(ctx))
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(model); ok && fm.copied != "" {
		_ = clearIfUnchanged(fm.clipboard, fm.copied)
	}
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func newModel(ctx context.Context, s *vault.Session, cb Clipboard, clearAfter time.Duration, log *logger.Logger) model {
	if log == nil {
		log = logger.Nop()
	}
	unlock := textinput.New()
	unlock.Placeholder = "Unlock password"
	unlock.EchoMode = textinput.EchoPassword
	unlock.EchoCharacter = '•'
	return model{
		ctx:        ctx,
		session:    s,
		clipboard:  cb,
		clearAfter: clearAfter,
		log:        log,
		unlock:     unlock,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		return m.saved(msg), nil
	case revealedMsg:
		return m.revealResult(msg), nil
	case copiedMsg:
		return m.copyResult(msg)
	case clearClipboardMsg:
		if err := clearIfUnchanged(m.clipboard, msg.secret); err != nil {
			m.err = fmt.Errorf("clear clipboard: %w", err)
		} else {
			m.status = "Clipboard cleared."
		}
		if m.copied == msg.secret {
			m.copied = ""
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.busy != "" {
			return m, nil
		}
		m.status, m.err = "", nil
		switch m.screen {
		case listScreen:
			return m.updateList(msg)
		case detailScreen:
			return m.updateDetail(msg)
		case unlockScreen:
			return m.updateUnlock(msg)
		case formScreen:
			return m.updateForm(msg)
		case confirmScreen:
			return m.updateConfirm(msg)
		}
	}
	return m, nil
}

func (m model) quit() (tea.Model, tea.Cmd) {
	if m.copied != "" {
		_ = clearIfUnchanged(m.clipboard, m.copied)
		m.copied = ""
	}
	m.revealed = ""
	return m, tea.Quit
}

// leaveRecord drops everything tied to the open record.
func (m model) leaveRecord() model {
	m.selected = ""
	m.revealed = ""
	m.unlock.Reset()
	return m
}

// --- List ---

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	records := m.session.Vault().Records()
	switch msg.String() {
	case "q":
		return m.quit()
	case "j", "down":
		if m.cursor < len(records)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if len(records) > 0 {
			m.selected = records[m.cursor].Name
			m.screen = detailScreen
		}
	case "a":
		m = m.openForm("")
	case "K", "shift+up":
		return m.move(-1, len(records))
	case "J", "shift+down":
		return m.move(1, len(records))
	}
	return m, nil
}

func (m model) move(delta, n int) (tea.Model, tea.Cmd) {
	from, to := m.cursor, m.cursor+delta
	if to < 0 || to >= n {
		return m, nil
	}
	ctx, s := m.ctx, m.session
	m.busy = "Saving..."
	return m, func() tea.Msg {
		return savedMsg{op: "move", cursor: to, err: s.Reorder(ctx, from, to)}
	}
}

func (m model) viewList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Accounts") + "\n\n")
	records := m.session.Vault().Records()
	if len(records) == 0 {
		b.WriteString(mutedStyle.Render("No accounts saved yet.") + "\n")
	}
	for i, r := range records {
		line := fmt.Sprintf("%2d) %s", i+1, r.Name)
		if !r.HasSecret() {
			line += "  (no secret)"
		}
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("j/k move cursor · enter open · a add · K/J reorder · q quit"))
	return b.String()
}

// --- Detail ---

func (m model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rec, ok := m.session.Vault().Get(m.selected)
	if !ok {
		m = m.leaveRecord()
		m.screen = listScreen
		return m, nil
	}
	switch msg.String() {
	case "q":
		return m.quit()
	case "esc":
		m = m.leaveRecord()
		m.screen = listScreen
	case "v":
		if !rec.HasSecret() {
			m.status = "No secret stored."
			return m, nil
		}
		m.revealed = ""
		m.unlock.Reset()
		m.unlock.Focus()
		m.screen = unlockScreen
	case "h":
		m.revealed = ""
	case "c":
		if m.revealed == "" {
			m.status = "Reveal the secret first."
			return m, nil
		}
		secret, cb := m.revealed, m.clipboard
		return m, func() tea.Msg {
			return copiedMsg{secret: secret, err: cb.WriteAll(secret)}
		}
	case "e":
		name := m.selected
		m = m.leaveRecord()
		m = m.openForm(name)
	case "d":
		m.screen = confirmScreen
	}
	return m, nil
}

func (m model) copyResult(msg copiedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = fmt.Errorf("copy to clipboard: %w", msg.err)
		return m, nil
	}
	m.copied = msg.secret
	m.status = fmt.Sprintf("Copied. Clearing in %s.", m.clearAfter)
	m.log.Info().Str("name", m.selected).Dur("clear_after", m.clearAfter).Msg("secret copied")
	secret := msg.secret
	return m, tea.Tick(m.clearAfter, func(time.Time) tea.Msg {
		return clearClipboardMsg{secret: secret}
	})
}

func (m model) viewDetail() string {
	var b strings.Builder
	rec, _ := m.session.Vault().Get(m.selected)
	b.WriteString(titleStyle.Render(rec.Name) + "\n\n")
	switch {
	case !rec.HasSecret():
		b.WriteString("Secret: " + mutedStyle.Render("(no secret)") + "\n")
	case m.revealed != "":
		b.WriteString("Secret: " + m.revealed + "\n")
	default:
		b.WriteString("Secret: ********\n")
	}
	b.WriteString("\n" + mutedStyle.Render("v reveal · h hide · c copy · e edit · d delete · esc back"))
	return b.String()
}

// --- Unlock ---

func (m model) updateUnlock(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.unlock.Reset()
		m.screen = detailScreen
		return m, nil
	case "enter":
		password := m.unlock.Value()
		m.unlock.Reset()
		m.busy = "Decrypting..."
		name, s := m.selected, m.session
		return m, func() tea.Msg {
			secret, err := s.Reveal(name, password)
			return revealedMsg{name: name, secret: secret, err: err}
		}
	}
	var cmd tea.Cmd
	m.unlock, cmd = m.unlock.Update(msg)
	return m, cmd
}

func (m model) revealResult(msg revealedMsg) model {
	m.busy = ""
	if msg.name != m.selected {
		return m
	}
	m.screen = detailScreen
	if msg.err != nil {
		if vault.IsDecryptFailure(msg.err) {
			m.log.Debug().Str("name", msg.name).Err(msg.err).Msg("decrypt failed")
			m.err = errDecrypt
		} else {
			m.err = msg.err
		}
		return m
	}
	m.revealed = msg.secret
	return m
}

func (m model) viewUnlock() string {
	return titleStyle.Render("Unlock "+m.selected) + "\n\n" +
		m.unlock.View() + "\n\n" +
		mutedStyle.Render("enter unlock · esc cancel")
}

// --- Form ---

func (m model) openForm(editing string) model {
	name := textinput.New()
	name.Placeholder = "Name"
	name.SetValue(editing)

	secret := textinput.New()
	secret.Placeholder = "Secret"
	if editing != "" {
		secret.Placeholder = "Secret (blank keeps current)"
	}
	secret.EchoMode = textinput.EchoPassword
	secret.EchoCharacter = '•'

	password := textinput.New()
	password.Placeholder = "Unlock password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	m.inputs = []textinput.Model{name, secret, password}
	m.focus = fieldName
	m.inputs[fieldName].Focus()
	m.editing = editing
	m.screen = formScreen
	return m
}

func (m *model) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m model) closeForm() model {
	m.inputs = nil
	m.focus = 0
	m.editing = ""
	return m
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.inputs)
	switch msg.String() {
	case "esc":
		if m.editing != "" {
			m.selected = m.editing
			m.screen = detailScreen
		} else {
			m.screen = listScreen
		}
		return m.closeForm(), nil
	case "tab", "down":
		m.setFocus((m.focus + 1) % n)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus - 1 + n) % n)
		return m, nil
	case "enter":
		return m.submit()
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m model) submit() (tea.Model, tea.Cmd) {
	name := m.inputs[fieldName].Value()
	secret := m.inputs[fieldSecret].Value()
	password := m.inputs[fieldPassword].Value()
	editing, ctx, s := m.editing, m.ctx, m.session

	m.busy = "Saving..."
	if secret != "" {
		m.busy = "Encrypting..."
	}
	if editing == "" {
		return m, func() tea.Msg {
			return savedMsg{op: "add", name: name, err: s.Create(ctx, name, secret, password)}
		}
	}
	return m, func() tea.Msg {
		return savedMsg{op: "edit", name: name, err: s.Update(ctx, editing, name, secret, password)}
	}
}

func (m model) viewForm() string {
	var b strings.Builder
	title := "Add account"
	if m.editing != "" {
		title = "Edit " + m.editing
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")
	for _, in := range m.inputs {
		b.WriteString(in.View() + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("tab next field · enter save · esc cancel"))
	return b.String()
}

// --- Delete confirmation ---

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() != "y" {
		m.screen = detailScreen
		m.status = "Cancelled."
		return m, nil
	}
	name, ctx, s := m.selected, m.ctx, m.session
	m.screen = detailScreen
	m.busy = "Deleting..."
	return m, func() tea.Msg {
		return savedMsg{op: "remove", name: name, err: s.Remove(ctx, name)}
	}
}

func (m model) saved(msg savedMsg) model {
	m.busy = ""
	if msg.err != nil {
		m.err = msg.err
		return m
	}
	switch msg.op {
	case "add", "edit":
		m = m.closeForm()
		m.selected = msg.name
		m.cursor = max(m.session.Vault().Index(msg.name), 0)
		m.screen = detailScreen
		m.status = fmt.Sprintf("Saved %s.", msg.name)
	case "remove":
		m = m.leaveRecord()
		m.screen = listScreen
		if n := m.session.Vault().Len(); m.cursor >= n {
			m.cursor = max(n-1, 0)
		}
		m.status = fmt.Sprintf("Deleted %s.", msg.name)
	case "move":
		m.cursor = msg.cursor
	}
	return m
}

func (m model) View() string {
	var body string
	switch m.screen {
	case listScreen:
		body = m.viewList()
	case detailScreen:
		body = m.viewDetail()
	case unlockScreen:
		body = m.viewUnlock()
	case formScreen:
		body = m.viewForm()
	case confirmScreen:
		body = m.viewDetail() + "\n\n" + errStyle.Render(fmt.Sprintf("Delete %s? This cannot be undone. [y/N]", m.selected))
	}

	switch {
	case m.busy != "":
		body += "\n\n" + mutedStyle.Render(m.busy)
	case m.err != nil:
		body += "\n\n" + errStyle.Render(m.err.Error())
	case m.status != "":
		body += "\n\n" + msgStyle.Render(m.status)
	}
	return body + "\n"
}
