// Package tui holds the interactive prompt flow used by the setup
// command to collect Gerrit credentials.
package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ger/internal/config"
)

// ErrAborted is returned when the user cancels the prompt flow.
var ErrAborted = errors.New("setup aborted")

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type field int

const (
	fieldHost field = iota
	fieldUsername
	fieldPassword
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Gerrit host",
	"Username",
	"HTTP password",
}

type setupModel struct {
	inputs   [fieldCount]textinput.Model
	focus    field
	inputErr string
	done     bool
	aborted  bool
}

func newSetupModel(defaults *config.Config) setupModel {
	var m setupModel

	host := textinput.New()
	host.Placeholder = "gerrit.example.com"
	host.CharLimit = 200
	if defaults != nil {
		host.SetValue(defaults.Host)
	}

	user := textinput.New()
	user.Placeholder = "jdoe"
	user.CharLimit = 100
	if defaults != nil {
		user.SetValue(defaults.Username)
	}

	pass := textinput.New()
	pass.Placeholder = "generated in Gerrit: Settings → HTTP Credentials"
	pass.CharLimit = 200
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	m.inputs = [fieldCount]textinput.Model{host, user, pass}
	m.inputs[fieldHost].Focus()
	return m
}

func (m setupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			if strings.TrimSpace(m.inputs[m.focus].Value()) == "" {
				m.inputErr = fieldLabels[m.focus] + " must not be empty"
				return m, nil
			}
			m.inputErr = ""
			if m.focus == fieldPassword {
				m.done = true
				return m, tea.Quit
			}
			m.inputs[m.focus].Blur()
			m.focus++
			m.inputs[m.focus].Focus()
			return m, nil
		case "tab", "down":
			m.inputs[m.focus].Blur()
			m.focus = (m.focus + 1) % fieldCount
			m.inputs[m.focus].Focus()
			return m, nil
		case "shift+tab", "up":
			m.inputs[m.focus].Blur()
			m.focus = (m.focus + fieldCount - 1) % fieldCount
			m.inputs[m.focus].Focus()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m setupModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ger setup"))
	b.WriteString("\n")
	for i := field(0); i < fieldCount; i++ {
		b.WriteString(labelStyle.Render(fieldLabels[i]))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n\n")
	}
	if m.inputErr != "" {
		b.WriteString(errStyle.Render(m.inputErr))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("enter: next · tab: switch field · esc: abort"))
	b.WriteString("\n")
	return b.String()
}

// RunSetup prompts for credentials, prefilled from defaults when a
// previous configuration exists.
func RunSetup(defaults *config.Config) (*config.Config, error) {
	p := tea.NewProgram(newSetupModel(defaults))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(setupModel)
	if !ok || !m.done || m.aborted {
		return nil, ErrAborted
	}
	cfg := &config.Config{
		Host:     strings.TrimSpace(m.inputs[fieldHost].Value()),
		Username: strings.TrimSpace(m.inputs[fieldUsername].Value()),
		Password: m.inputs[fieldPassword].Value(),
	}
	if defaults != nil {
		cfg.AIAutoDetect = defaults.AIAutoDetect
		cfg.AITool = defaults.AITool
	}
	return cfg, nil
}
