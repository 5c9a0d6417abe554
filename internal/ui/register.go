package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type registerResultMsg struct {
	err error
}

type RegisterModel struct {
	app          *App
	inputs       []textinput.Model
	focusIndex   int
	submitting   bool
	err          error
	windowWidth  int
	windowHeight int
}

const (
	regEmail = iota
	regPassword
	regName
	regDisplayName
)

// NewRegisterModel creates the account registration form.
func NewRegisterModel(app *App) RegisterModel {
	placeholders := []string{"Email", "Password", "Full name", "Display name"}

	inputs := make([]textinput.Model, len(placeholders))
	for i, placeholder := range placeholders {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholder
		inputs[i].CharLimit = 100
		inputs[i].Width = 50
	}
	inputs[regPassword].EchoMode = textinput.EchoPassword
	inputs[regEmail].Focus()

	return RegisterModel{
		app:          app,
		inputs:       inputs,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m RegisterModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m RegisterModel) registerCmd() tea.Cmd {
	email := strings.TrimSpace(m.inputs[regEmail].Value())
	password := m.inputs[regPassword].Value()
	name := strings.TrimSpace(m.inputs[regName].Value())
	displayName := strings.TrimSpace(m.inputs[regDisplayName].Value())

	return func() tea.Msg {
		return registerResultMsg{err: m.app.Session.Register(context.Background(), email, password, name, displayName)}
	}
}

func (m RegisterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case registerResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		groupsModel := NewGroupsModel(m.app)
		updatedModel, _ := groupsModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
		groupsModel = updatedModel.(GroupsModel)
		return groupsModel, groupsModel.Init()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.submitting {
			return m, nil
		}

		switch msg.String() {
		case "esc":
			loginModel := NewLoginModel(m.app)
			updatedModel, _ := loginModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
			loginModel = updatedModel.(LoginModel)
			return loginModel, loginModel.Init()

		case "tab", "down":
			m.focusIndex = (m.focusIndex + 1) % len(m.inputs)
			m.updateFocus()
			return m, nil

		case "shift+tab", "up":
			m.focusIndex = (m.focusIndex - 1 + len(m.inputs)) % len(m.inputs)
			m.updateFocus()
			return m, nil

		case "enter", "ctrl+s":
			if strings.TrimSpace(m.inputs[regEmail].Value()) == "" || m.inputs[regPassword].Value() == "" {
				m.err = fmt.Errorf("email and password are required")
				return m, nil
			}
			m.submitting = true
			m.err = nil
			return m, m.registerCmd()
		}
	}

	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m *RegisterModel) updateFocus() {
	for i := range m.inputs {
		if i == m.focusIndex {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m RegisterModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Quill - Create Account") + "\n\n")

	labels := []string{"Email:", "Password:", "Full name:", "Display name:"}
	for i, input := range m.inputs {
		b.WriteString(normalStyle.Render(labels[i]) + "\n")
		b.WriteString(input.View() + "\n\n")
	}

	if m.submitting {
		b.WriteString(statusStyle.Render("Creating account...") + "\n\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n")
	}

	b.WriteString(helpStyle.Render("tab: switch field • enter: create account • esc: back to sign in"))

	return b.String()
}
