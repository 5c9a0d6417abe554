package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type loginResultMsg struct {
	err error
}

type LoginModel struct {
	app           *App
	emailInput    textinput.Model
	passwordInput textinput.Model
	focusIndex    int
	submitting    bool
	err           error
	windowWidth   int
	windowHeight  int
}

// NewLoginModel creates the sign-in form shown when no session could be
// restored.
func NewLoginModel(app *App) LoginModel {
	emailInput := textinput.New()
	emailInput.Placeholder = "Email"
	emailInput.Focus()
	emailInput.CharLimit = 100
	emailInput.Width = 50

	passwordInput := textinput.New()
	passwordInput.Placeholder = "Password"
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.CharLimit = 100
	passwordInput.Width = 50

	return LoginModel{
		app:           app,
		emailInput:    emailInput,
		passwordInput: passwordInput,
		windowWidth:   80,
		windowHeight:  30,
	}
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		return loginResultMsg{err: m.app.Session.Login(context.Background(), email, password)}
	}
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case loginResultMsg:
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
		case "tab", "shift+tab", "up", "down":
			m.focusIndex = (m.focusIndex + 1) % 2
			if m.focusIndex == 0 {
				m.emailInput.Focus()
				m.passwordInput.Blur()
			} else {
				m.emailInput.Blur()
				m.passwordInput.Focus()
			}
			return m, nil

		case "ctrl+r":
			registerModel := NewRegisterModel(m.app)
			updatedModel, _ := registerModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
			registerModel = updatedModel.(RegisterModel)
			return registerModel, registerModel.Init()

		case "enter":
			email := strings.TrimSpace(m.emailInput.Value())
			password := m.passwordInput.Value()
			if email == "" || password == "" {
				m.err = fmt.Errorf("email and password are required")
				return m, nil
			}
			m.submitting = true
			m.err = nil
			return m, m.loginCmd(email, password)
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.emailInput, cmd = m.emailInput.Update(msg)
	cmds = append(cmds, cmd)
	m.passwordInput, cmd = m.passwordInput.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Quill - Sign In") + "\n\n")

	b.WriteString(normalStyle.Render("Email:") + "\n")
	b.WriteString(m.emailInput.View() + "\n\n")
	b.WriteString(normalStyle.Render("Password:") + "\n")
	b.WriteString(m.passwordInput.View() + "\n\n")

	if m.submitting {
		b.WriteString(statusStyle.Render("Signing in...") + "\n\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n")
	}

	b.WriteString(helpStyle.Render("tab: switch field • enter: sign in • ctrl+r: register • ctrl+c: quit"))

	return b.String()
}
