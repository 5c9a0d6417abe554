package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quillchat/quill/internal/models"
)

type memberAddedMsg struct {
	err error
}

// MemberFormModel invites a user into a group by email.
type MemberFormModel struct {
	app          *App
	group        models.Group
	emailInput   textinput.Model
	roleInput    textinput.Model
	focusIndex   int
	submitting   bool
	err          error
	windowWidth  int
	windowHeight int
}

func NewMemberFormModel(app *App, group models.Group) MemberFormModel {
	emailInput := textinput.New()
	emailInput.Placeholder = "Email"
	emailInput.Focus()
	emailInput.CharLimit = 100
	emailInput.Width = 50

	roleInput := textinput.New()
	roleInput.Placeholder = "Role (member or admin)"
	roleInput.SetValue("member")
	roleInput.CharLimit = 20
	roleInput.Width = 50

	return MemberFormModel{
		app:          app,
		group:        group,
		emailInput:   emailInput,
		roleInput:    roleInput,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m MemberFormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m MemberFormModel) addMemberCmd(email, role string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.Sync.AddMember(context.Background(), m.group.ID, email, role)
		return memberAddedMsg{err: err}
	}
}

func (m MemberFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case memberAddedMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		membersModel := NewMembersModel(m.app, m.group)
		updatedModel, _ := membersModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
		membersModel = updatedModel.(MembersModel)
		return membersModel, membersModel.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			membersModel := NewMembersModel(m.app, m.group)
			updatedModel, _ := membersModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
			membersModel = updatedModel.(MembersModel)
			return membersModel, membersModel.Init()

		case "tab", "shift+tab", "up", "down":
			m.focusIndex = (m.focusIndex + 1) % 2
			if m.focusIndex == 0 {
				m.emailInput.Focus()
				m.roleInput.Blur()
			} else {
				m.emailInput.Blur()
				m.roleInput.Focus()
			}
			return m, nil

		case "enter":
			if m.submitting {
				return m, nil
			}
			email := strings.TrimSpace(m.emailInput.Value())
			role := strings.TrimSpace(m.roleInput.Value())
			if email == "" {
				m.err = fmt.Errorf("email is required")
				return m, nil
			}
			if role == "" {
				role = "member"
			}
			m.submitting = true
			m.err = nil
			return m, m.addMemberCmd(email, role)
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.emailInput, cmd = m.emailInput.Update(msg)
	cmds = append(cmds, cmd)
	m.roleInput, cmd = m.roleInput.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m MemberFormModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Add Member - %s", m.group.Name)) + "\n\n")

	b.WriteString(normalStyle.Render("Email:") + "\n")
	b.WriteString(m.emailInput.View() + "\n\n")
	b.WriteString(normalStyle.Render("Role:") + "\n")
	b.WriteString(m.roleInput.View() + "\n\n")

	if m.submitting {
		b.WriteString(statusStyle.Render("Adding member...") + "\n\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n")
	}

	b.WriteString(helpStyle.Render("tab: switch field • enter: add • esc: back"))

	return b.String()
}
