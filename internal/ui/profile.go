package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type profileSavedMsg struct {
	err error
}

// ProfileModel edits the signed-in user's name and display name.
type ProfileModel struct {
	app              *App
	nameInput        textinput.Model
	displayNameInput textinput.Model
	focusIndex       int
	submitting       bool
	saved            bool
	err              error
	windowWidth      int
	windowHeight     int
}

func NewProfileModel(app *App) ProfileModel {
	nameInput := textinput.New()
	nameInput.Placeholder = "Full name"
	nameInput.Focus()
	nameInput.CharLimit = 100
	nameInput.Width = 50

	displayNameInput := textinput.New()
	displayNameInput.Placeholder = "Display name"
	displayNameInput.CharLimit = 100
	displayNameInput.Width = 50

	if identity, ok := app.Session.Current(); ok {
		nameInput.SetValue(identity.Name)
		displayNameInput.SetValue(identity.DisplayName)
	}

	return ProfileModel{
		app:              app,
		nameInput:        nameInput,
		displayNameInput: displayNameInput,
		windowWidth:      80,
		windowHeight:     30,
	}
}

func (m ProfileModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m ProfileModel) saveProfileCmd(name, displayName string) tea.Cmd {
	return func() tea.Msg {
		return profileSavedMsg{err: m.app.Session.UpdateProfile(context.Background(), name, displayName)}
	}
}

func (m ProfileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case profileSavedMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.saved = true
		m.err = nil
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			groupsModel := NewGroupsModel(m.app)
			updatedModel, _ := groupsModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
			groupsModel = updatedModel.(GroupsModel)
			return groupsModel, groupsModel.Init()

		case "tab", "shift+tab", "up", "down":
			m.focusIndex = (m.focusIndex + 1) % 2
			if m.focusIndex == 0 {
				m.nameInput.Focus()
				m.displayNameInput.Blur()
			} else {
				m.nameInput.Blur()
				m.displayNameInput.Focus()
			}
			return m, nil

		case "ctrl+s", "enter":
			if m.submitting {
				return m, nil
			}
			name := strings.TrimSpace(m.nameInput.Value())
			displayName := strings.TrimSpace(m.displayNameInput.Value())
			if name == "" && displayName == "" {
				m.err = fmt.Errorf("nothing to save")
				return m, nil
			}
			m.submitting = true
			m.saved = false
			m.err = nil
			return m, m.saveProfileCmd(name, displayName)
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	cmds = append(cmds, cmd)
	m.displayNameInput, cmd = m.displayNameInput.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m ProfileModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Profile") + "\n\n")

	if identity, ok := m.app.Session.Current(); ok {
		b.WriteString(helpStyle.Render(identity.Email) + "\n\n")
	}

	b.WriteString(normalStyle.Render("Full name:") + "\n")
	b.WriteString(m.nameInput.View() + "\n\n")
	b.WriteString(normalStyle.Render("Display name:") + "\n")
	b.WriteString(m.displayNameInput.View() + "\n\n")

	if m.submitting {
		b.WriteString(statusStyle.Render("Saving...") + "\n\n")
	}

	if m.saved {
		b.WriteString(statusStyle.Render("Profile saved.") + "\n\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n")
	}

	b.WriteString(helpStyle.Render("tab: switch field • ctrl+s: save • esc: back"))

	return b.String()
}
