package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type groupCreatedMsg struct {
	err error
}

type GroupFormModel struct {
	app          *App
	nameInput    textinput.Model
	submitting   bool
	err          error
	windowWidth  int
	windowHeight int
}

func NewGroupFormModel(app *App) GroupFormModel {
	nameInput := textinput.New()
	nameInput.Placeholder = "Group name"
	nameInput.Focus()
	nameInput.CharLimit = 100
	nameInput.Width = 50

	return GroupFormModel{
		app:          app,
		nameInput:    nameInput,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m GroupFormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m GroupFormModel) createGroupCmd(name string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.Sync.CreateGroup(context.Background(), name)
		return groupCreatedMsg{err: err}
	}
}

func (m GroupFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case groupCreatedMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		conversationsModel := NewConversationsModel(m.app)
		updatedModel, _ := conversationsModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
		conversationsModel = updatedModel.(ConversationsModel)
		return conversationsModel, conversationsModel.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			groupsModel := NewGroupsModel(m.app)
			updatedModel, _ := groupsModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
			groupsModel = updatedModel.(GroupsModel)
			return groupsModel, groupsModel.Init()

		case "enter":
			if m.submitting {
				return m, nil
			}
			name := strings.TrimSpace(m.nameInput.Value())
			if name == "" {
				return m, nil
			}
			m.submitting = true
			m.err = nil
			return m, m.createGroupCmd(name)
		}
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m GroupFormModel) View() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("5"))

	content := titleStyle.Render("New Group") + "\n\n"
	content += style.Render("Name:\n" + m.nameInput.View())

	if m.submitting {
		content += "\n\n" + statusStyle.Render("Creating group...")
	}

	if m.err != nil {
		content += "\n\n" + errorStyle.Render("Error: "+m.err.Error())
	}

	content += "\n\n" + helpStyle.Render("enter: create • esc: back")

	return content
}
