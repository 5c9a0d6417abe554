package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quillchat/quill/internal/models"
)

type groupItem struct {
	group models.Group
}

func (i groupItem) FilterValue() string { return i.group.Name }
func (i groupItem) Title() string       { return i.group.Name }

func (i groupItem) Description() string {
	if i.group.IsPersonal {
		return "Personal group"
	}
	return "Shared group"
}

type groupsRefreshedMsg struct {
	err error
}

type GroupsModel struct {
	app          *App
	list         list.Model
	loading      bool
	err          error
	spinner      spinner.Model
	windowWidth  int
	windowHeight int
}

// NewGroupsModel creates the group list shown after sign-in.
func NewGroupsModel(app *App) GroupsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("5")).
		Bold(true)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("8"))

	l := list.New([]list.Item{}, delegate, 80, 20)
	l.Title = "Groups"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return GroupsModel{
		app:          app,
		list:         l,
		loading:      true,
		spinner:      s,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m GroupsModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshGroupsCmd())
}

func (m GroupsModel) refreshGroupsCmd() tea.Cmd {
	return func() tea.Msg {
		return groupsRefreshedMsg{err: m.app.Sync.RefreshGroups(context.Background())}
	}
}

func (m GroupsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case groupsRefreshedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		groups, _, _ := m.app.Sync.Groups()
		items := make([]list.Item, len(groups))
		for i, group := range groups {
			items[i] = groupItem{group: group}
		}
		m.list.SetItems(items)
		m.list.Title = fmt.Sprintf("Groups - %d total", len(groups))
		m.err = nil
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}

		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "r":
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.refreshGroupsCmd())

		case "n":
			formModel := NewGroupFormModel(m.app)
			updatedModel, _ := formModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
			formModel = updatedModel.(GroupFormModel)
			return formModel, formModel.Init()

		case "m":
			if item, ok := m.list.SelectedItem().(groupItem); ok {
				membersModel := NewMembersModel(m.app, item.group)
				updatedModel, _ := membersModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
				membersModel = updatedModel.(MembersModel)
				return membersModel, membersModel.Init()
			}
			return m, nil

		case "p":
			profileModel := NewProfileModel(m.app)
			updatedModel, _ := profileModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
			profileModel = updatedModel.(ProfileModel)
			return profileModel, profileModel.Init()

		case "ctrl+l":
			m.app.Session.Logout()
			loginModel := NewLoginModel(m.app)
			updatedModel, _ := loginModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
			loginModel = updatedModel.(LoginModel)
			return loginModel, loginModel.Init()

		case "enter":
			if item, ok := m.list.SelectedItem().(groupItem); ok {
				m.app.Sync.SelectGroup(item.group.ID)
				conversationsModel := NewConversationsModel(m.app)
				updatedModel, _ := conversationsModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
				conversationsModel = updatedModel.(ConversationsModel)
				return conversationsModel, conversationsModel.Init()
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m GroupsModel) View() string {
	if m.loading {
		return fmt.Sprintf("\n  %s Loading groups...\n", m.spinner.View())
	}

	if m.err != nil {
		s := titleStyle.Render("Groups") + "\n\n"
		s += errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
		s += helpStyle.Render("r: retry • ctrl+l: log out • q: quit")
		return s
	}

	s := m.list.View() + "\n"
	s += helpStyle.Render("↑↓/jk: navigate • enter: open • n: new group • m: members • p: profile • r: refresh • ctrl+l: log out • q: quit")

	return s
}
