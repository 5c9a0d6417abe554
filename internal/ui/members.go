package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quillchat/quill/internal/models"
)

type memberItem struct {
	member models.GroupMember
}

func (i memberItem) FilterValue() string { return i.member.DisplayName }

func (i memberItem) Title() string {
	if i.member.DisplayName != "" {
		return i.member.DisplayName
	}
	return i.member.Email
}

func (i memberItem) Description() string {
	return fmt.Sprintf("%s • %s", i.member.Email, i.member.Role)
}

type membersLoadedMsg struct {
	members []models.GroupMember
	err     error
}

type memberChangedMsg struct {
	err error
}

type MembersModel struct {
	app          *App
	group        models.Group
	list         list.Model
	loading      bool
	err          error
	windowWidth  int
	windowHeight int
}

// NewMembersModel creates the member list for one group.
func NewMembersModel(app *App, group models.Group) MembersModel {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("5")).
		Bold(true)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("8"))

	l := list.New([]list.Item{}, delegate, 80, 20)
	l.Title = fmt.Sprintf("Members - %s", group.Name)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return MembersModel{
		app:          app,
		group:        group,
		list:         l,
		loading:      true,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m MembersModel) Init() tea.Cmd {
	return m.loadMembersCmd()
}

func (m MembersModel) loadMembersCmd() tea.Cmd {
	return func() tea.Msg {
		members, err := m.app.Sync.LoadMembers(context.Background(), m.group.ID)
		return membersLoadedMsg{members: members, err: err}
	}
}

func (m MembersModel) toggleRoleCmd(member models.GroupMember) tea.Cmd {
	return func() tea.Msg {
		role := "admin"
		if member.Role == "admin" {
			role = "member"
		}
		_, err := m.app.Sync.UpdateMemberRole(context.Background(), m.group.ID, member.UserID, role)
		return memberChangedMsg{err: err}
	}
}

func (m MembersModel) removeMemberCmd(member models.GroupMember) tea.Cmd {
	return func() tea.Msg {
		err := m.app.Sync.RemoveMember(context.Background(), m.group.ID, member.UserID)
		return memberChangedMsg{err: err}
	}
}

func (m MembersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case membersLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		items := make([]list.Item, len(msg.members))
		for i, member := range msg.members {
			items[i] = memberItem{member: member}
		}
		m.list.SetItems(items)
		m.list.Title = fmt.Sprintf("Members - %s - %d total", m.group.Name, len(msg.members))
		return m, nil

	case memberChangedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.loading = true
		return m, m.loadMembersCmd()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if msg.String() == "esc" || msg.String() == "q" {
			groupsModel := NewGroupsModel(m.app)
			updatedModel, _ := groupsModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
			groupsModel = updatedModel.(GroupsModel)
			return groupsModel, groupsModel.Init()
		}

		if msg.String() == "a" && !m.loading {
			formModel := NewMemberFormModel(m.app, m.group)
			updatedModel, _ := formModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
			formModel = updatedModel.(MemberFormModel)
			return formModel, formModel.Init()
		}

		if msg.String() == "t" && !m.loading {
			if item, ok := m.list.SelectedItem().(memberItem); ok {
				return m, m.toggleRoleCmd(item.member)
			}
			return m, nil
		}

		if msg.String() == "x" && !m.loading {
			if item, ok := m.list.SelectedItem().(memberItem); ok {
				return m, m.removeMemberCmd(item.member)
			}
			return m, nil
		}

		if msg.String() == "r" && !m.loading {
			m.loading = true
			return m, m.loadMembersCmd()
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m MembersModel) View() string {
	if m.loading {
		return "\n  Loading members...\n"
	}

	if m.err != nil {
		s := titleStyle.Render("Members") + "\n\n"
		s += errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
		s += helpStyle.Render("esc: back • q: quit")
		return s
	}

	s := m.list.View() + "\n"
	s += helpStyle.Render("↑↓/jk: navigate • a: add member • t: toggle role • x: remove • r: refresh • esc: back")

	return s
}
