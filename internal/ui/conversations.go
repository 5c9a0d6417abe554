package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quillchat/quill/internal/chatsync"
)

type conversationItem struct {
	entry chatsync.Entry
}

func (i conversationItem) FilterValue() string { return i.entry.Label() }
func (i conversationItem) Title() string       { return i.entry.Label() }

func (i conversationItem) Description() string {
	if i.entry.IsDraft() {
		return "Draft • not yet saved"
	}
	if p, ok := i.entry.(chatsync.Persisted); ok {
		return formatTimeAgo(p.UpdatedAt)
	}
	return ""
}

func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}

	now := time.Now()
	duration := now.Sub(t)

	if duration < time.Minute {
		return "just now"
	}
	if duration < 2*time.Minute {
		return "1 min ago"
	}
	if duration < time.Hour {
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	}
	if duration < 2*time.Hour {
		return "1h ago"
	}
	if duration < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	}
	if duration < 48*time.Hour {
		return "yesterday"
	}
	if duration < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	}
	return t.Format("Jan 2")
}

type conversationsRefreshedMsg struct {
	err error
}

type conversationDeletedMsg struct {
	err error
}

type ConversationsModel struct {
	app           *App
	list          list.Model
	loading       bool
	err           error
	spinner       spinner.Model
	windowWidth   int
	windowHeight  int
	confirmDelete bool
	deleteTarget  chatsync.Entry
}

// NewConversationsModel creates the conversation list for the selected group.
func NewConversationsModel(app *App) ConversationsModel {
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
	l.Title = "Conversations"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return ConversationsModel{
		app:          app,
		list:         l,
		loading:      true,
		spinner:      s,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m ConversationsModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshConversationsCmd())
}

func (m ConversationsModel) refreshConversationsCmd() tea.Cmd {
	return func() tea.Msg {
		return conversationsRefreshedMsg{err: m.app.Sync.RefreshConversations(context.Background())}
	}
}

func (m ConversationsModel) deleteConversationCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return conversationDeletedMsg{err: m.app.Sync.DeleteConversation(context.Background(), id)}
	}
}

func (m *ConversationsModel) syncItems() {
	entries, _, _ := m.app.Sync.Conversations()
	items := make([]list.Item, len(entries))
	for i, entry := range entries {
		items[i] = conversationItem{entry: entry}
	}
	m.list.SetItems(items)

	title := "Conversations"
	if group, ok := m.app.Sync.SelectedGroup(); ok {
		title = fmt.Sprintf("%s - %d conversations", group.Name, len(entries))
	}
	m.list.Title = title
}

func (m ConversationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case conversationsRefreshedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.syncItems()
		return m, nil

	case conversationDeletedMsg:
		// The synchronizer already reconciled the list, success or failure.
		m.err = msg.err
		m.syncItems()
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.confirmDelete {
			if msg.String() == "y" || msg.String() == "Y" {
				target := m.deleteTarget
				m.confirmDelete = false
				m.deleteTarget = nil
				if target != nil {
					return m, m.deleteConversationCmd(target.EntryID())
				}
				return m, nil
			}
			if msg.String() == "n" || msg.String() == "N" || msg.String() == "esc" {
				m.confirmDelete = false
				m.deleteTarget = nil
				return m, nil
			}
			return m, nil
		}

		if msg.String() == "esc" || msg.String() == "q" {
			groupsModel := NewGroupsModel(m.app)
			updatedModel, _ := groupsModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
			groupsModel = updatedModel.(GroupsModel)
			return groupsModel, groupsModel.Init()
		}

		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "r":
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.refreshConversationsCmd())

		case "n", "c":
			if _, err := m.app.Sync.NewDraft(); err != nil {
				m.err = err
				return m, nil
			}
			chatModel := NewChatModel(m.app)
			updatedModel, _ := chatModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
			chatModel = updatedModel.(ChatModel)
			return chatModel, chatModel.Init()

		case "d", "delete":
			if item, ok := m.list.SelectedItem().(conversationItem); ok {
				m.confirmDelete = true
				m.deleteTarget = item.entry
			}
			return m, nil

		case "enter":
			if item, ok := m.list.SelectedItem().(conversationItem); ok {
				m.app.Sync.SelectConversation(item.entry.EntryID())
				chatModel := NewChatModel(m.app)
				updatedModel, _ := chatModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
				chatModel = updatedModel.(ChatModel)
				return chatModel, chatModel.Init()
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ConversationsModel) View() string {
	if m.confirmDelete && m.deleteTarget != nil {
		s := titleStyle.Render("Delete Conversation") + "\n\n"
		s += normalStyle.Render(fmt.Sprintf("Are you sure you want to delete '%s'?", m.deleteTarget.Label())) + "\n\n"
		s += errorStyle.Render("This action cannot be undone.") + "\n\n"
		s += helpStyle.Render("y: confirm delete • n/esc: cancel")
		return s
	}

	if m.loading {
		return fmt.Sprintf("\n  %s Loading conversations...\n", m.spinner.View())
	}

	if m.err != nil {
		s := titleStyle.Render("Conversations") + "\n\n"
		s += errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
		s += helpStyle.Render("r: retry • esc: back • ctrl+c: quit")
		return s
	}

	if len(m.list.Items()) == 0 {
		s := titleStyle.Render("Conversations") + "\n\n"
		s += normalStyle.Render("  No conversations yet. Press 'n' to start one.") + "\n"
		s += "\n" + helpStyle.Render("n: new conversation • r: refresh • esc: back")
		return s
	}

	s := m.list.View() + "\n"
	s += helpStyle.Render("↑↓/jk: navigate • enter: open • n: new • d: delete • /: search • r: refresh • esc: back")

	return s
}
