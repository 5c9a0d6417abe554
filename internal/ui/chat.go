package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/quillchat/quill/internal/models"
)

type messagesRefreshedMsg struct {
	err error
}

type messageSentMsg struct {
	text string
	err  error
}

type assistantsFetchedMsg struct {
	assistants []models.Assistant
}

type ChatModel struct {
	app           *App
	viewport      viewport.Model
	textarea      textarea.Model
	loading       bool
	sending       bool
	composing     bool
	err           error
	spinner       spinner.Model
	windowWidth   int
	windowHeight  int
	assistantName string
}

// NewChatModel creates the message view for the selected conversation.
func NewChatModel(app *App) ChatModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	vp := viewport.New(80, 20)

	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	return ChatModel{
		app:          app,
		viewport:     vp,
		textarea:     ta,
		loading:      true,
		spinner:      s,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshMessagesCmd(), m.fetchAssistantsCmd())
}

func (m ChatModel) fetchAssistantsCmd() tea.Cmd {
	return func() tea.Msg {
		// Best effort: messages usually carry the author name themselves.
		assistants, _ := m.app.Sync.Assistants(context.Background())
		return assistantsFetchedMsg{assistants: assistants}
	}
}

func (m ChatModel) refreshMessagesCmd() tea.Cmd {
	return func() tea.Msg {
		return messagesRefreshedMsg{err: m.app.Sync.RefreshMessages(context.Background())}
	}
}

func (m ChatModel) sendMessageCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return messageSentMsg{text: text, err: m.app.Sync.Send(context.Background(), text)}
	}
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height

		headerHeight := 6
		textareaHeight := 5
		helpHeight := 2
		availableHeight := msg.Height - headerHeight - helpHeight

		if m.composing {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = availableHeight - textareaHeight
			m.textarea.SetWidth(msg.Width - 4)
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = availableHeight
		}

		m.updateViewportContent()
		return m, nil

	case messagesRefreshedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.updateViewportContent()
		m.viewport.GotoBottom()
		return m, nil

	case assistantsFetchedMsg:
		if len(msg.assistants) > 0 {
			m.assistantName = msg.assistants[0].Name
			m.updateViewportContent()
		}
		return m, nil

	case messageSentMsg:
		m.sending = false
		if msg.err != nil {
			// The optimistic entry was rolled back; give the text back to
			// the composer so nothing typed is lost.
			m.err = msg.err
			m.composing = true
			m.textarea.SetValue(msg.text)
			m.textarea.Focus()
			m.updateViewportContent()
			return m, textarea.Blink
		}
		m.err = nil
		m.updateViewportContent()
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if m.loading || m.sending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.updateViewportContent()
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if msg.String() == "esc" {
			if m.composing {
				m.composing = false
				m.textarea.Reset()
				m.textarea.Blur()
				m.err = nil
				return m, nil
			}
			conversationsModel := NewConversationsModel(m.app)
			updatedModel, cmd := conversationsModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
			conversationsModel = updatedModel.(ConversationsModel)
			return conversationsModel, tea.Batch(conversationsModel.Init(), cmd)
		}

		if m.composing {
			switch msg.String() {
			case "ctrl+s":
				messageText := strings.TrimSpace(m.textarea.Value())
				if messageText != "" {
					m.sending = true
					m.composing = false
					m.textarea.Reset()
					m.textarea.Blur()
					return m, tea.Batch(
						m.spinner.Tick,
						m.sendMessageCmd(messageText),
					)
				}
				return m, nil
			default:
				var cmd tea.Cmd
				m.textarea, cmd = m.textarea.Update(msg)
				return m, cmd
			}
		}

		if m.loading || m.sending {
			return m, nil
		}

		switch msg.String() {
		case "n", "c", "i":
			m.composing = true
			m.textarea.Focus()
			return m, textarea.Blink

		case "r":
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.refreshMessagesCmd())

		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *ChatModel) updateViewportContent() {
	messages, _, _ := m.app.Sync.Messages()
	if len(messages) == 0 {
		m.viewport.SetContent("")
		return
	}

	pendingID := m.app.Sync.PendingMessageID()

	var content strings.Builder
	wrapWidth := m.viewport.Width
	if wrapWidth <= 0 {
		wrapWidth = 80
	}

	for i, message := range messages {
		if i > 0 {
			content.WriteString("\n")
		}

		timestamp := message.CreatedAt.Format("3:04 PM")

		if message.AuthorType == models.AuthorUser {
			sender := "You"
			if message.ID == pendingID {
				sender = "You (sending)"
			}
			header := messageHeaderStyle.Render(fmt.Sprintf("%s • %s", sender, timestamp))
			content.WriteString(lipgloss.NewStyle().Align(lipgloss.Right).Width(wrapWidth).Render(header) + "\n")

			style := userMsgStyle
			if message.ID == pendingID {
				style = pendingMsgStyle
			}
			wrappedText := wordwrap.String(message.Content.Text, wrapWidth-10)
			content.WriteString(lipgloss.NewStyle().Align(lipgloss.Right).Width(wrapWidth).Render(style.Render(wrappedText)) + "\n")
		} else {
			sender := message.Author
			if sender == "" {
				sender = m.assistantName
			}
			if sender == "" {
				sender = "Assistant"
			}
			header := messageHeaderStyle.Render(fmt.Sprintf("%s • %s", sender, timestamp))
			content.WriteString(header + "\n")

			wrappedText := wordwrap.String(message.Content.Text, wrapWidth-10)
			content.WriteString(assistantMsgStyle.Render(wrappedText) + "\n")
		}
	}

	m.viewport.SetContent(content.String())
}

func (m ChatModel) View() string {
	if m.loading {
		return fmt.Sprintf("\n  %s Loading messages...\n", m.spinner.View())
	}

	title := "Conversation"
	if entry, ok := m.app.Sync.SelectedConversation(); ok {
		title = entry.Label()
	}
	s := titleStyle.Render(fmt.Sprintf("💬 %s", title)) + "\n\n"

	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
	}

	messages, _, _ := m.app.Sync.Messages()
	if len(messages) == 0 && !m.sending {
		s += normalStyle.Render("  No messages yet. Press 'n' to write one.") + "\n"
	} else {
		s += m.viewport.View() + "\n"
	}

	if m.sending {
		s += fmt.Sprintf("\n  %s Waiting for the assistant...\n", m.spinner.View())
	}

	if m.composing {
		s += "\n" + inputStyle.Render("New Message:") + "\n"
		s += m.textarea.View() + "\n"
		s += helpStyle.Render("ctrl+s: send • esc: cancel")
	} else {
		scrollPercent := int(m.viewport.ScrollPercent() * 100)
		s += "\n" + helpStyle.Render(fmt.Sprintf("↑↓/jk: scroll • n: compose • r: refresh • esc: back • %d%%", scrollPercent))
	}

	return s
}
