package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/quillchat/quill/internal/api"
	"github.com/quillchat/quill/internal/chatsync"
	"github.com/quillchat/quill/internal/config"
	"github.com/quillchat/quill/internal/session"
	"github.com/quillchat/quill/internal/store"
	"github.com/quillchat/quill/internal/ui"
)

const version = "1.0.0"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "-v", "--version":
			fmt.Printf("Quill v%s\n", version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		default:
			fmt.Printf("Unknown command: %s\n", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}

	cfg, err := config.Load(filepath.Join(config.Dir(), "config.yml"))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	kv, err := store.Open(store.DefaultPath())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer kv.Close()

	client := api.NewClient(cfg.ServerURL)
	sess := session.NewStore(client, kv)
	sync := chatsync.New(client, sess)
	app := &ui.App{Session: sess, Sync: sync}

	var initialModel tea.Model
	if sess.Restore(context.Background()) {
		initialModel = ui.NewGroupsModel(app)
	} else {
		initialModel = ui.NewLoginModel(app)
	}

	p := tea.NewProgram(initialModel, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging sends logs to a file; stderr belongs to the TUI.
func setupLogging(cfg config.Config) {
	logPath := cfg.LogFile
	if logPath == "" {
		logPath = filepath.Join(config.Dir(), "quill.log")
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return
	}

	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}

	jww.SetLogOutput(logFile)
	jww.SetLogThreshold(jww.LevelInfo)
	jww.SetStdoutThreshold(jww.LevelFatal)
}

func printHelp() {
	help := `Quill - Terminal Assistant Chat Client

Usage:
  quill              Start the chat client
  quill version      Show version information
  quill help         Show this help message

Navigation:
  ↑/↓ or j/k        Navigate lists
  Enter             Select/Open item
  ESC               Go back
  q                 Quit from current view
  ctrl+c            Force quit

Sign in:
  enter             Sign in with email and password
  ctrl+r            Switch to account registration

Groups:
  n                 Create a new group
  m                 View group members
  p                 Edit your profile
  ctrl+l            Log out

Members:
  a                 Add a member by email
  t                 Toggle the selected member's role
  x                 Remove the selected member

Conversations:
  n or c            Start a new conversation (draft)
  d                 Delete a conversation
  /                 Search conversations
  r                 Refresh conversation list

Chat:
  n or c            Compose a message
  ctrl+s            Send message (while composing)
  r                 Refresh messages
  ↑/↓ or j/k        Scroll messages

Configuration:
  Server address is read from ~/.quill/config.yml (server_url)
  or the QUILL_SERVER_URL environment variable.

Notes:
  - A new conversation stays local until its first message is sent
  - Your session token is stored in ~/.quill/quill.db
  - Logs are written to ~/.quill/quill.log
`
	fmt.Print(help)
}
