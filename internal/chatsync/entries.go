package chatsync

import (
	"time"

	"github.com/quillchat/quill/internal/models"
)

// Entry is one item in the conversation list: either a Draft that exists
// only in client memory or a Persisted conversation acknowledged by the
// server. Keeping the two as distinct types means they cannot be silently
// confused.
type Entry interface {
	// EntryID identifies the entry within the list. For a Draft this is the
	// locally generated id, which is never sent to the server.
	EntryID() string
	Label() string
	IsDraft() bool
}

type Draft struct {
	LocalID   string
	GroupID   string
	CreatedAt time.Time
}

func (d Draft) EntryID() string { return d.LocalID }
func (d Draft) Label() string   { return "New conversation" }
func (d Draft) IsDraft() bool   { return true }

type Persisted struct {
	models.Conversation
}

func (p Persisted) EntryID() string { return p.Conversation.ID }
func (p Persisted) IsDraft() bool   { return false }

func (p Persisted) Label() string {
	if p.Title == "" {
		return "Untitled conversation"
	}
	return p.Title
}
