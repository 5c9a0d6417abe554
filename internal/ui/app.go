// Package ui contains the terminal screens. Each screen is a bubbletea
// model that hands off to the next screen by returning it from Update.
package ui

import (
	"github.com/quillchat/quill/internal/chatsync"
	"github.com/quillchat/quill/internal/session"
)

// App bundles the shared services every screen needs. Screens read state
// through these and never hold collection data of their own.
type App struct {
	Session *session.Store
	Sync    *chatsync.Synchronizer
}
