// Package chatsync keeps the three nested collections of the client —
// groups, conversations, messages — consistent with the server under
// optimistic updates. It owns all collection and selection state; the
// presentation layer reads snapshots and calls operations, never mutating
// state directly.
package chatsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aquilax/truncate"
	"github.com/google/uuid"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/quillchat/quill/internal/api"
	"github.com/quillchat/quill/internal/models"
	"github.com/quillchat/quill/internal/session"
)

// Status is the lifecycle of one collection tier.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusErrored
)

var (
	ErrNoGroup        = errors.New("no group selected")
	ErrNoConversation = errors.New("no conversation selected")
)

// titleLimit caps auto-generated conversation titles. Text longer than the
// limit is cut to 47 characters plus "...".
const titleLimit = 50

type tier struct {
	status Status
	err    error
}

func (t *tier) loading() { t.status = StatusLoading; t.err = nil }
func (t *tier) loaded()  { t.status = StatusLoaded; t.err = nil }
func (t *tier) idle()    { t.status = StatusIdle; t.err = nil }

func (t *tier) errored(err error) {
	t.status = StatusErrored
	t.err = err
}

// Synchronizer manages the group, conversation, and message collections and
// their selection pointers. Concurrent refreshes of the same tier are
// tolerated: the last response to resolve wins. The mutex only guards state
// mutation; it is never held across a network call.
type Synchronizer struct {
	client  *api.Client
	session *session.Store

	mu sync.Mutex

	groups     []models.Group
	groupsTier tier
	groupSel   string

	entries  []Entry
	convTier tier
	convSel  string

	messages []models.Message
	msgTier  tier

	pendingID     string
	awaitingReply bool
}

func New(client *api.Client, sess *session.Store) *Synchronizer {
	return &Synchronizer{client: client, session: sess}
}

// RefreshGroups fetches the group list. After a successful load, if nothing
// is selected yet, the first non-personal group in server order is selected
// (falling back to the first group). An existing selection is never
// overridden.
func (s *Synchronizer) RefreshGroups(ctx context.Context) error {
	s.mu.Lock()
	s.groupsTier.loading()
	s.mu.Unlock()

	groups, err := s.client.Groups(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.groupsTier.errored(err)
		return err
	}

	s.groups = groups
	s.groupsTier.loaded()

	if s.groupSel == "" && len(groups) > 0 {
		s.groupSel = autoSelect(groups).ID
		s.resetConversationsLocked()
	}

	return nil
}

func autoSelect(groups []models.Group) models.Group {
	for _, g := range groups {
		if !g.IsPersonal {
			return g
		}
	}
	return groups[0]
}

// SelectGroup switches the selected group. Conversation selection is
// group-local, so switching invalidates it along with both downstream tiers.
// No network call is made; the caller refreshes conversations when ready.
func (s *Synchronizer) SelectGroup(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.groupSel == id {
		return
	}
	s.groupSel = id
	s.resetConversationsLocked()
}

func (s *Synchronizer) resetConversationsLocked() {
	s.entries = nil
	s.convTier.idle()
	s.convSel = ""
	s.resetMessagesLocked()
}

func (s *Synchronizer) resetMessagesLocked() {
	s.messages = nil
	s.msgTier.idle()
}

// RefreshConversations fetches the conversation list for the selected group.
// An undelivered draft for that group survives the refresh at the head of
// the list. A response that arrives after the group selection changed is
// swallowed.
func (s *Synchronizer) RefreshConversations(ctx context.Context) error {
	s.mu.Lock()
	groupID := s.groupSel
	if groupID == "" {
		s.entries = nil
		s.convTier.idle()
		s.mu.Unlock()
		return nil
	}
	s.convTier.loading()
	s.mu.Unlock()

	conversations, err := s.client.Conversations(ctx, groupID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.groupSel != groupID {
		return nil
	}

	if err != nil {
		s.convTier.errored(err)
		return err
	}

	s.applyConversationsLocked(groupID, conversations)
	s.convTier.loaded()
	return nil
}

func (s *Synchronizer) applyConversationsLocked(groupID string, conversations []models.Conversation) {
	entries := make([]Entry, 0, len(conversations)+1)
	if draft, ok := s.currentDraftLocked(); ok && draft.GroupID == groupID {
		entries = append(entries, draft)
	}
	for _, c := range conversations {
		entries = append(entries, Persisted{c})
	}
	s.entries = entries
}

func (s *Synchronizer) currentDraftLocked() (Draft, bool) {
	for _, e := range s.entries {
		if d, ok := e.(Draft); ok {
			return d, true
		}
	}
	return Draft{}, false
}

// SelectConversation switches the selected conversation and clears the
// message tier. Selecting a draft leaves messages idle: a draft has nothing
// to fetch.
func (s *Synchronizer) SelectConversation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.convSel == id {
		return
	}
	s.convSel = id
	s.resetMessagesLocked()
}

// RefreshMessages fetches messages for the selected conversation. With no
// selection, or with a draft selected, the tier stays idle and empty. A
// response that arrives after the selection changed is swallowed.
func (s *Synchronizer) RefreshMessages(ctx context.Context) error {
	s.mu.Lock()
	convID := s.convSel
	entry, ok := s.entryLocked(convID)
	if convID == "" || !ok || entry.IsDraft() {
		s.resetMessagesLocked()
		s.mu.Unlock()
		return nil
	}
	s.msgTier.loading()
	s.mu.Unlock()

	messages, err := s.client.Messages(ctx, convID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.convSel != convID {
		return nil
	}

	if err != nil {
		s.msgTier.errored(err)
		return err
	}

	s.messages = messages
	s.msgTier.loaded()
	return nil
}

// NewDraft creates a draft conversation in the selected group: a locally
// unique id, head position in the list, and the selection moved to it. Any
// prior undelivered draft is discarded. No network call occurs.
func (s *Synchronizer) NewDraft() (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.groupSel == "" {
		return Draft{}, ErrNoGroup
	}

	draft := Draft{
		LocalID:   uuid.NewString(),
		GroupID:   s.groupSel,
		CreatedAt: time.Now(),
	}

	entries := make([]Entry, 0, len(s.entries)+1)
	entries = append(entries, draft)
	for _, e := range s.entries {
		if e.IsDraft() {
			continue
		}
		entries = append(entries, e)
	}
	s.entries = entries
	s.convSel = draft.LocalID
	s.resetMessagesLocked()

	return draft, nil
}

// Send delivers text to the selected conversation and appends the
// assistant's reply.
//
// A selected draft is first created on the server and replaced in the list
// in place, with the selection moved to the persisted conversation, before
// any message traffic. The user's message is appended optimistically with a
// temporary id so the sender sees it immediately; once the server answers,
// the optimistic entry is removed and the authoritative user and assistant
// messages are appended. A failed send removes the optimistic entry, records
// the tier error, and returns the error so the caller can react. The
// awaiting-reply indicator clears on every path.
//
// If this was the conversation's first message and it has no title, a title
// is derived from the text and patched to the server; a failure there is
// logged and otherwise ignored.
func (s *Synchronizer) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.convSel == "" {
		s.mu.Unlock()
		return ErrNoConversation
	}

	convID := s.convSel
	entry, ok := s.entryLocked(convID)
	if !ok {
		s.mu.Unlock()
		return ErrNoConversation
	}

	draft, isDraft := entry.(Draft)
	s.awaitingReply = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.awaitingReply = false
		s.mu.Unlock()
	}()

	if isDraft {
		conversation, err := s.client.CreateConversation(ctx, draft.GroupID, "")
		if err != nil {
			s.mu.Lock()
			s.msgTier.errored(err)
			s.mu.Unlock()
			return err
		}

		s.mu.Lock()
		s.promoteDraftLocked(draft.LocalID, conversation)
		convID = conversation.ID
		entry = Persisted{conversation}
		s.mu.Unlock()
	}

	persisted, ok := entry.(Persisted)
	if !ok {
		return ErrNoConversation
	}

	identity, _ := s.session.Current()

	s.mu.Lock()
	needsTitle := len(s.messages) == 0 && persisted.Title == ""
	optimistic := models.Message{
		ID:             uuid.NewString(),
		ConversationID: convID,
		SequenceNumber: len(s.messages) + 1,
		AuthorType:     models.AuthorUser,
		AuthorID:       identity.ID,
		Author:         identity.DisplayName,
		Content:        models.MessageContent{Type: "text", Text: text},
		CreatedAt:      time.Now(),
	}
	s.messages = append(s.messages, optimistic)
	s.pendingID = optimistic.ID
	s.mu.Unlock()

	turn, err := s.client.SendMessage(ctx, convID, text)

	s.mu.Lock()
	s.removeOptimisticLocked(optimistic.ID)
	// The selection may have moved while the reply was pending; the message
	// tier belongs to the current selection, so a late result must not be
	// written into it.
	stale := s.convSel != convID
	if err != nil {
		if !stale {
			s.msgTier.errored(err)
		}
		s.mu.Unlock()
		return err
	}
	if !stale {
		s.messages = append(s.messages, turn.UserMessage, turn.AssistantMessage)
		s.msgTier.loaded()
	}
	s.mu.Unlock()

	if needsTitle {
		s.generateTitle(ctx, convID, text)
	}

	return nil
}

func (s *Synchronizer) promoteDraftLocked(localID string, conversation models.Conversation) {
	for i, e := range s.entries {
		if e.EntryID() == localID {
			s.entries[i] = Persisted{conversation}
			break
		}
	}
	if s.convSel == localID {
		s.convSel = conversation.ID
	}
}

func (s *Synchronizer) removeOptimisticLocked(id string) {
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			break
		}
	}
	if s.pendingID == id {
		s.pendingID = ""
	}
}

// generateTitle derives a title from the first message and patches it to the
// server. A stale or missing title is not a user-facing failure.
func (s *Synchronizer) generateTitle(ctx context.Context, convID, text string) {
	title := truncate.Truncate(text, titleLimit, "...", truncate.PositionEnd)

	updated, err := s.client.UpdateConversationTitle(ctx, convID, title)
	if err != nil {
		jww.ERROR.Printf("chatsync: title update for %s failed: %v", convID, err)
		return
	}

	s.mu.Lock()
	for i, e := range s.entries {
		if e.EntryID() == convID {
			s.entries[i] = Persisted{updated}
			break
		}
	}
	s.mu.Unlock()
}

// DeleteConversation removes the conversation locally right away. A draft
// needs nothing more; a persisted conversation is then deleted remotely, and
// on failure the list is re-fetched from the server since the optimistic
// removal may now be wrong.
func (s *Synchronizer) DeleteConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	entry, ok := s.entryLocked(id)
	if !ok {
		s.mu.Unlock()
		return nil
	}

	for i, e := range s.entries {
		if e.EntryID() == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	if s.convSel == id {
		s.convSel = ""
		s.resetMessagesLocked()
	}
	groupID := s.groupSel
	s.mu.Unlock()

	if entry.IsDraft() {
		return nil
	}

	err := s.client.DeleteConversation(ctx, id)
	if err == nil {
		return nil
	}

	s.mu.Lock()
	s.convTier.errored(err)
	s.mu.Unlock()

	if conversations, refErr := s.client.Conversations(ctx, groupID); refErr == nil {
		s.mu.Lock()
		if s.groupSel == groupID {
			s.applyConversationsLocked(groupID, conversations)
			s.convTier.loaded()
		}
		s.mu.Unlock()
	} else {
		jww.ERROR.Printf("chatsync: reconciling refetch after failed delete: %v", refErr)
	}

	return err
}

// CreateGroup creates a group on the server, appends it, and selects it.
func (s *Synchronizer) CreateGroup(ctx context.Context, name string) (models.Group, error) {
	group, err := s.client.CreateGroup(ctx, name)
	if err != nil {
		s.mu.Lock()
		s.groupsTier.errored(err)
		s.mu.Unlock()
		return models.Group{}, err
	}

	s.mu.Lock()
	s.groups = append(s.groups, group)
	s.groupsTier.loaded()
	s.groupSel = group.ID
	s.resetConversationsLocked()
	s.mu.Unlock()

	return group, nil
}

// LoadMembers fetches the member list of a group for display.
func (s *Synchronizer) LoadMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	return s.client.GroupMembers(ctx, groupID)
}

// AddMember invites a user into a group.
func (s *Synchronizer) AddMember(ctx context.Context, groupID, email, role string) (models.GroupMember, error) {
	return s.client.AddGroupMember(ctx, groupID, email, role)
}

// UpdateMemberRole changes a member's role within a group.
func (s *Synchronizer) UpdateMemberRole(ctx context.Context, groupID, userID, role string) (models.GroupMember, error) {
	return s.client.UpdateGroupMemberRole(ctx, groupID, userID, role)
}

// RemoveMember removes a member from a group.
func (s *Synchronizer) RemoveMember(ctx context.Context, groupID, userID string) error {
	return s.client.RemoveGroupMember(ctx, groupID, userID)
}

// Assistants lists the assistants available on the server.
func (s *Synchronizer) Assistants(ctx context.Context) ([]models.Assistant, error) {
	return s.client.Assistants(ctx)
}

func (s *Synchronizer) entryLocked(id string) (Entry, bool) {
	for _, e := range s.entries {
		if e.EntryID() == id {
			return e, true
		}
	}
	return nil, false
}

// Groups returns a snapshot of the group tier.
func (s *Synchronizer) Groups() ([]models.Group, Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Group(nil), s.groups...), s.groupsTier.status, s.groupsTier.err
}

// Conversations returns a snapshot of the conversation tier.
func (s *Synchronizer) Conversations() ([]Entry, Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...), s.convTier.status, s.convTier.err
}

// Messages returns a snapshot of the message tier.
func (s *Synchronizer) Messages() ([]models.Message, Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages...), s.msgTier.status, s.msgTier.err
}

// SelectedGroup returns the selected group, if any.
func (s *Synchronizer) SelectedGroup() (models.Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.ID == s.groupSel {
			return g, true
		}
	}
	return models.Group{}, false
}

// SelectedConversation returns the selected conversation entry, if any.
func (s *Synchronizer) SelectedConversation() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entryLocked(s.convSel)
}

// AwaitingReply reports whether a sent message is still waiting on the
// assistant. This is distinct from the message tier's loading status.
func (s *Synchronizer) AwaitingReply() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaitingReply
}

// PendingMessageID returns the id of the in-flight optimistic message, empty
// when none.
func (s *Synchronizer) PendingMessageID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingID
}
