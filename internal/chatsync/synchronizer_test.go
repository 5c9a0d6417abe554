package chatsync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quillchat/quill/internal/api"
	"github.com/quillchat/quill/internal/models"
	"github.com/quillchat/quill/internal/session"
	"github.com/quillchat/quill/internal/store"
)

// fakeBackend is an in-memory rendition of the REST API, just enough for the
// synchronizer's flows.
type fakeBackend struct {
	mu            sync.Mutex
	groups        []models.Group
	conversations map[string][]models.Conversation
	messages      map[string][]models.Message
	nextConv      int
	nextMsg       int
	requests      []string
	failSend      bool
	failPatch     bool
	failDelete    bool
	patchedTitles []string

	// When set, message sends park until the channel closes. Lets a test
	// change state while a send is in flight.
	sendGate chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		conversations: make(map[string][]models.Conversation),
		messages:      make(map[string][]models.Message),
	}
}

func (f *fakeBackend) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.sendGate != nil && r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/messages") {
		<-f.sendGate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/groups":
		writeJSON(w, map[string]any{"groups": f.groups})

	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "groups" && parts[2] == "conversations":
		writeJSON(w, map[string]any{"conversations": f.conversations[parts[1]]})

	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "groups" && parts[2] == "conversations":
		f.nextConv++
		conv := models.Conversation{
			ID:        fmt.Sprintf("conv%d", f.nextConv),
			GroupID:   parts[1],
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		f.conversations[parts[1]] = append([]models.Conversation{conv}, f.conversations[parts[1]]...)
		writeJSON(w, conv)

	case r.Method == http.MethodPatch && len(parts) == 2 && parts[0] == "conversations":
		if f.failPatch {
			writeError(w, http.StatusInternalServerError, "patch failed")
			return
		}
		var body struct {
			Title string `json:"title"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.patchedTitles = append(f.patchedTitles, body.Title)
		for groupID, convs := range f.conversations {
			for i, c := range convs {
				if c.ID == parts[1] {
					f.conversations[groupID][i].Title = body.Title
					writeJSON(w, f.conversations[groupID][i])
					return
				}
			}
		}
		writeJSON(w, models.Conversation{ID: parts[1], Title: body.Title})

	case r.Method == http.MethodDelete && len(parts) == 2 && parts[0] == "conversations":
		if f.failDelete {
			writeError(w, http.StatusInternalServerError, "delete failed")
			return
		}
		for groupID, convs := range f.conversations {
			for i, c := range convs {
				if c.ID == parts[1] {
					f.conversations[groupID] = append(convs[:i], convs[i+1:]...)
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
		}
		writeError(w, http.StatusNotFound, "conversation not found")

	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "conversations" && parts[2] == "messages":
		msgs := f.messages[parts[1]]
		writeJSON(w, map[string]any{"messages": msgs, "total": len(msgs)})

	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "conversations" && parts[2] == "messages":
		if f.failSend {
			writeError(w, http.StatusInternalServerError, "assistant unavailable")
			return
		}
		var body struct {
			Text string `json:"text"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		convID := parts[1]
		seq := len(f.messages[convID])
		f.nextMsg++
		userMsg := models.Message{
			ID:             fmt.Sprintf("m%d", f.nextMsg),
			ConversationID: convID,
			SequenceNumber: seq + 1,
			AuthorType:     models.AuthorUser,
			Content:        models.MessageContent{Type: "text", Text: body.Text},
			CreatedAt:      time.Now(),
		}
		f.nextMsg++
		assistantMsg := models.Message{
			ID:             fmt.Sprintf("m%d", f.nextMsg),
			ConversationID: convID,
			SequenceNumber: seq + 2,
			AuthorType:     models.AuthorAssistant,
			Content:        models.MessageContent{Type: "text", Text: "reply to: " + body.Text},
			CreatedAt:      time.Now(),
		}
		f.messages[convID] = append(f.messages[convID], userMsg, assistantMsg)
		writeJSON(w, map[string]any{"user_message": userMsg, "assistant_message": assistantMsg})

	default:
		writeError(w, http.StatusNotFound, "no route for "+r.Method+" "+r.URL.Path)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func newTestSync(t *testing.T, backend *fakeBackend) *Synchronizer {
	t.Helper()

	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	kv, err := store.Open(filepath.Join(t.TempDir(), "quill.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	client := api.NewClient(server.URL)
	return New(client, session.NewStore(client, kv))
}

func group(id, name string, personal bool) models.Group {
	return models.Group{ID: id, Name: name, IsPersonal: personal}
}

func TestRefreshGroupsAutoSelectsFirstNonPersonal(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{
		group("g1", "Personal", true),
		group("g2", "Team A", false),
		group("g3", "Team B", false),
	}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))

	selected, ok := s.SelectedGroup()
	require.True(t, ok)
	require.Equal(t, "g2", selected.ID)

	_, status, err := s.Groups()
	require.Equal(t, StatusLoaded, status)
	require.NoError(t, err)
}

func TestRefreshGroupsAllPersonalFallsBackToFirst(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{
		group("g1", "Mine", true),
		group("g2", "Also mine", true),
	}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))

	selected, ok := s.SelectedGroup()
	require.True(t, ok)
	require.Equal(t, "g1", selected.ID)
}

func TestRefreshGroupsKeepsExplicitSelection(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{
		group("g1", "Personal", true),
		group("g2", "Team A", false),
		group("g3", "Team B", false),
	}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	s.SelectGroup("g3")

	require.NoError(t, s.RefreshGroups(context.Background()))

	selected, _ := s.SelectedGroup()
	require.Equal(t, "g3", selected.ID)
}

func TestRefreshGroupsErrorRecorded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusInternalServerError, "boom")
	}))
	defer server.Close()

	kv, err := store.Open(filepath.Join(t.TempDir(), "quill.db"))
	require.NoError(t, err)
	defer kv.Close()

	client := api.NewClient(server.URL)
	s := New(client, session.NewStore(client, kv))

	require.Error(t, s.RefreshGroups(context.Background()))

	_, status, tierErr := s.Groups()
	require.Equal(t, StatusErrored, status)
	require.Error(t, tierErr)
}

func TestSelectGroupClearsDownstreamTiers(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "A", false), group("g2", "B", false)}
	backend.conversations["g1"] = []models.Conversation{{ID: "c1", GroupID: "g1", Title: "One"}}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))
	s.SelectConversation("c1")
	require.NoError(t, s.RefreshMessages(context.Background()))

	s.SelectGroup("g2")

	entries, status, _ := s.Conversations()
	require.Empty(t, entries)
	require.Equal(t, StatusIdle, status)

	_, ok := s.SelectedConversation()
	require.False(t, ok)

	messages, msgStatus, _ := s.Messages()
	require.Empty(t, messages)
	require.Equal(t, StatusIdle, msgStatus)
}

func TestNewDraftIsLocalOnly(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	backend.conversations["g1"] = []models.Conversation{{ID: "c1", GroupID: "g1", Title: "Existing"}}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))
	before := backend.requestCount()

	draft, err := s.NewDraft()
	require.NoError(t, err)
	require.NotEmpty(t, draft.LocalID)

	// No network traffic for a draft.
	require.Equal(t, before, backend.requestCount())

	entries, _, _ := s.Conversations()
	require.True(t, entries[0].IsDraft())
	require.Equal(t, draft.LocalID, entries[0].EntryID())

	selected, ok := s.SelectedConversation()
	require.True(t, ok)
	require.Equal(t, draft.LocalID, selected.EntryID())
}

func TestNewDraftDiscardsPriorDraft(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))

	first, err := s.NewDraft()
	require.NoError(t, err)
	second, err := s.NewDraft()
	require.NoError(t, err)
	require.NotEqual(t, first.LocalID, second.LocalID)

	entries, _, _ := s.Conversations()
	drafts := 0
	for _, e := range entries {
		if e.IsDraft() {
			drafts++
			require.Equal(t, second.LocalID, e.EntryID())
		}
	}
	require.Equal(t, 1, drafts)
}

func TestNewDraftRequiresGroup(t *testing.T) {
	s := newTestSync(t, newFakeBackend())

	_, err := s.NewDraft()
	require.ErrorIs(t, err, ErrNoGroup)
}

func TestSendWithoutSelection(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))

	err := s.Send(context.Background(), "hello")
	require.ErrorIs(t, err, ErrNoConversation)
}

func TestSendPromotesDraftInPlace(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	backend.conversations["g1"] = []models.Conversation{
		{ID: "c1", GroupID: "g1", Title: "Older"},
		{ID: "c2", GroupID: "g1", Title: "Oldest"},
	}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))
	draft, err := s.NewDraft()
	require.NoError(t, err)

	require.NoError(t, s.Send(context.Background(), "hello there"))

	entries, _, _ := s.Conversations()
	require.Len(t, entries, 3)

	// The draft's slot now holds exactly one persisted conversation.
	require.False(t, entries[0].IsDraft())
	promoted, ok := entries[0].(Persisted)
	require.True(t, ok)
	require.NotEqual(t, draft.LocalID, promoted.Conversation.ID)
	require.Equal(t, "c1", entries[1].EntryID())
	require.Equal(t, "c2", entries[2].EntryID())

	for _, e := range entries {
		require.False(t, e.IsDraft())
	}

	// Selection moved to the persisted conversation.
	selected, ok := s.SelectedConversation()
	require.True(t, ok)
	require.Equal(t, promoted.Conversation.ID, selected.EntryID())

	// Exactly the authoritative pair, no residual optimistic entry.
	messages, status, _ := s.Messages()
	require.Equal(t, StatusLoaded, status)
	require.Len(t, messages, 2)
	require.Equal(t, models.AuthorUser, messages[0].AuthorType)
	require.Equal(t, models.AuthorAssistant, messages[1].AuthorType)
	require.Empty(t, s.PendingMessageID())
	require.False(t, s.AwaitingReply())
}

func TestSendFailureRollsBackOptimisticMessage(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	backend.conversations["g1"] = []models.Conversation{{ID: "c1", GroupID: "g1", Title: "Chat"}}
	backend.messages["c1"] = []models.Message{
		{ID: "m1", ConversationID: "c1", SequenceNumber: 1, AuthorType: models.AuthorUser, Content: models.MessageContent{Type: "text", Text: "hi"}},
		{ID: "m2", ConversationID: "c1", SequenceNumber: 2, AuthorType: models.AuthorAssistant, Content: models.MessageContent{Type: "text", Text: "hello"}},
	}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))
	s.SelectConversation("c1")
	require.NoError(t, s.RefreshMessages(context.Background()))

	before, _, _ := s.Messages()
	backend.failSend = true

	err := s.Send(context.Background(), "doomed")
	var remoteErr *api.RemoteError
	require.ErrorAs(t, err, &remoteErr)

	// Fully rolled back: the list equals its pre-send state.
	after, status, tierErr := s.Messages()
	require.Equal(t, before, after)
	require.Equal(t, StatusErrored, status)
	require.Error(t, tierErr)
	require.Empty(t, s.PendingMessageID())
	require.False(t, s.AwaitingReply())
}

func TestSendGeneratesTruncatedTitle(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))
	_, err := s.NewDraft()
	require.NoError(t, err)

	require.NoError(t, s.Send(context.Background(), strings.Repeat("x", 60)))

	require.Len(t, backend.patchedTitles, 1)
	title := backend.patchedTitles[0]
	require.Len(t, title, 50)
	require.True(t, strings.HasSuffix(title, "..."))
	require.Equal(t, strings.Repeat("x", 47), title[:47])

	// The conversation record in the list was replaced with the titled one.
	entries, _, _ := s.Conversations()
	require.Equal(t, title, entries[0].Label())
}

func TestSendShortTitleNotTruncated(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))
	_, err := s.NewDraft()
	require.NoError(t, err)

	require.NoError(t, s.Send(context.Background(), "short question"))

	require.Equal(t, []string{"short question"}, backend.patchedTitles)
}

func TestSendSkipsTitleWhenAlreadyTitled(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	backend.conversations["g1"] = []models.Conversation{{ID: "c1", GroupID: "g1", Title: "Named"}}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))
	s.SelectConversation("c1")
	require.NoError(t, s.RefreshMessages(context.Background()))

	require.NoError(t, s.Send(context.Background(), "hello"))

	require.Empty(t, backend.patchedTitles)
}

func TestSendTitleFailureIsNotFatal(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	backend.failPatch = true
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))
	_, err := s.NewDraft()
	require.NoError(t, err)

	// The send itself succeeds even though the title patch fails.
	require.NoError(t, s.Send(context.Background(), "hello"))

	messages, _, _ := s.Messages()
	require.Len(t, messages, 2)
}

func TestSendResolvingAfterSelectionChangeIsDropped(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	backend.conversations["g1"] = []models.Conversation{
		{ID: "c1", GroupID: "g1", Title: "First"},
		{ID: "c2", GroupID: "g1", Title: "Second"},
	}
	backend.messages["c2"] = []models.Message{
		{ID: "m9", ConversationID: "c2", SequenceNumber: 1, AuthorType: models.AuthorUser, Content: models.MessageContent{Type: "text", Text: "earlier"}},
	}
	backend.sendGate = make(chan struct{})
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))
	s.SelectConversation("c1")
	require.NoError(t, s.RefreshMessages(context.Background()))

	done := make(chan error, 1)
	go func() {
		done <- s.Send(context.Background(), "hello from the first conversation")
	}()
	require.Eventually(t, s.AwaitingReply, time.Second, 5*time.Millisecond)

	// Move to the other conversation while the reply is still pending.
	s.SelectConversation("c2")
	require.NoError(t, s.RefreshMessages(context.Background()))

	close(backend.sendGate)
	require.NoError(t, <-done)

	// The late result was dropped: the tier holds only c2's messages.
	messages, status, _ := s.Messages()
	require.Equal(t, StatusLoaded, status)
	require.Len(t, messages, 1)
	for _, message := range messages {
		require.Equal(t, "c2", message.ConversationID)
	}
	require.Empty(t, s.PendingMessageID())
	require.False(t, s.AwaitingReply())
}

func TestDeleteDraftIsLocal(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))
	draft, err := s.NewDraft()
	require.NoError(t, err)
	before := backend.requestCount()

	require.NoError(t, s.DeleteConversation(context.Background(), draft.LocalID))

	require.Equal(t, before, backend.requestCount())
	entries, _, _ := s.Conversations()
	require.Empty(t, entries)
	_, ok := s.SelectedConversation()
	require.False(t, ok)
}

func TestDeleteConversationRemovesAndClearsSelection(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	backend.conversations["g1"] = []models.Conversation{
		{ID: "c1", GroupID: "g1", Title: "One"},
		{ID: "c2", GroupID: "g1", Title: "Two"},
	}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))
	s.SelectConversation("c1")
	require.NoError(t, s.RefreshMessages(context.Background()))

	require.NoError(t, s.DeleteConversation(context.Background(), "c1"))

	entries, _, _ := s.Conversations()
	require.Len(t, entries, 1)
	require.Equal(t, "c2", entries[0].EntryID())

	_, ok := s.SelectedConversation()
	require.False(t, ok)

	messages, status, _ := s.Messages()
	require.Empty(t, messages)
	require.Equal(t, StatusIdle, status)
}

func TestDeleteFailureRestoresAuthoritativeList(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	backend.conversations["g1"] = []models.Conversation{
		{ID: "c1", GroupID: "g1", Title: "One"},
		{ID: "c2", GroupID: "g1", Title: "Two"},
	}
	backend.failDelete = true
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))

	err := s.DeleteConversation(context.Background(), "c1")
	var remoteErr *api.RemoteError
	require.ErrorAs(t, err, &remoteErr)

	// The optimistic removal was reconciled against the server, which still
	// has the conversation.
	entries, status, _ := s.Conversations()
	require.Len(t, entries, 2)
	require.Equal(t, "c1", entries[0].EntryID())
	require.Equal(t, StatusLoaded, status)
}

func TestRefreshMessagesForDraftStaysIdle(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))
	_, err := s.NewDraft()
	require.NoError(t, err)
	before := backend.requestCount()

	require.NoError(t, s.RefreshMessages(context.Background()))

	require.Equal(t, before, backend.requestCount())
	messages, status, _ := s.Messages()
	require.Empty(t, messages)
	require.Equal(t, StatusIdle, status)
}

func TestRefreshConversationsKeepsDraftAtHead(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	backend.conversations["g1"] = []models.Conversation{{ID: "c1", GroupID: "g1", Title: "One"}}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))
	draft, err := s.NewDraft()
	require.NoError(t, err)

	require.NoError(t, s.RefreshConversations(context.Background()))

	entries, _, _ := s.Conversations()
	require.Len(t, entries, 2)
	require.Equal(t, draft.LocalID, entries[0].EntryID())
	require.Equal(t, "c1", entries[1].EntryID())
}

func TestRefreshConversationsWithoutGroupIsIdle(t *testing.T) {
	backend := newFakeBackend()
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshConversations(context.Background()))

	require.Zero(t, backend.requestCount())
	entries, status, _ := s.Conversations()
	require.Empty(t, entries)
	require.Equal(t, StatusIdle, status)
}

func TestCreateGroupAppendsAndSelects(t *testing.T) {
	created := models.Group{ID: "g9", Name: "New Team"}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/groups", r.URL.Path)
		writeJSON(w, created)
	}))
	defer server.Close()

	kv, err := store.Open(filepath.Join(t.TempDir(), "quill.db"))
	require.NoError(t, err)
	defer kv.Close()
	client := api.NewClient(server.URL)
	s := New(client, session.NewStore(client, kv))

	got, err := s.CreateGroup(context.Background(), "New Team")
	require.NoError(t, err)
	require.Equal(t, "g9", got.ID)

	selected, ok := s.SelectedGroup()
	require.True(t, ok)
	require.Equal(t, "g9", selected.ID)
}

func TestMessagesSnapshotIsACopy(t *testing.T) {
	backend := newFakeBackend()
	backend.groups = []models.Group{group("g1", "Team", false)}
	backend.conversations["g1"] = []models.Conversation{{ID: "c1", GroupID: "g1", Title: "Chat"}}
	backend.messages["c1"] = []models.Message{
		{ID: "m1", ConversationID: "c1", SequenceNumber: 1, AuthorType: models.AuthorUser},
	}
	s := newTestSync(t, backend)

	require.NoError(t, s.RefreshGroups(context.Background()))
	require.NoError(t, s.RefreshConversations(context.Background()))
	s.SelectConversation("c1")
	require.NoError(t, s.RefreshMessages(context.Background()))

	snapshot, _, _ := s.Messages()
	snapshot[0].ID = "mutated"

	fresh, _, _ := s.Messages()
	require.Equal(t, "m1", fresh[0].ID)
}
