package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quillchat/quill/internal/api"
	"github.com/quillchat/quill/internal/store"
)

// fakeAuthServer accepts a@b.com/secret and validates token "t1".
func fakeAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token":
			require.NoError(t, r.ParseForm())
			if r.PostForm.Get("username") != "a@b.com" || r.PostForm.Get("password") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"invalid credentials"}`))
				return
			}
			w.Write([]byte(`{"access_token":"t1","token_type":"bearer","expires_in":3600}`))
		case "/users/me":
			if r.Header.Get("Authorization") != "Bearer t1" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"invalid token"}`))
				return
			}
			w.Write([]byte(`{"id":"1","email":"a@b.com","name":"Ada","display_name":"ada"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestStore(t *testing.T, serverURL string) (*Store, *store.Store) {
	t.Helper()
	kv, err := store.Open(filepath.Join(t.TempDir(), "quill.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	client := api.NewClient(serverURL)
	return NewStore(client, kv), kv
}

func TestLoginPersistsTokenAndIdentity(t *testing.T) {
	server := fakeAuthServer(t)
	defer server.Close()

	sess, kv := newTestStore(t, server.URL)

	require.NoError(t, sess.Login(context.Background(), "a@b.com", "secret"))

	identity, ok := sess.Current()
	require.True(t, ok)
	require.Equal(t, "1", identity.ID)
	require.Equal(t, "a@b.com", identity.Email)

	token, err := kv.Get("auth_token")
	require.NoError(t, err)
	require.Equal(t, []byte("t1"), token)

	_, err = kv.Get("identity")
	require.NoError(t, err)
}

func TestLoginRejectedCredentials(t *testing.T) {
	server := fakeAuthServer(t)
	defer server.Close()

	sess, kv := newTestStore(t, server.URL)

	err := sess.Login(context.Background(), "a@b.com", "wrong")

	var remoteErr *api.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	require.Equal(t, http.StatusUnauthorized, remoteErr.Status)

	require.False(t, sess.Authenticated())
	_, err = kv.Get("auth_token")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRestoreValidToken(t *testing.T) {
	server := fakeAuthServer(t)
	defer server.Close()

	sess, kv := newTestStore(t, server.URL)
	require.NoError(t, kv.Set("auth_token", []byte("t1")))
	require.NoError(t, kv.Set("identity", []byte(`{"id":"1","email":"a@b.com"}`)))

	require.True(t, sess.Restore(context.Background()))

	identity, ok := sess.Current()
	require.True(t, ok)
	require.Equal(t, "a@b.com", identity.Email)
}

func TestRestoreRejectedTokenClearsState(t *testing.T) {
	server := fakeAuthServer(t)
	defer server.Close()

	sess, kv := newTestStore(t, server.URL)
	require.NoError(t, kv.Set("auth_token", []byte("stale")))
	require.NoError(t, kv.Set("identity", []byte(`{"id":"1","email":"a@b.com"}`)))

	// An invalid token is a recoverable condition: Restore reports
	// unauthenticated instead of failing.
	require.False(t, sess.Restore(context.Background()))
	require.False(t, sess.Authenticated())

	_, err := kv.Get("auth_token")
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = kv.Get("identity")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRestoreWithoutStoredToken(t *testing.T) {
	server := fakeAuthServer(t)
	defer server.Close()

	sess, _ := newTestStore(t, server.URL)
	require.False(t, sess.Restore(context.Background()))
}

func TestLogoutClearsEverything(t *testing.T) {
	server := fakeAuthServer(t)
	defer server.Close()

	sess, kv := newTestStore(t, server.URL)
	require.NoError(t, sess.Login(context.Background(), "a@b.com", "secret"))

	sess.Logout()

	require.False(t, sess.Authenticated())
	_, err := kv.Get("auth_token")
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = kv.Get("identity")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRegisterThenLogin(t *testing.T) {
	registered := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/register":
			registered = true
			w.Write([]byte(`{"id":"2","email":"b@c.com","name":"Bea","display_name":"bea"}`))
		case "/auth/token":
			w.Write([]byte(`{"access_token":"t2","token_type":"bearer","expires_in":3600}`))
		case "/users/me":
			w.Write([]byte(`{"id":"2","email":"b@c.com","name":"Bea","display_name":"bea"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	sess, _ := newTestStore(t, server.URL)

	require.NoError(t, sess.Register(context.Background(), "b@c.com", "pw", "Bea", "bea"))
	require.True(t, registered)
	require.True(t, sess.Authenticated())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"detail":"email already registered"}`))
	}))
	defer server.Close()

	sess, _ := newTestStore(t, server.URL)

	err := sess.Register(context.Background(), "a@b.com", "pw", "Ada", "ada")
	var remoteErr *api.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	require.Equal(t, http.StatusConflict, remoteErr.Status)
	require.False(t, sess.Authenticated())
}

func TestUpdateProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/token":
			w.Write([]byte(`{"access_token":"t1","token_type":"bearer","expires_in":3600}`))
		case r.URL.Path == "/users/me" && r.Method == http.MethodGet:
			w.Write([]byte(`{"id":"1","email":"a@b.com","name":"Ada","display_name":"ada"}`))
		case r.URL.Path == "/users/me" && r.Method == http.MethodPatch:
			w.Write([]byte(`{"id":"1","email":"a@b.com","name":"Ada Lovelace","display_name":"ada"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	sess, _ := newTestStore(t, server.URL)
	require.NoError(t, sess.Login(context.Background(), "a@b.com", "secret"))

	require.NoError(t, sess.UpdateProfile(context.Background(), "Ada Lovelace", "ada"))

	identity, _ := sess.Current()
	require.Equal(t, "Ada Lovelace", identity.Name)
}
