package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/secure"
	"github.com/systmms/sitectl/internal/strategy"
)

func credentialFor(t *testing.T, username, password string, mode strategy.AuthMode) strategy.InteractiveCredential {
	t.Helper()
	cred, err := strategy.NewInteractiveCredential(username, secure.NewBufferFromString(password), mode)
	require.NoError(t, err)
	return cred
}

func TestCredentialDefaultSignIn(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || username != "alice" || password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}))
	defer server.Close()

	exchanger := &CredentialExchanger{logger: newTestLogger()}
	authCtx, err := exchanger.Exchange(context.Background(),
		credentialFor(t, "alice", "hunter2", strategy.AuthModeDefault),
		Options{Resource: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "alice", authCtx.Principal())

	// Every downstream request carries the credential again.
	req, err := http.NewRequest(http.MethodGet, server.URL+"/_api/web", nil)
	require.NoError(t, err)
	require.NoError(t, authCtx.Authorize(req))
	username, password, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "alice", username)
	assert.Equal(t, "hunter2", password)
}

func TestCredentialDefaultSignInRejected(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	exchanger := &CredentialExchanger{logger: newTestLogger()}
	_, err := exchanger.Exchange(context.Background(),
		credentialFor(t, "alice", "wrong", strategy.AuthModeDefault),
		Options{Resource: server.URL})

	var authFailed scerrors.AuthFailedError
	require.ErrorAs(t, err, &authFailed)
	assert.Contains(t, authFailed.Reason, "alice")
}

func TestCredentialSignInUnreachableServer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	exchanger := &CredentialExchanger{logger: newTestLogger()}
	_, err := exchanger.Exchange(context.Background(),
		credentialFor(t, "alice", "pw", strategy.AuthModeDefault),
		Options{Resource: server.URL})

	var network scerrors.NetworkError
	require.ErrorAs(t, err, &network)
}

func TestCredentialFormsSignIn(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/_forms/default.aspx" {
			require.NoError(t, r.ParseForm())
			if r.PostForm.Get("username") == "alice" && r.PostForm.Get("password") == "hunter2" {
				http.SetCookie(w, &http.Cookie{Name: "FedAuth", Value: "opaque-session"})
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	exchanger := &CredentialExchanger{logger: newTestLogger()}
	authCtx, err := exchanger.Exchange(context.Background(),
		credentialFor(t, "alice", "hunter2", strategy.AuthModeForms),
		Options{Resource: server.URL})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/_api/web", nil)
	require.NoError(t, err)
	require.NoError(t, authCtx.Authorize(req))

	cookie, err := req.Cookie("FedAuth")
	require.NoError(t, err)
	assert.Equal(t, "opaque-session", cookie.Value)

	// No credential on the wire after sign-in.
	_, _, ok := req.BasicAuth()
	assert.False(t, ok)
}

func TestCredentialFormsSignInNoCookies(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	exchanger := &CredentialExchanger{logger: newTestLogger()}
	_, err := exchanger.Exchange(context.Background(),
		credentialFor(t, "alice", "hunter2", strategy.AuthModeForms),
		Options{Resource: server.URL})

	var authFailed scerrors.AuthFailedError
	require.ErrorAs(t, err, &authFailed)
	assert.Contains(t, authFailed.Reason, "cookies")
}

// TestExchangerRejectsWrongStrategy pins the dispatch contract: an
// exchanger given another family's strategy fails loudly.
func TestExchangerRejectsWrongStrategy(t *testing.T) {
	t.Parallel()

	exchanger := &CredentialExchanger{logger: newTestLogger()}
	_, err := exchanger.Exchange(context.Background(), strategy.CurrentUser{}, Options{})
	assert.Error(t, err)
}
