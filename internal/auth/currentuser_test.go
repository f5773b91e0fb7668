package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/strategy"
)

// ntlmType1Prefix is the base64 encoding of the NTLMSSP signature plus
// the type-1 message marker every negotiation opens with.
const ntlmType1Prefix = "TlRMTVNTUAAB"

func TestCurrentUserBasicFallback(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		auth []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auth = append(auth, r.Header.Get("Authorization"))
		mu.Unlock()

		if r.Header.Get("Authorization") == "" {
			w.Header().Set("Www-Authenticate", `Basic realm="farm"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	exchanger := &CurrentUserExchanger{logger: newTestLogger()}
	authCtx, err := exchanger.Exchange(context.Background(), strategy.CurrentUser{},
		Options{Resource: server.URL})
	require.NoError(t, err)
	assert.NotEmpty(t, authCtx.Principal())

	mu.Lock()
	defer mu.Unlock()
	// The negotiator probes anonymously first, then answers the
	// challenge with the session identity.
	require.Len(t, auth, 2)
	assert.Empty(t, auth[0])
	assert.True(t, strings.HasPrefix(auth[1], "Basic "))
}

func TestCurrentUserOpensNTLMNegotiation(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		ntlmSeen string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "NTLM ") {
			mu.Lock()
			ntlmSeen = header
			mu.Unlock()
		}
		w.Header().Set("Www-Authenticate", "NTLM")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	exchanger := &CurrentUserExchanger{logger: newTestLogger()}
	_, err := exchanger.Exchange(context.Background(), strategy.CurrentUser{},
		Options{Resource: server.URL})
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, strings.HasPrefix(ntlmSeen, "NTLM "+ntlmType1Prefix),
		"expected an NTLM type-1 message on the wire, got %q", ntlmSeen)
}

// TestCurrentUserRejectedIdentity pins the probe contract: a server
// that refuses the session identity fails the exchange instead of
// producing a context that cannot authenticate.
func TestCurrentUserRejectedIdentity(t *testing.T) {
	t.Parallel()

	var sawIdentity atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			sawIdentity.Store(true)
		}
		w.Header().Set("Www-Authenticate", `Basic realm="farm"`)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	exchanger := &CurrentUserExchanger{logger: newTestLogger()}
	_, err := exchanger.Exchange(context.Background(), strategy.CurrentUser{},
		Options{Resource: server.URL})

	var authFailed scerrors.AuthFailedError
	require.ErrorAs(t, err, &authFailed)
	assert.True(t, sawIdentity.Load(), "the session identity must reach the wire before the connect fails")
}

func TestCurrentUserAuthorizePresentsIdentity(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	exchanger := &CurrentUserExchanger{logger: newTestLogger()}
	authCtx, err := exchanger.Exchange(context.Background(), strategy.CurrentUser{},
		Options{Resource: server.URL})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	require.NoError(t, authCtx.Authorize(req))
	user, _, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, authCtx.Principal(), user)

	// The negotiating transport survives into the connection's client.
	wrapped := authCtx.WrapTransport(http.DefaultTransport)
	assert.NotEqual(t, http.DefaultTransport, wrapped)
}

func TestAmbientPrincipalQualifiesDomain(t *testing.T) {
	t.Setenv("USERDOMAIN", "CORP")

	principal := ambientPrincipal()
	if principal == "current user" {
		t.Skip("no resolvable process user")
	}
	if !strings.Contains(principal, `\`) {
		t.Fatalf("expected a domain-qualified principal, got %q", principal)
	}
	assert.True(t, strings.HasPrefix(principal, `CORP\`) || strings.Count(principal, `\`) == 1)
}
