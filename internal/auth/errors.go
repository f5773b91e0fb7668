package auth

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/strategy"
)

// classifyAADError maps identity SDK failures onto the engine's error
// taxonomy: transport problems become NetworkError, everything else is a
// rejected exchange.
func classifyAADError(kind strategy.Kind, err error) error {
	if isNetworkError(err) {
		return scerrors.NetworkError{Endpoint: "authority", Err: err}
	}

	var authFailed *azidentity.AuthenticationFailedError
	if errors.As(err, &authFailed) {
		return scerrors.AuthFailedError{Strategy: string(kind), Reason: "authority rejected the credential", Err: err}
	}
	return scerrors.AuthFailedError{Strategy: string(kind), Err: err}
}

// classifyHTTPError maps plain HTTP exchange failures the same way.
func classifyHTTPError(kind strategy.Kind, endpoint string, err error) error {
	if isNetworkError(err) {
		return scerrors.NetworkError{Endpoint: endpoint, Err: err}
	}
	return scerrors.AuthFailedError{Strategy: string(kind), Err: err}
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return isNetworkError(urlErr.Err) || urlErr.Timeout()
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "network is unreachable")
}
