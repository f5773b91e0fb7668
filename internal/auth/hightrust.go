package auth

import (
	"context"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/logging"
	"github.com/systmms/sitectl/internal/strategy"
)

// highTrustTokenLifetime bounds each self-issued assertion. Assertions
// are re-signed on demand, so short lifetimes cost nothing.
const highTrustTokenLifetime = 10 * time.Minute

// HighTrustExchanger issues self-signed assertions from a certificate
// the on-premises farm trusts. No authority is contacted; the signing
// key is the trust anchor.
type HighTrustExchanger struct {
	logger *logging.Logger
}

func (e *HighTrustExchanger) Kind() strategy.Kind { return strategy.KindHighTrustCertificate }

func (e *HighTrustExchanger) Exchange(ctx context.Context, s strategy.AuthStrategy, opts Options) (*Context, error) {
	highTrust, ok := s.(strategy.HighTrustCertificate)
	if !ok {
		return nil, fmt.Errorf("high-trust exchanger invoked with %s strategy", s.Kind())
	}

	certs, key, err := loadCertificate(highTrust.CertPath, highTrust.CertPassword)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, scerrors.CertificateError{Path: highTrust.CertPath, Err: errNotRSA}
	}

	target, err := url.Parse(opts.Resource)
	if err != nil {
		return nil, scerrors.ValidationError{Strategy: string(e.Kind()), Message: "invalid resource address"}
	}

	signer := &highTrustSigner{
		clientID: highTrust.ClientID,
		issuerID: highTrust.IssuerID,
		audience: fmt.Sprintf("%s/%s", serverPrincipalID, target.Hostname()),
		cert:     certs[0],
		key:      rsaKey,
	}

	// Sign once up front so a bad key pair fails the connect attempt
	// instead of the first request.
	if _, err := signer.sign(); err != nil {
		return nil, scerrors.AuthFailedError{Strategy: string(e.Kind()), Reason: "failed to sign assertion", Err: err}
	}

	e.logger.Debug("High-trust assertions enabled for issuer %s", highTrust.IssuerID)

	var cached string
	var expires time.Time
	return NewContext(e.Kind(), highTrust.ClientID, func(req *http.Request) error {
		if cached == "" || time.Until(expires) < time.Minute {
			token, err := signer.sign()
			if err != nil {
				return scerrors.AuthFailedError{Strategy: string(e.Kind()), Reason: "failed to sign assertion", Err: err}
			}
			cached = token
			expires = time.Now().Add(highTrustTokenLifetime)
		}
		req.Header.Set("Authorization", "Bearer "+cached)
		return nil
	}), nil
}

type highTrustSigner struct {
	clientID string
	issuerID string
	audience string
	cert     *x509.Certificate
	key      *rsa.PrivateKey
}

// sign produces one RS256 assertion. The x5t header carries the
// certificate thumbprint the farm matches against its registered issuer.
func (s *highTrustSigner) sign() (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": s.issuerID,
		"sub": s.clientID,
		"aud": s.audience,
		"nbf": now.Add(-time.Minute).Unix(),
		"iat": now.Unix(),
		"exp": now.Add(highTrustTokenLifetime).Unix(),
		"jti": uuid.NewString(),
	})

	thumbprint := sha1.Sum(s.cert.Raw)
	token.Header["x5t"] = base64.RawURLEncoding.EncodeToString(thumbprint[:])

	return token.SignedString(s.key)
}

type notRSAError struct{}

func (notRSAError) Error() string {
	return "high-trust signing requires an RSA private key"
}

var errNotRSA = notRSAError{}
