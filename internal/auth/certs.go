package auth

import (
	"crypto"
	"crypto/x509"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	scerrors "github.com/systmms/sitectl/internal/errors"
)

// loadCertificate reads a certificate file (PEM or PKCS#12) and returns
// the parsed chain and private key. password may be empty for
// unencrypted files.
func loadCertificate(path, password string) ([]*x509.Certificate, crypto.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, scerrors.CertificateError{Path: path, Err: err}
	}

	var passphrase []byte
	if password != "" {
		passphrase = []byte(password)
	}
	certs, key, err := azidentity.ParseCertificates(data, passphrase)
	if err != nil {
		return nil, nil, scerrors.CertificateError{Path: path, Err: err}
	}
	if len(certs) == 0 || key == nil {
		return nil, nil, scerrors.CertificateError{Path: path, Err: errNoKeyMaterial}
	}
	return certs, key, nil
}

type noKeyMaterialError struct{}

func (noKeyMaterialError) Error() string {
	return "file contains no certificate and private key pair"
}

var errNoKeyMaterial = noKeyMaterialError{}
