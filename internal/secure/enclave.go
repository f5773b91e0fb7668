// Package secure provides memory-safe storage for secrets while they are
// held in process: stored credentials, prompted passwords, certificate
// passphrases. Values are encrypted at rest in memory via memguard and
// only decrypted for the duration of an exchange.
package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// Buffer holds a secret in an encrypted memguard enclave. The plaintext
// only exists while WithBytes or Reveal runs.
type Buffer struct {
	enclave *memguard.Enclave
	mu      sync.RWMutex
	// destroyed allows idempotent Destroy() and prevents use after destroy
	destroyed bool
}

// NewBuffer creates a protected buffer from secret bytes. The input slice
// is wiped by memguard as part of enclave construction; callers must not
// reuse it.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{enclave: memguard.NewEnclave(data)}
}

// NewBufferFromString creates a protected buffer from a secret string.
// The string itself cannot be wiped (Go strings are immutable), so prefer
// NewBuffer with byte slices where the caller controls the allocation.
func NewBufferFromString(s string) *Buffer {
	return NewBuffer([]byte(s))
}

// WithBytes decrypts the secret, passes it to fn, and wipes the plaintext
// when fn returns. The slice must not escape fn.
func (b *Buffer) WithBytes(fn func(data []byte) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed {
		return fn(nil)
	}

	locked, err := b.enclave.Open()
	if err != nil {
		return err
	}
	defer locked.Destroy()
	return fn(locked.Bytes())
}

// Reveal returns the plaintext as a string. The returned string is an
// unprotected copy; use it immediately and let it fall out of scope.
// Exchange collaborators that need a string API (basic auth, oauth2
// password grants) are the intended callers.
func (b *Buffer) Reveal() (string, error) {
	var out string
	err := b.WithBytes(func(data []byte) error {
		out = string(data)
		return nil
	})
	return out, err
}

// Destroy marks the buffer as destroyed and drops the enclave. Idempotent.
// After Destroy, WithBytes sees a nil slice and Reveal returns "".
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		return
	}
	b.enclave = nil
	b.destroyed = true
}

// Purge wipes all memguard-managed material process-wide. Call from a
// defer in main.
func Purge() {
	memguard.Purge()
}
