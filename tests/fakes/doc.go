// Package fakes provides in-memory test doubles for the external
// collaborators sitectl talks to: the OS keyring, the authentication
// exchange, and the interactive credential prompt.
package fakes
