// Package device models the capabilities the app borrows from the host:
// permission-gated location reads and permission-gated image acquisition.
package device

import (
	"errors"
	"fmt"

	"fujao/internal/localstore"
)

// Capability identifies a permission-gated device feature.
type Capability string

const (
	CapLocation     Capability = "localizacao"
	CapCamera       Capability = "camera"
	CapMediaLibrary Capability = "galeria"
)

// PermissionStatus is the outcome of a permission request.
type PermissionStatus int

const (
	Denied PermissionStatus = iota
	Granted
)

// ErrPermissionDenied signals that the user refused the capability. It is
// terminal for the attempt; the caller surfaces an explanation and the user
// must re-invoke the action.
var ErrPermissionDenied = errors.New("permissão negada")

// Prompter asks the user to grant a capability, returning true on acceptance.
// It stands in for the OS permission dialog.
type Prompter func(capability Capability, rationale string) bool

// Gate sequences permission requests in front of device operations. Decisions
// are remembered in the local store, so each capability prompts at most once.
type Gate struct {
	store  *localstore.Store
	prompt Prompter
}

// NewGate creates a Gate. A nil prompter denies every undecided capability,
// which is the right behavior for non-interactive runs.
func NewGate(store *localstore.Store, prompt Prompter) *Gate {
	return &Gate{store: store, prompt: prompt}
}

// Request resolves the grant state of a capability, prompting if it has never
// been decided.
func (g *Gate) Request(capability Capability, rationale string) (PermissionStatus, error) {
	granted, decided, err := g.store.Permission(string(capability))
	if err != nil {
		return Denied, fmt.Errorf("read permission: %w", err)
	}
	if decided {
		if granted {
			return Granted, nil
		}
		return Denied, nil
	}

	allow := g.prompt != nil && g.prompt(capability, rationale)
	if err := g.store.SetPermission(string(capability), allow); err != nil {
		return Denied, fmt.Errorf("save permission: %w", err)
	}
	if allow {
		return Granted, nil
	}
	return Denied, nil
}

// Reset forgets a decision so the user is prompted again next time.
func (g *Gate) Reset(capability Capability) error {
	return g.store.SetPermissionUndecided(string(capability))
}
