// Package registry defines the persisted record of an installed extension
// and the collaborator that stores it.
package registry

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Load and Delete for an unknown ID.
	ErrNotFound = errors.New("extension not registered")
	// ErrInconsistent is returned by Find when more than one record shares an identity.
	ErrInconsistent = errors.New("registry holds more than one record for this extension")
)

// Record is one installed extension.
type Record struct {
	ID        int64
	Name      string
	Type      string
	Element   string
	Folder    string
	Client    string
	Enabled   bool
	Protected bool
	// Params is the JSON-encoded parameter set.
	Params string
	// ManifestCache is the JSON snapshot of the manifest at install time.
	ManifestCache string
}

// Criteria is the identity of an extension.
type Criteria struct {
	Element string
	Type    string
	Client  string
	Folder  string
}

// Criteria returns the identity of r.
func (r *Record) Criteria() Criteria {
	return Criteria{Element: r.Element, Type: r.Type, Client: r.Client, Folder: r.Folder}
}

// MenuEntry is one administrator menu item owned by a component.
type MenuEntry struct {
	ID          int64
	ComponentID int64
	// ParentID is zero for the component's root entry.
	ParentID int64
	Title    string
	Alias    string
	Link     string
	Img      string
}

// MenuStore persists administrator menu entries.
type MenuStore interface {
	AdminMenus(ctx context.Context, componentID int64) ([]MenuEntry, error)
	AddMenuEntry(ctx context.Context, e *MenuEntry) error
	DeleteAdminMenus(ctx context.Context, componentID int64) error
}

// Registry persists extension records.
type Registry interface {
	// Find returns the ID of the record matching c.
	Find(ctx context.Context, c Criteria) (id int64, found bool, err error)
	Load(ctx context.Context, id int64) (*Record, error)
	// Store inserts a record with a zero ID and assigns it one, or updates
	// an existing record. inserted reports which happened.
	Store(ctx context.Context, r *Record) (inserted bool, err error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Record, error)
}
