// Package hooks loads the lifecycle hook object an extension ships and
// invokes its optional capabilities at the points of an install, update or
// uninstall run.
//
// A hook object is any value. What it can do is discovered through the
// optional interfaces below, so an object that only cares about postflight
// implements Postflighter and nothing else.
package hooks

import (
	"context"
	"strings"

	"github.com/indaco/kiln/internal/manifest"
)

// Name identifies a hook point.
type Name string

const (
	Preflight  Name = "preflight"
	Install    Name = "install"
	Update     Name = "update"
	Uninstall  Name = "uninstall"
	Postflight Name = "postflight"
)

// Names lists every hook point in invocation order.
var Names = []Name{Preflight, Install, Update, Uninstall, Postflight}

// Valid reports whether n is a known hook point.
func (n Name) Valid() bool {
	for _, known := range Names {
		if n == known {
			return true
		}
	}
	return false
}

// Result is what a hook reports back.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// OK is a successful Result with no message.
var OK = Result{Success: true}

// Context is the per-run view a hook receives.
type Context interface {
	// Route is "install", "update" or "uninstall".
	Route() string
	Element() string
	Manifest() *manifest.Manifest
	// ExtensionID is zero until the registry row exists.
	ExtensionID() int64
	// Source is the root of the extension being installed.
	Source() string
}

type Preflighter interface {
	Preflight(ctx context.Context, route string, rc Context) (Result, error)
}

type Installer interface {
	Install(ctx context.Context, rc Context) (Result, error)
}

type Updater interface {
	Update(ctx context.Context, rc Context) (Result, error)
}

type Uninstaller interface {
	Uninstall(ctx context.Context, rc Context) (Result, error)
}

type Postflighter interface {
	Postflight(ctx context.Context, route string, rc Context) (Result, error)
}

// CapabilityReporter lets a hook object narrow the hook points it offers
// below what its method set suggests.
type CapabilityReporter interface {
	Supports(name Name) bool
}

// ClassName returns the type name a hook object is registered under for
// the given element: the element with dashes removed plus "InstallerScript".
func ClassName(element string) string {
	return strings.ReplaceAll(element, "-", "") + "InstallerScript"
}

// ClassNamer is implemented by a Context whose hook object is registered
// under a name other than ClassName(Element()).
type ClassNamer interface {
	HookClassName() string
}

func classNameFor(rc Context) string {
	if n, ok := rc.(ClassNamer); ok {
		return n.HookClassName()
	}
	return ClassName(rc.Element())
}

// supports reports whether hook offers the named capability.
func supports(hook any, name Name) bool {
	if hook == nil {
		return false
	}
	if cr, ok := hook.(CapabilityReporter); ok && !cr.Supports(name) {
		return false
	}
	switch name {
	case Preflight:
		_, ok := hook.(Preflighter)
		return ok
	case Install:
		_, ok := hook.(Installer)
		return ok
	case Update:
		_, ok := hook.(Updater)
		return ok
	case Uninstall:
		_, ok := hook.(Uninstaller)
		return ok
	case Postflight:
		_, ok := hook.(Postflighter)
		return ok
	}
	return false
}

func call(ctx context.Context, hook any, name Name, rc Context) (Result, error) {
	switch name {
	case Preflight:
		return hook.(Preflighter).Preflight(ctx, rc.Route(), rc)
	case Install:
		return hook.(Installer).Install(ctx, rc)
	case Update:
		return hook.(Updater).Update(ctx, rc)
	case Uninstall:
		return hook.(Uninstaller).Uninstall(ctx, rc)
	case Postflight:
		return hook.(Postflighter).Postflight(ctx, rc.Route(), rc)
	}
	return OK, nil
}
