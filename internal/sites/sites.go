// Package sites selects a registry implementation by its identifier.
package sites

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/abraham-mv/huon-test/internal/sites/fd"
	"github.com/abraham-mv/huon-test/internal/sites/ns"
	"github.com/abraham-mv/huon-test/internal/sites/sk"
	"github.com/abraham-mv/huon-test/internal/traverse"
)

var ErrUnknownSite = errors.New("unknown site")

// Site is a registry together with the page size its listings use.
type Site interface {
	traverse.Site
	PageSize() int
}

var registry = map[string]func(traverse.Options) Site{
	fd.ID: func(o traverse.Options) Site { return fd.New(o) },
	ns.ID: func(o traverse.Options) Site { return ns.New(o) },
	sk.ID: func(o traverse.Options) Site { return sk.New(o) },
}

// earliest holds the first posting date of the registries searchable by date.
var earliest = map[string]time.Time{
	fd.ID: fd.EarliestDate,
	sk.ID: sk.EarliestDate,
}

func New(id string, opts traverse.Options) (Site, error) {
	build, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSite, id)
	}
	return build(opts), nil
}

// IDs lists the known site identifiers in sorted order.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Known reports whether id names a registry.
func Known(id string) bool {
	_, ok := registry[id]
	return ok
}

// EarliestDate returns the first posting date id serves, for registries that
// can be searched by date.
func EarliestDate(id string) (time.Time, bool) {
	t, ok := earliest[id]
	return t, ok
}
