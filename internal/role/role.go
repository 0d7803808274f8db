// Package role defines the portal roles and what each one is routed to.
package role

import (
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	Manufacturer Role = "manufacturer"
	Customer     Role = "customer"
	Retailer     Role = "retailer"
	Admin        Role = "admin"
)

var ErrUnknownRole = errors.New("unknown role")

type portal struct {
	home  string
	label string
}

var portals = map[Role]portal{
	Manufacturer: {home: "/manufacturer/dashboard", label: "Manufacturer"},
	Customer:     {home: "/", label: "Customer"},
	Retailer:     {home: "/retailer/dashboard", label: "Retailer"},
	Admin:        {home: "/admin/dashboard", label: "Administrator"},
}

func Parse(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := portals[r]; !ok {
		names := make([]string, 0, len(portals))
		for _, known := range All() {
			names = append(names, string(known))
		}
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownRole, s, strings.Join(names, ", "))
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := portals[r]
	return ok
}

// HomePath is where a freshly logged-in user of this role lands.
func (r Role) HomePath() (string, error) {
	p, ok := portals[r]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, string(r))
	}
	return p.home, nil
}

// Label is the display name of the role's portal.
func (r Role) Label() string {
	if p, ok := portals[r]; ok {
		return p.label
	}
	return string(r)
}

// All returns every role in a stable order.
func All() []Role {
	return []Role{Manufacturer, Customer, Retailer, Admin}
}
