package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/sonic57/internal/shared"
)

// Section is the closed set of top-level views. Exactly one is active.
type Section int

const (
	Home Section = iota
	Discover
	Genres
	Library
	Manifesto
	Research
	Resources
	Contact
	Admin
)

// AllSections lists every section in navigation order.
func AllSections() []Section {
	return []Section{Home, Discover, Genres, Library, Manifesto, Research, Resources, Contact, Admin}
}

// String panics on a value outside the enum.
func (s Section) String() string {
	switch s {
	case Home:
		return "Home"
	case Discover:
		return "Discover"
	case Genres:
		return "Genres"
	case Library:
		return "Library"
	case Manifesto:
		return "Manifesto"
	case Research:
		return "Research"
	case Resources:
		return "Resources"
	case Contact:
		return "Contact"
	case Admin:
		return "Admin"
	default:
		panic(fmt.Sprintf("ui: unknown section %d", int(s)))
	}
}

// ParseSection matches a section name case-insensitively.
func ParseSection(name string) (Section, error) {
	for _, s := range AllSections() {
		if strings.EqualFold(s.String(), strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return Home, fmt.Errorf("%w: unknown section %q", shared.ErrInvalidArgument, name)
}

// next cycles forward through AllSections.
func (s Section) next(delta int) Section {
	all := AllSections()
	n := len(all)
	return all[((int(s)+delta)%n+n)%n]
}
