package access

import (
	"fmt"
	"strings"
)

// ModuleLocator identifies one module file by its provenance. Comparison is
// exact and case-sensitive, matching directory and file names.
type ModuleLocator struct {
	Year   string `json:"year"`
	Level  string `json:"level"`
	Module string `json:"module"`
}

func (l ModuleLocator) String() string {
	return l.Year + "/" + l.Level + "/" + l.Module
}

func (l ModuleLocator) Complete() bool {
	return l.Year != "" && l.Level != "" && l.Module != ""
}

// ParseLocator parses "year/level/module".
func ParseLocator(s string) (ModuleLocator, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return ModuleLocator{}, fmt.Errorf("invalid module locator %q: want year/level/module", s)
	}
	loc := ModuleLocator{Year: parts[0], Level: parts[1], Module: parts[2]}
	if !loc.Complete() {
		return ModuleLocator{}, fmt.Errorf("invalid module locator %q: empty component", s)
	}
	return loc, nil
}

type LocatorSet map[ModuleLocator]struct{}

func NewLocatorSet(locs ...ModuleLocator) LocatorSet {
	set := make(LocatorSet, len(locs))
	for _, l := range locs {
		set[l] = struct{}{}
	}
	return set
}

func (s LocatorSet) Has(l ModuleLocator) bool {
	_, ok := s[l]
	return ok
}
