// Package access decides what a tier may see of the question bank. Every
// function here is pure and total over its inputs.
package access

import (
	"errors"
	"fmt"
)

type ReachMode string

const (
	// ReachAllowList blocks free users from every module outside FreeModules.
	ReachAllowList ReachMode = "allow-list"
	// ReachSampleClipped lets free users into every module with capped questions.
	ReachSampleClipped ReachMode = "sample-clipped"
)

type ClipMode string

const (
	ClipTruncate   ClipMode = "truncate"
	ClipStratified ClipMode = "stratified"
)

type ModuleListMode string

const (
	ModuleListCountCapped     ModuleListMode = "count-capped"
	ModuleListAllowListCapped ModuleListMode = "allow-list-capped"
)

var ErrInvalidMode = errors.New("invalid access policy mode")

// Policy is selected once per deployment.
type Policy struct {
	Reach      ReachMode
	Clip       ClipMode
	ModuleList ModuleListMode

	FreeModules LocatorSet
	// UncappedModules are shown in full to every tier.
	UncappedModules LocatorSet

	MaxQuestions int
	MaxModules   int
	MaxYears     int
	MaxLevels    int

	UnrestrictedRoles map[Role]bool
}

// Item is anything the policy can clip.
type Item interface {
	Locator() ModuleLocator
	DifficultyTag() string
}

func DefaultPolicy() Policy {
	return Policy{
		Reach:             ReachSampleClipped,
		Clip:              ClipTruncate,
		ModuleList:        ModuleListCountCapped,
		FreeModules:       LocatorSet{},
		UncappedModules:   LocatorSet{},
		MaxQuestions:      3,
		MaxModules:        2,
		UnrestrictedRoles: map[Role]bool{RolePro: true},
	}
}

func (p Policy) Validate() error {
	switch p.Reach {
	case ReachAllowList, ReachSampleClipped:
	default:
		return fmt.Errorf("%w: reach %q", ErrInvalidMode, p.Reach)
	}
	switch p.Clip {
	case ClipTruncate, ClipStratified:
	default:
		return fmt.Errorf("%w: clip %q", ErrInvalidMode, p.Clip)
	}
	switch p.ModuleList {
	case ModuleListCountCapped, ModuleListAllowListCapped:
	default:
		return fmt.Errorf("%w: module list %q", ErrInvalidMode, p.ModuleList)
	}
	if p.MaxQuestions < 0 || p.MaxModules < 0 || p.MaxYears < 0 || p.MaxLevels < 0 {
		return fmt.Errorf("%w: negative cap", ErrInvalidMode)
	}
	return nil
}

// Restricted reports whether role gets the free-tier treatment. Unknown
// roles are restricted.
func (p Policy) Restricted(role Role) bool {
	return !p.UnrestrictedRoles[role]
}

func (p Policy) IsModuleReachable(loc ModuleLocator, role Role) bool {
	if !p.Restricted(role) {
		return true
	}
	if p.Reach == ReachSampleClipped {
		return true
	}
	return p.FreeModules.Has(loc)
}

// Clip returns the records of module loc that role may see. The input slice
// is never modified.
func Clip[T Item](p Policy, records []T, loc ModuleLocator, role Role) []T {
	if !p.Restricted(role) {
		return records
	}
	if !p.IsModuleReachable(loc, role) {
		return []T{}
	}
	if p.UncappedModules.Has(loc) || p.MaxQuestions == 0 {
		return records
	}
	if p.Clip == ClipStratified {
		return stratify(records, p.MaxQuestions)
	}
	return truncate(records, p.MaxQuestions)
}

func truncate[T any](records []T, n int) []T {
	if len(records) <= n {
		return records
	}
	out := make([]T, n)
	copy(out, records[:n])
	return out
}

var preferredDifficulties = []string{"easy", "medium", "hard"}

// stratify keeps at most one record per difficulty, covering easy, medium
// and hard first. The selection keeps the input order.
func stratify[T Item](records []T, n int) []T {
	first := make(map[string]int)
	var order []string
	for i, r := range records {
		d := r.DifficultyTag()
		if _, seen := first[d]; !seen {
			first[d] = i
			order = append(order, d)
		}
	}

	picked := make(map[int]bool, n)
	for _, d := range preferredDifficulties {
		if len(picked) == n {
			break
		}
		if i, ok := first[d]; ok {
			picked[i] = true
		}
	}
	for _, d := range order {
		if len(picked) == n {
			break
		}
		picked[first[d]] = true
	}

	out := make([]T, 0, len(picked))
	for i, r := range records {
		if picked[i] {
			out = append(out, r)
		}
	}
	return out
}

// VisibleModules returns the modules listed to role, in discovery order.
func (p Policy) VisibleModules(all []ModuleLocator, role Role) []ModuleLocator {
	if !p.Restricted(role) {
		return all
	}
	if p.ModuleList == ModuleListAllowListCapped {
		out := make([]ModuleLocator, 0, len(all))
		for _, l := range all {
			if p.FreeModules.Has(l) {
				out = append(out, l)
			}
		}
		return out
	}
	return capList(all, p.MaxModules)
}

func (p Policy) VisibleYears(years []string, role Role) []string {
	if !p.Restricted(role) {
		return years
	}
	return capList(years, p.MaxYears)
}

func (p Policy) VisibleLevels(levels []string, role Role) []string {
	if !p.Restricted(role) {
		return levels
	}
	return capList(levels, p.MaxLevels)
}

// capList treats n == 0 as unlimited.
func capList[T any](items []T, n int) []T {
	if n == 0 || len(items) <= n {
		return items
	}
	out := make([]T, n)
	copy(out, items[:n])
	return out
}
