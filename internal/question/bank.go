package question

import "github.com/saulo-duarte/mathbank-lambda/internal/access"

// Bank is the loaded question corpus. It is not modified after LoadBank
// returns, so it is shared by every request without locking.
type Bank struct {
	records  []Record
	warnings []LoadWarning

	years   []string
	levels  map[string][]string
	modules []ModuleInfo
	byLevel map[[2]string][]int
	byLoc   map[access.ModuleLocator]int
}

func newBank() *Bank {
	return &Bank{
		levels:  make(map[string][]string),
		byLevel: make(map[[2]string][]int),
		byLoc:   make(map[access.ModuleLocator]int),
	}
}

// NewBank builds a bank from records already in memory, indexing modules in
// first-appearance order.
func NewBank(records []Record) *Bank {
	b := newBank()
	for _, r := range records {
		loc := r.Locator()
		if _, ok := b.levels[loc.Year]; !ok {
			b.addYear(loc.Year)
		}
		if _, ok := b.byLevel[[2]string{loc.Year, loc.Level}]; !ok {
			b.addLevel(loc.Year, loc.Level)
		}
		if i, ok := b.byLoc[loc]; ok {
			b.modules[i].Questions++
		} else {
			b.addModule(ModuleInfo{ModuleLocator: loc, Name: r.ModuleName, Questions: 1})
		}
	}
	b.records = append(b.records, records...)
	return b
}

func (b *Bank) addYear(year string) {
	b.years = append(b.years, year)
	b.levels[year] = []string{}
}

func (b *Bank) addLevel(year, level string) {
	b.levels[year] = append(b.levels[year], level)
	b.byLevel[[2]string{year, level}] = []int{}
}

func (b *Bank) addModule(info ModuleInfo) {
	key := [2]string{info.Year, info.Level}
	b.byLoc[info.ModuleLocator] = len(b.modules)
	b.byLevel[key] = append(b.byLevel[key], len(b.modules))
	b.modules = append(b.modules, info)
}

// Records returns the corpus in traversal order. Callers must not modify it.
func (b *Bank) Records() []Record { return b.records }

func (b *Bank) Warnings() []LoadWarning { return b.warnings }

func (b *Bank) Years() []string { return b.years }

func (b *Bank) Levels(year string) ([]string, bool) {
	lv, ok := b.levels[year]
	return lv, ok
}

func (b *Bank) Modules(year, level string) ([]ModuleInfo, bool) {
	idx, ok := b.byLevel[[2]string{year, level}]
	if !ok {
		return nil, false
	}
	out := make([]ModuleInfo, len(idx))
	for i, j := range idx {
		out[i] = b.modules[j]
	}
	return out, true
}

func (b *Bank) Module(loc access.ModuleLocator) (ModuleInfo, bool) {
	i, ok := b.byLoc[loc]
	if !ok {
		return ModuleInfo{}, false
	}
	return b.modules[i], true
}

func (b *Bank) HasYear(year string) bool {
	_, ok := b.levels[year]
	return ok
}

func (b *Bank) HasLevel(year, level string) bool {
	_, ok := b.byLevel[[2]string{year, level}]
	return ok
}
