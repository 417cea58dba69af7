package access_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/saulo-duarte/mathbank-lambda/internal/access"
)

type item struct {
	id         int
	loc        access.ModuleLocator
	difficulty string
}

func (i item) Locator() access.ModuleLocator { return i.loc }
func (i item) DifficultyTag() string         { return i.difficulty }

var (
	trig  = access.ModuleLocator{Year: "year12", Level: "extension1", Module: "trigonometric"}
	other = access.ModuleLocator{Year: "year12", Level: "extension2", Module: "anything_else"}
)

func items(loc access.ModuleLocator, difficulties ...string) []item {
	out := make([]item, len(difficulties))
	for i, d := range difficulties {
		out[i] = item{id: i, loc: loc, difficulty: d}
	}
	return out
}

func ids(in []item) []int {
	out := make([]int, len(in))
	for i, it := range in {
		out[i] = it.id
	}
	return out
}

func TestClip(t *testing.T) {
	p := access.DefaultPolicy()

	t.Run("FreeTruncatesToFirstN", func(t *testing.T) {
		records := items(other, "easy", "hard", "medium", "easy", "hard", "medium", "easy")
		got := access.Clip(p, records, other, access.RoleFree)
		if want := []int{0, 1, 2}; !reflect.DeepEqual(ids(got), want) {
			t.Errorf("expected %v, got %v", want, ids(got))
		}
		if len(records) != 7 {
			t.Errorf("input was modified: len %d", len(records))
		}
	})

	t.Run("ProIsIdentity", func(t *testing.T) {
		records := items(other, "easy", "hard", "medium", "easy", "hard")
		got := access.Clip(p, records, other, access.RolePro)
		if len(got) != 5 {
			t.Errorf("expected 5 records for pro, got %d", len(got))
		}
	})

	t.Run("UnknownRoleIsRestricted", func(t *testing.T) {
		records := items(other, "easy", "hard", "medium", "easy")
		got := access.Clip(p, records, other, access.Role("trial"))
		if len(got) != 3 {
			t.Errorf("expected 3 records for unknown role, got %d", len(got))
		}
	})

	t.Run("EmptyInput", func(t *testing.T) {
		got := access.Clip(p, []item{}, other, access.RoleFree)
		if len(got) != 0 {
			t.Errorf("expected no records, got %d", len(got))
		}
		got = access.Clip[item](p, nil, other, access.RolePro)
		if len(got) != 0 {
			t.Errorf("expected no records, got %d", len(got))
		}
	})

	t.Run("Stratified", func(t *testing.T) {
		sp := p
		sp.Clip = access.ClipStratified
		records := items(other, "hard", "hard", "extreme", "medium", "easy", "easy")
		got := access.Clip(sp, records, other, access.RoleFree)
		if want := []int{0, 3, 4}; !reflect.DeepEqual(ids(got), want) {
			t.Errorf("expected %v, got %v", want, ids(got))
		}
	})

	t.Run("StratifiedFillsWithOtherDifficulties", func(t *testing.T) {
		sp := p
		sp.Clip = access.ClipStratified
		records := items(other, "extreme", "hard", "hard", "trivial")
		got := access.Clip(sp, records, other, access.RoleFree)
		if want := []int{0, 1, 3}; !reflect.DeepEqual(ids(got), want) {
			t.Errorf("expected %v, got %v", want, ids(got))
		}
	})

	t.Run("UncappedModule", func(t *testing.T) {
		up := p
		up.UncappedModules = access.NewLocatorSet(trig)
		records := items(trig, "easy", "easy", "easy", "easy", "easy")
		if got := access.Clip(up, records, trig, access.RoleFree); len(got) != 5 {
			t.Errorf("expected uncapped module to keep 5 records, got %d", len(got))
		}
	})

	t.Run("AllowListBlocksUnlistedModule", func(t *testing.T) {
		ap := p
		ap.Reach = access.ReachAllowList
		ap.FreeModules = access.NewLocatorSet(trig)
		if got := access.Clip(ap, items(other, "easy", "hard"), other, access.RoleFree); len(got) != 0 {
			t.Errorf("expected blocked module to yield nothing, got %d", len(got))
		}
		if got := access.Clip(ap, items(trig, "easy", "hard", "easy", "easy"), trig, access.RoleFree); len(got) != 3 {
			t.Errorf("expected allow-listed module to be capped at 3, got %d", len(got))
		}
	})
}

func TestIsModuleReachable(t *testing.T) {
	p := access.DefaultPolicy()
	p.Reach = access.ReachAllowList
	p.FreeModules = access.NewLocatorSet(trig)

	if !p.IsModuleReachable(trig, access.RoleFree) {
		t.Error("allow-listed module should be reachable for free")
	}
	if p.IsModuleReachable(other, access.RoleFree) {
		t.Error("unlisted module should not be reachable for free")
	}
	if !p.IsModuleReachable(trig, access.RolePro) || !p.IsModuleReachable(other, access.RolePro) {
		t.Error("every module should be reachable for pro")
	}

	p.Reach = access.ReachSampleClipped
	if !p.IsModuleReachable(other, access.RoleFree) {
		t.Error("sample-clipped mode should make every module reachable")
	}
}

func TestVisibleModules(t *testing.T) {
	a := access.ModuleLocator{Year: "year11", Level: "advanced", Module: "functions"}
	b := access.ModuleLocator{Year: "year11", Level: "advanced", Module: "trigonometry"}
	c := access.ModuleLocator{Year: "year11", Level: "advanced", Module: "differentiation"}
	all := []access.ModuleLocator{a, b, c}

	t.Run("CountCapped", func(t *testing.T) {
		p := access.DefaultPolicy()
		got := p.VisibleModules(all, access.RoleFree)
		if want := []access.ModuleLocator{a, b}; !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("AllowListCapped", func(t *testing.T) {
		p := access.DefaultPolicy()
		p.ModuleList = access.ModuleListAllowListCapped
		p.FreeModules = access.NewLocatorSet(a, c)
		got := p.VisibleModules(all, access.RoleFree)
		if want := []access.ModuleLocator{a, c}; !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("Pro", func(t *testing.T) {
		p := access.DefaultPolicy()
		if got := p.VisibleModules(all, access.RolePro); len(got) != 3 {
			t.Errorf("expected 3 modules for pro, got %d", len(got))
		}
	})

	t.Run("Empty", func(t *testing.T) {
		p := access.DefaultPolicy()
		if got := p.VisibleModules(nil, access.RoleFree); len(got) != 0 {
			t.Errorf("expected no modules, got %v", got)
		}
	})
}

func TestVisibleYearsAndLevels(t *testing.T) {
	p := access.DefaultPolicy()
	years := []string{"year11", "year12"}

	if got := p.VisibleYears(years, access.RoleFree); len(got) != 2 {
		t.Errorf("zero cap should be unlimited, got %v", got)
	}

	p.MaxYears = 1
	p.MaxLevels = 1
	if got := p.VisibleYears(years, access.RoleFree); !reflect.DeepEqual(got, []string{"year11"}) {
		t.Errorf("expected [year11], got %v", got)
	}
	if got := p.VisibleLevels([]string{"advanced", "extension1"}, access.RoleFree); !reflect.DeepEqual(got, []string{"advanced"}) {
		t.Errorf("expected [advanced], got %v", got)
	}
	if got := p.VisibleYears(years, access.RolePro); len(got) != 2 {
		t.Errorf("expected every year for pro, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	p := access.DefaultPolicy()
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy should be valid: %v", err)
	}

	p.Clip = "random"
	if err := p.Validate(); !errors.Is(err, access.ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
}

func TestParseLocator(t *testing.T) {
	loc, err := access.ParseLocator("year12/extension1/trigonometric")
	if err != nil {
		t.Fatalf("ParseLocator failed: %v", err)
	}
	if loc != trig {
		t.Errorf("expected %v, got %v", trig, loc)
	}

	for _, bad := range []string{"", "year12/extension1", "year12//x", "a/b/c/d"} {
		if _, err := access.ParseLocator(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		in    string
		want  access.Role
		known bool
	}{
		{"pro", access.RolePro, true},
		{" Pro", access.RolePro, true},
		{"FREE\n", access.RoleFree, true},
		{"gold", access.Role("gold"), false},
		{"", access.Role(""), false},
	}
	for _, tc := range cases {
		got, ok := access.ParseRole(tc.in)
		if got != tc.want || ok != tc.known {
			t.Errorf("ParseRole(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.known)
		}
	}
}
