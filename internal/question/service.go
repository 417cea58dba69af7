package question

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"

	"github.com/saulo-duarte/mathbank-lambda/internal/access"
	"github.com/saulo-duarte/mathbank-lambda/internal/auth"
	"github.com/saulo-duarte/mathbank-lambda/internal/config"
	"github.com/saulo-duarte/mathbank-lambda/internal/pager"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnauthorized   = auth.ErrUnauthorized
	ErrNotFound       = errors.New("not found")
	ErrYearLocked     = errors.New("year not available on this tier")
	ErrLevelLocked    = errors.New("level not available on this tier")
	ErrModuleLocked   = errors.New("module not available on this tier")
	ErrModuleNotFound = errors.New("module not found")
)

type ModuleView struct {
	ModuleInfo
	Reachable bool `json:"reachable"`
}

type BrowseResult struct {
	pager.Page[Record]
	Matched int         `json:"matched"`
	Clipped bool        `json:"clipped"`
	Tier    access.Role `json:"tier"`
}

type QuestionService interface {
	Years(ctx context.Context, sess *auth.Session) ([]string, error)
	Levels(ctx context.Context, sess *auth.Session, year string) ([]string, error)
	Modules(ctx context.Context, sess *auth.Session, year, level string) ([]ModuleView, error)
	Browse(ctx context.Context, sess *auth.Session, q Query) (*BrowseResult, error)
	Sample(ctx context.Context, sess *auth.Session, q Query, n int) (*BrowseResult, error)
	Warnings(ctx context.Context) []LoadWarning
}

type questionService struct {
	bank       *Bank
	policy     access.Policy
	randSource func() rand.Source
}

func NewService(bank *Bank, policy access.Policy, randSource func() rand.Source) QuestionService {
	if randSource == nil {
		randSource = func() rand.Source { return rand.NewPCG(rand.Uint64(), rand.Uint64()) }
	}
	return &questionService{
		bank:       bank,
		policy:     policy,
		randSource: randSource,
	}
}

func requireSession(log logrus.FieldLogger, sess *auth.Session, action string) error {
	if sess == nil {
		log.Warnf("Attempt to %s without authentication", action)
		return ErrUnauthorized
	}
	return nil
}

func (s *questionService) Years(ctx context.Context, sess *auth.Session) ([]string, error) {
	log := config.WithContext(ctx)
	if err := requireSession(log, sess, "list years"); err != nil {
		return nil, err
	}
	return s.policy.VisibleYears(s.bank.Years(), sess.Role), nil
}

func (s *questionService) yearVisible(year string, role access.Role) bool {
	return slices.Contains(s.policy.VisibleYears(s.bank.Years(), role), year)
}

func (s *questionService) levelVisible(year, level string, role access.Role) bool {
	levels, _ := s.bank.Levels(year)
	return slices.Contains(s.policy.VisibleLevels(levels, role), level)
}

func (s *questionService) visibleModules(year, level string, role access.Role) []access.ModuleLocator {
	infos, _ := s.bank.Modules(year, level)
	locs := make([]access.ModuleLocator, len(infos))
	for i, m := range infos {
		locs[i] = m.ModuleLocator
	}
	return s.policy.VisibleModules(locs, role)
}

// moduleAllowed requires the module to be listed for role and reachable.
func (s *questionService) moduleAllowed(loc access.ModuleLocator, role access.Role) bool {
	if !s.yearVisible(loc.Year, role) || !s.levelVisible(loc.Year, loc.Level, role) {
		return false
	}
	return slices.Contains(s.visibleModules(loc.Year, loc.Level, role), loc) && s.policy.IsModuleReachable(loc, role)
}

func (s *questionService) checkYear(year string, role access.Role) error {
	if !s.bank.HasYear(year) {
		return ErrNotFound
	}
	if !s.yearVisible(year, role) {
		return ErrYearLocked
	}
	return nil
}

func (s *questionService) checkLevel(year, level string, role access.Role) error {
	if err := s.checkYear(year, role); err != nil {
		return err
	}
	if !s.bank.HasLevel(year, level) {
		return ErrNotFound
	}
	if !s.levelVisible(year, level, role) {
		return ErrLevelLocked
	}
	return nil
}

func (s *questionService) Levels(ctx context.Context, sess *auth.Session, year string) ([]string, error) {
	log := config.WithContext(ctx)
	if err := requireSession(log, sess, "list levels"); err != nil {
		return nil, err
	}
	if err := s.checkYear(year, sess.Role); err != nil {
		log.WithError(err).WithField("year", year).Info("Levels unavailable")
		return nil, err
	}
	levels, _ := s.bank.Levels(year)
	return s.policy.VisibleLevels(levels, sess.Role), nil
}

func (s *questionService) Modules(ctx context.Context, sess *auth.Session, year, level string) ([]ModuleView, error) {
	log := config.WithContext(ctx)
	if err := requireSession(log, sess, "list modules"); err != nil {
		return nil, err
	}
	if err := s.checkLevel(year, level, sess.Role); err != nil {
		log.WithError(err).WithFields(logrus.Fields{"year": year, "level": level}).Info("Modules unavailable")
		return nil, err
	}

	views := []ModuleView{}
	for _, loc := range s.visibleModules(year, level, sess.Role) {
		info, _ := s.bank.Module(loc)
		views = append(views, ModuleView{
			ModuleInfo: info,
			Reachable:  s.policy.IsModuleReachable(loc, sess.Role),
		})
	}
	return views, nil
}

// selection runs filter and clip; paging and sampling happen afterwards.
func (s *questionService) selection(ctx context.Context, sess *auth.Session, c Criteria) ([]Record, int, error) {
	log := config.WithContext(ctx)
	role := sess.Role

	if c.Year != "" && s.bank.HasYear(c.Year) && !s.yearVisible(c.Year, role) {
		return nil, 0, ErrYearLocked
	}
	if c.Year != "" && c.Level != "" && s.bank.HasLevel(c.Year, c.Level) && !s.levelVisible(c.Year, c.Level, role) {
		return nil, 0, ErrLevelLocked
	}

	loc := access.ModuleLocator{Year: c.Year, Level: c.Level, Module: c.Module}
	if loc.Complete() {
		if _, ok := s.bank.Module(loc); !ok {
			return nil, 0, ErrModuleNotFound
		}
		if !s.moduleAllowed(loc, role) {
			log.WithFields(logrus.Fields{
				"module":  loc.String(),
				"user_id": sess.UserID,
				"role":    role,
			}).Info("Module locked for tier")
			return nil, 0, ErrModuleLocked
		}
	}

	filtered := Filter(s.bank.Records(), c)
	return s.clipByModule(filtered, role), len(filtered), nil
}

// positioned carries a record's index in the filtered slice through Clip.
type positioned struct {
	Record
	pos int
}

// clipByModule applies the policy to each module's records as one group,
// dropping modules role cannot open. The output keeps the input order.
func (s *questionService) clipByModule(records []Record, role access.Role) []Record {
	if !s.policy.Restricted(role) {
		return records
	}

	var order []access.ModuleLocator
	groups := make(map[access.ModuleLocator][]positioned)
	for i, r := range records {
		loc := r.Locator()
		if _, ok := groups[loc]; !ok {
			order = append(order, loc)
		}
		groups[loc] = append(groups[loc], positioned{Record: r, pos: i})
	}

	keep := make([]bool, len(records))
	for _, loc := range order {
		if !s.moduleAllowed(loc, role) {
			continue
		}
		for _, p := range access.Clip(s.policy, groups[loc], loc, role) {
			keep[p.pos] = true
		}
	}

	out := make([]Record, 0, len(records))
	for i, r := range records {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out
}

func (s *questionService) Browse(ctx context.Context, sess *auth.Session, q Query) (*BrowseResult, error) {
	log := config.WithContext(ctx)
	if err := requireSession(log, sess, "browse questions"); err != nil {
		return nil, err
	}

	visible, matched, err := s.selection(ctx, sess, q.Criteria)
	if err != nil {
		return nil, err
	}

	return &BrowseResult{
		Page:    pager.Paginate(visible, q.PageSize, q.Page),
		Matched: matched,
		Clipped: len(visible) < matched,
		Tier:    sess.Role,
	}, nil
}

func (s *questionService) Sample(ctx context.Context, sess *auth.Session, q Query, n int) (*BrowseResult, error) {
	log := config.WithContext(ctx)
	if err := requireSession(log, sess, "sample questions"); err != nil {
		return nil, err
	}

	visible, matched, err := s.selection(ctx, sess, q.Criteria)
	if err != nil {
		return nil, err
	}

	picked := Pick(visible, n, rand.New(s.randSource()))
	return &BrowseResult{
		Page:    pager.Paginate(picked, q.PageSize, q.Page),
		Matched: matched,
		Clipped: len(visible) < matched,
		Tier:    sess.Role,
	}, nil
}

func (s *questionService) Warnings(ctx context.Context) []LoadWarning {
	warnings := s.bank.Warnings()
	if warnings == nil {
		return []LoadWarning{}
	}
	return warnings
}
