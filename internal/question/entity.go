package question

import (
	"github.com/google/uuid"
	"github.com/saulo-duarte/mathbank-lambda/internal/access"
)

const DefaultDifficulty = "medium"

type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Record is one exam question. Records are built by the loader and are
// read-only afterwards.
type Record struct {
	ID          uuid.UUID `json:"id"`
	Question    string    `json:"question"`
	Options     []Option  `json:"options,omitempty"`
	Answer      string    `json:"answer,omitempty"`
	AnswerLabel string    `json:"answer_label,omitempty"`
	Solution    string    `json:"solution,omitempty"`
	Difficulty  string    `json:"difficulty"`

	Year       string `json:"year"`
	Level      string `json:"level"`
	Module     string `json:"module"`
	ModuleName string `json:"module_name"`

	Source string `json:"-"`
	Index  int    `json:"-"`

	// Malformed records are kept so callers can surface or exclude them.
	Malformed bool   `json:"malformed,omitempty"`
	Issue     string `json:"issue,omitempty"`
}

func (r Record) Locator() access.ModuleLocator {
	return access.ModuleLocator{Year: r.Year, Level: r.Level, Module: r.Module}
}

func (r Record) DifficultyTag() string { return r.Difficulty }

type ModuleInfo struct {
	access.ModuleLocator
	Name      string `json:"name"`
	Questions int    `json:"questions"`
}

type LoadWarning struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Criteria holds optional exact-match predicates. Empty fields match everything.
type Criteria struct {
	Year       string `json:"year,omitempty"`
	Level      string `json:"level,omitempty"`
	Module     string `json:"module,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

type Query struct {
	Criteria
	Page     int
	PageSize int
}
