package question

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/saulo-duarte/mathbank-lambda/internal/access"
	"github.com/saulo-duarte/mathbank-lambda/internal/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// recordNamespace makes record IDs stable across loads of the same tree.
var recordNamespace = uuid.MustParse("6f1c9a52-8d0e-4c55-9a7e-3b2f64a1d0c7")

type rawRecord struct {
	Question    *string         `json:"question"`
	Options     json.RawMessage `json:"options"`
	Answer      json.RawMessage `json:"answer"`
	Solution    json.RawMessage `json:"solution"`
	Explanation json.RawMessage `json:"explanation"`
	Difficulty  json.RawMessage `json:"difficulty"`
}

type loader struct {
	log   logrus.FieldLogger
	root  string
	bank  *Bank
	title cases.Caser
}

// LoadBank walks root as <year>/<level>/<module>.json. Bad files and records
// are skipped with a warning; only an unreadable root is an error. The source
// tree is never written.
func LoadBank(ctx context.Context, root string) (*Bank, error) {
	years, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read question root: %w", err)
	}

	l := &loader{
		log:   config.WithContext(ctx).WithField("root", root),
		root:  root,
		bank:  newBank(),
		title: cases.Title(language.English),
	}

	for _, y := range years {
		if !y.IsDir() {
			l.log.WithField("entry", y.Name()).Debug("Ignoring non-directory at year level")
			continue
		}
		l.loadYear(y.Name())
	}

	l.log.WithFields(logrus.Fields{
		"records":  len(l.bank.records),
		"modules":  len(l.bank.modules),
		"warnings": len(l.bank.warnings),
	}).Info("Question bank loaded")
	return l.bank, nil
}

func (l *loader) warn(path, reason string) {
	l.bank.warnings = append(l.bank.warnings, LoadWarning{Path: path, Reason: reason})
	l.log.WithField("path", path).Warn(reason)
}

func (l *loader) loadYear(year string) {
	dir := filepath.Join(l.root, year)
	levels, err := os.ReadDir(dir)
	if err != nil {
		l.warn(dir, "cannot read year directory: "+err.Error())
		return
	}
	l.bank.addYear(year)

	for _, lv := range levels {
		if !lv.IsDir() {
			l.log.WithField("entry", filepath.Join(year, lv.Name())).Debug("Ignoring non-directory at level depth")
			continue
		}
		l.loadLevel(year, lv.Name())
	}
}

func (l *loader) loadLevel(year, level string) {
	dir := filepath.Join(l.root, year, level)
	files, err := os.ReadDir(dir)
	if err != nil {
		l.warn(dir, "cannot read level directory: "+err.Error())
		return
	}
	l.bank.addLevel(year, level)

	for _, f := range files {
		ext := filepath.Ext(f.Name())
		if f.IsDir() || !strings.EqualFold(ext, ".json") {
			l.log.WithField("entry", filepath.Join(year, level, f.Name())).Debug("Ignoring non-module entry")
			continue
		}
		loc := access.ModuleLocator{Year: year, Level: level, Module: strings.TrimSuffix(f.Name(), ext)}
		path := filepath.Join(dir, f.Name())
		if _, dup := l.bank.byLoc[loc]; dup {
			l.warn(path, fmt.Sprintf("duplicate module %s skipped", loc))
			continue
		}
		l.loadModule(loc, path)
	}
}

func (l *loader) loadModule(loc access.ModuleLocator, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		l.warn(path, "cannot read module file: "+err.Error())
		return
	}

	entries, err := splitEntries(data)
	if err != nil {
		l.warn(path, "malformed question file: "+err.Error())
		return
	}

	info := ModuleInfo{ModuleLocator: loc, Name: l.displayName(loc.Module)}
	for i, entry := range entries {
		rec, err := buildRecord(entry)
		if err != nil {
			l.warn(path, fmt.Sprintf("record %d rejected: %v", i, err))
			continue
		}
		rec.ID = uuid.NewSHA1(recordNamespace, []byte(fmt.Sprintf("%s#%d", loc, i)))
		rec.Year, rec.Level, rec.Module = loc.Year, loc.Level, loc.Module
		rec.ModuleName = info.Name
		rec.Source = path
		rec.Index = i
		if rec.Malformed {
			l.log.WithFields(logrus.Fields{"path": path, "record": i}).Warn(rec.Issue)
		}
		l.bank.records = append(l.bank.records, rec)
		info.Questions++
	}
	l.bank.addModule(info)
}

// splitEntries accepts a JSON array of objects or a single object.
func splitEntries(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}

	switch data[0] {
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	case '{':
		if !json.Valid(data) {
			return nil, errors.New("invalid JSON object")
		}
		return []json.RawMessage{data}, nil
	}
	return nil, errors.New("top-level value must be an array or an object")
}

func buildRecord(entry json.RawMessage) (Record, error) {
	entry = bytes.TrimSpace(entry)
	if len(entry) == 0 || entry[0] != '{' {
		return Record{}, errors.New("entry is not an object")
	}

	var raw rawRecord
	if err := json.Unmarshal(entry, &raw); err != nil {
		return Record{}, err
	}
	if raw.Question == nil || strings.TrimSpace(*raw.Question) == "" {
		return Record{}, errors.New("missing question")
	}

	rec := Record{Question: *raw.Question}
	rec.Solution = rec.scalar("solution", raw.Solution)
	if rec.Solution == "" {
		rec.Solution = rec.scalar("explanation", raw.Explanation)
	}
	rec.Difficulty = strings.TrimSpace(rec.scalar("difficulty", raw.Difficulty))
	if rec.Difficulty == "" {
		rec.Difficulty = DefaultDifficulty
	}
	flagged := rec.Malformed
	rec.Answer = rec.scalar("answer", raw.Answer)
	answerOK := rec.Malformed == flagged

	opts, err := parseOptions(raw.Options)
	if err != nil {
		rec.flag("options: " + err.Error())
		return rec, nil
	}
	rec.Options = opts

	if len(opts) > 0 && answerOK {
		label, ok := resolveAnswer(rec.Answer, opts)
		if !ok {
			rec.flag(fmt.Sprintf("answer %q matches no option", rec.Answer))
		}
		rec.AnswerLabel = label
	}
	return rec, nil
}

// scalar reads an optional string or number field, flagging any other shape.
func (r *Record) scalar(field string, raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	text, err := scalarText(raw)
	if err != nil {
		r.flag(field + ": " + err.Error())
	}
	return text
}

func (r *Record) flag(issue string) {
	r.Malformed = true
	if r.Issue != "" {
		r.Issue += "; "
	}
	r.Issue += issue
}

func (l *loader) displayName(stem string) string {
	name := strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	return l.title.String(strings.Join(strings.Fields(name), " "))
}
