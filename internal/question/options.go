package question

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var labelPrefix = regexp.MustCompile(`^\(?([A-Za-z])[\).:]\s*(.*)$`)

var errNotScalar = errors.New("value is not a string or number")

// parseOptions accepts either a JSON array of option texts or an object
// mapping labels to texts. Object key order is preserved.
func parseOptions(raw json.RawMessage) ([]Option, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		texts := make([]string, 0, len(items))
		for i, it := range items {
			text, err := scalarText(it)
			if err != nil {
				return nil, fmt.Errorf("option %d: %w", i, err)
			}
			texts = append(texts, text)
		}
		return labelList(texts), nil

	case '{':
		dec := json.NewDecoder(bytes.NewReader(raw))
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		var opts []Option
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := tok.(string)
			var v json.RawMessage
			if err := dec.Decode(&v); err != nil {
				return nil, err
			}
			text, err := scalarText(v)
			if err != nil {
				return nil, fmt.Errorf("option %q: %w", key, err)
			}
			opts = append(opts, Option{Label: key, Text: text})
		}
		return opts, nil
	}

	return nil, errors.New("options must be an array or an object")
}

// labelList uses "A) ..." style prefixes as labels when every option has a
// distinct one, otherwise labels by position.
func labelList(texts []string) []Option {
	opts := make([]Option, len(texts))
	seen := make(map[string]bool, len(texts))
	prefixed := len(texts) > 0
	for i, t := range texts {
		opts[i].Text = t
		m := labelPrefix.FindStringSubmatch(strings.TrimSpace(t))
		if m == nil || m[2] == "" {
			prefixed = false
			continue
		}
		label := strings.ToUpper(m[1])
		if seen[label] {
			prefixed = false
		}
		seen[label] = true
		opts[i].Label = label
	}

	if !prefixed {
		for i := range opts {
			opts[i].Label = positionalLabel(i)
		}
	}
	return opts
}

func positionalLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("%d", i+1)
}

func scalarText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", errNotScalar
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", errNotScalar
	}
	if bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	return string(raw), nil
}

func stripLabel(text string) string {
	if m := labelPrefix.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		return strings.TrimSpace(m[2])
	}
	return strings.TrimSpace(text)
}

// resolveAnswer returns the label of the option answer refers to, either by
// the option's text or by its label.
func resolveAnswer(answer string, opts []Option) (string, bool) {
	a := strings.TrimSpace(answer)
	if a == "" {
		return "", false
	}
	for _, o := range opts {
		if strings.TrimSpace(o.Text) == a {
			return o.Label, true
		}
	}
	bare := strings.Trim(a, "()")
	for _, o := range opts {
		if strings.EqualFold(o.Label, a) || strings.EqualFold(o.Label, bare) {
			return o.Label, true
		}
	}
	for _, o := range opts {
		if stripLabel(o.Text) == stripLabel(a) {
			return o.Label, true
		}
	}
	return "", false
}
