// Package style is the toolkit-independent half of the UI: it parses stylesheets, matches
// rules against elements, resolves property values and lays out boxes.
package style

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Selector is a compound selector such as "panel#colorOptionsFront" or ".color-option.selected:hover".
// Combinators are not supported.
type Selector struct {
	Type    string
	ID      string
	Classes []string
	Hover   bool
}

// Specificity orders selectors the CSS way: ids, then classes and pseudo-classes, then types.
func (s Selector) Specificity() int {
	n := len(s.Classes) * 10
	if s.Hover {
		n += 10
	}
	if s.ID != "" {
		n += 100
	}
	if s.Type != "" {
		n++
	}
	return n
}

// Matches reports whether el satisfies every part of the selector.
func (s Selector) Matches(el Element) bool {
	if s.Type != "" && s.Type != el.Type {
		return false
	}
	if s.ID != "" && s.ID != el.ID {
		return false
	}
	if s.Hover && !el.Hover {
		return false
	}
	for _, c := range s.Classes {
		if !el.HasClass(c) {
			return false
		}
	}
	return true
}

// ParseSelector parses a compound selector. It fails on combinators and unknown pseudo-classes.
func ParseSelector(text string) (Selector, error) {
	var sel Selector
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, " \t\n>+~[*") {
		return sel, fmt.Errorf("unsupported selector %q", text)
	}
	i := 0
	readIdent := func() string {
		start := i
		for i < len(text) && text[i] != '.' && text[i] != '#' && text[i] != ':' {
			i++
		}
		return text[start:i]
	}
	if text[0] != '.' && text[0] != '#' && text[0] != ':' {
		sel.Type = readIdent()
	}
	for i < len(text) {
		kind := text[i]
		i++
		name := readIdent()
		if name == "" {
			return sel, fmt.Errorf("unsupported selector %q", text)
		}
		switch kind {
		case '.':
			sel.Classes = append(sel.Classes, name)
		case '#':
			sel.ID = name
		case ':':
			if name != "hover" {
				return sel, fmt.Errorf("unsupported pseudo-class %q", name)
			}
			sel.Hover = true
		}
	}
	return sel, nil
}

// Element is what rules are matched against.
type Element struct {
	Type    string
	ID      string
	Classes []string
	Hover   bool
}

func (e Element) HasClass(name string) bool {
	for _, c := range e.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// Rule is one selector with its declarations. A CSS rule with a selector list becomes
// one Rule per selector.
type Rule struct {
	Selector Selector
	Props    map[string]string
	order    int
}

// Sheet is an ordered list of rules.
type Sheet struct {
	Rules []Rule
	// Skipped lists selectors that were ignored as unsupported.
	Skipped []string
}

// Parse parses a stylesheet. At-rules and unsupported selectors are skipped and listed
// in Sheet.Skipped.
func Parse(content string) (*Sheet, error) {
	parsed, err := parser.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("style: %w", err)
	}
	sheet := &Sheet{}
	for _, r := range parsed.Rules {
		if r.Kind != css.QualifiedRule {
			continue
		}
		props := make(map[string]string, len(r.Declarations))
		for _, d := range r.Declarations {
			props[strings.ToLower(strings.TrimSpace(d.Property))] = strings.TrimSpace(d.Value)
		}
		for _, text := range r.Selectors {
			sel, err := ParseSelector(text)
			if err != nil {
				sheet.Skipped = append(sheet.Skipped, text)
				continue
			}
			sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Props: props, order: len(sheet.Rules)})
		}
	}
	return sheet, nil
}

// Merge returns a sheet with the rules of s followed by those of other.
func (s *Sheet) Merge(other *Sheet) *Sheet {
	out := &Sheet{}
	for _, src := range []*Sheet{s, other} {
		if src == nil {
			continue
		}
		for _, r := range src.Rules {
			r.order = len(out.Rules)
			out.Rules = append(out.Rules, r)
		}
		out.Skipped = append(out.Skipped, src.Skipped...)
	}
	return out
}

// Match returns the properties that apply to el. More specific rules win; among equal
// specificity the later rule wins.
func (s *Sheet) Match(el Element) map[string]string {
	merged := map[string]string{}
	if s == nil {
		return merged
	}
	var matched []Rule
	for _, r := range s.Rules {
		if r.Selector.Matches(el) {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		si, sj := matched[i].Selector.Specificity(), matched[j].Selector.Specificity()
		if si != sj {
			return si < sj
		}
		return matched[i].order < matched[j].order
	})
	for _, r := range matched {
		for k, v := range r.Props {
			merged[k] = v
		}
	}
	return merged
}
