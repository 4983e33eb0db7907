// Package collaborator matches free-text assignee cells against the project
// directory.
package collaborator

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"sheetimport/domain/task"
	"sheetimport/internal/textnorm"
)

const (
	minInitials = 2
	maxInitials = 4
	// minFragment is the shortest input token compared by substring
	minFragment = 3
	// minNameToken keeps single-letter name parts from matching every input
	minNameToken = 2
)

// Method names the cascade step that produced a match
type Method string

const (
	MethodEmail    Method = "email"
	MethodName     Method = "name"
	MethodInitials Method = "initials"
	MethodPartial  Method = "partial"
)

type candidate struct {
	collaborator task.Collaborator
	normalized   string
	tokens       []string
	initials     string
}

// Resolver matches assignee text with a fixed cascade: exact email, exact
// display name, unique initials, then substring. The first step with a
// match wins; there is no scoring.
type Resolver struct {
	candidates []candidate
}

// NewResolver indexes a directory. Directory order decides ties.
func NewResolver(dir task.Directory) *Resolver {
	r := &Resolver{candidates: make([]candidate, 0, len(dir))}
	for _, c := range dir {
		normalized := normalizeName(c.DisplayName)
		r.candidates = append(r.candidates, candidate{
			collaborator: c,
			normalized:   normalized,
			tokens:       nameTokens(normalized),
			initials:     Initials(c.DisplayName),
		})
	}
	return r
}

// Len returns the directory size
func (r *Resolver) Len() int {
	return len(r.candidates)
}

// Resolve returns the collaborator text refers to
func (r *Resolver) Resolve(text string) (task.Collaborator, bool) {
	c, _, ok := r.ResolveWithMethod(text)
	return c, ok
}

// ResolveWithMethod also reports which cascade step matched
func (r *Resolver) ResolveWithMethod(text string) (task.Collaborator, Method, bool) {
	text = strings.TrimSpace(text)
	if text == "" || len(r.candidates) == 0 {
		return task.Collaborator{}, "", false
	}

	if strings.Contains(text, "@") {
		if c, ok := r.byEmail(text); ok {
			return c, MethodEmail, true
		}
	}
	if c, ok := r.byName(text); ok {
		return c, MethodName, true
	}
	if c, ok := r.byInitials(text); ok {
		return c, MethodInitials, true
	}
	if c, ok := r.byPartial(text); ok {
		return c, MethodPartial, true
	}
	return task.Collaborator{}, "", false
}

func (r *Resolver) byEmail(text string) (task.Collaborator, bool) {
	addresses := []string{text}
	if addr, err := mail.ParseAddress(text); err == nil {
		addresses = append(addresses, addr.Address)
	}
	for _, cand := range r.candidates {
		for _, a := range addresses {
			if cand.collaborator.Email != "" && strings.EqualFold(a, cand.collaborator.Email) {
				return cand.collaborator, true
			}
		}
	}
	return task.Collaborator{}, false
}

func (r *Resolver) byName(text string) (task.Collaborator, bool) {
	for _, cand := range r.candidates {
		if strings.EqualFold(text, strings.TrimSpace(cand.collaborator.DisplayName)) {
			return cand.collaborator, true
		}
	}
	return task.Collaborator{}, false
}

// byInitials matches only when exactly one candidate has the initials
func (r *Resolver) byInitials(text string) (task.Collaborator, bool) {
	var letters strings.Builder
	for _, ch := range strings.ToUpper(textnorm.Fold(text)) {
		if unicode.IsLetter(ch) {
			letters.WriteRune(ch)
		}
	}
	input := letters.String()
	if n := utf8.RuneCountInString(input); n < minInitials || n > maxInitials {
		return task.Collaborator{}, false
	}

	var match *candidate
	for i := range r.candidates {
		if r.candidates[i].initials != input {
			continue
		}
		if match != nil {
			return task.Collaborator{}, false
		}
		match = &r.candidates[i]
	}
	if match == nil {
		return task.Collaborator{}, false
	}
	return match.collaborator, true
}

func (r *Resolver) byPartial(text string) (task.Collaborator, bool) {
	input := normalizeName(text)
	if utf8.RuneCountInString(input) >= minFragment {
		for _, cand := range r.candidates {
			if cand.normalized == "" {
				continue
			}
			if strings.Contains(cand.normalized, input) || strings.Contains(input, cand.normalized) {
				return cand.collaborator, true
			}
		}
	}

	for _, tok := range nameTokens(input) {
		if utf8.RuneCountInString(tok) < minFragment {
			continue
		}
		for _, cand := range r.candidates {
			for _, ct := range cand.tokens {
				if utf8.RuneCountInString(ct) < minNameToken {
					continue
				}
				if strings.Contains(ct, tok) || strings.Contains(tok, ct) {
					return cand.collaborator, true
				}
			}
		}
	}
	return task.Collaborator{}, false
}

// Initials returns the upper-cased first letter of every whitespace, period
// or hyphen delimited token of name
func Initials(name string) string {
	var b strings.Builder
	for _, tok := range strings.FieldsFunc(textnorm.Fold(name), isNameSeparator) {
		for _, ch := range tok {
			if unicode.IsLetter(ch) {
				b.WriteRune(unicode.ToUpper(ch))
				break
			}
		}
	}
	return b.String()
}

func isNameSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '.' || r == '-'
}

// normalizeName lower-cases, strips diacritics and collapses whitespace
func normalizeName(s string) string {
	return strings.Join(strings.Fields(textnorm.Fold(s)), " ")
}

// nameTokens splits a normalized name on whitespace, dropping periods
func nameTokens(normalized string) []string {
	var out []string
	for _, f := range strings.Fields(normalized) {
		if tok := strings.ReplaceAll(f, ".", ""); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
