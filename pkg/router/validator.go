package router

import (
	"errors"
	"fmt"
	"strings"
)

// Build errors. Use errors.Is against a *BuildError to test for a kind.
var (
	ErrMalformedTemplate = errors.New("malformed template")
	ErrDuplicateTemplate = errors.New("duplicate template")
)

// Rule names a template invariant.
type Rule string

const (
	RuleCatchAllNotLast  Rule = "catch-all-not-last"
	RuleMultipleCatchAll Rule = "multiple-catch-all"
	RuleDuplicateParam   Rule = "duplicate-param"
	RuleEmptyParam       Rule = "empty-param"
	RuleEmptyStatic      Rule = "empty-static"
	RuleEmptyID          Rule = "empty-id"
	RuleDuplicateID      Rule = "duplicate-id"
	RuleSlashInStatic    Rule = "slash-in-static"
	RuleInvalidKind      Rule = "invalid-segment-kind"
	RuleReservedStatic   Rule = "reserved-static"
)

// MalformedTemplateError reports a declaration that violates a template
// invariant.
type MalformedTemplateError struct {
	// ID is the offending declaration's ID.
	ID string

	// Pattern is the rendered template.
	Pattern string

	// Source is the declaration source, if known.
	Source string

	// Rule is the violated invariant.
	Rule Rule

	// Detail names the segment or parameter involved.
	Detail string
}

func (e *MalformedTemplateError) Error() string {
	msg := fmt.Sprintf("malformed template %q (%s): %s", e.ID, e.Pattern, e.Rule)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is makes errors.Is(err, ErrMalformedTemplate) true.
func (e *MalformedTemplateError) Is(target error) bool {
	return target == ErrMalformedTemplate
}

// DuplicateTemplateError reports two structurally identical declarations.
type DuplicateTemplateError struct {
	// First is the earlier declaration.
	First Declaration

	// Second is the later declaration colliding with First.
	Second Declaration

	// Shape is the structural key both share (parameter names elided).
	Shape string
}

func (e *DuplicateTemplateError) Error() string {
	return fmt.Sprintf("duplicate template %s: %q (%s) and %q (%s)",
		e.Shape, e.First.ID, e.First.Pattern(), e.Second.ID, e.Second.Pattern())
}

// Is makes errors.Is(err, ErrDuplicateTemplate) true.
func (e *DuplicateTemplateError) Is(target error) bool {
	return target == ErrDuplicateTemplate
}

// BuildError aggregates every violation found while building a table.
type BuildError struct {
	Errors []error
}

func (e *BuildError) Error() string {
	if len(e.Errors) == 0 {
		return "no build errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d route template errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual violations to errors.Is and errors.As.
func (e *BuildError) Unwrap() []error {
	return e.Errors
}

// Validator checks declarations before they are compiled.
type Validator struct {
	decls  []Declaration
	errors []error
}

// NewValidator creates a validator for decls.
func NewValidator(decls []Declaration) *Validator {
	return &Validator{decls: decls}
}

// Validate checks every declaration and returns a *BuildError listing all
// violations, or nil.
func (v *Validator) Validate() error {
	v.errors = nil

	malformed := make(map[int]bool)
	for i, d := range v.decls {
		if !v.validateTemplate(d) {
			malformed[i] = true
		}
	}
	v.validateDuplicates(malformed)

	if len(v.errors) > 0 {
		return &BuildError{Errors: v.errors}
	}
	return nil
}

func (v *Validator) malformed(d Declaration, rule Rule, detail string) {
	v.errors = append(v.errors, &MalformedTemplateError{
		ID:      d.ID,
		Pattern: d.Pattern(),
		Source:  d.Source,
		Rule:    rule,
		Detail:  detail,
	})
}

// validateTemplate checks the per-template invariants and reports whether
// d passed. Every rule is evaluated so one declaration can contribute
// several errors.
func (v *Validator) validateTemplate(d Declaration) bool {
	before := len(v.errors)
	if d.ID == "" {
		v.malformed(d, RuleEmptyID, "")
	}

	seen := make(map[string]bool)
	catchAlls := 0
	for i, seg := range d.Segments {
		switch seg.Kind {
		case KindStatic:
			if seg.Value == "" {
				v.malformed(d, RuleEmptyStatic, fmt.Sprintf("segment %d", i))
			} else if strings.Contains(seg.Value, "/") {
				v.malformed(d, RuleSlashInStatic, seg.Value)
			} else if isReservedStatic(seg.Value) {
				v.malformed(d, RuleReservedStatic, seg.Value)
			}
			continue
		case KindDynamic, KindCatchAll, KindOptionalCatchAll:
		default:
			v.malformed(d, RuleInvalidKind, fmt.Sprintf("segment %d", i))
			continue
		}

		if seg.Value == "" {
			v.malformed(d, RuleEmptyParam, fmt.Sprintf("segment %d", i))
		} else if seen[seg.Value] {
			v.malformed(d, RuleDuplicateParam, seg.Value)
		}
		seen[seg.Value] = true

		if seg.Kind.IsCatchAll() {
			catchAlls++
			if catchAlls == 2 {
				v.malformed(d, RuleMultipleCatchAll, seg.String())
			}
			if i != len(d.Segments)-1 {
				v.malformed(d, RuleCatchAllNotLast, seg.String())
			}
		}
	}
	return len(v.errors) == before
}

// isReservedStatic reports whether literal has no faithful pattern form:
// route groups and bracketed names parse as something else, and "." or
// ".." never survive path canonicalization.
func isReservedStatic(literal string) bool {
	return literal == "." || literal == ".." ||
		IsRouteGroup(literal) ||
		strings.ContainsAny(literal, "[]")
}

// validateDuplicates reports structurally identical templates and reused
// IDs. Each collision is reported against the first declaration seen.
// Malformed declarations are left out of the shape check, since their
// shape is meaningless.
func (v *Validator) validateDuplicates(malformed map[int]bool) {
	byShape := make(map[string]int)
	byID := make(map[string]int)

	for i, d := range v.decls {
		if !malformed[i] {
			shape := shapeOf(d.Segments)
			if j, ok := byShape[shape]; ok {
				v.errors = append(v.errors, &DuplicateTemplateError{
					First:  v.decls[j],
					Second: d,
					Shape:  shape,
				})
			} else {
				byShape[shape] = i
			}
		}

		if d.ID == "" {
			continue
		}
		if j, ok := byID[d.ID]; ok {
			v.malformed(d, RuleDuplicateID, fmt.Sprintf("also declared as %s", v.decls[j].Pattern()))
		} else {
			byID[d.ID] = i
		}
	}
}
