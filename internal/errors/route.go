package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/vango-dev/fsroute/pkg/router"
)

// FromBuild converts an error returned by router.Build into one
// RouteError per violation. Other errors become a single R001.
func FromBuild(err error) []*RouteError {
	if err == nil {
		return nil
	}

	var buildErr *router.BuildError
	if !stderrors.As(err, &buildErr) {
		if stderrors.Is(err, router.ErrInvalidSegment) {
			return []*RouteError{New("R003").Wrap(err)}
		}
		return []*RouteError{FromError(err, "R001")}
	}

	out := make([]*RouteError, 0, len(buildErr.Errors))
	for _, e := range buildErr.Errors {
		out = append(out, fromViolation(e))
	}
	return out
}

func fromViolation(err error) *RouteError {
	var malformed *router.MalformedTemplateError
	if stderrors.As(err, &malformed) {
		return New("R001").
			Wrap(err).
			WithLocation(malformed.Source).
			WithContext(fmt.Sprintf("%s  %s", malformed.ID, malformed.Pattern)).
			WithSuggestion(suggestionFor(malformed.Rule))
	}

	var dup *router.DuplicateTemplateError
	if stderrors.As(err, &dup) {
		return New("R002").
			Wrap(err).
			WithLocation(dup.Second.Source).
			WithContext(
				describe(dup.First),
				describe(dup.Second),
			).
			WithSuggestion("Rename or remove one of the folders; parameter names alone do not make templates distinct")
	}

	return FromError(err, "R001")
}

func describe(d router.Declaration) string {
	s := fmt.Sprintf("%s  %s", d.ID, d.Pattern())
	if d.Source != "" {
		s += "  (" + d.Source + ")"
	}
	return s
}

func suggestionFor(rule router.Rule) string {
	switch rule {
	case router.RuleCatchAllNotLast:
		return "Move the [...name] or [[...name]] folder to the end of the path"
	case router.RuleMultipleCatchAll:
		return "Keep a single catch-all segment per route"
	case router.RuleDuplicateParam:
		return "Give each [name] folder in the path a distinct name"
	case router.RuleEmptyParam:
		return "Name the parameter, for example [id]"
	case router.RuleDuplicateID:
		return "Route IDs must be unique"
	case router.RuleReservedStatic:
		return "Rename the folder; (name), brackets, . and .. are not literal segments"
	}
	return ""
}
