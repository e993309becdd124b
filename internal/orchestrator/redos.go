package orchestrator

import "strings"

const maxPatternLength = 500

// nestedQuantifiers are the catastrophic-backtracking shapes called out by
// the error handling design: a starred or plussed group around a starred
// or plussed atom.
var nestedQuantifiers = []string{
	"(.*)*", "(.*)+", "(.+)*", "(.+)+",
}

// adjacentQuantifiers are doubled quantifier tokens that are never
// meaningful and are cheap to reject outright.
var adjacentQuantifiers = []string{
	"++", "**",
}

// validatePattern vets a user-supplied regex pattern (e.g. for
// ReplaceInSection) before it is ever compiled. A pattern that fails this
// check is rejected with RegexUnsafe and never executed.
func validatePattern(pattern string) error {
	if len(pattern) > maxPatternLength {
		return newErr(RegexUnsafe, "pattern exceeds %d characters", maxPatternLength)
	}
	for _, shape := range nestedQuantifiers {
		if strings.Contains(pattern, shape) {
			return newErr(RegexUnsafe, "pattern contains nested quantifier %q", shape)
		}
	}
	for _, shape := range adjacentQuantifiers {
		if strings.Contains(pattern, shape) {
			return newErr(RegexUnsafe, "pattern contains adjacent quantifier %q", shape)
		}
	}
	return nil
}
