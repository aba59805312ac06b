package pattern

import (
	"regexp"
	"strings"
)

// Built-in parameter fragments. Each one is the regex text a {name}
// placeholder expands into.
const (
	FloatFragment                = `-?\d*\.?\d+`
	IntFragment                  = `-?\d+`
	StringInDoubleQuotesFragment = `"[^"]+"`
	WordFragment                 = `[^\s]+`
	StringFragment               = `("[^"]*"|'[^']*')`
	AnyFragment                  = `.*`
)

// Stage is one pure text-to-text step of the pattern pipeline.
type Stage struct {
	Name  string
	Apply func(string) string
}

var (
	interpolationRe = regexp.MustCompile(`#\{.*?\}`)
	optionalTextRe  = regexp.MustCompile(`\(([a-z]+)\)`)
	alternativesRe  = regexp.MustCompile(`[a-zA-Z]+(?:/[a-zA-Z]+)+`)
	expressionRe    = regexp.MustCompile(`(^|[^\\])\{(?:[^\d,}][^}]*)?\}`)
)

var builtinParameters = []struct {
	marker   string
	fragment string
}{
	{"{float}", FloatFragment},
	{"{int}", IntFragment},
	{"{stringInDoubleQuotes}", StringInDoubleQuotesFragment},
	{"{word}", WordFragment},
	{"{string}", StringFragment},
	{"{}", AnyFragment},
}

// Stages is the ordered pipeline applied to every step body after custom
// parameter substitution.
var Stages = []Stage{
	{Name: "interpolation", Apply: ReplaceInterpolation},
	{Name: "parameters", Apply: ReplaceParameters},
	{Name: "optional", Apply: RewriteOptionalText},
	{Name: "alternatives", Apply: RewriteAlternatives},
	{Name: "expressions", Apply: ReplaceExpressions},
	{Name: "escape", Apply: EscapeStray},
}

// RegexText runs body through every stage and returns unanchored regex text.
func RegexText(body string) string {
	for _, s := range Stages {
		body = s.Apply(body)
	}
	return body
}

// ReplaceInterpolation turns Ruby-style #{...} interpolation into a wildcard.
func ReplaceInterpolation(s string) string {
	return interpolationRe.ReplaceAllLiteralString(s, AnyFragment)
}

// ReplaceParameters expands the built-in cucumber expression parameters.
func ReplaceParameters(s string) string {
	for _, p := range builtinParameters {
		s = strings.ReplaceAll(s, p.marker, p.fragment)
	}
	return s
}

// RewriteOptionalText makes "(word)" optional: "(word)?".
func RewriteOptionalText(s string) string {
	return optionalTextRe.ReplaceAllString(s, "(${1})?")
}

// RewriteAlternatives turns "a/b/c" into "(a|b|c)".
func RewriteAlternatives(s string) string {
	return alternativesRe.ReplaceAllStringFunc(s, func(m string) string {
		return "(" + strings.ReplaceAll(m, "/", "|") + ")"
	})
}

// ReplaceExpressions turns any remaining {name} custom parameter into a
// wildcard. Braces that start with a digit or comma are quantifiers and are
// kept, as are escaped braces.
func ReplaceExpressions(s string) string {
	return expressionRe.ReplaceAllString(s, "${1}"+AnyFragment)
}
