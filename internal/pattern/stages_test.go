package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStages(t *testing.T) {
	tests := []struct {
		name  string
		stage func(string) string
		in    string
		want  string
	}{
		{"interpolation", ReplaceInterpolation, "I am #{name} here", "I am .* here"},
		{"interpolation twice", ReplaceInterpolation, "#{a} and #{b}", ".* and .*"},
		{"int", ReplaceParameters, "I have {int} cukes", `I have -?\d+ cukes`},
		{"float", ReplaceParameters, "it costs {float}", `it costs -?\d*\.?\d+`},
		{"word", ReplaceParameters, "I pick {word}", `I pick [^\s]+`},
		{"string", ReplaceParameters, "I type {string}", `I type ("[^"]*"|'[^']*')`},
		{"double quoted", ReplaceParameters, "I type {stringInDoubleQuotes}", `I type "[^"]+"`},
		{"anonymous", ReplaceParameters, "I see {}", "I see .*"},
		{"optional", RewriteOptionalText, "I have cucumber(s)", "I have cucumber(s)?"},
		{"optional skips alternation", RewriteOptionalText, "I say (a|b)", "I say (a|b)"},
		{"alternatives", RewriteAlternatives, "I eat apple/banana/pear", "I eat (apple|banana|pear)"},
		{"alternatives pair", RewriteAlternatives, "in/out", "(in|out)"},
		{"expression", ReplaceExpressions, "I pick {color} and {size}", "I pick .* and .*"},
		{"expression at start", ReplaceExpressions, "{actor} logs in", ".* logs in"},
		{"quantifier kept", ReplaceExpressions, `\d{2}`, `\d{2}`},
		{"range quantifier kept", ReplaceExpressions, `a{2,3}`, `a{2,3}`},
		{"escaped brace kept", ReplaceExpressions, `\{x}`, `\{x}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stage(tt.in))
		})
	}
}

func TestEscapeStray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"regex source untouched", `^I do (\d+) things?$`, `^I do (\d+) things?$`},
		{"class untouched", `"[^"]*"`, `"[^"]*"`},
		{"quantifier untouched", `\d{2,3}`, `\d{2,3}`},
		{"non-capturing untouched", `(?:a|b)`, `(?:a|b)`},
		{"named group untouched", `(?<n>x)`, `(?<n>x)`},
		{"unclosed paren", `I have (unclosed`, `I have \(unclosed`},
		{"stray close paren", `I see ) stray`, `I see \) stray`},
		{"unterminated class", `price [`, `price \[`},
		{"stray brace", `a {weird`, `a \{weird`},
		{"stray close brace", `a weird}`, `a weird\}`},
		{"leading star", `*star`, `\*star`},
		{"nested repetition", `x**`, `x*\*`},
		{"lazy kept", `x*?`, `x*?`},
		{"trailing backslash", `ends with \`, `ends with \\`},
		{"identity escape", `\e`, `e`},
		{"unicode escape kept", `caf\u00e9`, `caf\u00e9`},
		{"short unicode escape is a letter", `\u00`, `u00`},
		{"hex escape kept", `\x41`, `\x41`},
		{"control escape kept", `\cJ`, `\cJ`},
		{"backreference kept", `(a)\1`, `(a)\1`},
		{"lookbehind kept", `(?<=a)b`, `(?<=a)b`},
		{"negative lookbehind kept", `(?<!a)b`, `(?<!a)b`},
		{"lookahead kept", `I (?!hate )like`, `I (?!hate )like`},
		{"escaped punctuation", `\/path\/`, `\/path\/`},
		{"quantifier after group open", `(+x)`, `(\+x)`},
		{"quantifier after bar", `(a|*)`, `(a|\*)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeStray(tt.in)
			assert.Equal(t, tt.want, got)
			_, err := CompileMatcher(got)
			assert.NoError(t, err)
		})
	}
}

func TestRegexTextCompiles(t *testing.T) {
	bodies := []string{
		"I have a {int} in my belly",
		"I type {string} into {word}",
		"it costs {float} dollars",
		"I have cucumber(s) in my belly/stomach",
		"I pick {color} from #{list}",
		"unbalanced ( and [ and {",
		`^I do something$`,
		`I test outline using "[0-9]*" variable`,
	}
	for _, b := range bodies {
		t.Run(b, func(t *testing.T) {
			_, err := CompileMatcher(RegexText(b))
			require.NoError(t, err)
		})
	}
}
