// Package textfilter softens generated scene prose for family-friendly
// deployments. Small local models occasionally ignore tone instructions,
// so the filter runs on the engine side rather than trusting the prompt.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps words to softer alternatives. Matching is
// case-insensitive on word boundaries; replacement preserves the case
// pattern of the match.
var replacements = map[string]string{
	"fuck":         "fudge",
	"fucking":      "flipping",
	"motherfucker": "mother-trucker",
	"shit":         "shoot",
	"bullshit":     "nonsense",
	"damn":         "dang",
	"goddamn":      "gosh-dang",
	"hell":         "heck",
	"ass":          "butt",
	"asshole":      "jerk",
	"bitch":        "jerk",
	"bastard":      "wretch",
	"crap":         "crud",
	"piss":         "ticked",
	"prick":        "jerk",
	"whore":        "[censored]",
	"slut":         "[censored]",
}

// Filter replaces harsh language in prose with softer alternatives.
type Filter struct {
	regexes map[string]*regexp.Regexp
}

// New creates a filter with patterns pre-compiled per word.
func New() *Filter {
	f := &Filter{regexes: make(map[string]*regexp.Regexp, len(replacements))}
	for word := range replacements {
		f.regexes[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return f
}

// Apply returns the text with every matched word replaced. Markup spans
// are left intact; only the words inside them change.
func (f *Filter) Apply(text string) string {
	result := text
	for word, re := range f.regexes {
		replacement := replacements[word]
		result = re.ReplaceAllStringFunc(result, func(match string) string {
			return preserveCase(match, replacement)
		})
	}
	return result
}

var titleCaser = cases.Title(language.English)

// preserveCase applies the case pattern of the matched word to its
// replacement.
func preserveCase(original, replacement string) string {
	if original == "" {
		return replacement
	}
	switch {
	case strings.ToUpper(original) == original:
		return strings.ToUpper(replacement)
	case strings.ToLower(original) == original:
		return replacement
	case titleCaser.String(strings.ToLower(original)) == original:
		return titleCaser.String(replacement)
	}

	// Mixed case: mirror the original character by character.
	out := make([]rune, 0, len(replacement))
	origRunes := []rune(original)
	for i, r := range replacement {
		if i < len(origRunes) && unicode.IsUpper(origRunes[i]) {
			out = append(out, unicode.ToUpper(r))
		} else {
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}
