package textfilter

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rating is a session content rating.
type Rating string

const (
	RatingG    Rating = "G"
	RatingPG   Rating = "PG"
	RatingPG13 Rating = "PG-13"
	RatingR    Rating = "R"
)

// ParseRating normalizes a rating string. "PG13" and "pg-13" both read as
// RatingPG13; anything unrecognised is returned upper-cased as is.
func ParseRating(s string) Rating {
	r := strings.ToUpper(strings.TrimSpace(s))
	if r == "PG13" {
		return RatingPG13
	}
	return Rating(r)
}

// Filtered reports whether narrative shown at this rating is softened.
func (r Rating) Filtered() bool {
	switch r {
	case RatingG, RatingPG, RatingPG13:
		return true
	}
	return false
}

// Words softened for G, PG and PG-13 sessions.
var swearWords = []string{
	"fuck", "shit", "damn", "hell", "ass", "bitch", "bastard", "crap",
	"piss", "cock", "dick", "pussy", "tits", "boobs", "whore", "slut",
	"fag", "retard", "nigger", "nigga", "spic", "chink", "kike",
	"motherfucker", "goddamn", "jesus christ", "christ", "asshole",
	"dumbass", "jackass", "smartass", "badass", "bullshit", "horseshit",
	"dipshit", "shithead", "dickhead", "prick", "douche", "douchebag",
}

// swearWordReplacements maps each word to its family-friendly stand-in.
var swearWordReplacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"cock":         "[censored]",
	"dick":         "jerk",
	"pussy":        "[censored]",
	"tits":         "[censored]",
	"boobs":        "[censored]",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"fag":          "[censored]",
	"retard":       "[censored]",
	"nigger":       "[censored]",
	"nigga":        "[censored]",
	"spic":         "[censored]",
	"chink":        "[censored]",
	"kike":         "[censored]",
	"motherfucker": "mother-trucker",
	"goddamn":      "gosh-dang",
	"jesus christ": "jeez",
	"christ":       "crikey",
	"asshole":      "jerk",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"smartass":     "smarty",
	"badass":       "tough",
	"bullshit":     "baloney",
	"horseshit":    "nonsense",
	"dipshit":      "dummy",
	"shithead":     "jerk",
	"dickhead":     "jerk",
	"prick":        "jerk",
	"douche":       "jerk",
	"douchebag":    "jerk",
}

// Filter softens profanity in narrative text. It is safe for concurrent use.
type Filter struct {
	pattern *regexp.Regexp
}

// New compiles the word list into a single case-insensitive pattern.
// Longer words come first so "bullshit" wins over "shit".
func New() *Filter {
	words := slices.Clone(swearWords)
	slices.SortFunc(words, func(a, b string) int { return len(b) - len(a) })

	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return &Filter{
		pattern: regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

// Replace swaps every listed word for its stand-in, keeping the casing of
// the original.
func (f *Filter) Replace(text string) string {
	return f.pattern.ReplaceAllStringFunc(text, func(match string) string {
		replacement, ok := swearWordReplacements[strings.ToLower(match)]
		if !ok {
			return match
		}
		return matchCase(match, replacement)
	})
}

// Contains reports whether text has any listed word.
func (f *Filter) Contains(text string) bool {
	return f.pattern.MatchString(text)
}

func matchCase(original, replacement string) string {
	// Casers are stateful, so each call gets its own.
	title := cases.Title(language.English)
	switch {
	case strings.ToUpper(original) == original:
		return strings.ToUpper(replacement)
	case strings.ToLower(original) == original:
		return replacement
	case title.String(strings.ToLower(original)) == original:
		return title.String(replacement)
	}

	orig := []rune(original)
	out := []rune(replacement)
	for i := range out {
		if i < len(orig) && unicode.IsUpper(orig[i]) {
			out[i] = unicode.ToUpper(out[i])
		} else {
			out[i] = unicode.ToLower(out[i])
		}
	}
	return string(out)
}
