package lang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Profile is the outcome of resolving a caller-supplied language identifier.
// Profiles are request-scoped and never cached across requests.
type Profile struct {
	Raw    string
	Code   string
	Valid  bool
	Reason string
}

// Human language names and common aliases mapped to canonical 2-letter codes.
// Lookup keys are lowercase.
var nameToCode = map[string]string{
	"english":    "en",
	"hebrew":     "he",
	"arabic":     "ar",
	"french":     "fr",
	"spanish":    "es",
	"german":     "de",
	"russian":    "ru",
	"portuguese": "pt",
	"italian":    "it",
	"dutch":      "nl",
	"chinese":    "zh",
	"mandarin":   "zh",
	"japanese":   "ja",
	"korean":     "ko",
	"hindi":      "hi",
	"turkish":    "tr",
	"polish":     "pl",
	"ukrainian":  "uk",
	"indonesian": "id",
	"vietnamese": "vi",
	"thai":       "th",
	"swedish":    "sv",
	"norwegian":  "no",
	"danish":     "da",
	"finnish":    "fi",
	"greek":      "el",
	"czech":      "cs",
	"romanian":   "ro",
	"hungarian":  "hu",
	"persian":    "fa",
	"farsi":      "fa",
	"urdu":       "ur",
	"bengali":    "bn",
	"amharic":    "am",
	"swahili":    "sw",
	"yiddish":    "yi",
}

// Legacy ISO 639-1 codes still emitted by some providers.
var legacyAliases = map[string]string{
	"iw": "he",
	"in": "id",
	"ji": "yi",
}

// Resolve normalizes a language identifier to a canonical short code. Input
// may be a bare ISO code ("he"), a locale tag ("he-IL", "pt_BR") or a human
// name ("Hebrew"). When nothing resolves the profile carries Valid=false and
// a reason; callers must not substitute a default language on their own.
func Resolve(raw string) Profile {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return Profile{Raw: raw, Reason: "language is empty"}
	}

	if code, ok := nameToCode[trimmed]; ok {
		return Profile{Raw: raw, Code: code, Valid: true}
	}

	normalized := strings.ReplaceAll(trimmed, "_", "-")
	if tag, err := language.Parse(normalized); err == nil {
		base, _ := tag.Base()
		return Profile{Raw: raw, Code: canonical(base.String()), Valid: true}
	}

	// Best effort: accept a short alphabetic residual as a code even when the
	// tag as a whole does not parse.
	residual := normalized
	if idx := strings.IndexAny(residual, "-"); idx > 0 {
		residual = residual[:idx]
	}
	if isAlpha(residual) && len(residual) >= 2 && len(residual) <= 3 {
		return Profile{Raw: raw, Code: canonical(residual), Valid: true}
	}

	return Profile{Raw: raw, Reason: fmt.Sprintf("unrecognized language %q", raw)}
}

func canonical(code string) string {
	if alias, ok := legacyAliases[code]; ok {
		return alias
	}
	return code
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
