package policy

import "regexp"

// patternRule pairs a compiled expression with a short id used only in
// internal diagnostics, never in caller-visible reasons.
type patternRule struct {
	id string
	re *regexp.Regexp
}

// defaultKeywords returns the denylisted phrases, lowercase. These target
// requests for private or personal information about the people behind
// the project. Matched as exact substrings against the lowercased
// instruction; first match wins.
func defaultKeywords() []string {
	return []string{
		"founder page",
		"creator page",
		"owner page",
		"page about the founder",
		"page about the creator",
		"page about the owner",
		"real name",
		"personal information",
		"personal info",
		"contact details",
		"contact information",
		"home address",
		"private email",
	}
}

// defaultPatterns returns the ordered intent-class expressions evaluated
// when no keyword matched. Order matters: first match wins.
func defaultPatterns() []patternRule {
	return []patternRule{
		{
			id: "identity-question",
			re: regexp.MustCompile(`(?i)\bwho\s+(is|are|was|were)\s+(the\s+)?(founder|creator|owner|maker|author)s?\b`),
		},
		{
			id: "identity-action",
			re: regexp.MustCompile(`(?i)\bwho\s+(founded|created|made|built|owns|runs|operates|maintains)\b`),
		},
		{
			id: "identity-reveal",
			re: regexp.MustCompile(`(?i)\b(reveal|expose|dox+|uncover|unmask|leak)\b.*\b(identity|identities|who|name)\b`),
		},
		{
			id: "credentials",
			re: regexp.MustCompile(`(?i)\b(credential|password|passphrase|secret\s+key|api[\s_-]?key|access\s+token|auth\s+token)s?\b`),
		},
		{
			id: "infrastructure",
			re: regexp.MustCompile(`(?i)\b(ip\s+address|server\s+location|hosting\s+provider|infrastructure\s+detail)(es|s)?\b`),
		},
	}
}
