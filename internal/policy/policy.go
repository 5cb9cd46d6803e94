// Package policy implements the pre-execution content gate. Every
// instruction passes through the gate before any subprocess is spawned,
// any timer starts, or any external communication occurs. One violation
// is sufficient to reject; there is no retry or appeal.
package policy

import (
	"fmt"
	"strings"
)

// Gate checks instructions against a fixed denylist and pattern set.
// It is pure and deterministic: no side effects, same answer for the
// same input.
type Gate struct {
	keywords []string
	patterns []patternRule
}

// NewGate creates a gate with the default privacy ruleset.
func NewGate() *Gate {
	return &Gate{
		keywords: defaultKeywords(),
		patterns: defaultPatterns(),
	}
}

// Check evaluates the instruction. It returns a human-readable reason
// and true when the instruction violates policy.
//
// Evaluation is two-tiered and case-insensitive. The keyword tier is an
// exact-substring test; its reason names the matched phrase. The pattern
// tier only runs when no keyword matched; its reason is deliberately
// generic so the ruleset is not echoed verbatim into logs and task
// records. First match wins in both tiers.
func (g *Gate) Check(instruction string) (reason string, violated bool) {
	lower := strings.ToLower(instruction)

	for _, kw := range g.keywords {
		if strings.Contains(lower, kw) {
			return fmt.Sprintf("instruction contains restricted phrase %q", kw), true
		}
	}

	for _, p := range g.patterns {
		if p.re.MatchString(instruction) {
			return "instruction matches a restricted content pattern", true
		}
	}

	return "", false
}
