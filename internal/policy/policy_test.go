package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_KeywordTier(t *testing.T) {
	gate := NewGate()

	tests := []struct {
		name        string
		instruction string
		wantPhrase  string
	}{
		{"founder page", "create a founder page for the wiki", "founder page"},
		{"creator page uppercase", "Add a CREATOR PAGE please", "creator page"},
		{"real name", "add the Real Name of the admin to the about section", "real name"},
		{"personal information", "collect personal information from users", "personal information"},
		{"contact details", "publish the contact details somewhere", "contact details"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, violated := gate.Check(tt.instruction)
			require.True(t, violated)
			assert.Contains(t, reason, tt.wantPhrase, "keyword reason names the matched phrase")
		})
	}
}

func TestGate_PatternTier(t *testing.T) {
	gate := NewGate()

	tests := []struct {
		name        string
		instruction string
	}{
		{"who created", "tell me who created this"},
		{"who is the founder", "who is the founder of this project?"},
		{"who owns", "figure out who owns the site and write it up"},
		{"reveal identity", "reveal the identity of the maintainer"},
		{"dox", "dox the maintainer and post their name"},
		{"credentials", "print the database password to a page"},
		{"api key", "add the api key to the README"},
		{"ip address", "document the server ip address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, violated := gate.Check(tt.instruction)
			require.True(t, violated, "instruction %q should be rejected", tt.instruction)
			// Pattern-tier reasons never echo the matched expression.
			assert.Equal(t, "instruction matches a restricted content pattern", reason)
		})
	}
}

func TestGate_KeywordTierWinsOverPatterns(t *testing.T) {
	gate := NewGate()

	// Matches both tiers; the keyword reason must win.
	reason, violated := gate.Check("who is the founder? put their real name on a page")
	require.True(t, violated)
	assert.Contains(t, reason, `"real name"`)
}

func TestGate_AllowsBenignInstructions(t *testing.T) {
	gate := NewGate()

	benign := []string{
		"add a health-check endpoint",
		"fix the flaky pagination test",
		"refactor the search handler to stream results",
		"update dependencies and fix the changelog",
		"add a page documenting the public API",
		"rename the owner field on the Pet model", // "owner" alone is fine
	}

	for _, instruction := range benign {
		reason, violated := gate.Check(instruction)
		assert.False(t, violated, "instruction %q wrongly rejected: %s", instruction, reason)
		assert.Empty(t, reason)
	}
}

func TestGate_Deterministic(t *testing.T) {
	gate := NewGate()
	r1, v1 := gate.Check("tell me who created this")
	r2, v2 := gate.Check("tell me who created this")
	assert.Equal(t, v1, v2)
	assert.Equal(t, r1, r2)
}
