// Package prompt composes the text handed to the coding agent: a fixed
// operating contract, the caller's instruction, and optional structured
// context. Only the instruction and context vary between tasks.
package prompt

import (
	"encoding/json"
	"strings"
)

// preamble is the operating contract. It is constant across tasks and is
// never persisted; the task record keeps the raw instruction only.
const preamble = `You are implementing a change in this repository as an autonomous agent.

## SAFETY RULES
1. NEVER disclose the identity, real name, or contact details of the project's founders, owners, or maintainers
2. NEVER expose secrets, credentials, API keys, or infrastructure details such as IP addresses
3. NEVER make destructive database changes without explicit approval
4. ALWAYS run the test suite before committing and NEVER commit if tests fail
5. ALWAYS follow existing code patterns in the codebase
6. Keep changes minimal, focused, and reviewable

## Your Task
`

// workflow follows the instruction in the composed prompt.
const workflow = `

## Workflow
1. Read the relevant files to understand the codebase
2. Plan your implementation
3. Make the changes
4. Run the tests
5. If tests pass, commit with a descriptive message
6. If tests fail, fix the issues and run them again; only commit when all tests pass

Begin implementation:
`

// Build composes the full prompt for one instruction. extra, when
// non-empty, is appended as an indented JSON block so the agent receives
// caller-supplied context verbatim. Build is pure: same inputs, same
// output.
func Build(instruction string, extra map[string]any) string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString(instruction)
	b.WriteString(workflow)

	if len(extra) > 0 {
		ctx, err := json.MarshalIndent(extra, "", "  ")
		if err == nil {
			b.WriteString("\n## Additional Context\n")
			b.Write(ctx)
			b.WriteString("\n")
		}
	}

	return b.String()
}
