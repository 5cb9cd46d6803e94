package runner

import (
	"strings"

	"github.com/go-git/go-git/v5"
)

// headCommit returns "shorthash summary" for the repository HEAD, or ""
// if dir is not a git repository or the lookup fails for any reason.
// The lookup is a best-effort side query: it runs after the task's
// terminal status is already decided and can never change it.
func headCommit(dir string) string {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return ""
	}

	head, err := repo.Head()
	if err != nil {
		return ""
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return ""
	}

	summary := commit.Message
	if i := strings.IndexByte(summary, '\n'); i >= 0 {
		summary = summary[:i]
	}
	return head.Hash().String()[:7] + " " + strings.TrimSpace(summary)
}
