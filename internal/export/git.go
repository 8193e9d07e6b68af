package export

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// GitDestination commits the rendered history to a file in a git repo
// and pushes it.
type GitDestination struct {
	repo   string // path to the local clone
	file   string // file path within the repo
	branch string // branch to commit and push to
}

// NewGitDestination creates a git destination. repo is the path to an
// existing local clone.
func NewGitDestination(repo, file, branch string) *GitDestination {
	return &GitDestination{
		repo:   repo,
		file:   file,
		branch: branch,
	}
}

// Write renders the history into the configured file and commits it
// with a message describing what the export contains. An unchanged
// history is a no-op: the header carries counts but no timestamp, so
// identical histories produce identical bytes and nothing is staged.
func (d *GitDestination) Write(ctx context.Context, h *History) error {
	if err := d.git(ctx, "checkout", d.branch); err != nil {
		return fmt.Errorf("git checkout: %w", err)
	}

	// Pull latest to minimize conflicts. Errors are ignored since the
	// remote might not have the branch yet.
	_ = d.git(ctx, "pull", "--ff-only", "origin", d.branch)

	path := filepath.Join(d.repo, d.file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", d.file, err)
	}
	if err := h.WriteJSONL(f); err != nil {
		f.Close()
		return fmt.Errorf("render history: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", d.file, err)
	}

	if err := d.git(ctx, "add", d.file); err != nil {
		return fmt.Errorf("git add: %w", err)
	}
	if err := d.git(ctx, "diff", "--cached", "--quiet"); err == nil {
		// Nothing staged, history is unchanged.
		return nil
	}

	msg := fmt.Sprintf("seam export: %d analyses, %d fixes", len(h.Entries), h.FixCount())
	if err := d.git(ctx, "commit", "-m", msg); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	if err := d.git(ctx, "push", "origin", d.branch); err != nil {
		return fmt.Errorf("git push: %w", err)
	}
	return nil
}

func (d *GitDestination) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.repo
	cmd.Stdout = os.Stderr // redirect to stderr so it's visible in logs
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
