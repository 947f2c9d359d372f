package refs

import (
	"fmt"
	"sort"
	"strings"
)

const headsPrefix = "refs/heads/"

// ListBranchNames returns the sorted leaf names under refs/heads/,
// with the prefix stripped, e.g. "main" rather than "refs/heads/main".
// Grounded on the teacher's ListBranches, generalized to read through
// the reference database instead of a bare directory walk so packed
// branches are included too.
func (d *Database) ListBranchNames() ([]string, error) {
	refs, err := d.getRefs(headsPrefix)
	if err != nil {
		return nil, fmt.Errorf("list branch names: %w", err)
	}
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, strings.TrimPrefix(name, headsPrefix))
	}
	sort.Strings(names)
	return names, nil
}

// CurrentBranch reads HEAD and returns the branch name if HEAD is
// symbolic and points under refs/heads/. A detached HEAD (direct
// reference), a missing HEAD, or a symbolic target outside refs/heads/
// yields "". The target branch need not exist yet: HEAD pointing at an
// unborn refs/heads/main yields "main".
func (d *Database) CurrentBranch() (string, error) {
	loose, err := d.refreshLoose("")
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	head, err := d.lookupDirect("HEAD", loose, d.packed.Load(), "")
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	if head == nil || !head.IsSymbolic() {
		return "", nil
	}
	target := head.SymbolicTarget()
	if !strings.HasPrefix(target, headsPrefix) {
		return "", nil
	}
	return strings.TrimPrefix(target, headsPrefix), nil
}
