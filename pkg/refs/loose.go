package refs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// diskRef is one file found while walking the loose-ref tree.
type diskRef struct {
	name string // full ref name, e.g. "HEAD" or "refs/heads/main"
	path string // absolute filesystem path
}

// additionalRefNames are the top-level pseudo-refs that are read on
// demand but never enter the loose cache (spec.md §4.6, §6).
var additionalRefNames = []string{"MERGE_HEAD", "FETCH_HEAD", "ORIG_HEAD", "CHERRY_PICK_HEAD"}

func isAdditionalRefName(name string) bool {
	for _, n := range additionalRefNames {
		if n == name {
			return true
		}
	}
	return false
}

// walkDisk lists the loose-ref files on disk that fall under prefix.
// An empty prefix means ALL: HEAD plus the full refs/ tree. A non-empty
// prefix (e.g. "refs/heads/") walks only that subtree. The result is
// sorted by name; directory entries are never returned, only the
// regular files at the leaves, and ".lock" siblings are skipped.
func walkDisk(root, prefix string) ([]diskRef, error) {
	var out []diskRef

	if prefix == "" {
		if _, err := os.Stat(filepath.Join(root, "HEAD")); err == nil {
			out = append(out, diskRef{name: "HEAD", path: filepath.Join(root, "HEAD")})
		}
		refsRoot := filepath.Join(root, "refs")
		entries, err := walkSubtree(refsRoot, "refs/")
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	} else {
		dir := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(prefix, "/")))
		entries, err := walkSubtree(dir, prefix)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, nil
}

// walkSubtree recursively lists regular files under dir, naming them
// namePrefix+relativePath with slash separators. Entries of one
// directory are ordered by name, with a trailing "/" appended to each
// sub-directory's name before comparing, so a sub-directory's refs come
// out where their full names sort, matching the ordering the rest of
// the package uses for ref names (spec.md §4.4).
func walkSubtree(dir, namePrefix string) ([]diskRef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return sortKey(entries[i]) < sortKey(entries[j])
	})

	var out []diskRef
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".lock") {
			continue
		}
		if e.IsDir() {
			sub, err := walkSubtree(filepath.Join(dir, name), namePrefix+name+"/")
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}
		out = append(out, diskRef{name: namePrefix + name, path: filepath.Join(dir, name)})
	}
	return out, nil
}

func sortKey(e os.DirEntry) string {
	if e.IsDir() {
		return e.Name() + "/"
	}
	return e.Name()
}

// scanResult is the output of a loose-tree scan.
type scanResult struct {
	list     *List
	changed  bool
	symbolic []string // names of symbolic refs encountered during this scan
}

// scanLoose reconciles cur (the previously cached loose list) with what
// is currently on disk under prefix, per the algorithm in spec.md §4.4.
// An empty prefix scans everything (HEAD + refs/); a non-empty prefix
// like "refs/heads/" scans only that subtree and leaves cur's entries
// outside the prefix untouched.
func scanLoose(root string, cur *List, prefix string) (*scanResult, error) {
	disk, err := walkDisk(root, prefix)
	if err != nil {
		return nil, err
	}

	inScope := func(name string) bool {
		return prefix == "" || strings.HasPrefix(name, prefix)
	}

	var cached []*Reference
	for _, r := range cur.All() {
		if inScope(r.name) {
			cached = append(cached, r)
		}
	}

	merged := make([]*Reference, 0, len(disk))
	var symbolic []string
	changed := false

	i, j := 0, 0
	for i < len(disk) || j < len(cached) {
		switch {
		case j >= len(cached) || (i < len(disk) && disk[i].name < cached[j].name):
			ref, sym, err := readLooseRefFile(root, disk[i].name, disk[i].path, nil)
			if err != nil {
				return nil, err
			}
			if ref != nil {
				merged = append(merged, ref)
				if sym {
					symbolic = append(symbolic, ref.name)
				}
			}
			changed = true
			i++
		case i >= len(disk) || cached[j].name < disk[i].name:
			// Cached entry has no corresponding disk file: dropped.
			changed = true
			j++
		default:
			d, c := disk[i], cached[j]
			if snap, ok := c.Snapshot(); ok && !snap.IsModified(d.path) {
				merged = append(merged, c)
				if c.symbolic {
					symbolic = append(symbolic, c.name)
				}
			} else {
				ref, sym, err := readLooseRefFile(root, d.name, d.path, c)
				if err != nil {
					return nil, err
				}
				if ref != nil {
					merged = append(merged, ref)
					if sym {
						symbolic = append(symbolic, ref.name)
					}
					if !ref.Equal(c) {
						changed = true
					}
				} else {
					changed = true
				}
			}
			i++
			j++
		}
	}

	if !changed {
		return &scanResult{list: cur, changed: false}, nil
	}

	outside := make([]*Reference, 0, cur.Len())
	for _, r := range cur.All() {
		if !inScope(r.name) {
			outside = append(outside, r)
		}
	}

	full := mergeByName(outside, merged)
	return &scanResult{list: &List{refs: full}, changed: true, symbolic: symbolic}, nil
}

// mergeByName merges two slices already sorted by Reference.name into
// one sorted slice. The two inputs must not share any names.
func mergeByName(a, b []*Reference) []*Reference {
	out := make([]*Reference, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].name < b[j].name {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
