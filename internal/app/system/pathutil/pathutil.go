// Package pathutil provides the pure path math behind the virtual folder
// tree: normalization, ancestor expansion, boundary-safe prefix containment,
// and depth-first sort ordering.
//
// Folder hierarchy is not stored anywhere; it is derived from the folder_path
// strings on flat snippet records. Every function here is store-agnostic and
// side-effect free.
package pathutil

import (
	"regexp"
	"sort"
	"strings"
)

// Root is the top of every folder tree.
const Root = "/"

// validPath matches canonical non-root paths: one or more "/"-prefixed
// segments of letters, digits, hyphens, and underscores. Empty segments and
// trailing slashes do not match.
var validPath = regexp.MustCompile(`^(/[a-zA-Z0-9_-]+)+$`)

// Normalize rewrites p into canonical form: a leading "/", single-slash
// separators, and no trailing slash. Empty segments collapse, so "", "/",
// and "//" are all the root. Normalize is idempotent:
// Normalize(Normalize(p)) == Normalize(p).
func Normalize(p string) string {
	segs := make([]string, 0, 8)
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	if len(segs) == 0 {
		return Root
	}
	return "/" + strings.Join(segs, "/")
}

// Valid reports whether p is a canonical, acceptable folder path. The root
// itself is valid; everything else must be in normalized form (no empty
// segments, no trailing slash) and pass the character whitelist.
func Valid(p string) bool {
	if p == Root {
		return true
	}
	return validPath.MatchString(p)
}

// Depth returns the number of non-empty segments in p. The root has depth 0.
func Depth(p string) int {
	n := 0
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			n++
		}
	}
	return n
}

// Ancestors returns every strict prefix of p that is itself a path, ordered
// from "/" down to p's immediate parent. The root has no ancestors.
func Ancestors(p string) []string {
	p = Normalize(p)
	if p == Root {
		return nil
	}

	ancestors := []string{Root}
	current := ""
	segs := strings.Split(p, "/")
	for _, seg := range segs[:len(segs)-1] {
		if seg == "" {
			continue
		}
		current += "/" + seg
		ancestors = append(ancestors, current)
	}
	return ancestors
}

// IsUnderOrEqual reports whether candidate equals root or lies beneath it.
// The match is segment-boundary safe: "/foo" contains "/foo/bar" but never
// "/foobar". The root contains everything.
func IsUnderOrEqual(candidate, root string) bool {
	candidate = Normalize(candidate)
	root = Normalize(root)

	if root == Root {
		return true
	}
	if candidate == root {
		return true
	}
	return strings.HasPrefix(candidate, root+"/")
}

// PrefixPattern returns the regular-expression source used by the store for
// prefix-scoped scans. The root path is quoted so metacharacters in segment
// names cannot widen the match, and the trailing (/|$) enforces the same
// segment boundary as IsUnderOrEqual.
func PrefixPattern(root string) string {
	root = Normalize(root)
	if root == Root {
		return "^/"
	}
	return "^" + regexp.QuoteMeta(root) + "(/|$)"
}

// Rebase substitutes the oldRoot prefix of p with newRoot. It returns p
// unchanged when p is not under or equal to oldRoot.
func Rebase(p, oldRoot, newRoot string) string {
	p = Normalize(p)
	oldRoot = Normalize(oldRoot)
	newRoot = Normalize(newRoot)

	if !IsUnderOrEqual(p, oldRoot) {
		return p
	}
	if oldRoot == Root {
		if newRoot == Root {
			return p
		}
		return Normalize(newRoot + p)
	}
	if p == oldRoot {
		return newRoot
	}
	return newRoot + strings.TrimPrefix(p, oldRoot)
}

// SortByDepth orders paths by ascending segment count, then lexicographically
// within each depth, so shallower folders always list before deeper ones.
func SortByDepth(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		di, dj := Depth(paths[i]), Depth(paths[j])
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})
}

// CollectFolders derives the complete folder listing from the folder paths of
// a set of visible records. The result always contains the root, includes
// every ancestor of every path (so the tree has no gaps), is deduplicated,
// and is sorted with SortByDepth.
func CollectFolders(paths []string) []string {
	seen := map[string]struct{}{Root: {}}
	for _, p := range paths {
		if p == "" {
			continue
		}
		p = Normalize(p)
		seen[p] = struct{}{}
		for _, a := range Ancestors(p) {
			seen[a] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	SortByDepth(out)
	return out
}
