package paths

import (
	"fmt"
	"strings"
)

// maxLinkDepth bounds symlink chains during normalization.
const maxLinkDepth = 40

// Normalize returns the absolute canonical form of path: no . or ..
// components, no ~ prefix, no repeated separators. Relative paths are
// resolved against the filesystem's working directory. A .. component pops
// the preceding component, resolving it through symlinks first so that
// a/link/.. lands in link's target directory rather than a. Normalization is
// idempotent.
func Normalize(path string, fs Filesystem) (string, error) {
	translated, err := Translate(path)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(translated, "/") {
		cwd, err := fs.Getwd()
		if err != nil {
			return "", err
		}
		translated = joinTwo(strings.TrimSuffix(cwd, "/"), translated)
		if !strings.HasPrefix(translated, "/") {
			return "", fmt.Errorf("cannot normalize relative path %q", path)
		}
	}
	result := "/"
	for _, comp := range strings.Split(translated[1:], "/") {
		switch comp {
		case "", ".":
		case "..":
			resolved, err := resolveLinks(result, fs)
			if err == nil {
				result = resolved
			}
			result, _ = splitLast(result)
			if result == "" {
				result = "/"
			}
		default:
			result = joinTwo(result, comp)
		}
	}
	return result, nil
}

// resolveLinks resolves the final component of an absolute path through
// symlinks, so that .. pops the physical parent.
func resolveLinks(path string, fs Filesystem) (string, error) {
	for depth := 0; depth < maxLinkDepth; depth++ {
		target, err := fs.Readlink(path)
		if err != nil {
			// Not a symlink (or does not exist): already physical.
			return path, nil
		}
		if strings.HasPrefix(target, "/") {
			path = target
		} else {
			dir, _ := splitLast(path)
			if dir == "" {
				dir = "/"
			}
			path = joinTwo(dir, target)
		}
	}
	return "", fmt.Errorf("too many levels of symbolic links in %q", path)
}
