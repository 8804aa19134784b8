// Package paths implements the path value kind and filesystem-independent
// path manipulation.
//
// A path value caches, on top of the value's string form, the translated path
// (with ~ expansion applied), the normalized path (absolute, canonical, free
// of . and .. components), and the filesystem binding. Path values carry a
// snapshot of the process-wide filesystem epoch and self-invalidate when a
// filesystem is mounted or unmounted.
//
// Paths use forward slashes internally on every platform; conversion to the
// native separator happens at the filesystem boundary.
package paths

import (
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/gotcl/gotcl/pkg/vals"
)

// Rep is the typed rep of PathKind.
type Rep struct {
	// translated is the path with ~ expansion applied. The empty string is a
	// sentinel meaning the translated path is identical to the value's own
	// string form, with no separate storage.
	translated string
	// normalized is the absolute canonical path, or "" if not yet computed.
	normalized string
	// cwd and tail are set on appended paths: the value lazily represents
	// join(cwd, tail), where cwd is absolute and normalized and tail is a
	// single clean component. Enables O(1) dirname and tail.
	cwd      *vals.Val
	tail     string
	appended bool
	// fs and native bind the path to a filesystem-specific handle.
	fs     Filesystem
	native any
	// epoch is the filesystem generation this rep was computed under.
	epoch uint64
}

// PathKind caches a *Rep on a value.
var PathKind = vals.RegisterKind(&vals.Kind{
	Name: "path",
	Parse: func(v *vals.Val) (any, error) {
		translated, err := Translate(v.String())
		if err != nil {
			return nil, err
		}
		r := &Rep{epoch: Epoch()}
		if translated != v.String() {
			r.translated = translated
		}
		return r, nil
	},
	UpdateString: func(rep any) string {
		r := rep.(*Rep)
		if r.appended {
			return joinTwo(r.cwd.String(), r.tail)
		}
		return r.translated
	},
	Dup: func(rep any) any {
		r := *rep.(*Rep)
		if r.cwd != nil {
			r.cwd.Retain()
		}
		return &r
	},
	Free: func(rep any) {
		r := rep.(*Rep)
		if r.cwd != nil {
			r.cwd.Release()
		}
	},
})

// pathRep converts v to a path value, refreshing the rep if the filesystem
// epoch has advanced since it was computed.
func pathRep(v *vals.Val) (*Rep, error) {
	rep, err := v.Rep(PathKind)
	if err != nil {
		return nil, err
	}
	r := rep.(*Rep)
	if r.epoch != Epoch() {
		v.InvalidateRep()
		rep, err = v.Rep(PathKind)
		if err != nil {
			return nil, err
		}
		r = rep.(*Rep)
	}
	return r, nil
}

// ToPath forces the path rep on a value.
func ToPath(v *vals.Val) error {
	_, err := pathRep(v)
	return err
}

// Translate expands a leading ~ or ~user to the corresponding home directory.
func Translate(s string) (string, error) {
	if !strings.HasPrefix(s, "~") {
		return s, nil
	}
	i := strings.IndexByte(s, '/')
	head, rest := s, ""
	if i >= 0 {
		head, rest = s[:i], s[i:]
	}
	var home string
	if head == "~" {
		h, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("couldn't find HOME environment variable to expand path")
		}
		home = h
	} else {
		u, err := user.Lookup(head[1:])
		if err != nil {
			return "", fmt.Errorf("user %q doesn't exist", head[1:])
		}
		home = u.HomeDir
	}
	return strings.TrimSuffix(home, "/") + rest, nil
}

// Translated returns the translated path of a value.
func Translated(v *vals.Val) (string, error) {
	r, err := pathRep(v)
	if err != nil {
		return "", err
	}
	if r.translated == "" {
		return v.String(), nil
	}
	return r.translated, nil
}

// Normalized returns the absolute canonical form of a value's path, computing
// and caching it on first use.
func Normalized(v *vals.Val, fs Filesystem) (string, error) {
	r, err := pathRep(v)
	if err != nil {
		return "", err
	}
	if r.normalized != "" {
		return r.normalized, nil
	}
	translated := r.translated
	if translated == "" {
		translated = v.String()
	}
	norm, err := Normalize(translated, fs)
	if err != nil {
		return "", err
	}
	r.normalized = norm
	return norm, nil
}

// Internal returns the filesystem-specific handle of a value, if the value is
// bound to fs.
func Internal(v *vals.Val, fs Filesystem) (any, bool, error) {
	r, err := pathRep(v)
	if err != nil {
		return nil, false, err
	}
	if r.fs == fs && r.native != nil {
		return r.native, true, nil
	}
	return nil, false, nil
}

// NewNative creates a path value bound to a filesystem-specific handle.
func NewNative(fs Filesystem, path string, handle any) *vals.Val {
	v := vals.NewString(path)
	v.SetRep(PathKind, &Rep{fs: fs, native: handle, epoch: Epoch()})
	return v
}

// Equal reports whether two values denote the same normalized path.
func Equal(a, b *vals.Val, fs Filesystem) (bool, error) {
	an, err := Normalized(a, fs)
	if err != nil {
		return false, err
	}
	bn, err := Normalized(b, fs)
	if err != nil {
		return false, err
	}
	return an == bn, nil
}

// Type classifies a path string as absolute, relative or volumerelative.
func Type(path string) string {
	switch {
	case path == "":
		return "relative"
	case path[0] == '/' || path[0] == '~':
		return "absolute"
	case len(path) >= 2 && isVolumeLetter(path[0]) && path[1] == ':':
		if len(path) >= 3 && (path[2] == '/' || path[2] == '\\') {
			return "absolute"
		}
		return "volumerelative"
	}
	return "relative"
}

func isVolumeLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// Join joins path fragments. A later absolute fragment discards everything
// before it.
func Join(parts ...string) string {
	result := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if Type(p) != "relative" || result == "" {
			result = trimTrailingSlashes(p)
			continue
		}
		result = joinTwo(result, trimTrailingSlashes(p))
	}
	return result
}

func joinTwo(head, tail string) string {
	if head == "" {
		return tail
	}
	if strings.HasSuffix(head, "/") {
		return head + tail
	}
	return head + "/" + tail
}

func trimTrailingSlashes(p string) string {
	for len(p) > 1 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	return p
}

// JoinVal joins path fragments into a path value. When the result is an
// absolute clean path, the value carries the appended rep so that dirname and
// tail need no further parsing.
func JoinVal(parts ...string) *vals.Val {
	joined := Join(parts...)
	dir, tail := splitLast(joined)
	if dir != "" && tail != "" && isCleanAbsolute(dir) && isCleanComponent(tail) {
		v := vals.NewString(joined)
		v.SetRep(PathKind, &Rep{
			cwd:      vals.NewString(dir),
			tail:     tail,
			appended: true,
			epoch:    Epoch(),
		})
		return v
	}
	return vals.NewString(joined)
}

// splitLast splits a path into its dirname and tail without cleaning.
func splitLast(p string) (dir, tail string) {
	p = trimTrailingSlashes(p)
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return "", p
	}
	if i == 0 {
		return "/", p[1:]
	}
	return p[:i], p[i+1:]
}

// isCleanAbsolute reports whether p is absolute with no ., .. or ~
// components and no repeated separators.
func isCleanAbsolute(p string) bool {
	if p == "/" {
		return true
	}
	if !strings.HasPrefix(p, "/") {
		return false
	}
	for _, c := range strings.Split(p[1:], "/") {
		if !isCleanComponent(c) {
			return false
		}
	}
	return true
}

func isCleanComponent(c string) bool {
	return c != "" && c != "." && c != ".." && c[0] != '~'
}

// Split splits a path into its components. Absolute paths yield the root as
// the first component; components in later positions that begin with ~ are
// protected with a ./ prefix so that joining them back does not re-trigger
// tilde expansion.
func Split(path string) []string {
	var comps []string
	rest := path
	if strings.HasPrefix(rest, "/") {
		comps = append(comps, "/")
		rest = strings.TrimLeft(rest, "/")
	}
	for _, c := range strings.Split(rest, "/") {
		if c == "" {
			continue
		}
		if len(comps) > 0 && c[0] == '~' {
			c = "./" + c
		}
		comps = append(comps, c)
	}
	return comps
}

// Dirname returns the directory part of a value's path. Appended paths
// return their stored head without parsing.
func Dirname(v *vals.Val) (string, error) {
	if r, err := pathRep(v); err == nil && r.appended {
		return r.cwd.String(), nil
	}
	dir, _ := splitLast(v.String())
	if dir == "" {
		if strings.HasPrefix(v.String(), "/") {
			return "/", nil
		}
		return ".", nil
	}
	return dir, nil
}

// Tail returns the last component of a value's path.
func Tail(v *vals.Val) (string, error) {
	if r, err := pathRep(v); err == nil && r.appended {
		return r.tail, nil
	}
	_, tail := splitLast(v.String())
	return tail, nil
}

// Extension returns the suffix of the path's tail starting at the last dot,
// or "" when the tail has no dot. A leading dot does not start an extension.
func Extension(v *vals.Val) (string, error) {
	tail, err := Tail(v)
	if err != nil {
		return "", err
	}
	if i := strings.LastIndexByte(tail, '.'); i > 0 {
		return tail[i:], nil
	}
	return "", nil
}

// Rootname returns the path with its extension removed.
func Rootname(v *vals.Val) (string, error) {
	ext, err := Extension(v)
	if err != nil {
		return "", err
	}
	s := v.String()
	return strings.TrimSuffix(s, ext), nil
}
