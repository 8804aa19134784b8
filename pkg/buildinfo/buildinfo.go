// Package buildinfo contains build information.
//
// The version suffix can be set during compilation by passing
// -ldflags "-X github.com/gotcl/gotcl/pkg/buildinfo.VersionSuffix=value"
// to "go build".
package buildinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/gotcl/gotcl/pkg/prog"
)

// Version identifies the version of gotcl. On development commits, it
// identifies the next release.
const Version = "v0.1.0"

// VersionSuffix is appended to Version to build the full version string.
var VersionSuffix = "-dev.unknown"

// Program is the buildinfo subprogram.
type Program struct {
	version, buildinfo, json bool
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.version, "version", false, "show version and quit")
	fs.BoolVar(&p.buildinfo, "buildinfo", false, "show build info and quit")
	fs.BoolVar(&p.json, "buildinfo-json", false, "show build info in JSON")
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	if !p.version && !p.buildinfo {
		return prog.ErrNextProgram
	}
	fullVersion := Version + VersionSuffix
	if p.version {
		fmt.Fprintln(fds[1], fullVersion)
		return nil
	}
	if p.json {
		out, _ := json.Marshal(map[string]string{
			"version": fullVersion, "goversion": runtime.Version()})
		fmt.Fprintf(fds[1], "%s\n", out)
	} else {
		fmt.Fprintln(fds[1], "Version:", fullVersion)
		fmt.Fprintln(fds[1], "Go version:", runtime.Version())
	}
	return nil
}
