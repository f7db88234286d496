// Package compileinfo reports the version control state a binary was built
// from.
package compileinfo

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

type CompileInfo struct {
	Package    string
	Version    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (c CompileInfo) String() string {
	mod := ""
	if c.Modified {
		mod = " Files in the repo were modified after that commit."
	}

	return fmt.Sprintf("This %s binary (%s) was built with %s at commit %v at time %v.%s", c.Package, c.Version, c.GoVersion, c.Commit, c.CommitTime, mod)
}

// Fields renders the build info for structured logs.
func (c CompileInfo) Fields() []zap.Field {
	return []zap.Field{
		zap.String("package", c.Package),
		zap.String("version", c.Version),
		zap.String("go_version", c.GoVersion),
		zap.String("commit", c.Commit),
		zap.String("commit_time", c.CommitTime),
		zap.Bool("modified", c.Modified),
	}
}

func Get() CompileInfo {
	out := CompileInfo{}

	z, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.GoVersion = z.GoVersion
	out.Package = z.Path
	out.Version = z.Main.Version
	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}
