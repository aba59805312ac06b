// Package settings provides build metadata, per-run CLI settings, and
// context helpers shared by the stepls commands and the language server.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "stepls"

// ConfigFileName is the project-local configuration file looked up in the
// workspace root when no explicit --config is given.
const ConfigFileName = ".stepls.yaml"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// WorkspaceSettings locates the project being analyzed.
// Root is the directory that declaration and feature globs are relative to.
// ConfigPath is empty when the configuration was discovered rather than given.
type WorkspaceSettings struct {
	Root       string
	ConfigPath string
	FromLSP    bool
}

// Run holds configuration settings for a single execution of the application.
type Run struct {
	MinLogLevel int8
	Workspace   WorkspaceSettings
	IsQuiet     bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams initializes and returns a pointer to a Run struct with default CLI parameters.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Workspace: WorkspaceSettings{
			Root: ".",
		},
		IsQuiet:     false,
		NoColor:     false,
		ExitOnError: true,
	}
}
