// Package misc keeps program identification in a single place.
package misc

import (
	"runtime/debug"
)

// may be overwritten by linker flags
var (
	appName = "doc2scorm"
	version = "dev"
	gitHash = ""
)

// GetAppName returns program name used for logs, temporary names and CLI.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns VCS revision program was built from, if known.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
