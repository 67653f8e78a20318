package app

import "github.com/kart-io/version"

// GetVersion returns the version the binary was built with.
func GetVersion() string {
	return version.Get().GitVersion
}

// buildFields returns the build information as logger key/value pairs.
func buildFields() []interface{} {
	info := version.Get()
	return []interface{}{
		"version", info.GitVersion,
		"commit", info.GitCommit,
		"build_date", info.BuildDate,
		"go_version", info.GoVersion,
	}
}
