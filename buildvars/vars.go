// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars carries values stamped in at link time.
package buildvars

// Version is injected on release builds via
// -ldflags "-X github.com/lorekeeper/lorekeeper/buildvars.Version=v1.2.3".
// Local builds leave it empty.
var Version string

// VersionOrDefault substitutes def when no version was stamped in.
func VersionOrDefault(def string) string {
	if Version == "" {
		return def
	}
	return Version
}
