// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import "github.com/charmbracelet/log"

// The SQL echo is off unless the user asks for it; it is noisy and can
// put record names into terminal scrollback.
var queryLogging bool

// SetDebug toggles the query echo emitted through dbLogf.
func SetDebug(enabled bool) {
	queryLogging = enabled
}

func dbLogf(format string, v ...any) {
	if queryLogging {
		log.Debugf(format, v...)
	}
}
