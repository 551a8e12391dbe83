// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package logging

import (
	"os"

	clog "github.com/charmbracelet/log"
)

// L is the logger the whole application shares. Diagnostics go to stderr
// so that command output on stdout stays pipeable.
var L = clog.New(os.Stderr)

// SetDebug lowers the logger threshold so Debugf output is emitted.
func SetDebug(enabled bool) {
	level := clog.InfoLevel
	if enabled {
		level = clog.DebugLevel
	}
	L.SetLevel(level)
}

// Printf-style helpers over L, one per level.

func Debugf(format string, v ...interface{}) { L.Debugf(format, v...) }

func Infof(format string, v ...interface{}) { L.Infof(format, v...) }

func Warnf(format string, v ...interface{}) { L.Warnf(format, v...) }

func Errorf(format string, v ...interface{}) { L.Errorf(format, v...) }
