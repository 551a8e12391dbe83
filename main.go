// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Command lorekeeper is the executable entrypoint. Everything of substance
// lives in ui/cli; this file hands over control and turns a failed command
// into a non-zero exit code. Cobra has already printed the error by then.
package main

import (
	"os"

	"github.com/lorekeeper/lorekeeper/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
