// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"

	"github.com/lorekeeper/lorekeeper/internal/i18n"
)

// filterFooter renders the footer line shared by the filterable table
// views. prefix picks the i18n namespace ("records", "audit_log") and
// scope names the column the filter currently applies to. Both namespaces
// carry the same trio of keys, so the status text is derived rather than
// passed in.
func filterFooter(typing bool, filter, prefix, scope string) string {
	var status string
	switch {
	case typing:
		status = i18n.T(prefix+".filtering", scope, filter)
	case filter != "":
		status = i18n.T(prefix+".filter_active", scope, filter)
	default:
		status = i18n.T(prefix + ".filter_hint")
	}
	return helpStyle.Render(fmt.Sprintf("\n(↑/↓: scroll, q: back) %s", status))
}
