// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

package privacy

import "github.com/lorekeeper/lorekeeper/internal/model"

// Roles with elevated access. Roles are plain strings supplied by the
// caller; anything outside this list is an ordinary community role.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// CheckAccess reports whether a role may read records governed by the
// policy. The decision depends only on the role string and the policy's
// access level:
//
//	public     -> every role
//	private    -> admin and moderator
//	restricted -> admin only
//
// An unrecognized access level is treated like restricted. The evaluator
// fails closed: when in doubt, access is denied.
func CheckAccess(role string, policy model.PrivacyPolicy) bool {
	switch policy.AccessLevel {
	case model.AccessPublic:
		return true
	case model.AccessPrivate:
		return role == RoleAdmin || role == RoleModerator
	case model.AccessRestricted:
		return role == RoleAdmin
	default:
		return role == RoleAdmin
	}
}
