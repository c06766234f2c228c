/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "slices"

// The it-role ("ebe") is a single pointer into a room's member list. It is
// empty exactly when the room has no members and otherwise always names a
// current member. Members are passed in join order.

// ebeAfterJoin returns the holder once a member has been appended. Only the
// first member of a room is handed the role.
func ebeAfterJoin(current string, members []string) string {
	if current == "" && len(members) == 1 {
		return members[0]
	}
	return current
}

// ebeAfterLeave returns the holder once leaver has been removed, and whether
// the role changed hands. A departing holder is replaced by the member at the
// front of what is left.
func ebeAfterLeave(current, leaver string, remaining []string) (string, bool) {
	if current != leaver {
		return current, false
	}
	if len(remaining) == 0 {
		return "", true
	}
	return remaining[0], true
}

// ebeAfterTag hands the role to target, which must be a member. Tagging the
// current holder is allowed and leaves the role where it is.
func ebeAfterTag(current string, members []string, target string) (string, error) {
	if !slices.Contains(members, target) {
		return current, ErrNotMember
	}
	return target, nil
}
