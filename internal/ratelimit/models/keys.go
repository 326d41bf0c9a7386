package models

import "strings"

// BucketKey builds the store key for a (policy, identifier) pair.
// One bucket exists per pair; identifiers are sanitized so user-controlled
// values containing ':' cannot collide with adjacent buckets.
func BucketKey(policy PolicyName, identifier string) string {
	return "ratelimit:" + string(policy) + ":" + SanitizeKeySegment(identifier)
}

// SanitizeKeySegment escapes the key delimiter in identifier segments.
// An identifier "user:admin" becomes "user_admin" instead of being read as
// a separate key segment.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
