// Package issuekey derives JIRA issue keys from branch names.
package issuekey

import "regexp"

// Key is a JIRA issue identifier such as "PROJ-123".
type Key string

// String returns the key text.
func (k Key) String() string {
	return string(k)
}

// keyPattern requires a project prefix of at least two uppercase letters.
var keyPattern = regexp.MustCompile(`[A-Z]{2,}-[0-9]+`)

// Extract returns the first issue key found anywhere in branch.
// The second return value is false when the branch carries no key,
// which is a normal outcome rather than an error.
func Extract(branch string) (Key, bool) {
	match := keyPattern.FindString(branch)
	if match == "" {
		return "", false
	}
	return Key(match), true
}
