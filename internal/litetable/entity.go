package litetable

import (
	"strings"
)

// String returns the raw row key.
func (e EntityID) String() string {
	return string(e)
}

// ShellString renders the key so it can be pasted into a shell as a single argument.
func (e EntityID) ShellString() string {
	return "'" + strings.ReplaceAll(string(e), "'", `'\''`) + "'"
}
