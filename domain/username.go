// Package domain contains core concepts of the coordinator.
// No runtime, network, or UI logic should be added here.
package domain

import "strings"

// NormalizeUsername maps a raw principal name to its canonical form.
// All registries, room slots and queue addresses are keyed by this form.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
