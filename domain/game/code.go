package game

import (
	"strings"

	"github.com/google/uuid"
)

const codeLength = 6

// Kind names a game variant on the wire.
const (
	KindTicTacToe     = "tictactoe"
	KindSnakesLadders = "snakesladders"
)

// GenerateCode produces a short public room identifier.
// Uniqueness against live rooms is the caller's responsibility.
func GenerateCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:codeLength])
}

// SanitizeCode upper-cases a client-supplied code and strips everything
// outside [A-Z0-9]. An empty result means the code is unusable.
func SanitizeCode(code string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(code)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
