package game

import (
	"fmt"
	"time"

	"gamechat/errors"
)

const (
	RoleHost  = "host"
	RoleGuest = "guest"

	startCell = 1
	finalCell = 100
)

// SnakesAndLadders holds the full state of one board room. Like
// TicTacToe it is pure state under an external lock.
type SnakesAndLadders struct {
	Code       string
	Difficulty Difficulty
	jumps      map[int]int

	Host      string
	Guest     string
	HostPos   int
	GuestPos  int
	Turn      string // username whose roll is valid, empty outside a running game
	Winner    string // username, empty while undecided
	LastRoll  int    // 0 when nobody rolled yet
	RolledBy  string
	UpdatedAt int64
}

// NewSnakesAndLadders creates a room with the creator as host. The turn
// stays with the host and activates once a guest joins.
func NewSnakesAndLadders(code string, difficulty Difficulty, creator string) *SnakesAndLadders {
	difficulty = NormalizeDifficulty(string(difficulty))
	return &SnakesAndLadders{
		Code:       code,
		Difficulty: difficulty,
		jumps:      JumpMap(difficulty),
		Host:       creator,
		HostPos:    startCell,
		GuestPos:   startCell,
		Turn:       creator,
		UpdatedAt:  time.Now().UnixMilli(),
	}
}

// RoleOf returns host/guest for a seated player, empty otherwise.
func (r *SnakesAndLadders) RoleOf(username string) string {
	switch {
	case username != "" && username == r.Host:
		return RoleHost
	case username != "" && username == r.Guest:
		return RoleGuest
	default:
		return ""
	}
}

func (r *SnakesAndLadders) Status() Status {
	switch {
	case r.Host == "" || r.Guest == "":
		return StatusWaiting
	case r.Winner != "":
		return StatusFinished
	default:
		return StatusInProgress
	}
}

// Join seats username as guest, or hands back current state on rejoin.
// Once both seats are taken the host rolls first.
func (r *SnakesAndLadders) Join(username string) (role string, rejoined bool, err error) {
	switch {
	case username == r.Host:
		role, rejoined = RoleHost, true
	case username == r.Guest:
		role, rejoined = RoleGuest, true
	case r.Guest == "":
		r.Guest = username
		r.touch()
		role = RoleGuest
	default:
		return "", false, errors.ErrRoomFull
	}
	if r.Host != "" && r.Guest != "" && r.Winner == "" {
		r.Turn = r.Host
	}
	return role, rejoined, nil
}

// Roll applies a die value for username. The die is supplied by the
// caller so the service owns randomness. Overshooting cell 100 is a
// no-op move that still consumes the turn. The returned note narrates
// the outcome for the room broadcast.
func (r *SnakesAndLadders) Roll(username string, die int) (string, error) {
	if r.RoleOf(username) == "" {
		return "", errors.ErrNotAPlayer
	}
	if r.Guest == "" || r.Host == "" {
		return "", errors.ErrOpponentMissing
	}
	if r.Winner != "" {
		return "", errors.ErrGameFinished
	}
	if r.Turn != username {
		return "", errors.ErrNotYourTurn
	}

	current := r.HostPos
	if username == r.Guest {
		current = r.GuestPos
	}

	moved := current + die
	landing := moved
	if moved > finalCell {
		landing = current
	}
	cell := landing
	if dest, ok := r.jumps[landing]; ok {
		cell = dest
	}

	if username == r.Host {
		r.HostPos = cell
	} else {
		r.GuestPos = cell
	}
	r.LastRoll = die
	r.RolledBy = username
	r.touch()

	if cell == finalCell {
		r.Winner = username
		r.Turn = ""
		return fmt.Sprintf("%s won the game.", username), nil
	}

	if username == r.Host {
		r.Turn = r.Guest
	} else {
		r.Turn = r.Host
	}
	switch {
	case moved > finalCell:
		return fmt.Sprintf("%s rolled %d. Need exact number for %d.", username, die, finalCell), nil
	case cell != landing:
		return fmt.Sprintf("%s rolled %d. Jumped from %d to %d.", username, die, landing, cell), nil
	default:
		return fmt.Sprintf("%s rolled %d. Moved to %d.", username, die, cell), nil
	}
}

// RemovePlayer vacates username's seat. A departing host promotes the
// guest; any departure resets the game for whoever stays. empty reports
// that the room must be dropped from the registry.
func (r *SnakesAndLadders) RemovePlayer(username string) (changed, empty bool) {
	switch username {
	case r.Host:
		if r.Guest != "" {
			r.Host = r.Guest
			r.Guest = ""
		} else {
			r.Host = ""
		}
		changed = true
	case r.Guest:
		r.Guest = ""
		changed = true
	}
	if !changed {
		return false, false
	}
	if r.Host == "" && r.Guest == "" {
		return true, true
	}
	r.resetGame()
	r.touch()
	return true, false
}

func (r *SnakesAndLadders) resetGame() {
	r.HostPos = startCell
	r.GuestPos = startCell
	r.Turn = r.Host
	r.Winner = ""
	r.LastRoll = 0
	r.RolledBy = ""
}

func (r *SnakesAndLadders) touch() {
	r.UpdatedAt = time.Now().UnixMilli()
}
