package game

import (
	"fmt"
	"time"

	"gamechat/errors"
)

const (
	MarkX = "X"
	MarkO = "O"

	// DrawResult is stored in Winner when the board fills with no line.
	DrawResult = "draw"

	minBoardSize = 3
	maxBoardSize = 5
)

// Status is derived from the player slots and the winner field,
// never stored.
type Status string

const (
	StatusWaiting    Status = "waiting_for_opponent"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// TicTacToe holds the full state of one grid room. It is pure state:
// callers are responsible for locking and for publishing snapshots.
type TicTacToe struct {
	Code      string
	Size      int
	Board     []string
	XPlayer   string
	OPlayer   string
	Turn      string // MarkX or MarkO, empty once the round is decided
	Winner    string // MarkX, MarkO, DrawResult or empty
	LastMove  int    // board index of the latest mark, -1 when none
	UpdatedAt int64  // epoch millis, bumped on every mutation
}

// ClampSize bounds a requested grid size to the supported range.
func ClampSize(size int) int {
	if size < minBoardSize {
		return minBoardSize
	}
	if size > maxBoardSize {
		return maxBoardSize
	}
	return size
}

// NewTicTacToe creates a room with the creator in the X slot.
func NewTicTacToe(code string, size int, creator string) *TicTacToe {
	size = ClampSize(size)
	return &TicTacToe{
		Code:      code,
		Size:      size,
		Board:     make([]string, size*size),
		XPlayer:   creator,
		Turn:      MarkX,
		LastMove:  -1,
		UpdatedAt: time.Now().UnixMilli(),
	}
}

// MarkOf returns the mark held by username, or empty for a non-player.
func (r *TicTacToe) MarkOf(username string) string {
	switch {
	case username != "" && username == r.XPlayer:
		return MarkX
	case username != "" && username == r.OPlayer:
		return MarkO
	default:
		return ""
	}
}

func (r *TicTacToe) Status() Status {
	switch {
	case r.XPlayer == "" || r.OPlayer == "":
		return StatusWaiting
	case r.Winner != "":
		return StatusFinished
	default:
		return StatusInProgress
	}
}

// TurnUsername resolves the stored mark to the player whose move is valid.
func (r *TicTacToe) TurnUsername() string {
	switch r.Turn {
	case MarkX:
		return r.XPlayer
	case MarkO:
		return r.OPlayer
	default:
		return ""
	}
}

// Join fills the O slot, or hands back the current state on rejoin.
func (r *TicTacToe) Join(username string) (mark string, rejoined bool, err error) {
	switch {
	case username == r.XPlayer:
		return MarkX, true, nil
	case username == r.OPlayer:
		return MarkO, true, nil
	case r.OPlayer == "":
		r.OPlayer = username
		r.touch()
		return MarkO, false, nil
	default:
		return "", false, errors.ErrRoomFull
	}
}

// Move places the caller's mark at index. On success the returned note
// describes the outcome for the room broadcast.
func (r *TicTacToe) Move(username string, index int) (string, error) {
	if r.OPlayer == "" || r.XPlayer == "" {
		return "", errors.ErrOpponentMissing
	}
	mark := r.MarkOf(username)
	if mark == "" {
		return "", errors.ErrNotAPlayer
	}
	if r.Winner != "" {
		return "", errors.ErrGameFinished
	}
	if r.Turn != mark {
		return "", errors.ErrNotYourTurn
	}
	if index < 0 || index >= len(r.Board) {
		return "", errors.ErrInvalidMove
	}
	if r.Board[index] != "" {
		return "", errors.ErrInvalidMove
	}

	r.Board[index] = mark
	r.LastMove = index
	r.touch()

	if winner := r.scanWinner(); winner != "" {
		r.Winner = winner
		r.Turn = ""
		if winner == DrawResult {
			return "Round ended in a draw.", nil
		}
		name := r.XPlayer
		if winner == MarkO {
			name = r.OPlayer
		}
		return fmt.Sprintf("%s won this round.", name), nil
	}

	if mark == MarkX {
		r.Turn = MarkO
	} else {
		r.Turn = MarkX
	}
	return "Turn switched.", nil
}

// Replay resets the round while keeping both players seated.
func (r *TicTacToe) Replay(username string) error {
	if r.MarkOf(username) == "" {
		return errors.ErrNotAPlayer
	}
	if r.OPlayer == "" || r.XPlayer == "" {
		return errors.ErrOpponentMissing
	}
	r.resetBoard()
	r.touch()
	return nil
}

// RemovePlayer vacates the slot held by username. The board resets for a
// remaining player; empty reports that both slots are now vacant and the
// room must be dropped from the registry.
func (r *TicTacToe) RemovePlayer(username string) (changed, empty bool) {
	if username == r.XPlayer {
		r.XPlayer = ""
		changed = true
	}
	if username == r.OPlayer {
		r.OPlayer = ""
		changed = true
	}
	if !changed {
		return false, false
	}
	if r.XPlayer == "" && r.OPlayer == "" {
		return true, true
	}
	r.resetBoard()
	r.touch()
	return true, false
}

func (r *TicTacToe) resetBoard() {
	for i := range r.Board {
		r.Board[i] = ""
	}
	r.Turn = MarkX
	r.Winner = ""
	r.LastMove = -1
}

func (r *TicTacToe) touch() {
	r.UpdatedAt = time.Now().UnixMilli()
}

// scanWinner checks every row, every column and both diagonals for a
// uniform non-empty mark. A full board with no line is a draw.
func (r *TicTacToe) scanWinner() string {
	size := r.Size

	for row := 0; row < size; row++ {
		if mark := r.uniformLine(row*size, 1); mark != "" {
			return mark
		}
	}
	for col := 0; col < size; col++ {
		if mark := r.uniformLine(col, size); mark != "" {
			return mark
		}
	}
	if mark := r.uniformLine(0, size+1); mark != "" {
		return mark
	}
	if mark := r.uniformLine(size-1, size-1); mark != "" {
		return mark
	}

	for _, cell := range r.Board {
		if cell == "" {
			return ""
		}
	}
	return DrawResult
}

// uniformLine walks Size cells from start with the given stride and
// returns the mark when all of them match.
func (r *TicTacToe) uniformLine(start, stride int) string {
	first := r.Board[start]
	if first == "" {
		return ""
	}
	for i := 1; i < r.Size; i++ {
		if r.Board[start+i*stride] != first {
			return ""
		}
	}
	return first
}
