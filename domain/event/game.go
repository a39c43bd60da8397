package event

import "gamechat/domain/game"

// TttState is the full-state broadcast of one grid room.
type TttState struct {
	Type          string   `json:"type"`
	RoomID        string   `json:"roomId"`
	Size          int      `json:"size"`
	Board         []string `json:"board"`
	XPlayer       string   `json:"xPlayer"`
	OPlayer       string   `json:"oPlayer"`
	Turn          string   `json:"turn"`
	Winner        string   `json:"winner"`
	Status        string   `json:"status"`
	LastMoveIndex int      `json:"lastMoveIndex"`
	UpdatedAt     int64    `json:"updatedAt"`
	Message       string   `json:"message"`
}

func (e TttState) EventType() string { return "state" }

// TttStateFrom snapshots room state under the caller's lock. The board
// is copied so the payload stays immutable once enqueued.
func TttStateFrom(r *game.TicTacToe, message string) TttState {
	board := make([]string, len(r.Board))
	copy(board, r.Board)
	return TttState{
		Type:          "state",
		RoomID:        r.Code,
		Size:          r.Size,
		Board:         board,
		XPlayer:       r.XPlayer,
		OPlayer:       r.OPlayer,
		Turn:          r.Turn,
		Winner:        r.Winner,
		Status:        string(r.Status()),
		LastMoveIndex: r.LastMove,
		UpdatedAt:     r.UpdatedAt,
		Message:       message,
	}
}

// SnlState is the full-state broadcast of one board room.
type SnlState struct {
	Type       string `json:"type"`
	RoomID     string `json:"roomId"`
	Difficulty string `json:"difficulty"`
	Host       string `json:"hostUsername"`
	Guest      string `json:"guestUsername"`
	HostPos    int    `json:"hostPosition"`
	GuestPos   int    `json:"guestPosition"`
	Turn       string `json:"turn"`
	Winner     string `json:"winner"`
	Status     string `json:"status"`
	LastRoll   int    `json:"lastRoll"`
	RolledBy   string `json:"rolledBy"`
	UpdatedAt  int64  `json:"updatedAt"`
	Message    string `json:"message"`
}

func (e SnlState) EventType() string { return "state" }

func SnlStateFrom(r *game.SnakesAndLadders, message string) SnlState {
	return SnlState{
		Type:       "state",
		RoomID:     r.Code,
		Difficulty: string(r.Difficulty),
		Host:       r.Host,
		Guest:      r.Guest,
		HostPos:    r.HostPos,
		GuestPos:   r.GuestPos,
		Turn:       r.Turn,
		Winner:     r.Winner,
		Status:     string(r.Status()),
		LastRoll:   r.LastRoll,
		RolledBy:   r.RolledBy,
		UpdatedAt:  r.UpdatedAt,
		Message:    message,
	}
}

// RoomAssigned is the private acknowledgment sent to the acting user on
// create and join, carrying their role in the room.
type RoomAssigned struct {
	Type       string `json:"type"` // room_created or room_joined
	RoomID     string `json:"roomId"`
	Game       string `json:"game"` // tictactoe or snakesladders
	Size       int    `json:"size,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Role       string `json:"role"` // X, O, host or guest
	Message    string `json:"message"`
}

func (e RoomAssigned) EventType() string { return e.Type }
