package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// Game room rejections. None of these mutate room state.
	ErrInvalidCode     = fmt.Errorf("invalid room code")
	ErrRoomExists      = fmt.Errorf("room code already exists")
	ErrRoomNotFound    = fmt.Errorf("room not found")
	ErrRoomFull        = fmt.Errorf("room is full")
	ErrNotAPlayer      = fmt.Errorf("not a player in this room")
	ErrOpponentMissing = fmt.Errorf("waiting for opponent to join")
	ErrGameFinished    = fmt.Errorf("game already finished")
	ErrNotYourTurn     = fmt.Errorf("not your turn")
	ErrInvalidMove     = fmt.Errorf("invalid move")

	// Chat rejections.
	ErrMessageNotFound   = fmt.Errorf("message not found")
	ErrEditNotAllowed    = fmt.Errorf("only the sender can edit a message")
	ErrEditWindowExpired = fmt.Errorf("edit window expired")
)
