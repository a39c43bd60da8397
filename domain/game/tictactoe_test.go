package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gamechat/errors"
)

func Test_TicTacToe_Join_Then_First_Move(t *testing.T) {
	req := require.New(t)

	// Given a fresh room created by alice
	room := NewTicTacToe("ABC123", 3, "alice")
	req.Equal(StatusWaiting, room.Status())

	// When bob joins
	mark, rejoined, err := room.Join("bob")

	// Then bob holds O and X moves first
	req.NoError(err)
	req.False(rejoined)
	req.Equal(MarkO, mark)
	req.Equal(StatusInProgress, room.Status())
	req.Equal("alice", room.TurnUsername())

	// When alice plays
	note, err := room.Move("alice", 4)
	req.NoError(err)
	req.Equal("Turn switched.", note)
	req.Equal(MarkX, room.Board[4])
	req.Equal("bob", room.TurnUsername())
}

func Test_TicTacToe_Rejoin_Keeps_Mark(t *testing.T) {
	req := require.New(t)
	room := NewTicTacToe("ABC123", 3, "alice")
	_, _, err := room.Join("bob")
	req.NoError(err)

	// When alice joins her own room again
	mark, rejoined, err := room.Join("alice")

	// Then she keeps X and the board is untouched
	req.NoError(err)
	req.True(rejoined)
	req.Equal(MarkX, mark)

	// And a third user is rejected
	_, _, err = room.Join("carol")
	req.ErrorIs(err, errors.ErrRoomFull)
}

func Test_TicTacToe_Row_Win_On_Every_Size(t *testing.T) {
	for _, size := range []int{3, 4, 5} {
		req := require.New(t)
		room := NewTicTacToe("ABC123", size, "alice")
		_, _, err := room.Join("bob")
		req.NoError(err)

		// When X fills the first row while O fills the second
		var note string
		for i := 0; i < size; i++ {
			note, err = room.Move("alice", i)
			req.NoError(err)
			if i == size-1 {
				break
			}
			_, err = room.Move("bob", size+i)
			req.NoError(err)
		}

		// Then X wins and the round is closed
		req.Equal("alice won this round.", note)
		req.Equal(MarkX, room.Winner)
		req.Equal(StatusFinished, room.Status())
		_, err = room.Move("bob", size*size-1)
		req.ErrorIs(err, errors.ErrGameFinished)
	}
}

func Test_TicTacToe_Column_And_Diagonal_Wins(t *testing.T) {
	req := require.New(t)

	// Column win for O
	room := NewTicTacToe("ABC123", 3, "alice")
	_, _, err := room.Join("bob")
	req.NoError(err)
	for _, move := range []struct {
		user string
		cell int
	}{
		{"alice", 1}, {"bob", 0},
		{"alice", 2}, {"bob", 3},
		{"alice", 4},
	} {
		_, err = room.Move(move.user, move.cell)
		req.NoError(err)
	}
	note, err := room.Move("bob", 6)
	req.NoError(err)
	req.Equal("bob won this round.", note)
	req.Equal(MarkO, room.Winner)

	// Diagonal win for X
	room = NewTicTacToe("ABC123", 3, "alice")
	_, _, err = room.Join("bob")
	req.NoError(err)
	for _, move := range []struct {
		user string
		cell int
	}{
		{"alice", 0}, {"bob", 1},
		{"alice", 4}, {"bob", 2},
	} {
		_, err = room.Move(move.user, move.cell)
		req.NoError(err)
	}
	note, err = room.Move("alice", 8)
	req.NoError(err)
	req.Equal("alice won this round.", note)
	req.Equal(MarkX, room.Winner)
}

func Test_TicTacToe_Full_Board_Is_A_Draw(t *testing.T) {
	req := require.New(t)
	room := NewTicTacToe("ABC123", 3, "alice")
	_, _, err := room.Join("bob")
	req.NoError(err)

	// When the board fills without a uniform line
	moves := []struct {
		user string
		cell int
	}{
		{"alice", 0}, {"bob", 1},
		{"alice", 2}, {"bob", 4},
		{"alice", 3}, {"bob", 5},
		{"alice", 7}, {"bob", 6},
	}
	for _, move := range moves {
		_, err = room.Move(move.user, move.cell)
		req.NoError(err)
	}
	note, err := room.Move("alice", 8)

	// Then the round ends drawn
	req.NoError(err)
	req.Equal("Round ended in a draw.", note)
	req.Equal(DrawResult, room.Winner)
	req.Equal(StatusFinished, room.Status())
}

func Test_TicTacToe_Move_Rejections(t *testing.T) {
	req := require.New(t)
	room := NewTicTacToe("ABC123", 3, "alice")

	// Given no opponent yet
	_, err := room.Move("alice", 0)
	req.ErrorIs(err, errors.ErrOpponentMissing)

	_, _, err = room.Join("bob")
	req.NoError(err)

	// Strangers cannot move
	_, err = room.Move("carol", 0)
	req.ErrorIs(err, errors.ErrNotAPlayer)

	// O cannot move while it is X's turn
	_, err = room.Move("bob", 0)
	req.ErrorIs(err, errors.ErrNotYourTurn)

	// Out of range and occupied cells are invalid
	_, err = room.Move("alice", 9)
	req.ErrorIs(err, errors.ErrInvalidMove)
	_, err = room.Move("alice", -1)
	req.ErrorIs(err, errors.ErrInvalidMove)
	_, err = room.Move("alice", 0)
	req.NoError(err)
	_, err = room.Move("bob", 0)
	req.ErrorIs(err, errors.ErrInvalidMove)
}

func Test_TicTacToe_Replay_Resets_Round(t *testing.T) {
	req := require.New(t)
	room := NewTicTacToe("ABC123", 3, "alice")
	_, _, err := room.Join("bob")
	req.NoError(err)

	// Given a finished round
	for _, move := range []struct {
		user string
		cell int
	}{
		{"alice", 0}, {"bob", 3},
		{"alice", 1}, {"bob", 4},
		{"alice", 2},
	} {
		_, err = room.Move(move.user, move.cell)
		req.NoError(err)
	}
	req.Equal(StatusFinished, room.Status())

	// When a player asks for a replay
	err = room.Replay("bob")

	// Then the board is blank, X starts, both stay seated
	req.NoError(err)
	req.Equal(StatusInProgress, room.Status())
	req.Equal("alice", room.TurnUsername())
	req.Equal(-1, room.LastMove)
	for _, cell := range room.Board {
		req.Empty(cell)
	}

	// And outsiders cannot trigger it
	err = room.Replay("carol")
	req.ErrorIs(err, errors.ErrNotAPlayer)
}

func Test_TicTacToe_RemovePlayer_Resets_For_The_Remaining_One(t *testing.T) {
	req := require.New(t)
	room := NewTicTacToe("ABC123", 3, "alice")
	_, _, err := room.Join("bob")
	req.NoError(err)
	_, err = room.Move("alice", 0)
	req.NoError(err)

	// When bob leaves mid-round
	changed, empty := room.RemovePlayer("bob")

	// Then the board resets and the room stays alive for alice
	req.True(changed)
	req.False(empty)
	req.Empty(room.Board[0])
	req.Equal(StatusWaiting, room.Status())

	// When alice leaves too the room is empty
	changed, empty = room.RemovePlayer("alice")
	req.True(changed)
	req.True(empty)

	// Removing a stranger is a no-op
	changed, empty = room.RemovePlayer("carol")
	req.False(changed)
	req.False(empty)
}

func Test_ClampSize_Bounds(t *testing.T) {
	req := require.New(t)
	req.Equal(3, ClampSize(0))
	req.Equal(3, ClampSize(3))
	req.Equal(4, ClampSize(4))
	req.Equal(5, ClampSize(7))
	req.Len(NewTicTacToe("ABC123", 10, "alice").Board, 25)
}
