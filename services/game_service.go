package services

import (
	goerrors "errors"
	"log/slog"
	"math/rand/v2"
	"sync"

	"gamechat/contract"
	"gamechat/domain"
	"gamechat/domain/event"
	"gamechat/domain/game"
	"gamechat/errors"
)

// gameRoom holds exactly one variant. The room lock serializes every
// read and mutation of the underlying game state, and stays held while
// the resulting snapshot is enqueued so subscribers observe snapshots
// in mutation order.
type gameRoom struct {
	mu  sync.Mutex
	ttt *game.TicTacToe
	snl *game.SnakesAndLadders
}

func (r *gameRoom) kind() string {
	if r.ttt != nil {
		return game.KindTicTacToe
	}
	return game.KindSnakesLadders
}

// GameService owns the live room registry for both game variants.
// Outcomes are reported through the dispatcher: state changes go to the
// room topic, rejections go back to the caller privately.
type GameService struct {
	mu         sync.Mutex
	log        *slog.Logger
	dispatcher contract.IDispatcher
	rooms      map[string]*gameRoom
	dice       func() int
}

func NewGameService(log *slog.Logger, dispatcher contract.IDispatcher) *GameService {
	return &GameService{
		log:        log,
		dispatcher: dispatcher,
		rooms:      make(map[string]*gameRoom),
		dice:       func() int { return rand.IntN(6) + 1 },
	}
}

// CreateTicTacToe opens a room with the creator seated as X. An empty
// code asks for a generated one; an explicit code must be free.
func (s *GameService) CreateTicTacToe(username, code string, size int) error {
	username = domain.NormalizeUsername(username)
	room := &gameRoom{}
	code, err := s.register(username, code, room, func(finalCode string) {
		room.ttt = game.NewTicTacToe(finalCode, size, username)
	})
	if err != nil {
		return err
	}

	s.dispatcher.Subscribe(username, event.RoomTopic(code))
	s.dispatcher.Send(username, event.RoomAssigned{
		Type:    "room_created",
		RoomID:  code,
		Game:    game.KindTicTacToe,
		Size:    room.ttt.Size,
		Role:    game.MarkX,
		Message: "Room created.",
	})

	room.mu.Lock()
	s.dispatcher.Broadcast(event.RoomTopic(code), event.TttStateFrom(room.ttt, "Waiting for opponent to join."))
	room.mu.Unlock()
	return nil
}

// CreateSnakesLadders opens a snakes-and-ladders room with the creator
// seated as host.
func (s *GameService) CreateSnakesLadders(username, code string, difficulty string) error {
	username = domain.NormalizeUsername(username)
	room := &gameRoom{}
	code, err := s.register(username, code, room, func(finalCode string) {
		room.snl = game.NewSnakesAndLadders(finalCode, game.NormalizeDifficulty(difficulty), username)
	})
	if err != nil {
		return err
	}

	s.dispatcher.Subscribe(username, event.RoomTopic(code))
	s.dispatcher.Send(username, event.RoomAssigned{
		Type:       "room_created",
		RoomID:     code,
		Game:       game.KindSnakesLadders,
		Difficulty: string(room.snl.Difficulty),
		Role:       game.RoleHost,
		Message:    "Room created.",
	})

	room.mu.Lock()
	s.dispatcher.Broadcast(event.RoomTopic(code), event.SnlStateFrom(room.snl, "Waiting for opponent to join."))
	room.mu.Unlock()
	return nil
}

// register sanitizes the code, claims a slot in the registry and seeds
// the room via the build callback while still holding the service lock.
func (s *GameService) register(username, code string, room *gameRoom, build func(finalCode string)) (string, error) {
	explicit := code != ""
	if explicit {
		code = game.SanitizeCode(code)
		if code == "" {
			s.fail(username, "", "Invalid room code.")
			return "", errors.ErrInvalidCode
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if explicit {
		if _, taken := s.rooms[code]; taken {
			s.fail(username, code, "Room code already exists.")
			return "", errors.ErrRoomExists
		}
	} else {
		for {
			code = game.GenerateCode()
			if _, taken := s.rooms[code]; !taken {
				break
			}
		}
	}
	build(code)
	s.rooms[code] = room
	return code, nil
}

// Join seats the user in an existing room, or re-seats them after a
// reconnect. The join outcome goes back privately, the refreshed board
// goes to the whole room.
func (s *GameService) Join(username, code string) error {
	username = domain.NormalizeUsername(username)
	code = game.SanitizeCode(code)
	if code == "" {
		s.fail(username, "", "Enter a valid room code.")
		return errors.ErrInvalidCode
	}

	room, ok := s.room(code)
	if !ok {
		s.fail(username, code, "Room not found.")
		return errors.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	var (
		role     string
		rejoined bool
		err      error
		state    event.Event
		note     string
	)
	switch {
	case room.ttt != nil:
		role, rejoined, err = room.ttt.Join(username)
		if err == nil {
			if room.ttt.OPlayer != "" {
				note = "Both players connected."
			} else {
				note = "Waiting for opponent to join."
			}
			state = event.TttStateFrom(room.ttt, note)
		}
	default:
		role, rejoined, err = room.snl.Join(username)
		if err == nil {
			if room.snl.Guest != "" {
				note = "Both players connected. Host rolls first."
			} else {
				note = "Waiting for opponent to join."
			}
			state = event.SnlStateFrom(room.snl, note)
		}
	}
	if err != nil {
		s.fail(username, code, "Room is full.")
		return err
	}

	joinedAs := "Joined room."
	if rejoined {
		joinedAs = "Rejoined room."
	} else if role == game.MarkO {
		joinedAs = "Joined as O."
	}

	s.dispatcher.Subscribe(username, event.RoomTopic(code))
	assigned := event.RoomAssigned{
		Type:    "room_joined",
		RoomID:  code,
		Game:    room.kind(),
		Role:    role,
		Message: joinedAs,
	}
	if room.ttt != nil {
		assigned.Size = room.ttt.Size
	} else {
		assigned.Difficulty = string(room.snl.Difficulty)
	}
	s.dispatcher.Send(username, assigned)

	s.dispatcher.Broadcast(event.RoomTopic(code), state)
	return nil
}

// Move applies a turn. For tic-tac-toe the cell index is the move; for
// snakes-and-ladders the cell is ignored and a die is rolled here.
func (s *GameService) Move(username, code string, cell int) error {
	username = domain.NormalizeUsername(username)
	code = game.SanitizeCode(code)
	room, ok := s.room(code)
	if !ok {
		s.fail(username, code, "Room not found.")
		return errors.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	var (
		note  string
		err   error
		state event.Event
	)
	if room.ttt != nil {
		note, err = room.ttt.Move(username, cell)
		if err == nil {
			state = event.TttStateFrom(room.ttt, note)
		}
	} else {
		note, err = room.snl.Roll(username, s.dice())
		if err == nil {
			state = event.SnlStateFrom(room.snl, note)
		}
	}
	if err != nil {
		s.fail(username, code, errToMessage(err))
		return err
	}

	s.dispatcher.Broadcast(event.RoomTopic(code), state)
	return nil
}

// Replay resets a finished tic-tac-toe board for another round.
func (s *GameService) Replay(username, code string) error {
	username = domain.NormalizeUsername(username)
	code = game.SanitizeCode(code)
	room, ok := s.room(code)
	if !ok {
		s.fail(username, code, "Room not found.")
		return errors.ErrRoomNotFound
	}
	if room.ttt == nil {
		s.fail(username, code, "Replay is not supported for this game.")
		return errors.ErrInvalidMove
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.ttt.Replay(username); err != nil {
		s.fail(username, code, errToMessage(err))
		return err
	}
	s.dispatcher.Broadcast(event.RoomTopic(code), event.TttStateFrom(room.ttt, "New round started."))
	return nil
}

// Leave removes the user from a room. The last player out deletes the
// room entirely.
func (s *GameService) Leave(username, code string) error {
	username = domain.NormalizeUsername(username)
	code = game.SanitizeCode(code)
	room, ok := s.room(code)
	if !ok {
		return errors.ErrRoomNotFound
	}
	s.leaveRoom(username, code, room)
	return nil
}

func (s *GameService) leaveRoom(username, code string, room *gameRoom) {
	room.mu.Lock()
	var (
		changed bool
		empty   bool
		state   event.Event
	)
	if room.ttt != nil {
		changed, empty = room.ttt.RemovePlayer(username)
		if changed && !empty {
			state = event.TttStateFrom(room.ttt, "A player left. Board reset.")
		}
	} else {
		changed, empty = room.snl.RemovePlayer(username)
		if changed && !empty {
			state = event.SnlStateFrom(room.snl, "A player left. Waiting for opponent.")
		}
	}
	if empty {
		s.mu.Lock()
		delete(s.rooms, code)
		s.mu.Unlock()
	}
	s.dispatcher.Unsubscribe(username, event.RoomTopic(code))
	if changed && !empty {
		s.dispatcher.Broadcast(event.RoomTopic(code), state)
	}
	room.mu.Unlock()

	if empty {
		s.log.Debug("Room deleted", "roomId", code)
	}
}

// DisconnectUser sweeps every room the user occupies. Called when the
// session drops without explicit leaves.
func (s *GameService) DisconnectUser(username string) {
	username = domain.NormalizeUsername(username)

	s.mu.Lock()
	snapshot := make(map[string]*gameRoom, len(s.rooms))
	for code, room := range s.rooms {
		snapshot[code] = room
	}
	s.mu.Unlock()

	for code, room := range snapshot {
		room.mu.Lock()
		var seated bool
		if room.ttt != nil {
			seated = room.ttt.XPlayer == username || room.ttt.OPlayer == username
		} else {
			seated = room.snl.Host == username || room.snl.Guest == username
		}
		room.mu.Unlock()
		if seated {
			s.leaveRoom(username, code, room)
		}
	}
}

func (s *GameService) room(code string) (*gameRoom, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	return room, ok
}

func (s *GameService) fail(username, roomID, message string) {
	s.dispatcher.Send(username, event.NewError(roomID, message))
}

func errToMessage(err error) string {
	switch {
	case goerrors.Is(err, errors.ErrOpponentMissing):
		return "Waiting for opponent to join."
	case goerrors.Is(err, errors.ErrNotAPlayer):
		return "You are not a player in this room."
	case goerrors.Is(err, errors.ErrGameFinished):
		return "Game already finished."
	case goerrors.Is(err, errors.ErrNotYourTurn):
		return "Not your turn."
	case goerrors.Is(err, errors.ErrInvalidMove):
		return "Invalid move."
	default:
		return "Something went wrong."
	}
}
