package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"gamechat/auth"
	"gamechat/contract"
	"gamechat/domain"
	"gamechat/domain/chat"
	"gamechat/domain/event"
	"gamechat/domain/game"
	"gamechat/services"
)

// Server upgrades HTTP requests to websocket sessions and dispatches
// inbound frames to the services. The token in the query string is the
// identity for the whole connection.
type Server struct {
	log        *slog.Logger
	secret     []byte
	dispatcher contract.IDispatcher
	presence   *services.PresenceService
	chats      *services.ChatService
	games      *services.GameService
	bufferSize int
	upgrader   websocket.Upgrader
}

func NewServer(
	log *slog.Logger,
	secret []byte,
	dispatcher contract.IDispatcher,
	presence *services.PresenceService,
	chats *services.ChatService,
	games *services.GameService,
	bufferSize int,
) *Server {
	return &Server{
		log:        log,
		secret:     secret,
		dispatcher: dispatcher,
		presence:   presence,
		chats:      chats,
		games:      games,
		bufferSize: bufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	username, err := auth.VerifyToken(r.URL.Query().Get("token"), s.secret)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	username = domain.NormalizeUsername(username)
	if username == "" {
		http.Error(w, "invalid token subject", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Upgrade failed", "username", username, "error", err)
		return
	}

	session := NewSession(username, conn, s.log, s.bufferSize)
	session.Start()

	s.dispatcher.Attach(username, session)
	s.dispatcher.Subscribe(username, event.PresenceTopic)
	s.presence.MarkOnline(username)
	s.chats.ReplayReceipts(username)
	s.log.Info("Session opened", "username", username)

	s.readLoop(session)

	// A reconnect replaces the sink before this read loop exits. Only
	// the connection still on record tears down presence and rooms.
	if s.dispatcher.DetachIfSame(username, session) {
		s.presence.Disconnected(username)
		s.games.DisconnectUser(username)
	}
	session.Close(websocket.CloseNormalClosure, "bye")
	s.log.Info("Session closed", "username", username)
}

func (s *Server) readLoop(session *Session) {
	conn := session.conn
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("Read failed", "username", session.Username, "error", err)
			}
			return
		}
		s.handleFrame(session.Username, payload)
	}
}

// handleFrame decodes one inbound frame. A malformed or unknown frame
// is logged and dropped; the connection stays up.
func (s *Server) handleFrame(username string, payload []byte) {
	var frame Frame
	if err := json.Unmarshal(payload, &frame); err != nil || frame.Op == "" {
		s.log.Debug("Malformed frame", "username", username)
		return
	}

	switch frame.Op {
	case opGameCreate:
		var req gameCreateRequest
		if !s.decode(username, payload, &req) {
			return
		}
		if req.Game == game.KindSnakesLadders {
			_ = s.games.CreateSnakesLadders(username, req.RoomID, req.Difficulty)
		} else {
			_ = s.games.CreateTicTacToe(username, req.RoomID, req.Size)
		}
	case opGameJoin:
		var req gameRoomRequest
		if !s.decode(username, payload, &req) {
			return
		}
		_ = s.games.Join(username, req.RoomID)
	case opGameMove:
		var req gameMoveRequest
		if !s.decode(username, payload, &req) {
			return
		}
		_ = s.games.Move(username, req.RoomID, req.Cell)
	case opGameReplay:
		var req gameRoomRequest
		if !s.decode(username, payload, &req) {
			return
		}
		_ = s.games.Replay(username, req.RoomID)
	case opGameLeave:
		var req gameRoomRequest
		if !s.decode(username, payload, &req) {
			return
		}
		_ = s.games.Leave(username, req.RoomID)
	case opChatSend:
		var req chatSendRequest
		if !s.decode(username, payload, &req) {
			return
		}
		s.chats.Send(username, req.To, req.TempID, req.Body, chat.MessageType(req.MessageType),
			req.FileName, req.MediaRef, req.MimeType, req.ReplyText, req.ReplySender)
	case opChatEdit:
		var req chatEditRequest
		if !s.decode(username, payload, &req) {
			return
		}
		s.chats.Edit(username, req.MessageID, req.Body)
	case opChatReact:
		var req chatReactRequest
		if !s.decode(username, payload, &req) {
			return
		}
		s.chats.React(username, req.MessageID, req.Reaction)
	case opChatRead:
		var req chatReadRequest
		if !s.decode(username, payload, &req) {
			return
		}
		s.chats.MarkRead(username, req.Peer, req.ReadAt)
	case opChatTyping:
		var req chatTypingRequest
		if !s.decode(username, payload, &req) {
			return
		}
		s.chats.Typing(username, req.To, req.Typing)
	case opPresenceOnline:
		s.presence.MarkOnline(username)
	case opPresenceOffline:
		s.presence.MarkOffline(username)
	default:
		s.log.Debug("Unknown op", "username", username, "op", frame.Op)
	}
}

func (s *Server) decode(username string, payload []byte, req any) bool {
	if err := json.Unmarshal(payload, req); err != nil {
		s.log.Debug("Malformed payload", "username", username, "error", err)
		return false
	}
	if err := validate.Struct(req); err != nil {
		s.log.Debug("Invalid payload", "username", username, "error", err)
		return false
	}
	return true
}
