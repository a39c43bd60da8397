package services

import (
	"log/slog"
	"sync"
	"time"

	"gamechat/contract"
	"gamechat/domain"
	"gamechat/domain/event"
)

// PresenceService tracks who is connected and when disconnected users
// were last seen. A user is in at most one of the two sets.
type PresenceService struct {
	mu         sync.Mutex
	log        *slog.Logger
	dispatcher contract.IDispatcher
	online     map[string]struct{}
	lastSeen   map[string]int64 // epoch millis
	now        func() time.Time
}

func NewPresenceService(log *slog.Logger, dispatcher contract.IDispatcher) *PresenceService {
	return &PresenceService{
		log:        log,
		dispatcher: dispatcher,
		online:     make(map[string]struct{}),
		lastSeen:   make(map[string]int64),
		now:        time.Now,
	}
}

// MarkOnline adds the user to the online set, announces it on the
// presence topic and replays the entire current presence state to the
// connecting user privately, so a fresh client starts from full state
// instead of deltas.
func (p *PresenceService) MarkOnline(username string) {
	username = domain.NormalizeUsername(username)
	if username == "" {
		return
	}

	p.mu.Lock()
	p.online[username] = struct{}{}
	delete(p.lastSeen, username)
	onlineNow := make([]string, 0, len(p.online))
	for user := range p.online {
		onlineNow = append(onlineNow, user)
	}
	seen := make(map[string]int64, len(p.lastSeen))
	for user, at := range p.lastSeen {
		seen[user] = at
	}
	p.mu.Unlock()

	p.dispatcher.Broadcast(event.PresenceTopic, event.UserStatus{
		Type: "user_status", Username: username, Status: "online",
	})

	for _, user := range onlineNow {
		p.dispatcher.Send(username, event.UserStatus{
			Type: "user_status", Username: user, Status: "online",
		})
	}
	for user, at := range seen {
		p.dispatcher.Send(username, event.UserStatus{
			Type: "user_status", Username: user, Status: "offline", LastSeenAt: at,
		})
	}
}

// MarkOffline removes the user from the online set and records the
// last-seen timestamp.
func (p *PresenceService) MarkOffline(username string) {
	p.markOffline(username, false)
}

// Disconnected is the implicit variant: it only acts when the user was
// still in the online set, so an explicit offline followed by the
// connection close does not announce twice.
func (p *PresenceService) Disconnected(username string) {
	p.markOffline(username, true)
}

func (p *PresenceService) markOffline(username string, onlyIfOnline bool) {
	username = domain.NormalizeUsername(username)
	if username == "" {
		return
	}

	p.mu.Lock()
	_, wasOnline := p.online[username]
	if onlyIfOnline && !wasOnline {
		p.mu.Unlock()
		return
	}
	delete(p.online, username)
	at := p.now().UnixMilli()
	p.lastSeen[username] = at
	p.mu.Unlock()

	p.dispatcher.Broadcast(event.PresenceTopic, event.UserStatus{
		Type: "user_status", Username: username, Status: "offline", LastSeenAt: at,
	})
}

// IsOnline reports whether the user currently counts as connected. An
// online entry without a live session is stale: it is demoted to
// offline on the spot and the answer is false.
func (p *PresenceService) IsOnline(username string) bool {
	username = domain.NormalizeUsername(username)

	p.mu.Lock()
	_, online := p.online[username]
	p.mu.Unlock()
	if !online {
		return false
	}
	if !p.dispatcher.HasSession(username) {
		p.log.Debug("Healing stale online entry", "username", username)
		p.MarkOffline(username)
		return false
	}
	return true
}
