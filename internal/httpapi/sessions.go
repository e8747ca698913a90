package httpapi

import (
	"sync"

	"github.com/SebastianObert/AirCare/internal/aggregator"
)

// staticIdentity pins an aggregator session to one authenticated user.
type staticIdentity string

func (s staticIdentity) CurrentUserID() (string, bool) {
	return string(s), s != ""
}

// Sessions owns one aggregator per authenticated user, created lazily on
// first use. Each session keeps its own fetch-cycle state and snapshot.
type Sessions struct {
	mu     sync.Mutex
	byUser map[string]*aggregator.Aggregator
	build  func(identity aggregator.Identity) *aggregator.Aggregator
}

func NewSessions(build func(identity aggregator.Identity) *aggregator.Aggregator) *Sessions {
	return &Sessions{
		byUser: make(map[string]*aggregator.Aggregator),
		build:  build,
	}
}

// For returns the user's aggregator, creating it on first access.
func (s *Sessions) For(userID string) *aggregator.Aggregator {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg, ok := s.byUser[userID]
	if !ok {
		agg = s.build(staticIdentity(userID))
		s.byUser[userID] = agg
	}
	return agg
}
