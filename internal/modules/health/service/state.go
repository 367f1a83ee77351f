package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	lastTickUnix atomic.Int64 // unix seconds

	mu             sync.RWMutex
	recommendation string
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) TouchTick(t time.Time) { s.lastTickUnix.Store(t.Unix()) }
func (s *State) LastTick() time.Time {
	u := s.lastTickUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

// Recommendation пишет тик-цикл, читает HTTP — отсюда лок.
func (s *State) SetRecommendation(v string) {
	s.mu.Lock()
	s.recommendation = v
	s.mu.Unlock()
}

func (s *State) Recommendation() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recommendation
}

// PositionView / TradingStatus — read-view движка для дашборда.
type PositionView struct {
	Ticker    string `json:"ticker"`
	Side      string `json:"side"`
	Contracts int    `json:"contracts"`
	Entry     int    `json:"entry"`
}

type TradingStatus struct {
	Positions      []PositionView `json:"positions"`
	Cash           string         `json:"cash"`
	PositionsValue string         `json:"positions_value"`
	Recommendation string         `json:"recommendation"`
}

type StatusSource interface {
	TradingStatus(ctx context.Context) (TradingStatus, error)
}
