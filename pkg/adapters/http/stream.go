package http

import (
	"context"
	"sync"
	"time"
)

// subscriberBuffer is the number of pending updates kept per websocket client.
const subscriberBuffer = 10

// StreamManager fans session updates out to websocket subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan []byte]struct{} // SessionID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe registers a channel for the session. The returned func unsubscribes and closes it.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan []byte, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan []byte, subscriberBuffer)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan []byte]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
			close(ch)
		})
	}
}

// Broadcast sends msg to every subscriber of the session.
// Slow clients with a full buffer miss the update.
func (sm *StreamManager) Broadcast(sessionID string, msg []byte) int {
	return sm.Publish(context.Background(), sessionID, msg, nil)
}

// Publish is Broadcast with a guaranteed recipient: origin, when subscribed,
// waits for buffer space (bounded by ctx and writeWait) instead of missing
// the update.
func (sm *StreamManager) Publish(ctx context.Context, sessionID string, msg []byte, origin <-chan []byte) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sent := 0
	for ch := range sm.subscribers[sessionID] {
		if origin != nil && (<-chan []byte)(ch) == origin {
			if sm.deliver(ctx, ch, msg) {
				sent++
			}
			continue
		}
		select {
		case ch <- msg:
			sent++
		default:
		}
	}
	return sent
}

func (sm *StreamManager) deliver(ctx context.Context, ch chan<- []byte, msg []byte) bool {
	timer := time.NewTimer(writeWait)
	defer timer.Stop()
	select {
	case ch <- msg:
		return true
	case <-ctx.Done():
		return false
	case <-timer.C:
		return false
	}
}

// Subscribers returns the number of channels registered for the session.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}
