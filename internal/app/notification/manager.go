// Package notification fans player state changes out to streaming
// subscribers.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	podcastrv1 "github.com/osa030/podcastr/internal/api/podcastr/v1"
)

// DefaultSendTimeout bounds a single subscriber send during Broadcast.
const DefaultSendTimeout = 500 * time.Millisecond

// ErrSubscriptionClosed is returned when sending to an unsubscribed stream.
var ErrSubscriptionClosed = errors.New("subscription closed")

// Stream is the sending side of a subscriber connection.
type Stream interface {
	Send(*podcastrv1.Notification) error
}

// subscriber guards one stream. Sends are serialised and never reach the
// stream once it is closed. Notifications whose state version is not newer
// than the last delivered one are skipped, so a stream only moves forward.
type subscriber struct {
	id     string
	stream Stream

	mu        sync.Mutex
	closed    bool
	delivered bool
	version   uint64
}

func (s *subscriber) send(n *podcastrv1.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendLocked(n)
}

func (s *subscriber) sendLocked(n *podcastrv1.Notification) error {
	if s.closed {
		return ErrSubscriptionClosed
	}
	if n.State != nil {
		if s.delivered && n.State.Version <= s.version {
			zlog.Debug().Msgf("notification: skipped stale state: id=%s version=%d last=%d", s.id, n.State.Version, s.version)
			return nil
		}
		s.delivered = true
		s.version = n.State.Version
	}
	return s.stream.Send(n)
}

// close waits for an in-flight send and rejects later ones.
func (s *subscriber) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Manager keeps the subscriber set and numbers notifications.
type Manager struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber

	seqMu sync.Mutex
	seq   uint64

	sendTimeout time.Duration
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscribers: make(map[string]*subscriber),
		sendTimeout: DefaultSendTimeout,
	}
}

// Subscribe registers stream and returns its subscription ID.
//
// When initial is non-nil it is called after registration and its result is
// sent before anything else reaches the stream. Its sequence number is taken
// before initial runs, so any broadcast numbered earlier carries an older
// state and is skipped.
func (m *Manager) Subscribe(stream Stream, initial func() *podcastrv1.Notification) (string, error) {
	sub := &subscriber{
		id:     uuid.New().String(),
		stream: stream,
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()

	m.mu.Lock()
	m.subscribers[sub.id] = sub
	total := len(m.subscribers)
	m.mu.Unlock()

	zlog.Debug().Msgf("notification: subscribed: id=%s total=%d", sub.id, total)

	if initial == nil {
		return sub.id, nil
	}

	seq := m.NextSequenceNo()
	n := initial()
	n.SequenceNo = seq
	if err := sub.sendLocked(n); err != nil {
		m.mu.Lock()
		delete(m.subscribers, sub.id)
		m.mu.Unlock()
		sub.closed = true
		return "", errors.Wrap(err, "failed to send initial notification")
	}
	return sub.id, nil
}

// NextSequenceNo returns the next sequence number.
func (m *Manager) NextSequenceNo() uint64 {
	m.seqMu.Lock()
	defer m.seqMu.Unlock()
	m.seq++
	return m.seq
}

// Unsubscribe removes a subscription. Once it returns the stream is no
// longer used, even by a broadcast that timed out while sending to it.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	sub, ok := m.subscribers[subscriptionID]
	delete(m.subscribers, subscriptionID)
	total := len(m.subscribers)
	m.mu.Unlock()

	if !ok {
		return
	}
	sub.close()
	zlog.Debug().Msgf("notification: unsubscribed: id=%s total=%d", subscriptionID, total)
}

// Broadcast numbers the notification and sends it to every subscriber in
// parallel. A subscriber that fails or does not answer within the send
// timeout misses this notification and stays subscribed.
func (m *Manager) Broadcast(notification *podcastrv1.Notification) {
	notification.SequenceNo = m.NextSequenceNo()

	m.mu.RLock()
	subs := make([]*subscriber, 0, len(m.subscribers))
	for _, sub := range m.subscribers {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscriber) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), m.sendTimeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- s.send(notification)
			}()

			select {
			case err := <-done:
				if err != nil && !errors.Is(err, ErrSubscriptionClosed) {
					zlog.Debug().Err(err).Msgf("notification: send failed: id=%s", s.id)
				}
			case <-ctx.Done():
				zlog.Warn().Msgf("notification: send timed out: id=%s seq=%d", s.id, notification.SequenceNo)
			}
		}(sub)
	}

	wg.Wait()
}

// Send sends a notification to one subscriber. Unknown IDs are ignored.
func (m *Manager) Send(subscriptionID string, notification *podcastrv1.Notification) error {
	m.mu.RLock()
	sub, ok := m.subscribers[subscriptionID]
	m.mu.RUnlock()

	if !ok {
		return nil
	}
	return sub.send(notification)
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers)
}

// Close closes and removes every subscription.
func (m *Manager) Close() {
	m.mu.Lock()
	subs := m.subscribers
	m.subscribers = make(map[string]*subscriber)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}
