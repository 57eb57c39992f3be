package tui

import "github.com/mmcdole/roster/internal/domain"

// ChannelObserver adapts domain.SnapshotObserver to a channel for Bubble Tea.
// Only the newest snapshot matters, so a pending unread one is replaced.
type ChannelObserver struct {
	ch chan []domain.Record
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver() *ChannelObserver {
	return &ChannelObserver{ch: make(chan []domain.Record, 1)}
}

// OnSnapshot sends the snapshot to the channel, dropping a stale unread one.
// The store serializes notifications, so there is a single sender at a time.
func (o *ChannelObserver) OnSnapshot(records []domain.Record) {
	select {
	case o.ch <- records:
		return
	default:
	}
	select {
	case <-o.ch:
	default:
	}
	select {
	case o.ch <- records:
	default: // Reader raced us; it already has a newer view than the one dropped
	}
}

// C returns the receive side of the channel
func (o *ChannelObserver) C() <-chan []domain.Record {
	return o.ch
}
