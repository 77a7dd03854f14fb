package ui

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// UpdateSender provides non-blocking UI update sending with statistics
type UpdateSender struct {
	msgChan        chan tea.Msg
	droppedUpdates uint64
	sentUpdates    uint64
	logger         *zap.Logger
	statsInterval  time.Duration
	stopStats      chan struct{}
	closeOnce      sync.Once
}

// NewUpdateSender creates a new non-blocking update sender
func NewUpdateSender(msgChan chan tea.Msg, logger *zap.Logger) *UpdateSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	us := &UpdateSender{
		msgChan:       msgChan,
		logger:        logger,
		statsInterval: 30 * time.Second,
		stopStats:     make(chan struct{}),
	}

	go us.logStats()

	return us
}

// SendUpdate sends a message to UI without blocking
func (us *UpdateSender) SendUpdate(msg tea.Msg) {
	select {
	case us.msgChan <- msg:
		atomic.AddUint64(&us.sentUpdates, 1)
	default:
		// Progress is advisory, a running scenario never waits for the screen.
		atomic.AddUint64(&us.droppedUpdates, 1)
	}
}

// GetStats returns current statistics
func (us *UpdateSender) GetStats() (sent, dropped uint64) {
	sent = atomic.LoadUint64(&us.sentUpdates)
	dropped = atomic.LoadUint64(&us.droppedUpdates)
	return sent, dropped
}

// logStats periodically logs statistics
func (us *UpdateSender) logStats() {
	ticker := time.NewTicker(us.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, dropped := us.GetStats()
			if dropped > 0 {
				us.logger.Warn("UI update statistics",
					zap.Uint64("sent", sent),
					zap.Uint64("dropped", dropped),
					zap.Float64("drop_rate", float64(dropped)/float64(sent+dropped)*100))
			}
		case <-us.stopStats:
			return
		}
	}
}

// Close stops the update sender
func (us *UpdateSender) Close() {
	us.closeOnce.Do(func() { close(us.stopStats) })
}

// Bus carries progress messages from scenario goroutines to the program.
type Bus struct {
	msgChan chan tea.Msg
	sender  *UpdateSender
}

// NewBus creates a bus buffering up to size messages.
func NewBus(size int, logger *zap.Logger) *Bus {
	msgChan := make(chan tea.Msg, size)
	return &Bus{
		msgChan: msgChan,
		sender:  NewUpdateSender(msgChan, logger),
	}
}

// Send sends a message without blocking
func (b *Bus) Send(msg tea.Msg) {
	if b == nil {
		return
	}
	b.sender.SendUpdate(msg)
}

// Listen returns a tea.Cmd that waits for the next bus message
func (b *Bus) Listen() tea.Cmd {
	return func() tea.Msg {
		return <-b.msgChan
	}
}

// GetStats returns bus statistics
func (b *Bus) GetStats() (sent, dropped uint64) {
	return b.sender.GetStats()
}

// Close closes the bus
func (b *Bus) Close() {
	b.sender.Close()
}
