package ui

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestUpdateSenderNonBlocking(t *testing.T) {
	msgChan := make(chan tea.Msg, 10)
	sender := NewUpdateSender(msgChan, zap.NewNop())
	defer sender.Close()

	for i := 0; i < 10; i++ {
		sender.SendUpdate(ProgressMsg{Done: i})
	}

	start := time.Now()
	for i := 0; i < 100; i++ {
		sender.SendUpdate(ProgressMsg{Done: i})
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	sent, dropped := sender.GetStats()
	assert.Equal(t, uint64(10), sent)
	assert.Equal(t, uint64(100), dropped)
}

func TestUpdateSenderConcurrent(t *testing.T) {
	msgChan := make(chan tea.Msg, 1000)
	sender := NewUpdateSender(msgChan, zap.NewNop())
	defer sender.Close()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sender.SendUpdate(ProgressMsg{RunID: g, Done: j})
			}
		}()
	}
	wg.Wait()

	sent, dropped := sender.GetStats()
	assert.Equal(t, uint64(1000), sent+dropped)
	assert.Equal(t, uint64(1000), sent)
}

func TestBusListen(t *testing.T) {
	bus := NewBus(4, nil)
	defer bus.Close()

	bus.Send(ProgressMsg{RunID: 3, Done: 1, Total: 2})
	msg := bus.Listen()()
	assert.Equal(t, ProgressMsg{RunID: 3, Done: 1, Total: 2}, msg)

	var nilBus *Bus
	assert.NotPanics(t, func() { nilBus.Send(ProgressMsg{}) })
}

func TestRouteString(t *testing.T) {
	assert.Equal(t, "main_menu", RouteMainMenu.String())
	assert.Equal(t, "gambling_doubling_absorbing", RouteGamblingDoublingAbsorbing.String())
	assert.Equal(t, "unknown", Route(99).String())
}
