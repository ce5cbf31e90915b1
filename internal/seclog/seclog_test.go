package seclog

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(capacity int) *Log {
	return New(capacity, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRecordAssignsTimestamp(t *testing.T) {
	l := newTestLog(10)
	l.Record(Entry{Level: LevelInfo, Event: EventLoginSuccess, Success: true})

	entries := l.Recent(0)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestRecentReturnsNewestInChronologicalOrder(t *testing.T) {
	l := newTestLog(10)
	for i := 0; i < 5; i++ {
		l.Record(Entry{Event: fmt.Sprintf("e%d", i)})
	}

	entries := l.Recent(3)
	require.Len(t, entries, 3)
	assert.Equal(t, "e2", entries[0].Event)
	assert.Equal(t, "e3", entries[1].Event)
	assert.Equal(t, "e4", entries[2].Event)
}

func TestRingDropsOldestWhenFull(t *testing.T) {
	l := newTestLog(3)
	for i := 0; i < 7; i++ {
		l.Record(Entry{Event: fmt.Sprintf("e%d", i)})
	}

	assert.Equal(t, 3, l.Len())
	entries := l.Recent(0)
	require.Len(t, entries, 3)
	assert.Equal(t, "e4", entries[0].Event)
	assert.Equal(t, "e6", entries[2].Event)
}

func TestClear(t *testing.T) {
	l := newTestLog(5)
	l.Record(Entry{Event: EventAccessDenied})
	l.Clear()

	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Recent(0))

	// Still usable after clearing.
	l.Record(Entry{Event: EventLoginFailure})
	assert.Equal(t, 1, l.Len())
}

func TestConcurrentRecord(t *testing.T) {
	l := newTestLog(64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				l.Record(Entry{Event: EventPaymentRecorded})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 64, l.Len())
}
