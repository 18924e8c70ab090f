package engine

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vieirasantos/meli-seller-hub/internal/meli"
	"github.com/vieirasantos/meli-seller-hub/internal/store/storetest"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

func TestNewScheduler(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := New(storetest.New(), func(*domain.Account) meli.API { return nil })

	sched, err := NewScheduler(eng, 30*time.Minute, log)
	require.NoError(t, err)
	assert.Len(t, sched.Entries(), 1, "auto-sync job should be registered")
}

func TestSchedulerStartStop(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := New(storetest.New(), func(*domain.Account) meli.API { return nil })

	sched, err := NewScheduler(eng, time.Hour, log)
	require.NoError(t, err)

	sched.Start()
	ctx := sched.Stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}
