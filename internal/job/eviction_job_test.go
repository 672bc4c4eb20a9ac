package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockEvictor struct {
	mock.Mock
}

func (m *MockEvictor) EvictIdle(maxIdle time.Duration) int {
	args := m.Called(maxIdle)
	return args.Int(0)
}

func (m *MockEvictor) Resident() int {
	args := m.Called()
	return args.Int(0)
}

func TestEvictionJob_Run_EvictsIdle(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mockStore := new(MockEvictor)
	mockStore.On("EvictIdle", 30*time.Minute).Return(2)
	mockStore.On("Resident").Return(5)

	NewEvictionJob(mockStore, 30*time.Minute, zap.New(core)).Run()

	mockStore.AssertExpectations(t)
	entries := logs.FilterMessage("Evicted idle workspaces").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["evicted"])
	assert.Equal(t, int64(5), entries[0].ContextMap()["resident"])
}

func TestEvictionJob_Run_NothingIdle(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mockStore := new(MockEvictor)
	mockStore.On("EvictIdle", time.Minute).Return(0)

	NewEvictionJob(mockStore, time.Minute, zap.New(core)).Run()

	mockStore.AssertExpectations(t)
	mockStore.AssertNotCalled(t, "Resident")
	assert.Zero(t, logs.Len())
}

func TestSchedule(t *testing.T) {
	job := NewEvictionJob(new(MockEvictor), time.Minute, zap.NewNop())

	c, err := Schedule("@every 5m", job, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = Schedule("not a schedule", job, zap.NewNop())
	assert.Error(t, err)
}
