package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/mocks"
	"github.com/metinatakli/cinex-booking/internal/workflow"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testWorkflowTTL = 20 * time.Minute

type StoreTestSuite struct {
	suite.Suite
	redisClient   *mocks.MockRedisClient
	redisPipeline *mocks.MockTxPipeline
	store         *RedisWorkflowStore
}

func (s *StoreTestSuite) SetupTest() {
	s.redisClient = new(mocks.MockRedisClient)
	s.redisPipeline = new(mocks.MockTxPipeline)
	s.store = NewRedisWorkflowStore(s.redisClient, testWorkflowTTL)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) testSnapshot() workflow.Snapshot {
	return workflow.Snapshot{
		ID:       "wf-1",
		State:    workflow.StateSelectingSeats,
		Showtime: &domain.ShowtimeDetails{ShowtimeID: "st-1"},
		SeatIDs:  []string{},
	}
}

func (s *StoreTestSuite) TestLoad() {
	data, err := json.Marshal(s.testSnapshot())
	s.Require().NoError(err)

	s.redisClient.On("Get", mock.Anything, "workflow:tok").Return(redis.NewStringResult(string(data), nil))

	snap, err := s.store.Load(context.Background(), "tok")
	s.Require().NoError(err)
	s.Equal("wf-1", snap.ID)
	s.Equal("st-1", snap.Showtime.ShowtimeID)
}

func (s *StoreTestSuite) TestLoadErrors() {
	tests := []struct {
		name    string
		result  *redis.StringCmd
		wantErr error
	}{
		{
			name:    "should report missing workflow",
			result:  redis.NewStringResult("", redis.Nil),
			wantErr: ErrWorkflowNotFound,
		},
		{
			name:    "should report corrupt snapshot",
			result:  redis.NewStringResult("{not json", nil),
			wantErr: workflow.ErrCorruptSnapshot,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			s.redisClient.On("Get", mock.Anything, "workflow:tok").Return(tt.result)

			_, err := s.store.Load(context.Background(), "tok")
			s.ErrorIs(err, tt.wantErr)
		})
	}
}

func (s *StoreTestSuite) TestSave() {
	s.redisClient.On("Set", mock.Anything, "workflow:tok", mock.Anything, testWorkflowTTL).
		Return(redis.NewStatusResult("OK", nil)).Once()

	err := s.store.Save(context.Background(), "tok", s.testSnapshot())
	s.Require().NoError(err)
	s.redisClient.AssertExpectations(s.T())
}

func (s *StoreTestSuite) TestSaveIfCurrentGivesUpAfterRepeatedConflicts() {
	s.redisClient.On("Watch", mock.Anything, mock.Anything, []string{"workflow:tok"}).
		Return(redis.TxFailedErr).Times(maxWatchRetries)

	err := s.store.SaveIfCurrent(context.Background(), "tok", s.testSnapshot())
	s.ErrorIs(err, domain.ErrWorkflowClosed)
	s.redisClient.AssertExpectations(s.T())
}

func (s *StoreTestSuite) TestSaveIfCurrentReportsReplacedWorkflow() {
	s.redisClient.On("Watch", mock.Anything, mock.Anything, []string{"workflow:tok"}).
		Return(domain.ErrWorkflowClosed).Once()

	err := s.store.SaveIfCurrent(context.Background(), "tok", s.testSnapshot())
	s.ErrorIs(err, domain.ErrWorkflowClosed)
}

func (s *StoreTestSuite) TestLock() {
	s.redisClient.On("SetNX", mock.Anything, "workflow_lock:wf-1", mock.Anything, submissionLockTTL).
		Return(redis.NewBoolResult(true, nil)).Once()
	s.redisClient.On("EvalSha", mock.Anything, mock.Anything, []string{"workflow_lock:wf-1"}, mock.Anything).
		Return(redis.NewCmdResult(int64(1), nil)).Once()

	unlock, err := s.store.Lock(context.Background(), "wf-1")
	s.Require().NoError(err)
	s.Require().NoError(unlock(context.Background()))

	s.redisClient.AssertExpectations(s.T())
}

func (s *StoreTestSuite) TestLockHeldByAnotherSubmission() {
	s.redisClient.On("SetNX", mock.Anything, "workflow_lock:wf-1", mock.Anything, submissionLockTTL).
		Return(redis.NewBoolResult(false, nil)).Once()

	_, err := s.store.Lock(context.Background(), "wf-1")
	s.ErrorIs(err, domain.ErrSubmissionInProgress)
}

func (s *StoreTestSuite) TestLocked() {
	tests := []struct {
		name   string
		result *redis.IntCmd
		want   bool
	}{
		{name: "held", result: redis.NewIntResult(1, nil), want: true},
		{name: "free", result: redis.NewIntResult(0, nil), want: false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			client := new(mocks.MockRedisClient)
			client.On("Exists", mock.Anything, []string{"workflow_lock:wf-1"}).Return(tt.result).Once()

			locked, err := NewRedisWorkflowStore(client, time.Hour).Locked(context.Background(), "wf-1")
			s.Require().NoError(err)
			s.Equal(tt.want, locked)
		})
	}
}

func (s *StoreTestSuite) TestLockedRedisFailure() {
	s.redisClient.On("Exists", mock.Anything, []string{"workflow_lock:wf-1"}).
		Return(redis.NewIntResult(0, errors.New("connection refused"))).Once()

	_, err := s.store.Locked(context.Background(), "wf-1")
	s.Error(err)
}

func (s *StoreTestSuite) TestMigrate() {
	s.redisClient.On("Get", mock.Anything, "workflow:old").Return(redis.NewStringResult(`{"id":"wf-1"}`, nil))
	s.redisClient.On("TxPipeline").Return(s.redisPipeline)
	s.redisPipeline.On("Set", mock.Anything, "workflow:new", []byte(`{"id":"wf-1"}`), testWorkflowTTL).
		Return(redis.NewStatusResult("OK", nil)).Once()
	s.redisPipeline.On("Del", mock.Anything, []string{"workflow:old"}).
		Return(redis.NewIntResult(1, nil)).Once()
	s.redisPipeline.On("Exec", mock.Anything).Return([]redis.Cmder{}, nil).Once()

	err := s.store.Migrate(context.Background(), "old", "new")
	s.Require().NoError(err)
	s.redisPipeline.AssertExpectations(s.T())
}

func (s *StoreTestSuite) TestMigrateWithoutWorkflow() {
	s.redisClient.On("Get", mock.Anything, "workflow:old").Return(redis.NewStringResult("", redis.Nil))

	err := s.store.Migrate(context.Background(), "old", "new")
	s.Require().NoError(err)
	s.redisClient.AssertNotCalled(s.T(), "TxPipeline")
}
