package clickhouse

import (
	"time"

	"github.com/golang/mock/gomock"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
)

func (s *RepositorySuite) TestInsertJobRuns() {
	finished := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []model.JobRun{
		{
			Layer:      model.Celestia,
			Key:        "celestia:100",
			Position:   100,
			Phase:      "live",
			Attempts:   1,
			Status:     model.JobRunSucceeded,
			Duration:   1500 * time.Millisecond,
			FinishedAt: finished,
		},
		{
			Layer:      model.Celestia,
			Key:        "celestia:99",
			Position:   99,
			Phase:      "catch_up",
			Attempts:   3,
			Status:     model.JobRunCanceled,
			Duration:   time.Second,
			FinishedAt: finished.Add(time.Second),
		},
		{
			Layer:      model.EigenDA,
			Key:        "eigenda:7:0xba",
			Position:   19_000_000,
			Phase:      "live",
			Attempts:   2,
			Status:     model.JobRunSucceeded,
			Duration:   20 * time.Millisecond,
			FinishedAt: finished,
		},
	}

	s.metrics.EXPECT().Observe("insert_job_runs", nil, gomock.Any())
	s.Require().NoError(s.repo.InsertJobRuns(s.testCtx, runs))
	s.Require().Equal(uint64(3), s.countRows("da_job_runs"))

	var (
		attempts   uint32
		durationMs uint64
		finishedAt time.Time
	)
	row := s.repo.conn.QueryRow(s.testCtx, `
SELECT attempts, duration_ms, finished_at
FROM da_job_runs
WHERE job_key = 'celestia:100'`)
	s.Require().NoError(row.Scan(&attempts, &durationMs, &finishedAt))
	s.Equal(uint32(1), attempts)
	s.Equal(uint64(1500), durationMs)
	s.True(finished.Equal(finishedAt))

	s.metrics.EXPECT().Observe("job_runs_count", nil, gomock.Any()).Times(3)
	count, err := s.repo.JobRunsCount(s.testCtx, model.Celestia, model.JobRunSucceeded)
	s.Require().NoError(err)
	s.Equal(uint64(1), count)

	count, err = s.repo.JobRunsCount(s.testCtx, model.Celestia, model.JobRunCanceled)
	s.Require().NoError(err)
	s.Equal(uint64(1), count)

	count, err = s.repo.JobRunsCount(s.testCtx, model.EigenDA, model.JobRunCanceled)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *RepositorySuite) TestInsertJobRunsEmpty() {
	s.metrics.EXPECT().Observe("insert_job_runs", nil, gomock.Any())
	s.Require().NoError(s.repo.InsertJobRuns(s.testCtx, nil))
	s.Zero(s.countRows("da_job_runs"))
}
