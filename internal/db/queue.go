package db

import (
	"database/sql"
	"errors"
	"time"
)

type dbTask struct {
	exec func(*sql.DB) (interface{}, error)
	resp chan dbResult
}

type dbResult struct {
	data interface{}
	err  error
}

// DBQueue funnels every database operation through one worker goroutine.
// A task owns the database from its first read to its last write, so
// read-modify-write sequences inside one Execute call never interleave
// with another caller's.
type DBQueue struct {
	tasks      chan dbTask
	db         *sql.DB
	maxRetry   int
	retryDelay time.Duration
	backoff    bool
}

func NewDBQueue(db *sql.DB) *DBQueue {
	q := &DBQueue{
		tasks:      make(chan dbTask, 100),
		db:         db,
		maxRetry:   3,
		retryDelay: 100 * time.Millisecond,
		backoff:    true,
	}
	go q.worker()
	return q
}

// NewDBQueueForTest retries with a minimal flat delay.
func NewDBQueueForTest(db *sql.DB) *DBQueue {
	q := &DBQueue{
		tasks:      make(chan dbTask, 100),
		db:         db,
		maxRetry:   3,
		retryDelay: 1 * time.Millisecond,
		backoff:    false,
	}
	go q.worker()
	return q
}

func (q *DBQueue) Execute(task func(*sql.DB) (interface{}, error)) (interface{}, error) {
	resp := make(chan dbResult, 1)
	q.tasks <- dbTask{exec: task, resp: resp}
	result := <-resp
	return result.data, result.err
}

func (q *DBQueue) worker() {
	for task := range q.tasks {
		var lastErr error
		done := false
		for attempt := 0; attempt < q.maxRetry && !done; attempt++ {
			data, err := task.exec(q.db)
			if err == nil {
				task.resp <- dbResult{data: data}
				done = true
				continue
			}
			lastErr = err
			if !retryable(err) {
				break
			}
			if attempt < q.maxRetry-1 { // no sleep after the last attempt
				delay := q.retryDelay
				if q.backoff {
					delay = time.Duration(attempt+1) * q.retryDelay
				}
				time.Sleep(delay)
			}
		}
		if !done {
			task.resp <- dbResult{err: lastErr}
		}
	}
}

// Business outcomes and missing rows are facts, not transient faults;
// re-running the task would only repeat the same answer slower.
func retryable(err error) bool {
	return !errors.Is(err, ErrUserNotFound) &&
		!errors.Is(err, ErrGoalNotSet) &&
		!errors.Is(err, sql.ErrNoRows)
}

func (q *DBQueue) Close() {
	close(q.tasks)
}

func (q *DBQueue) DB() *sql.DB {
	return q.db
}
