// Package jobs runs long WITSML operations in the background. A job is submitted with a
// JSON payload, validated up front, queued, executed by a bounded pool of workers and
// polled by id until it carries a report.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/witsml-explorer/backend/internal/logging"
	"github.com/witsml-explorer/backend/internal/models"
)

var (
	ErrUnknownJobType = errors.New("unknown job type")
	ErrQueueFull      = errors.New("job queue is full")
	ErrStopped        = errors.New("job manager stopped")
)

// Task is a validated job ready to run.
type Task struct {
	Description string
	Run         func(ctx context.Context) (*models.JobReport, error)
}

// Executor decodes and validates a payload. Errors returned here reject the submission;
// errors from Task.Run fail the job.
type Executor func(ctx context.Context, payload []byte) (*Task, error)

// Options sizes the worker pool.
type Options struct {
	Workers   int
	QueueSize int
	// Timeout bounds a single job run. Zero means no limit.
	Timeout time.Duration
}

type entry struct {
	info models.JobInfo
	task *Task
}

// Manager owns the job table and the worker pool.
type Manager struct {
	jobs      map[string]*entry
	mu        sync.RWMutex
	executors map[models.JobType]Executor
	queue     chan *entry
	timeout   time.Duration

	subs   map[int]chan models.JobInfo
	subsMu sync.Mutex
	nextID int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *log.Logger
}

// NewManager starts the workers. Call Stop to shut them down.
func NewManager(opts Options) *Manager {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		jobs:      make(map[string]*entry),
		executors: make(map[models.JobType]Executor),
		queue:     make(chan *entry, opts.QueueSize),
		timeout:   opts.Timeout,
		subs:      make(map[int]chan models.JobInfo),
		ctx:       ctx,
		cancel:    cancel,
		logger:    logging.New("jobs"),
	}
	for i := 0; i < opts.Workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	return m
}

// Register installs the executor for a job type.
func (m *Manager) Register(jobType models.JobType, exec Executor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executors[jobType] = exec
}

// Submit validates the payload and queues the job.
func (m *Manager) Submit(ctx context.Context, jobType models.JobType, payload []byte) (models.JobInfo, error) {
	if m.ctx.Err() != nil {
		return models.JobInfo{}, ErrStopped
	}

	m.mu.RLock()
	exec, ok := m.executors[jobType]
	m.mu.RUnlock()
	if !ok {
		return models.JobInfo{}, fmt.Errorf("%w: %s", ErrUnknownJobType, jobType)
	}

	task, err := exec(ctx, payload)
	if err != nil {
		return models.JobInfo{}, err
	}

	e := &entry{
		info: models.JobInfo{
			ID:          uuid.New().String(),
			Type:        jobType,
			Status:      models.JobStatusOrdered,
			Description: task.Description,
			CreatedAt:   time.Now(),
		},
		task: task,
	}

	// Workers take m.mu before reporting Started, so Ordered is always published first
	m.mu.Lock()
	if m.ctx.Err() != nil {
		m.mu.Unlock()
		return models.JobInfo{}, ErrStopped
	}
	select {
	case m.queue <- e:
		m.jobs[e.info.ID] = e
	default:
		m.mu.Unlock()
		return models.JobInfo{}, ErrQueueFull
	}
	info := e.info
	m.publish(info)
	m.mu.Unlock()

	m.logger.Infof("[Job %s] %s ordered: %s", info.ID[:8], jobType, info.Description)
	return info, nil
}

// Get returns a snapshot of a job.
func (m *Manager) Get(id string) (models.JobInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.jobs[id]
	if !ok {
		return models.JobInfo{}, false
	}
	return e.info, true
}

// List returns all jobs, newest first.
func (m *Manager) List() []models.JobInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]models.JobInfo, 0, len(m.jobs))
	for _, e := range m.jobs {
		list = append(list, e.info)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// Subscribe returns a channel of job status changes and a function that ends the
// subscription. Slow subscribers miss updates rather than block the workers.
func (m *Manager) Subscribe() (<-chan models.JobInfo, func()) {
	ch := make(chan models.JobInfo, 32)

	m.subsMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	m.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subsMu.Lock()
			delete(m.subs, id)
			m.subsMu.Unlock()
			close(ch)
		})
	}
}

func (m *Manager) publish(info models.JobInfo) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- info:
		default:
		}
	}
}

// Cleanup removes finished jobs that completed before now minus maxAge.
func (m *Manager) Cleanup(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, e := range m.jobs {
		if e.info.CompletedAt != nil && e.info.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed
}

// Stop cancels running jobs and waits for the workers to exit. Jobs still queued are
// marked Failed.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()

	// Submit checks the context under m.mu, so nothing is queued after this drain
	m.mu.Lock()
	var pending []*entry
	for drained := false; !drained; {
		select {
		case e := <-m.queue:
			pending = append(pending, e)
		default:
			drained = true
		}
	}
	m.mu.Unlock()

	for _, e := range pending {
		m.abandon(e)
	}
}

func (m *Manager) abandon(e *entry) {
	m.logger.Warnf("[Job %s] dropped: %v", e.info.ID[:8], ErrStopped)
	m.setStatus(e, models.JobStatusFailed, nil, ErrStopped.Error())
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case e := <-m.queue:
			if m.ctx.Err() != nil {
				m.abandon(e)
				continue
			}
			m.run(e)
		}
	}
}

func (m *Manager) run(e *entry) {
	id := e.info.ID[:8]
	start := time.Now()
	m.setStatus(e, models.JobStatusStarted, nil, "")

	ctx := m.ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	report, err := m.execute(ctx, e)
	if err != nil {
		m.logger.Errorf("[Job %s] failed after %v: %v", id, time.Since(start), err)
		m.setStatus(e, models.JobStatusFailed, nil, err.Error())
		return
	}
	m.logger.Infof("[Job %s] finished in %v", id, time.Since(start))
	m.setStatus(e, models.JobStatusFinished, report, "")
}

func (m *Manager) execute(ctx context.Context, e *entry) (report *models.JobReport, err error) {
	// Recover from panics so one bad job cannot take the server down
	defer func() {
		if r := recover(); r != nil {
			m.logger.Errorf("[Job %s] PANIC recovered: %v", e.info.ID[:8], r)
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return e.task.Run(ctx)
}

func (m *Manager) setStatus(e *entry, status models.JobStatus, report *models.JobReport, reason string) {
	m.mu.Lock()
	e.info.Status = status
	e.info.Report = report
	e.info.FailedReason = reason
	if status == models.JobStatusFinished || status == models.JobStatusFailed {
		now := time.Now()
		e.info.CompletedAt = &now
		e.task = nil
	}
	info := e.info
	m.mu.Unlock()

	m.publish(info)
}
