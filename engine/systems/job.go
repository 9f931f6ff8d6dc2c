package systems

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-dx12/engine/core"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

var (
	ErrNoWorkers           = errors.New("attempting to create worker pool with less than 1 worker")
	ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
)

type jobResult struct {
	job    metadata.JobTask
	result interface{}
	err    error
}

// JobSystem runs job bodies on a pool of workers and hands their results
// back to the owning goroutine. Submit, Update, Flush and Shutdown must all
// be called from that goroutine.
type JobSystem struct {
	numWorkers int
	jobQueue   chan metadata.JobTask
	results    chan jobResult
	wg         sync.WaitGroup
	// submitted jobs whose callbacks have not run yet
	pending int
	closed  bool
}

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan metadata.JobTask, channelSize),
		results:    make(chan jobResult, channelSize+numWorkers),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				result, err := job.OnStart(job.InputParams)
				js.results <- jobResult{job: job, result: result, err: err}
			}
		}()
	}
}

/**
 * @brief Shuts the job system down. Jobs already submitted finish and their
 * callbacks run before this returns.
 */
func (js *JobSystem) Shutdown() error {
	if js.closed {
		return nil
	}
	js.Flush()
	js.closed = true
	close(js.jobQueue)
	js.wg.Wait()
	return nil
}

/**
 * @brief Updates the job system. Should happen once an update cycle. Runs
 * the callbacks of every finished job without blocking.
 */
func (js *JobSystem) Update() {
	for {
		select {
		case r := <-js.results:
			js.dispatch(r)
		default:
			return
		}
	}
}

// Flush blocks until every submitted job has finished and its callbacks ran.
func (js *JobSystem) Flush() {
	for js.pending > 0 {
		js.dispatch(<-js.results)
	}
}

// Pending returns the number of jobs whose callbacks have not run yet.
func (js *JobSystem) Pending() int {
	return js.pending
}

/**
 * @brief Submits the provided job to be queued for execution. While the
 * queue is full, finished jobs are dispatched so workers never stall.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt metadata.JobTask) error {
	if js.closed {
		return errors.Wrapf(core.ErrShuttingDown, "submitting job %q", jt.Name)
	}
	if jt.OnStart == nil {
		return errors.Newf("job %q has no entry point", jt.Name)
	}
	js.pending++
	for {
		select {
		case js.jobQueue <- jt:
			return nil
		case r := <-js.results:
			js.dispatch(r)
		}
	}
}

func (js *JobSystem) dispatch(r jobResult) {
	js.pending--
	if r.err != nil {
		core.LogError("job %q failed: %s", r.job.Name, r.err)
		if r.job.OnFailure != nil {
			r.job.OnFailure(r.err)
		}
		return
	}
	if r.job.OnComplete != nil {
		r.job.OnComplete(r.result)
	}
}
