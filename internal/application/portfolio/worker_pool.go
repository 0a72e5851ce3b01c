package portfolio

import (
	"context"
	"sync"

	"3tcapital/wealthdesk/internal/core/client"
	"3tcapital/wealthdesk/internal/core/session"
)

// summaryJob asks a worker for the summary of one client.
type summaryJob struct {
	Client client.Client
	Index  int
}

// summaryResult carries a computed entry back to the collector.
type summaryResult struct {
	Entry Entry
	Err   error
	Index int
}

// summaryPool computes client summaries concurrently. Each client desk has its own
// lock, so workers only contend when two jobs target the same client.
type summaryPool struct {
	workerCount int
	workflow    Workflow
	sess        *session.Session
	jobChan     chan summaryJob
	resultChan  chan summaryResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

func newSummaryPool(ctx context.Context, workerCount int, workflow Workflow, sess *session.Session) *summaryPool {
	if workerCount < 1 {
		workerCount = 1
	}
	poolCtx, cancel := context.WithCancel(ctx)
	return &summaryPool{
		workerCount: workerCount,
		workflow:    workflow,
		sess:        sess,
		jobChan:     make(chan summaryJob, workerCount*2),
		resultChan:  make(chan summaryResult, workerCount*2),
		ctx:         poolCtx,
		cancel:      cancel,
	}
}

func (p *summaryPool) start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop cancels outstanding work and waits for the workers to exit.
func (p *summaryPool) stop() {
	p.cancel()
	p.wg.Wait()
}

func (p *summaryPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job, ok := <-p.jobChan:
			if !ok {
				return
			}
			result := p.summarize(job)
			select {
			case p.resultChan <- result:
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *summaryPool) summarize(job summaryJob) summaryResult {
	records, _, err := p.workflow.Snapshot(p.ctx, p.sess, job.Client.ID)
	if err != nil {
		return summaryResult{Err: err, Index: job.Index}
	}
	return summaryResult{
		Entry: Entry{Client: job.Client, Summary: client.Summarize(records)},
		Index: job.Index,
	}
}

// run summarizes every client and returns the entries in input order.
// The first error cancels the remaining jobs.
func (p *summaryPool) run(clients []client.Client) ([]Entry, error) {
	p.start()
	defer p.stop()

	go func() {
		defer close(p.jobChan)
		for i, c := range clients {
			select {
			case p.jobChan <- summaryJob{Client: c, Index: i}:
			case <-p.ctx.Done():
				return
			}
		}
	}()

	entries := make([]Entry, len(clients))
	for received := 0; received < len(clients); received++ {
		select {
		case result := <-p.resultChan:
			if result.Err != nil {
				return nil, result.Err
			}
			entries[result.Index] = result.Entry
		case <-p.ctx.Done():
			return nil, p.ctx.Err()
		}
	}
	return entries, nil
}
