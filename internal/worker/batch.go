package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/paradox/internal/model"
	"gopkg.in/yaml.v3"
)

// Resolver resolves a single request
type Resolver interface {
	Resolve(ctx context.Context, req model.Request) (*model.Report, error)
}

// ResolveJob represents one request in a batch
type ResolveJob struct {
	Index    int
	Request  model.Request
	Resolver Resolver
	Limiter  *Limiter // nil disables throttling
}

// Execute executes the resolve job
func (j *ResolveJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Request.Source); err != nil {
			return &ResolveResult{Index: j.Index, RequestID: j.Request.ID, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}

	report, err := j.Resolver.Resolve(ctx, j.Request)
	if err != nil {
		return &ResolveResult{Index: j.Index, RequestID: j.Request.ID, Error: err}
	}
	return &ResolveResult{Index: j.Index, RequestID: report.RequestID, Report: report}
}

// ResolveResult represents the result of a resolve job
type ResolveResult struct {
	Index     int
	RequestID string
	Report    *model.Report
	Error     error
}

// GetError returns the error from the resolve result
func (r *ResolveResult) GetError() error {
	return r.Error
}

// BatchProcessor resolves many requests concurrently
type BatchProcessor struct {
	resolver    Resolver
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a new batch processor. Throttling is off unless
// limits set a positive rate, by default or for some source.
func NewBatchProcessor(resolver Resolver, concurrency int, limits model.RateLimitingConfig) *BatchProcessor {
	var limiter *Limiter
	if limits.Throttled() {
		limiter = NewLimiter(limits.RequestsPerSecond, limits.BurstSize)
		for source, r := range limits.Sources {
			limiter.SetSourceRate(source, r.RequestsPerSecond, r.BurstSize)
		}
	}
	return &BatchProcessor{
		resolver:    resolver,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// ProcessRequests resolves reqs concurrently and returns one result per
// request, in input order
func (b *BatchProcessor) ProcessRequests(ctx context.Context, reqs []model.Request) []*ResolveResult {
	if len(reqs) == 0 {
		return []*ResolveResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()
	// stop the workers as soon as ctx ends instead of draining the queue
	stop := context.AfterFunc(ctx, pool.Shutdown)
	defer stop()

	out := make([]*ResolveResult, len(reqs))
	for i, req := range reqs {
		job := &ResolveJob{
			Index:    i,
			Request:  req,
			Resolver: b.resolver,
			Limiter:  b.limiter,
		}
		if !pool.Submit(job) {
			break
		}
	}

	for _, result := range pool.Wait() {
		r := result.(*ResolveResult)
		out[r.Index] = r
	}

	// jobs never queued or dropped on cancellation
	for i, r := range out {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = errors.New("job dropped")
			}
			out[i] = &ResolveResult{Index: i, RequestID: reqs[i].ID, Error: err}
		}
	}
	return out
}

// ProcessFile reads a YAML batch document and resolves its requests
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ResolveResult, error) {
	reqs, err := ReadRequestsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}

	return b.ProcessRequests(ctx, reqs), nil
}

// ReadRequestsFromFile reads a batch document. An empty file holds no
// requests.
func ReadRequestsFromFile(filePath string) ([]model.Request, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadRequests(file)
}

// ReadRequests decodes a batch document from r
func ReadRequests(r io.Reader) ([]model.Request, error) {
	var doc model.BatchFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []model.Request{}, nil
		}
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	return doc.Requests, nil
}
