package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultRunTimeout bounds a single run including the save.
const DefaultRunTimeout = 10 * time.Minute

// DefaultRetention is how long finished runs and their output stay available.
const DefaultRetention = 30 * time.Minute

// OpenFunc turns uploaded bytes into a Document.
type OpenFunc func(r io.Reader) (Document, error)

// OutputStore persists a finished workbook and returns where it was written.
type OutputStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// ServiceConfig wires a Service. Generator and Open are required.
type ServiceConfig struct {
	Generator  *Generator
	Open       OpenFunc
	Limiter    *RunLimiter  // Defaults to NewRunLimiter(0, 0)
	Recorder   RunRecorder  // Defaults to an in-memory history
	Outputs    OutputStore  // Optional copy of every output
	RunLog     *slog.Logger // Append-only run log shared by all runs
	Retention  time.Duration
	RunTimeout time.Duration
}

// Service runs generations in the background and tracks their progress.
type Service struct {
	gen        *Generator
	open       OpenFunc
	limiter    *RunLimiter
	recorder   RunRecorder
	outputs    OutputStore
	runLog     *slog.Logger
	retention  time.Duration
	runTimeout time.Duration

	mu   sync.RWMutex
	runs map[string]*activeRun
	wg   sync.WaitGroup
}

type activeRun struct {
	ID       string
	Options  Options
	ClientIP string
	Done     chan struct{}

	mu         sync.Mutex
	progress   Progress
	result     *RunResult
	output     []byte
	outputName string
	listeners  []chan Progress
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("service: generator is required")
	}
	if cfg.Open == nil {
		return nil, fmt.Errorf("service: open func is required")
	}
	if cfg.Limiter == nil {
		cfg.Limiter = NewRunLimiter(0, 0)
	}
	if cfg.Recorder == nil {
		cfg.Recorder = NewMemoryHistory(0)
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}

	return &Service{
		gen:        cfg.Generator,
		open:       cfg.Open,
		limiter:    cfg.Limiter,
		recorder:   cfg.Recorder,
		outputs:    cfg.Outputs,
		runLog:     cfg.RunLog,
		retention:  cfg.Retention,
		runTimeout: cfg.RunTimeout,
		runs:       make(map[string]*activeRun),
	}, nil
}

// Templates returns display information for the available template variants.
func (s *Service) Templates() []TemplateInfo {
	return s.gen.Templates().Infos()
}

// StartRun validates the request and begins an asynchronous run.
// Returns the run ID immediately. Use SubscribeProgress to follow it.
//
// Returns ErrTooManyRuns if no run slot becomes free within the wait time.
func (s *Service) StartRun(ctx context.Context, fileName string, data []byte, opts Options) (string, error) {
	if len(data) == 0 {
		return "", ErrNoFile
	}
	opts.FileName = fileName
	if err := ValidateOptions(opts); err != nil {
		return "", err
	}
	if _, ok := s.gen.Templates().Get(opts.Variant); !ok {
		return "", fmt.Errorf("unknown template type %q", opts.Variant)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	run := &activeRun{
		ID:       uuid.NewString(),
		Options:  opts,
		ClientIP: ClientIPFromContext(ctx),
		Done:     make(chan struct{}),
	}
	run.progress = Progress{RunID: run.ID, Phase: PhaseIdle}

	s.mu.Lock()
	s.runs[run.ID] = run
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.limiter.Release()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in run", "run_id", run.ID, "panic", r)
				s.finish(run, run.failedResult(fmt.Errorf("internal error: %v", r)), nil)
			}
		}()
		s.process(run, data)
	}()

	return run.ID, nil
}

// process performs the run. It detaches from the request context so the run
// outlives the HTTP request that started it.
//
// The generator cannot be interrupted, so a run that exceeds the run timeout
// is reported as failed right away, but process still waits for the generator
// to exit so the run slot stays taken until then. Its output and later
// progress are discarded.
func (s *Service) process(run *activeRun, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	doc, err := s.open(bytes.NewReader(data))
	if err != nil {
		err = fmt.Errorf("open workbook: %w", err)
		slog.Warn("run rejected", "run_id", run.ID, "error", err)
		if s.runLog != nil {
			s.runLog.Error("Error", "error", err.Error())
		}
		s.finish(run, run.failedResult(err), nil)
		return
	}

	type generated struct {
		result *RunResult
		output []byte
	}
	done := make(chan generated, 1)

	go func() {
		if c, ok := doc.(io.Closer); ok {
			defer c.Close()
		}
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in generator", "run_id", run.ID, "panic", r)
				done <- generated{result: run.failedResult(fmt.Errorf("internal error: %v", r))}
			}
		}()

		var out bytes.Buffer
		result, _ := s.gen.Run(ctx, RunRequest{
			RunID:    run.ID,
			Document: doc,
			Options:  run.Options,
			Save:     func(d Document) error { return d.Write(&out) },
			Progress: run.update,
			Log:      s.runLog,
		})

		g := generated{result: result}
		if result.Error == "" {
			g.output = out.Bytes()
		}
		done <- g
	}()

	select {
	case g := <-done:
		s.finish(run, g.result, g.output)
	case <-ctx.Done():
		err := fmt.Errorf("%w after %s", ErrRunTimeout, s.runTimeout)
		slog.Error("run timed out", "run_id", run.ID, "timeout", s.runTimeout)
		if s.runLog != nil {
			s.runLog.Error("Error", "error", err.Error())
		}
		s.finish(run, run.failedResult(err), nil)
		<-done
	}
}

// failedResult builds the result of a run that never produced one.
func (run *activeRun) failedResult(err error) *RunResult {
	return &RunResult{
		RunID:     run.ID,
		Variant:   run.Options.Variant,
		Project:   run.Options.Project,
		FileName:  run.Options.FileName,
		Forms:     []string{},
		StartedAt: time.Now(),
		Error:     err.Error(),
		Err:       err,
	}
}

// finish stores the result, persists the output and history, then releases
// listeners. Finished runs are forgotten after the retention period.
func (s *Service) finish(run *activeRun, result *RunResult, output []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	name := OutputFileName(run.Options.Project, run.Options.FileName)
	if output != nil && s.outputs != nil {
		location, err := s.outputs.Put(ctx, name, output)
		if err != nil {
			slog.Error("store output", "run_id", run.ID, "error", err)
		} else {
			slog.Info("output stored", "run_id", run.ID, "location", location)
		}
	}

	if err := s.recorder.RecordRun(ctx, SummarizeRun(result, run.ClientIP)); err != nil {
		slog.Error("record run history", "run_id", run.ID, "error", err)
	}

	run.mu.Lock()
	run.result = result
	if output != nil {
		run.output = output
		run.outputName = name
	}
	if result.Error != "" {
		run.progress.Phase = PhaseFailed
		run.progress.Error = result.Error
	}
	run.mu.Unlock()

	run.notify()
	run.complete()

	time.AfterFunc(s.retention, func() {
		s.mu.Lock()
		delete(s.runs, run.ID)
		s.mu.Unlock()
	})
}

func (s *Service) lookup(runID string) (*activeRun, error) {
	s.mu.RLock()
	run, ok := s.runs[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, nil
}

// SubscribeProgress returns a channel that receives progress updates.
// The current state is sent first. The channel is closed when the run ends.
func (s *Service) SubscribeProgress(runID string) (<-chan Progress, error) {
	run, err := s.lookup(runID)
	if err != nil {
		return nil, err
	}

	ch := make(chan Progress, 16)

	run.mu.Lock()
	defer run.mu.Unlock()
	ch <- run.progress
	select {
	case <-run.Done:
		close(ch)
	default:
		run.listeners = append(run.listeners, ch)
	}
	return ch, nil
}

// GetProgress returns the current progress without blocking.
func (s *Service) GetProgress(runID string) (Progress, error) {
	run, err := s.lookup(runID)
	if err != nil {
		return Progress{}, err
	}
	run.mu.Lock()
	defer run.mu.Unlock()
	return run.progress, nil
}

// GetResult waits for the run to finish and returns its result.
func (s *Service) GetResult(ctx context.Context, runID string) (*RunResult, error) {
	run, err := s.lookup(runID)
	if err != nil {
		return nil, err
	}

	select {
	case <-run.Done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	run.mu.Lock()
	defer run.mu.Unlock()
	return run.result, nil
}

// GetOutput returns the generated workbook of a finished run.
func (s *Service) GetOutput(runID string) (string, []byte, error) {
	run, err := s.lookup(runID)
	if err != nil {
		return "", nil, err
	}

	run.mu.Lock()
	defer run.mu.Unlock()
	if run.output == nil {
		return "", nil, fmt.Errorf("%w for run %s", ErrNoOutput, runID)
	}
	return run.outputName, run.output, nil
}

// History returns the most recent runs, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]RunSummary, error) {
	return s.recorder.RecentRuns(ctx, limit)
}

// LimiterStatus reports run slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// Shutdown waits for in-flight runs to finish or ctx to expire.
func (s *Service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown: %d runs still active: %w", s.limiter.Active(), ctx.Err())
	}
}

// update is the generator's progress callback.
func (run *activeRun) update(p Progress) {
	run.mu.Lock()
	if run.result != nil {
		run.mu.Unlock()
		return
	}
	run.progress = p
	run.mu.Unlock()
	run.notify()
}

// notify sends the current progress to all listeners.
func (run *activeRun) notify() {
	run.mu.Lock()
	defer run.mu.Unlock()

	for _, ch := range run.listeners {
		select {
		case ch <- run.progress:
		default:
			// Slow listener, drop this update
		}
	}
}

// complete closes all listeners and marks the run done. Both happen under
// the lock so a concurrent subscriber either gets registered and closed here
// or sees Done.
func (run *activeRun) complete() {
	run.mu.Lock()
	defer run.mu.Unlock()

	for _, ch := range run.listeners {
		close(ch)
	}
	run.listeners = nil
	close(run.Done)
}
