package execution

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"borsch/internal/logging"
	"borsch/internal/playground"
	"borsch/internal/services"
)

const (
	defaultPollInterval    = time.Second
	defaultLanguageVersion = "0.1.0"
)

// API is the subset of the playground client the controller drives.
type API interface {
	CreateJob(ctx context.Context, languageVersion, sourceCode string) (playground.JobHandle, error)
	FetchOutput(ctx context.Context, jobID string, offset int) (playground.OutputPage, error)
}

// Controller runs one program at a time against the playground service. The
// zero value is not usable; construct with New.
type Controller struct {
	api             API
	source          string
	languageVersion string
	interval        time.Duration
	logger          *slog.Logger
	observer        func(Snapshot)
	rawOutputURL    func(jobID string) string

	mu         sync.Mutex
	state      State
	job        playground.JobHandle
	transcript []string
	exitCode   int64
	rawOutput  string
	err        error
	alert      bool
	session    *session
	generation uint64
	version    uint64
	tasks      sync.WaitGroup

	notifyMu  sync.Mutex
	delivered uint64
}

type session struct {
	id     string
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLanguageVersion sets the language version submitted with the source.
func WithLanguageVersion(version string) Option {
	return func(c *Controller) {
		if version != "" {
			c.languageVersion = version
		}
	}
}

// WithPollInterval sets the steady-state gap between output polls. Zero polls
// back to back; the first poll always happens immediately.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Controller) {
		if interval >= 0 {
			c.interval = interval
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logging.NewComponentLogger(logger, "execution")
	}
}

// WithObserver registers a callback invoked after every state change. It runs
// on the goroutine that caused the change and must not call Submit, Retry,
// Dismiss, DismissAlert, or Close synchronously.
func WithObserver(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

// WithRawOutputURL derives the plain-text output location recorded when a
// job finishes.
func WithRawOutputURL(fn func(jobID string) string) Option {
	return func(c *Controller) {
		c.rawOutputURL = fn
	}
}

// New constructs a controller for source. The source is submitted unchanged
// on every Submit or Retry.
func New(api API, source string, opts ...Option) *Controller {
	c := &Controller{
		api:             api,
		source:          source,
		languageVersion: defaultLanguageVersion,
		interval:        defaultPollInterval,
		logger:          logging.NewComponentLogger(nil, "execution"),
		exitCode:        NoExitCode,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit starts a new job unless one is already starting or running, in which
// case it does nothing and returns false. Submitting from Finished or an error
// state discards the previous transcript and exit code.
func (c *Controller) Submit(ctx context.Context) bool {
	c.mu.Lock()
	if c.state.Active() {
		state := c.state
		c.mu.Unlock()
		c.logger.Debug("submit ignored", logging.String(logging.FieldState, state.String()))
		return false
	}

	c.generation++
	runCtx, cancel := context.WithCancel(ctx)
	sess := &session{
		id:     uuid.NewString(),
		gen:    c.generation,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.session = sess
	c.resetLocked()
	c.state = StateStarting
	snap := c.snapshotLocked()
	c.tasks.Add(1)
	c.mu.Unlock()

	c.notify(snap)
	go c.run(runCtx, sess)
	return true
}

// Retry re-submits the same source. It has the same semantics as Submit.
func (c *Controller) Retry(ctx context.Context) bool {
	return c.Submit(ctx)
}

// Dismiss stops polling for the current job and forgets it. The remote job is
// not cancelled. Responses still in flight are discarded when they arrive.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	if c.session != nil {
		c.session.cancel()
		c.session = nil
	}
	c.generation++
	c.resetLocked()
	c.state = StateIdle
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// DismissAlert hides the error alert without touching job state.
func (c *Controller) DismissAlert() {
	c.mu.Lock()
	if !c.alert {
		c.mu.Unlock()
		return
	}
	c.alert = false
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Close dismisses the current job and waits for every background task,
// including abandoned ones, to return.
func (c *Controller) Close() {
	c.Dismiss()
	c.tasks.Wait()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Wait blocks until the current job settles in Finished, an error state, or
// is dismissed, then returns the resulting snapshot.
func (c *Controller) Wait(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	if sess != nil {
		select {
		case <-sess.done:
		case <-ctx.Done():
			return c.Snapshot(), ctx.Err()
		}
	}
	return c.Snapshot(), nil
}

func (c *Controller) run(ctx context.Context, sess *session) {
	defer c.tasks.Done()
	defer close(sess.done)
	defer sess.cancel()

	ctx = services.WithSessionID(ctx, sess.id)
	logger := logging.WithContext(ctx, c.logger)
	logger.Info("submitting job", logging.String("language_version", c.languageVersion), logging.Int("source_bytes", len(c.source)))

	handle, err := c.api.CreateJob(ctx, c.languageVersion, c.source)
	if ctx.Err() != nil {
		c.abandon(sess, logger)
		return
	}
	if err != nil {
		c.failStart(sess, err, logger)
		return
	}
	if !c.startRunning(sess, handle) {
		logger.Debug("discarding stale job handle", logging.String(logging.FieldJobID, handle.JobID))
		return
	}

	ctx = services.WithJobID(ctx, handle.JobID)
	logger = logging.WithContext(ctx, c.logger)
	logger.Info("job running")

	limiter := rate.NewLimiter(rate.Inf, 1)
	if c.interval > 0 {
		limiter = rate.NewLimiter(rate.Every(c.interval), 1)
	}
	offset := 0
	for {
		if err := limiter.Wait(ctx); err != nil {
			c.abandon(sess, logger)
			return
		}
		page, err := c.api.FetchOutput(ctx, handle.JobID, offset)
		if ctx.Err() != nil {
			c.abandon(sess, logger)
			return
		}
		if err != nil {
			c.failRun(sess, handle.JobID, err, logger)
			return
		}
		next, applied, finished := c.applyPage(sess, handle.JobID, page)
		if !applied {
			logger.Debug("discarding stale output page", logging.Int("rows", len(page.Rows)))
			return
		}
		logger.Debug("output page applied", logging.Int("offset", offset), logging.Int("rows", len(page.Rows)))
		if finished {
			if *page.ExitCode < 0 {
				logging.WarnWithContext(logger, "job finished with a negative exit code", "job_exit_sentinel",
					logging.Int64("exit_code", *page.ExitCode),
					logging.String(logging.FieldImpact, "exit code may be a server sentinel rather than the program status"),
					logging.String(logging.FieldErrorHint, "check the service version if this repeats"),
				)
			}
			logger.Info("job finished", logging.Int64("exit_code", *page.ExitCode), logging.Int("rows", next))
			return
		}
		offset = next
	}
}

func (c *Controller) current(sess *session) bool {
	return c.session == sess && c.generation == sess.gen
}

func (c *Controller) startRunning(sess *session, handle playground.JobHandle) bool {
	c.mu.Lock()
	if !c.current(sess) || c.state != StateStarting {
		c.mu.Unlock()
		return false
	}
	c.job = handle
	c.state = StateRunning
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return true
}

func (c *Controller) applyPage(sess *session, jobID string, page playground.OutputPage) (int, bool, bool) {
	c.mu.Lock()
	if !c.current(sess) || c.state != StateRunning || c.job.JobID != jobID {
		c.mu.Unlock()
		return 0, false, false
	}
	c.transcript = append(c.transcript, page.Texts()...)
	finished := page.Finished()
	if finished {
		c.state = StateFinished
		c.exitCode = *page.ExitCode
		if c.rawOutputURL != nil {
			c.rawOutput = c.rawOutputURL(jobID)
		}
		c.session = nil
	}
	next := len(c.transcript)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return next, true, finished
}

func (c *Controller) failStart(sess *session, err error, logger *slog.Logger) {
	c.mu.Lock()
	if !c.current(sess) {
		c.mu.Unlock()
		logger.Debug("discarding stale submit failure", logging.Error(err))
		return
	}
	c.state = StateStartingError
	c.transcript = nil
	c.exitCode = NoExitCode
	c.err = err
	c.alert = true
	c.session = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()

	logging.ErrorWithContext(logger, "job submission failed", "job_create_failed",
		logging.Error(err),
		logging.Bool("retryable", playground.Retryable(err)),
		logging.String(logging.FieldErrorHint, "check api.base_url and the language version, then retry"),
	)
	c.notify(snap)
}

func (c *Controller) failRun(sess *session, jobID string, err error, logger *slog.Logger) {
	c.mu.Lock()
	if !c.current(sess) || c.job.JobID != jobID {
		c.mu.Unlock()
		logger.Debug("discarding stale poll failure", logging.Error(err))
		return
	}
	c.state = StateRunningError
	c.err = err
	c.alert = true
	c.session = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()

	logging.ErrorWithContext(logger, "output polling failed", "job_poll_failed",
		logging.Error(err),
		logging.Int("offset", len(snap.Transcript)),
		logging.Bool("retryable", playground.Retryable(err)),
		logging.String(logging.FieldErrorHint, "partial output kept; retry to run the program again"),
	)
	c.notify(snap)
}

// abandon handles a cancelled session. Dismiss has normally reset state
// already; a cancelled parent context without Dismiss resets it here.
func (c *Controller) abandon(sess *session, logger *slog.Logger) {
	c.mu.Lock()
	if !c.current(sess) {
		c.mu.Unlock()
		logger.Debug("session cancelled")
		return
	}
	c.session = nil
	c.generation++
	c.resetLocked()
	c.state = StateIdle
	snap := c.snapshotLocked()
	c.mu.Unlock()

	logger.Info("session cancelled before completion")
	c.notify(snap)
}

func (c *Controller) resetLocked() {
	c.job = playground.JobHandle{}
	c.transcript = nil
	c.exitCode = NoExitCode
	c.rawOutput = ""
	c.err = nil
	c.alert = false
}

func (c *Controller) snapshotLocked() Snapshot {
	c.version++
	snap := Snapshot{
		Version:      c.version,
		State:        c.state,
		JobID:        c.job.JobID,
		OutputURL:    c.job.OutputURL,
		ExitCode:     c.exitCode,
		RawOutputURL: c.rawOutput,
		Err:          c.err,
		AlertVisible: c.alert,
	}
	if c.session != nil {
		snap.SessionID = c.session.id
	}
	if len(c.transcript) > 0 {
		snap.Transcript = append([]string(nil), c.transcript...)
	}
	if c.err != nil {
		snap.ErrorMessage = playground.UserMessage(c.err)
	}
	return snap
}

// notify delivers snap to the observer unless a newer snapshot has already
// been delivered.
func (c *Controller) notify(snap Snapshot) {
	if c.observer == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if snap.Version <= c.delivered {
		return
	}
	c.delivered = snap.Version
	c.observer(snap)
}
