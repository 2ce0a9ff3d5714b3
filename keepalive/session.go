package keepalive

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vinayprograms/mcpkeep/errors"
	"github.com/vinayprograms/mcpkeep/logging"
	"github.com/vinayprograms/mcpkeep/platform"
)

// KeptSession wraps a Session with background liveness probing. Every
// original operation forwards to the wrapped session unchanged; only
// Connect is intercepted to arm the scheduler after a warm-up delay.
type KeptSession struct {
	Session

	cfg Config
	log *logging.Logger
	id  string

	enabled     bool
	reason      string
	warmup      time.Duration
	resolveOnce sync.Once

	mu          sync.Mutex
	strategy    Strategy
	probeTool   string // matched reserved name for StrategyProbeOp
	resourceURI string // remembered resource for StrategyResourceRead
	active      bool
	failures    int
	lastSuccess time.Time
	timer       *time.Timer
	warmupTimer *time.Timer
	gen         uint64 // invalidates armed timers and in-flight probes
}

// Wrap decorates session with keep-alive per cfg. Construction never
// fails: when the endpoint does not classify as platform-managed and
// Force is off, the wrapper is returned disabled and Start/Stop are
// no-ops.
func Wrap(session Session, cfg Config) *KeptSession {
	cfg.applyDefaults()

	id := ""
	if ident, ok := session.(interface{ SessionID() string }); ok {
		id = ident.SessionID()
	}
	if id == "" {
		id = uuid.NewString()
	}

	base := cfg.Logger
	if base == nil {
		base = logging.New()
	}
	logID := id
	if len(logID) > 8 {
		logID = logID[:8]
	}
	log := base.WithComponent("keepalive").WithSessionID(logID)
	if cfg.Debug {
		log.SetLevel(logging.LevelDebug)
	}

	s := &KeptSession{
		Session:  session,
		cfg:      cfg,
		log:      log,
		id:       id,
		warmup:   defaultWarmup,
		strategy: StrategyAuto,
	}

	if cfg.Strategy != StrategyAuto {
		s.strategy = cfg.Strategy
		if cfg.Strategy == StrategyProbeOp {
			s.probeTool = probeToolPrimary
		}
	}

	s.enabled = cfg.Force || platform.ShouldKeepAlive(cfg.Endpoint, cfg.Credentials)
	if !s.enabled {
		s.reason = "endpoint is not platform-managed and no platform credentials supplied"
	}
	log.ClassifierDecision(s.enabled, s.reason)

	return s
}

// Connect delegates the handshake to the wrapped session and returns its
// result unmodified. On success it schedules strategy selection and probing
// to begin after the warm-up delay; the caller is never blocked on that.
func (s *KeptSession) Connect(ctx context.Context) error {
	err := s.Session.Connect(ctx)
	if err != nil || !s.enabled {
		return err
	}

	s.mu.Lock()
	if s.warmupTimer != nil {
		s.warmupTimer.Stop()
	}
	s.warmupTimer = time.AfterFunc(s.warmup, func() {
		s.Start(context.Background())
	})
	s.mu.Unlock()

	return nil
}

// Close stops probing and closes the wrapped session.
func (s *KeptSession) Close() error {
	s.Stop()
	return s.Session.Close()
}

// Start resolves the heartbeat strategy if still unresolved, then arms the
// scheduler. Idempotent; restarting after the failure threshold resets the
// failure count but never re-runs selection. A no-op when keep-alive is
// disabled for this session. Blocks only for strategy resolution, which is
// bounded by the transport's own timeout.
func (s *KeptSession) Start(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return nil
	}
	unresolved := s.strategy == StrategyAuto
	s.mu.Unlock()

	if unresolved {
		s.resolveOnce.Do(func() {
			strategy, tool, uri, detail := s.selectStrategy(ctx)
			s.mu.Lock()
			s.strategy = strategy
			s.probeTool = tool
			s.resourceURI = uri
			if strategy == StrategyDisabled {
				s.reason = detail
			}
			s.mu.Unlock()
			s.log.StrategyResolved(string(strategy), detail)
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.strategy == StrategyDisabled || s.strategy == StrategyAuto || s.active {
		return nil
	}

	if s.warmupTimer != nil {
		s.warmupTimer.Stop()
		s.warmupTimer = nil
	}
	s.failures = 0
	s.active = true
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.cfg.Interval, func() { s.probe(gen) })
	s.log.SchedulerStarted(string(s.strategy), s.cfg.Interval)
	return nil
}

// Stop synchronously clears any pending timer. A probe already in flight is
// allowed to complete but its result is discarded and never counted.
// Idempotent, callable from any state.
func (s *KeptSession) Stop() {
	if !s.enabled {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.warmupTimer != nil {
		s.warmupTimer.Stop()
		s.warmupTimer = nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.active {
		s.log.SchedulerStopped()
	}
	s.active = false
}

// Status returns a snapshot of the keep-alive state.
func (s *KeptSession) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Enabled:       s.enabled,
		Active:        s.active,
		Strategy:      s.strategy,
		FailureCount:  s.failures,
		LastSuccessAt: s.lastSuccess,
		Reason:        s.reason,
		SessionID:     s.id,
	}
}

// probe runs one liveness check and settles the scheduler state. The next
// probe is armed only after this one settles, so at most one is ever in
// flight. gen guards against probes outliving a Stop or restart.
func (s *KeptSession) probe(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.active {
		s.mu.Unlock()
		return
	}
	strategy, tool, uri := s.strategy, s.probeTool, s.resourceURI
	s.mu.Unlock()

	start := time.Now()
	readURI, err := s.execProbe(strategy, tool, uri)
	s.log.ProbeResult(string(strategy), time.Since(start), err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || !s.active {
		return // stopped mid-probe: discard the result
	}

	if readURI != "" {
		s.resourceURI = readURI
	}

	if err == nil {
		s.failures = 0
		s.lastSuccess = time.Now()
	} else {
		s.failures++
		if s.failures >= s.cfg.MaxFailures {
			s.active = false
			s.timer = nil
			s.log.ThresholdReached(s.failures)
			return
		}
	}

	s.timer = time.AfterFunc(s.cfg.Interval, func() { s.probe(gen) })
}

// execProbe issues one probe for the given strategy. For resource reads it
// returns the URI that was read so the scheduler can remember it.
func (s *KeptSession) execProbe(strategy Strategy, tool, uri string) (string, error) {
	ctx := context.Background()

	switch strategy {
	case StrategyProbeOp:
		if err := s.callProbeTool(ctx, tool); err != nil {
			// Remotes may implement either reserved name; retry with the
			// other before counting the attempt as failed.
			alias := probeToolAlias
			if tool == probeToolAlias {
				alias = probeToolPrimary
			}
			if err2 := s.callProbeTool(ctx, alias); err2 != nil {
				return "", err
			}
		}
		return "", nil

	case StrategyResourceRead:
		if uri == "" {
			resources, err := s.Session.ListResources(ctx)
			if err != nil {
				return "", err
			}
			if len(resources) == 0 {
				return "", errors.NotFound("no resources to read")
			}
			uri = resources[0].URI
		}
		if _, err := s.Session.ReadResource(ctx, uri); err != nil {
			return "", err
		}
		return uri, nil

	case StrategyCapabilityList:
		_, err := s.Session.ListTools(ctx)
		return "", err
	}

	return "", errors.Internal("no probe for strategy " + string(strategy))
}

func (s *KeptSession) callProbeTool(ctx context.Context, name string) error {
	result, err := s.Session.CallTool(ctx, name, nil)
	if err != nil {
		return err
	}
	if result != nil && result.IsError {
		return errors.Newf(errors.ErrCodeInternal, "probe tool %s reported error", name)
	}
	return nil
}

// selectStrategy picks the cheapest viable heartbeat mechanism, in order:
// a reserved probe tool, a readable resource, then tool re-listing. If
// enumeration itself fails the session is already dead and keep-alive
// resolves to disabled.
func (s *KeptSession) selectStrategy(ctx context.Context) (strategy Strategy, tool, uri, detail string) {
	tools, err := s.Session.ListTools(ctx)
	if err != nil {
		return StrategyDisabled, "", "", "capability enumeration failed: " + err.Error()
	}

	for _, name := range []string{probeToolPrimary, probeToolAlias} {
		for _, t := range tools {
			if t.Name == name {
				return StrategyProbeOp, name, "", "matched tool " + name
			}
		}
	}

	resources, err := s.Session.ListResources(ctx)
	if err == nil && len(resources) > 0 {
		return StrategyResourceRead, "", resources[0].URI, "reading " + resources[0].URI
	}

	return StrategyCapabilityList, "", "", "no probe tool or resources; re-listing tools"
}
