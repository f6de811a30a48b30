package sampler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/robfig/cron/v3"

	"pewsched/internal/eventbus"
	"pewsched/internal/rules"
	"pewsched/internal/storage"
	logx "pewsched/pkg/logx"
)

const DefaultSpec = "@every 1m"

var specParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Config struct {
	Enabled  bool
	Spec     string
	Location *time.Location // nil means time.Local
}

// Change is a rule whose state differs from the previous sample.
// Initial is set the first time a rule is observed.
type Change struct {
	Rule    string
	Active  bool
	Initial bool
}

type Service struct {
	log   logx.Logger
	bus   eventbus.Bus
	store storage.Store
	now   func() time.Time

	mu   sync.Mutex
	cfg  Config
	set  *rules.Set
	last map[string]bool
	at   civil.DateTime // last sample
	c    *cron.Cron
	ctx  context.Context
	// running is set between Start and Stop; c may be briefly nil while
	// Apply swaps crons.
	running bool
	halt    chan struct{} // closed by Stop

	onRestart func() // test hook, runs while Apply has the lock released
}

// New creates a stopped sampler. bus and store may be nil.
func New(cfg Config, set *rules.Set, log logx.Logger, bus eventbus.Bus, store storage.Store) *Service {
	return &Service{
		log:   log,
		bus:   bus,
		store: store,
		now:   time.Now,
		cfg:   cfg,
		set:   set,
		last:  map[string]bool{},
	}
}

func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Enabled
}

// ValidateSpec reports whether spec is a usable tick spec. Empty is valid
// (DefaultSpec is used).
func ValidateSpec(spec string) error {
	norm, err := NormalizeSpec(spec)
	if err != nil {
		return fmt.Errorf("sampler.spec: %w", err)
	}
	if _, err := specParser.Parse(norm); err != nil {
		return fmt.Errorf("sampler.spec: invalid %q: %w", spec, err)
	}
	return nil
}

// Seed loads the last journaled state of each rule so a restart does not
// re-announce states that did not change while the daemon was down.
func (s *Service) Seed(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	last, err := s.store.LastStates(ctx)
	if err != nil {
		return fmt.Errorf("seed from journal: %w", err)
	}
	s.mu.Lock()
	for name, active := range last {
		if _, ok := s.set.Get(name); ok {
			s.last[name] = active
		}
	}
	s.mu.Unlock()
	s.log.Debug("sampler seeded from journal", logx.Int("rules", len(last)))
	return nil
}

// Start samples once immediately, then on every tick until ctx is done or
// Stop is called.
func (s *Service) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.ctx = ctx
	if err := s.startCronLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.running = true
	halt := make(chan struct{})
	s.halt = halt
	spec, loc := s.specLocked(), s.locationLocked()
	s.mu.Unlock()

	s.log.Info("sampler started", logx.String("spec", spec), logx.Stringer("tz", loc))
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-halt:
		}
	}()
	s.Tick()
	return nil
}

func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.halt)
	s.halt = nil
	c := s.c
	s.c = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	s.log.Info("sampler stopped")
}

// Apply swaps config and rules. A running cron is restarted when the spec
// or zone changed. States of removed rules are forgotten.
func (s *Service) Apply(cfg Config, set *rules.Set) error {
	if err := ValidateSpec(cfg.Spec); err != nil {
		return err
	}

	s.mu.Lock()
	prevSpec, prevLoc := s.specLocked(), locName(s.cfg.Location)
	s.cfg = cfg
	spec := s.specLocked()
	restart := s.running && s.c != nil && (spec != prevSpec || locName(cfg.Location) != prevLoc)
	s.set = set
	for name := range s.last {
		if _, ok := set.Get(name); !ok {
			delete(s.last, name)
		}
	}
	var err error
	if restart {
		old := s.c
		s.c = nil
		// Stop returns once running jobs finish; jobs take s.mu, so wait
		// outside the lock.
		s.mu.Unlock()
		<-old.Stop().Done()
		if s.onRestart != nil {
			s.onRestart()
		}
		s.mu.Lock()
		// Stop may have run meanwhile; a later Start owns the cron then.
		if s.running && s.c == nil {
			err = s.startCronLocked()
		}
	}
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(eventbus.Event{Type: eventbus.TypeRulesApplied, Data: set.Names()})
	}
	if restart {
		s.log.Info("sampler restarted", logx.String("spec", spec), logx.String("tz", locName(cfg.Location)))
	}
	return err
}

func (s *Service) startCronLocked() error {
	c := cron.New(cron.WithParser(specParser), cron.WithLocation(s.locationLocked()))
	if _, err := c.AddFunc(s.specLocked(), s.Tick); err != nil {
		return fmt.Errorf("sampler.spec: %w", err)
	}
	c.Start()
	s.c = c
	return nil
}

func (s *Service) specLocked() string {
	if spec, err := NormalizeSpec(s.cfg.Spec); err == nil {
		return spec
	}
	return DefaultSpec
}

func (s *Service) locationLocked() *time.Location {
	if s.cfg.Location != nil {
		return s.cfg.Location
	}
	return time.Local
}

func locName(loc *time.Location) string {
	if loc == nil {
		return time.Local.String()
	}
	return loc.String()
}

// Tick samples the current wall clock in the configured zone.
func (s *Service) Tick() {
	s.mu.Lock()
	loc := s.locationLocked()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	s.SampleAt(ctx, civil.DateTimeOf(s.now().In(loc)))
}

// SampleAt evaluates every rule at dt and reports the changes. Changes are
// published on the bus and appended to the journal.
func (s *Service) SampleAt(ctx context.Context, dt civil.DateTime) []Change {
	s.mu.Lock()
	states := s.set.Eval(dt)
	var changes []Change
	for _, st := range states {
		prev, seen := s.last[st.Rule]
		if seen && prev == st.Active {
			continue
		}
		s.last[st.Rule] = st.Active
		changes = append(changes, Change{Rule: st.Rule, Active: st.Active, Initial: !seen})
	}
	s.at = dt
	s.mu.Unlock()

	when := s.now()
	for _, ch := range changes {
		s.log.Info("rule transition",
			logx.String("rule", ch.Rule),
			logx.Bool("active", ch.Active),
			logx.Bool("initial", ch.Initial),
			logx.Stringer("at", dt),
		)
		if s.bus != nil {
			s.bus.Publish(eventbus.Event{
				Type: eventbus.TypeTransition,
				Time: when,
				Data: eventbus.Transition{Rule: ch.Rule, Active: ch.Active, At: dt.String()},
			})
		}
		if s.store != nil {
			err := s.store.AppendTransition(ctx, storage.Transition{At: when, Civil: dt.String(), Rule: ch.Rule, Active: ch.Active})
			if err != nil {
				s.log.Warn("journal append failed", logx.String("rule", ch.Rule), logx.Err(err))
			}
		}
	}
	return changes
}

// Snapshot returns the last sampled state of every rule, in rule order,
// and the civil date-time of that sample. Rules not sampled yet are
// omitted.
func (s *Service) Snapshot() ([]rules.State, civil.DateTime) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]rules.State, 0, len(s.last))
	for _, name := range s.set.Names() {
		if active, ok := s.last[name]; ok {
			out = append(out, rules.State{Rule: name, Active: active})
		}
	}
	return out, s.at
}
