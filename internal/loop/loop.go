package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/WolfTailVale/ItemCreator/internal/telemetry"
	"github.com/WolfTailVale/ItemCreator/logging"
)

const (
	// RejectQueueLimit means the actor already has PerActorLimit commands staged.
	RejectQueueLimit = "queue_limit"
	// RejectQueueFull means the shared ring is saturated.
	RejectQueueFull = "queue_full"

	defaultTickRate = 20
)

// Core consumes the commands drained on each tick.
type Core interface {
	Apply(tick uint64, cmds []Command)
}

// Config tunes the ring buffer and the tick rate.
type Config struct {
	TickRate        int
	CommandCapacity int
	PerActorLimit   int
	WarningStep     int
}

// Deps carries the ambient collaborators.
type Deps struct {
	Logger  telemetry.Logger
	Metrics telemetry.Metrics
	Clock   logging.Clock
}

// Hooks observe the loop. All are optional.
type Hooks struct {
	AfterStep      func(StepResult)
	OnCommandDrop  func(reason string, cmd Command)
	OnQueueWarning func(length int)
}

// StepResult describes one tick.
type StepResult struct {
	Tick     uint64
	Now      time.Time
	Commands []Command
	Duration time.Duration
	Budget   time.Duration
}

// Loop owns the command ring and drives Core at a fixed rate.
type Loop struct {
	core    Core
	buffer  *CommandBuffer
	hooks   Hooks
	config  Config
	logger  telemetry.Logger
	metrics telemetry.Metrics
	clock   logging.Clock
	tick    atomic.Uint64

	queueMu       sync.Mutex
	perActorCount map[string]int
	dropCounts    map[string]uint64
}

func New(core Core, cfg Config, deps Deps, hooks Hooks) *Loop {
	if core == nil {
		return nil
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = defaultTickRate
	}
	clock := deps.Clock
	if clock == nil {
		clock = logging.ClockFunc(time.Now)
	}
	return &Loop{
		core:          core,
		buffer:        NewCommandBuffer(cfg.CommandCapacity, deps.Metrics),
		hooks:         hooks,
		config:        cfg,
		logger:        deps.Logger,
		metrics:       deps.Metrics,
		clock:         clock,
		perActorCount: make(map[string]int),
		dropCounts:    make(map[string]uint64),
	}
}

// Tick reports the last completed tick.
func (l *Loop) Tick() uint64 {
	if l == nil {
		return 0
	}
	return l.tick.Load()
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	return l.buffer.Len()
}

// Enqueue stages cmd for the next tick. It reports false and a reject reason
// when the actor is throttled or the ring is full.
func (l *Loop) Enqueue(cmd Command) (bool, string) {
	if l == nil {
		return false, RejectQueueFull
	}
	if cmd.OriginTick == 0 {
		cmd.OriginTick = l.Tick()
	}
	if cmd.IssuedAt.IsZero() {
		cmd.IssuedAt = l.clock.Now()
	}

	reason := ""
	var dropCount uint64
	warnAt := 0
	l.queueMu.Lock()
	if l.config.PerActorLimit > 0 && cmd.ActorID != "" {
		count := l.perActorCount[cmd.ActorID]
		if count >= l.config.PerActorLimit {
			reason = RejectQueueLimit
			dropCount = l.incrementDropLocked(cmd.ActorID)
		} else {
			l.perActorCount[cmd.ActorID] = count + 1
		}
	}
	if reason == "" {
		if !l.buffer.Push(cmd) {
			reason = RejectQueueFull
			dropCount = l.incrementDropLocked(cmd.ActorID)
			if l.config.PerActorLimit > 0 && cmd.ActorID != "" {
				l.perActorCount[cmd.ActorID]--
			}
		} else if step := l.config.WarningStep; step > 0 {
			if length := l.buffer.Len(); length >= step && length%step == 0 {
				warnAt = length
			}
		}
	}
	l.queueMu.Unlock()

	if reason != "" {
		l.reportDrop(reason, cmd, dropCount)
		return false, reason
	}
	if warnAt > 0 && l.hooks.OnQueueWarning != nil {
		l.hooks.OnQueueWarning(warnAt)
	}
	return true, ""
}

// Advance drains the ring into Core as one tick.
func (l *Loop) Advance(now time.Time) StepResult {
	if l == nil {
		return StepResult{}
	}
	tick := l.tick.Load() + 1
	commands := l.drainCommands()
	start := l.clock.Now()
	l.core.Apply(tick, commands)
	l.tick.Store(tick)
	if l.metrics != nil {
		l.metrics.Add("loop_ticks_total", 1)
		l.metrics.Add("loop_commands_total", uint64(len(commands)))
	}
	return StepResult{
		Tick:     tick,
		Now:      now,
		Commands: commands,
		Duration: l.clock.Now().Sub(start),
		Budget:   time.Second / time.Duration(l.config.TickRate),
	}
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	if l == nil {
		return
	}
	ticker := time.NewTicker(time.Second / time.Duration(l.config.TickRate))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result := l.Advance(l.clock.Now())
			if result.Duration > result.Budget && l.logger != nil {
				l.logger.Printf("[loop] tick %d took %s (budget %s)", result.Tick, result.Duration, result.Budget)
			}
			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(result)
			}
		}
	}
}

func (l *Loop) drainCommands() []Command {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	commands := l.buffer.Drain()
	if len(l.perActorCount) > 0 {
		clear(l.perActorCount)
	}
	return commands
}

func (l *Loop) incrementDropLocked(actorID string) uint64 {
	if actorID == "" {
		return 0
	}
	count := l.dropCounts[actorID] + 1
	l.dropCounts[actorID] = count
	return count
}

func (l *Loop) reportDrop(reason string, cmd Command, count uint64) {
	if l.hooks.OnCommandDrop != nil {
		l.hooks.OnCommandDrop(reason, cmd)
	}
	// Log on powers of two so a flooding client cannot flood the log.
	if count > 0 && count&(count-1) == 0 && l.logger != nil {
		l.logger.Printf(
			"[backpressure] dropping command actor=%s type=%s reason=%s count=%d limit=%d",
			cmd.ActorID,
			cmd.Type,
			reason,
			count,
			l.config.PerActorLimit,
		)
	}
}
