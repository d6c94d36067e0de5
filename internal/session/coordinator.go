package session

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"classpulse/internal/model"
)

// Config carries the coordinator's tunables.
type Config struct {
	// DefaultTimeLimitSec is used when create_poll carries no time limit.
	DefaultTimeLimitSec int
	// CloseGraceDelay is how long the coordinator waits after the last
	// connected participant answers before closing the poll, so the
	// final results broadcast can render first.
	CloseGraceDelay time.Duration
}

// Coordinator owns the session state: the roster, the single current
// poll, and the history of closed polls. Every inbound action and timer
// firing runs as a queued task on one goroutine, strictly one at a
// time, so no two mutations can interleave and no locks are needed on
// the shared state.
type Coordinator struct {
	registry *Registry
	history  *History
	gateway  Broadcaster
	cfg      Config
	log      zerolog.Logger

	tasks chan task
	quit  chan struct{}
	done  chan struct{}
	stop  sync.Once

	// Owned by the run goroutine.
	current    *model.Poll
	pollSeq    int64
	closeTimer *time.Timer
	graceTimer *time.Timer
}

type task struct {
	fn   func()
	done chan struct{}
}

// NewCoordinator creates a coordinator and starts its task loop.
func NewCoordinator(gateway Broadcaster, cfg Config, logger zerolog.Logger) *Coordinator {
	c := &Coordinator{
		registry: NewRegistry(),
		history:  NewHistory(),
		gateway:  gateway,
		cfg:      cfg,
		log:      logger,
		tasks:    make(chan task, 64),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Coordinator) run() {
	defer close(c.done)
	for {
		select {
		case t := <-c.tasks:
			t.fn()
			close(t.done)
		case <-c.quit:
			c.stopTimers()
			return
		}
	}
}

// do enqueues a task and waits for the loop to finish it, so callers
// observe one strict global order of operations.
func (c *Coordinator) do(fn func()) {
	t := task{fn: fn, done: make(chan struct{})}
	select {
	case c.tasks <- t:
		select {
		case <-t.done:
		case <-c.quit:
		}
	case <-c.quit:
	}
}

// Stop halts the task loop and cancels any pending timers.
func (c *Coordinator) Stop() {
	c.stop.Do(func() { close(c.quit) })
	<-c.done
}

// Register validates a display name and, on success, announces the
// updated roster to everyone. A late joiner is replayed the in-progress
// poll so it can still answer.
func (c *Coordinator) Register(connID, name string) {
	c.do(func() { c.register(connID, name) })
}

// CreatePoll starts a new poll unless one is already active and arms
// its auto-close timer. A non-positive time limit falls back to the
// configured default.
func (c *Coordinator) CreatePoll(connID, question string, options []string, timeLimitSec int) {
	c.do(func() { c.createPoll(connID, question, options, timeLimitSec) })
}

// SubmitAnswer records one answer for the sender and broadcasts the
// updated tally.
func (c *Coordinator) SubmitAnswer(connID, label string) {
	c.do(func() { c.submitAnswer(connID, label) })
}

// ClosePoll closes the current poll if one is active; otherwise it is a
// silent no-op.
func (c *Coordinator) ClosePoll(connID string) {
	c.do(func() {
		if c.current == nil || c.current.Status != model.PollActive {
			return
		}
		c.closeCurrent(c.current.ID)
	})
}

// Kick notifies the target it was removed, drops it from the roster,
// and announces the new roster. An already-recorded answer stays in the
// tally.
func (c *Coordinator) Kick(connID, targetID string) {
	c.do(func() { c.kick(targetID) })
}

// Disconnect handles a transport-level departure: silent roster removal
// plus a roster broadcast. The freed name becomes available at once.
func (c *Coordinator) Disconnect(connID string) {
	c.do(func() { c.disconnect(connID) })
}

// PollStatus replies to the sender with the current poll snapshot and
// counts. No broadcast, no mutation.
func (c *Coordinator) PollStatus(connID string) {
	c.do(func() {
		c.gateway.SendTo(connID, EvtPollStatus, c.status())
	})
}

// StudentsList replies to the sender with the roster snapshot.
func (c *Coordinator) StudentsList(connID string) {
	c.do(func() {
		c.gateway.SendTo(connID, EvtStudentsList, StudentsList{Students: c.registry.All()})
	})
}

// SendChat relays a chat message to everyone. Unregistered senders are
// attributed to the facilitator.
func (c *Coordinator) SendChat(connID, text string) {
	c.do(func() { c.sendChat(connID, text) })
}

// Status returns the poll-status snapshot for REST reads.
func (c *Coordinator) Status() PollStatus {
	var out PollStatus
	c.do(func() { out = c.status() })
	return out
}

// HistorySnapshot returns the closed-poll records in append order.
func (c *Coordinator) HistorySnapshot() []model.PollRecord {
	var out []model.PollRecord
	c.do(func() { out = c.history.All() })
	return out
}

func (c *Coordinator) register(connID, name string) {
	p, err := c.registry.Register(connID, name)
	if err != nil {
		c.gateway.SendTo(connID, EvtRegistrationError, ErrorPayload{Message: err.Error()})
		return
	}

	c.gateway.SendTo(connID, EvtRegistrationSuccess, RegistrationSuccess{Name: p.Name})
	c.broadcastRoster()

	if c.current != nil && c.current.Status == model.PollActive {
		c.gateway.SendTo(connID, EvtNewPoll, NewPoll{Poll: c.current.Snapshot()})
	}
	c.log.Info().Str("conn", connID).Str("name", name).Msg("student registered")
}

func (c *Coordinator) createPoll(connID, question string, options []string, timeLimitSec int) {
	if c.current != nil && c.current.Status == model.PollActive {
		c.gateway.SendTo(connID, EvtPollError, ErrorPayload{Message: ErrPollActive.Error()})
		return
	}
	if timeLimitSec <= 0 {
		timeLimitSec = c.cfg.DefaultTimeLimitSec
	}

	id := strconv.FormatInt(c.pollSeq+1, 10)
	poll, err := model.NewPoll(id, question, options, timeLimitSec)
	if err != nil {
		c.gateway.SendTo(connID, EvtPollError, ErrorPayload{Message: err.Error()})
		return
	}
	c.pollSeq++
	c.stopTimers()
	c.current = poll

	c.gateway.BroadcastToAll(EvtNewPoll, NewPoll{Poll: poll.Snapshot()})

	// The timer captures the poll's identity, not the mutable current
	// pointer: a stale firing after this poll was superseded must not
	// close its successor.
	pollID := poll.ID
	c.closeTimer = time.AfterFunc(time.Duration(timeLimitSec)*time.Second, func() {
		c.do(func() { c.closeCurrent(pollID) })
	})

	c.log.Info().Str("poll", poll.ID).Str("question", poll.Question).Int("timeLimitSec", timeLimitSec).Msg("poll created")
}

func (c *Coordinator) submitAnswer(connID, label string) {
	if c.current == nil || c.current.Status != model.PollActive {
		c.gateway.SendTo(connID, EvtAnswerError, ErrorPayload{Message: ErrNoActivePoll.Error()})
		return
	}
	p := c.registry.Get(connID)
	if p == nil {
		c.gateway.SendTo(connID, EvtAnswerError, ErrorPayload{Message: ErrNotRegistered.Error()})
		return
	}
	if err := c.current.RecordAnswer(connID, p.Name, label); err != nil {
		c.gateway.SendTo(connID, EvtAnswerError, ErrorPayload{Message: err.Error()})
		return
	}

	snap := c.current.Snapshot()
	c.gateway.BroadcastToAll(EvtPollResultsUpdate, PollResultsUpdate{
		Tally:          snap.Tally,
		TotalResponses: snap.ResponseCount(),
		TotalStudents:  c.registry.Count(),
	})
	c.log.Info().Str("conn", connID).Str("name", p.Name).Str("option", label).Msg("answer submitted")

	c.maybeCloseAllAnswered()
}

func (c *Coordinator) kick(targetID string) {
	p := c.registry.Remove(targetID)
	if p == nil {
		return
	}
	c.gateway.SendTo(targetID, EvtKicked, struct{}{})
	c.broadcastRoster()
	c.log.Info().Str("conn", targetID).Str("name", p.Name).Msg("student kicked")

	c.maybeCloseAllAnswered()
}

func (c *Coordinator) disconnect(connID string) {
	p := c.registry.Remove(connID)
	if p == nil {
		return
	}
	c.broadcastRoster()
	c.log.Info().Str("conn", connID).Str("name", p.Name).Msg("student disconnected")

	// The departure shrinks the everyone-answered denominator, so the
	// remaining respondents may now satisfy it.
	c.maybeCloseAllAnswered()
}

func (c *Coordinator) sendChat(connID, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	sender := "Teacher"
	if p := c.registry.Get(connID); p != nil {
		sender = p.Name
	}
	c.gateway.BroadcastToAll(EvtChatMessage, ChatMessage{
		Sender:   sender,
		Text:     text,
		SenderID: connID,
	})
}

// maybeCloseAllAnswered arms the grace-delay close when every currently
// connected participant has answered the active poll.
func (c *Coordinator) maybeCloseAllAnswered() {
	if c.current == nil || c.current.Status != model.PollActive {
		return
	}
	if c.registry.Count() == 0 || c.current.ResponseCount() == 0 {
		return
	}
	if c.current.ResponseCount() < c.registry.Count() {
		return
	}
	if c.graceTimer != nil {
		return
	}

	pollID := c.current.ID
	c.graceTimer = time.AfterFunc(c.cfg.CloseGraceDelay, func() {
		c.do(func() { c.closeCurrent(pollID) })
	})
}

// closeCurrent is the single funnel for every close trigger. It only
// acts when the identified poll is still the current active one, which
// makes closing idempotent and immune to stale timers.
func (c *Coordinator) closeCurrent(pollID string) {
	if c.current == nil || c.current.ID != pollID || c.current.Status != model.PollActive {
		return
	}
	c.stopTimers()

	rec := c.current.Close()
	c.history.Append(*rec)

	c.gateway.BroadcastToAll(EvtPollClosed, PollClosed{
		Poll:           c.current.Snapshot(),
		FinalTally:     rec.Poll.Tally,
		TotalResponses: len(rec.Responses),
		TotalStudents:  c.registry.Count(),
	})
	c.log.Info().Str("poll", pollID).Int("responses", len(rec.Responses)).Msg("poll closed")
}

func (c *Coordinator) broadcastRoster() {
	c.gateway.BroadcastToAll(EvtStudentsUpdate, StudentsUpdate{
		Count:    c.registry.Count(),
		Students: c.registry.All(),
	})
}

func (c *Coordinator) status() PollStatus {
	st := PollStatus{StudentCount: c.registry.Count()}
	if c.current != nil {
		st.CurrentPoll = c.current.Snapshot()
		st.ResponseCount = c.current.ResponseCount()
	}
	return st
}

func (c *Coordinator) stopTimers() {
	if c.closeTimer != nil {
		c.closeTimer.Stop()
		c.closeTimer = nil
	}
	if c.graceTimer != nil {
		c.graceTimer.Stop()
		c.graceTimer = nil
	}
}
