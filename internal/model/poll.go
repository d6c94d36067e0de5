package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type PollStatus string

const (
	PollActive PollStatus = "active"
	PollClosed PollStatus = "closed"
)

// Option labels are positional letters, so a poll can hold at most 26 options.
const MaxOptions = 26

var (
	ErrInvalidPoll     = errors.New("invalid poll")
	ErrPollClosed      = errors.New("poll is closed")
	ErrUnknownOption   = errors.New("unknown option")
	ErrAlreadyAnswered = errors.New("already answered")
)

// Poll is the single current poll and its running tally. Tally keys are
// option labels ("A", "B", ...); Responses maps participant id to the
// label that participant chose.
type Poll struct {
	ID           string            `json:"id"`
	Question     string            `json:"question"`
	Options      []string          `json:"options"`
	Status       PollStatus        `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	ClosedAt     *time.Time        `json:"closedAt,omitempty"`
	TimeLimitSec int               `json:"timeLimitSeconds"`
	Tally        map[string]int    `json:"tally"`
	Responses    map[string]string `json:"responses"`

	log    []Response
	record *PollRecord
}

// Response is one participant's answer as it went into the tally.
type Response struct {
	ParticipantID string    `json:"participantId"`
	Name          string    `json:"name"`
	Option        string    `json:"option"`
	AnsweredAt    time.Time `json:"answeredAt"`
}

// PollRecord is the immutable history entry produced when a poll closes.
type PollRecord struct {
	Poll      Poll       `json:"poll"`
	Responses []Response `json:"responses"`
}

// NewPoll validates the question and options and returns an active poll
// with every tally entry initialized to zero.
func NewPoll(id, question string, options []string, timeLimitSec int) (*Poll, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", ErrInvalidPoll)
	}
	if len(options) < 2 {
		return nil, fmt.Errorf("%w: a poll needs at least 2 options", ErrInvalidPoll)
	}
	if len(options) > MaxOptions {
		return nil, fmt.Errorf("%w: a poll supports at most %d options", ErrInvalidPoll, MaxOptions)
	}
	for i, opt := range options {
		if strings.TrimSpace(opt) == "" {
			return nil, fmt.Errorf("%w: option %d is empty", ErrInvalidPoll, i+1)
		}
	}
	if timeLimitSec <= 0 {
		return nil, fmt.Errorf("%w: time limit must be positive", ErrInvalidPoll)
	}

	p := &Poll{
		ID:           id,
		Question:     question,
		Options:      append([]string(nil), options...),
		Status:       PollActive,
		CreatedAt:    time.Now(),
		TimeLimitSec: timeLimitSec,
		Tally:        make(map[string]int, len(options)),
		Responses:    make(map[string]string),
	}
	for i := range options {
		p.Tally[OptionLabel(i)] = 0
	}
	return p, nil
}

// OptionLabel derives the positional label for an option index: 'A' for
// index 0, 'B' for 1, and so on.
func OptionLabel(i int) string {
	return string(rune('A' + i))
}

// Labels returns the poll's option labels in option order.
func (p *Poll) Labels() []string {
	labels := make([]string, len(p.Options))
	for i := range p.Options {
		labels[i] = OptionLabel(i)
	}
	return labels
}

// RecordAnswer counts one participant's answer. It rejects labels the
// poll does not have and participants who already answered, leaving the
// tally untouched in both cases.
func (p *Poll) RecordAnswer(participantID, name, label string) error {
	if p.Status != PollActive {
		return ErrPollClosed
	}
	if _, ok := p.Tally[label]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOption, label)
	}
	if _, ok := p.Responses[participantID]; ok {
		return ErrAlreadyAnswered
	}

	p.Tally[label]++
	p.Responses[participantID] = label
	p.log = append(p.log, Response{
		ParticipantID: participantID,
		Name:          name,
		Option:        label,
		AnsweredAt:    time.Now(),
	})
	return nil
}

// ResponseCount reports how many distinct participants have answered.
func (p *Poll) ResponseCount() int {
	return len(p.Responses)
}

// Close transitions the poll to closed and materializes its history
// record. Closing an already-closed poll returns the existing record
// unchanged, so multiple close triggers cannot double-account.
func (p *Poll) Close() *PollRecord {
	if p.record != nil {
		return p.record
	}
	now := time.Now()
	p.Status = PollClosed
	p.ClosedAt = &now
	p.record = &PollRecord{
		Poll:      *p.Snapshot(),
		Responses: append([]Response(nil), p.log...),
	}
	return p.record
}

// Snapshot returns a deep copy safe to hand to the gateway while the
// original keeps mutating.
func (p *Poll) Snapshot() *Poll {
	cp := *p
	cp.Options = append([]string(nil), p.Options...)
	cp.Tally = make(map[string]int, len(p.Tally))
	for k, v := range p.Tally {
		cp.Tally[k] = v
	}
	cp.Responses = make(map[string]string, len(p.Responses))
	for k, v := range p.Responses {
		cp.Responses[k] = v
	}
	cp.log = nil
	cp.record = nil
	return &cp
}
