package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPollValidation(t *testing.T) {
	tests := []struct {
		name     string
		question string
		options  []string
		limit    int
		wantErr  bool
	}{
		{"valid", "Best color?", []string{"Red", "Blue"}, 60, false},
		{"empty question", "", []string{"Red", "Blue"}, 60, true},
		{"blank question", "   ", []string{"Red", "Blue"}, 60, true},
		{"one option", "Best color?", []string{"Red"}, 60, true},
		{"no options", "Best color?", nil, 60, true},
		{"blank option", "Best color?", []string{"Red", " "}, 60, true},
		{"zero time limit", "Best color?", []string{"Red", "Blue"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPoll("1", tt.question, tt.options, tt.limit)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPoll)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, PollActive, p.Status)
		})
	}
}

func TestNewPollRejectsMoreThanMaxOptions(t *testing.T) {
	options := make([]string, MaxOptions+1)
	for i := range options {
		options[i] = "option"
	}
	_, err := NewPoll("1", "Too many?", options, 60)
	assert.ErrorIs(t, err, ErrInvalidPoll)

	_, err = NewPoll("1", "Just enough?", options[:MaxOptions], 60)
	assert.NoError(t, err)
}

func TestNewPollInitializesTally(t *testing.T) {
	p, err := NewPoll("1", "Best color?", []string{"Red", "Blue", "Green"}, 60)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, p.Labels())
	assert.Len(t, p.Tally, 3)
	for _, label := range p.Labels() {
		assert.Zero(t, p.Tally[label])
	}
}

func TestOptionLabel(t *testing.T) {
	assert.Equal(t, "A", OptionLabel(0))
	assert.Equal(t, "B", OptionLabel(1))
	assert.Equal(t, "Z", OptionLabel(25))
}

func TestRecordAnswer(t *testing.T) {
	p, err := NewPoll("1", "Best color?", []string{"Red", "Blue"}, 60)
	require.NoError(t, err)

	require.NoError(t, p.RecordAnswer("conn-1", "Alice", "A"))
	assert.Equal(t, 1, p.Tally["A"])
	assert.Equal(t, "A", p.Responses["conn-1"])
	assert.Equal(t, 1, p.ResponseCount())
}

func TestRecordAnswerUnknownOption(t *testing.T) {
	p, _ := NewPoll("1", "Best color?", []string{"Red", "Blue"}, 60)

	err := p.RecordAnswer("conn-1", "Alice", "C")
	assert.ErrorIs(t, err, ErrUnknownOption)
	assert.Zero(t, p.ResponseCount())
}

func TestRecordAnswerTwiceRejected(t *testing.T) {
	p, _ := NewPoll("1", "Best color?", []string{"Red", "Blue"}, 60)

	require.NoError(t, p.RecordAnswer("conn-1", "Alice", "A"))
	err := p.RecordAnswer("conn-1", "Alice", "B")
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	// Rejected attempt leaves the tally untouched
	assert.Equal(t, 1, p.Tally["A"])
	assert.Zero(t, p.Tally["B"])
	assert.Equal(t, 1, p.ResponseCount())
}

func TestTallySumMatchesResponses(t *testing.T) {
	p, _ := NewPoll("1", "Best color?", []string{"Red", "Blue", "Green"}, 60)

	answers := map[string]string{"c1": "A", "c2": "B", "c3": "A", "c4": "C"}
	for id, label := range answers {
		require.NoError(t, p.RecordAnswer(id, "name-"+id, label))

		sum := 0
		for _, n := range p.Tally {
			sum += n
		}
		assert.Equal(t, p.ResponseCount(), sum)
	}
}

func TestRecordAnswerOnClosedPoll(t *testing.T) {
	p, _ := NewPoll("1", "Best color?", []string{"Red", "Blue"}, 60)
	p.Close()

	err := p.RecordAnswer("conn-1", "Alice", "A")
	assert.ErrorIs(t, err, ErrPollClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	p, _ := NewPoll("1", "Best color?", []string{"Red", "Blue"}, 60)
	require.NoError(t, p.RecordAnswer("conn-1", "Alice", "A"))

	first := p.Close()
	second := p.Close()

	assert.Same(t, first, second)
	assert.Equal(t, PollClosed, p.Status)
	require.NotNil(t, p.ClosedAt)
	require.Len(t, first.Responses, 1)
	assert.Equal(t, "Alice", first.Responses[0].Name)
	assert.Equal(t, "A", first.Responses[0].Option)
}

func TestSnapshotIsIsolated(t *testing.T) {
	p, _ := NewPoll("1", "Best color?", []string{"Red", "Blue"}, 60)
	require.NoError(t, p.RecordAnswer("conn-1", "Alice", "A"))

	snap := p.Snapshot()
	require.NoError(t, p.RecordAnswer("conn-2", "Bob", "A"))

	assert.Equal(t, 1, snap.Tally["A"])
	assert.Equal(t, 2, p.Tally["A"])
	assert.Len(t, snap.Responses, 1)
}
