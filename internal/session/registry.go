package session

import (
	"time"

	"classpulse/internal/model"
)

// MaxNameLength bounds a participant's display name.
const MaxNameLength = 50

// Registry tracks currently connected participants keyed by connection
// id and enforces display-name uniqueness among them. It holds no
// locking of its own: all access is serialized through the coordinator
// goroutine.
type Registry struct {
	byID  map[string]*model.Participant
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]*model.Participant),
	}
}

// Register adds a participant under the requested name. A name is only
// compared against currently connected participants, so a name freed by
// a disconnect is immediately reusable. Comparison is case-sensitive.
func (r *Registry) Register(connID, name string) (*model.Participant, error) {
	if len(name) == 0 || len(name) > MaxNameLength {
		return nil, ErrInvalidName
	}
	for _, p := range r.byID {
		if p.Name == name {
			return nil, ErrNameTaken
		}
	}

	p := &model.Participant{
		ID:       connID,
		Name:     name,
		JoinedAt: time.Now(),
	}
	r.byID[connID] = p
	r.order = append(r.order, connID)
	return p, nil
}

// Remove deletes and returns the participant, or nil if the connection
// was never registered.
func (r *Registry) Remove(connID string) *model.Participant {
	p, ok := r.byID[connID]
	if !ok {
		return nil
	}
	delete(r.byID, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p
}

func (r *Registry) Get(connID string) *model.Participant {
	return r.byID[connID]
}

// All returns the connected participants in join order.
func (r *Registry) All() []*model.Participant {
	out := make([]*model.Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

func (r *Registry) Count() int {
	return len(r.byID)
}
