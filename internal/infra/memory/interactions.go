package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xavierca1/leadflow/internal/entity"
)

type InteractionRepository struct {
	mu    sync.RWMutex
	items map[string]*entity.Interaction
}

func NewInteractionRepository() *InteractionRepository {
	return &InteractionRepository{items: map[string]*entity.Interaction{}}
}

func (r *InteractionRepository) Create(_ context.Context, it *entity.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *it
	r.items[it.ID] = &c
	return nil
}

func (r *InteractionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *InteractionRepository) ListByLeadID(_ context.Context, leadID string) ([]*entity.Interaction, error) {
	return r.filter(func(it *entity.Interaction) bool { return it.LeadID == leadID }), nil
}

func (r *InteractionRepository) ListWithFollowUps(_ context.Context) ([]*entity.Interaction, error) {
	return r.filter(func(it *entity.Interaction) bool {
		return it.FollowUpDateTime != nil || it.CallStatus == entity.CallFollowUpNeeded
	}), nil
}

func (r *InteractionRepository) filter(keep func(*entity.Interaction) bool) []*entity.Interaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entity.Interaction{}
	for _, it := range r.items {
		if keep(it) {
			c := *it
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
