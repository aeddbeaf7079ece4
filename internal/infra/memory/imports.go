package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/leadflow/internal/entity"
)

type ConfigurationRepository struct {
	mu      sync.RWMutex
	configs map[string]*entity.SourceConfiguration
}

func NewConfigurationRepository() *ConfigurationRepository {
	return &ConfigurationRepository{configs: map[string]*entity.SourceConfiguration{}}
}

func (r *ConfigurationRepository) Create(_ context.Context, cfg *entity.SourceConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg.IsActive {
		for _, c := range r.configs {
			c.IsActive = false
		}
	}
	c := *cfg
	r.configs[cfg.ID] = &c
	return nil
}

func (r *ConfigurationRepository) FindByID(_ context.Context, id string) (*entity.SourceConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.configs[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (r *ConfigurationRepository) FindActive(_ context.Context) (*entity.SourceConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var active *entity.SourceConfiguration
	for _, c := range r.configs {
		if c.IsActive && (active == nil || c.CreatedAt.After(active.CreatedAt)) {
			active = c
		}
	}
	if active == nil {
		return nil, entity.ErrNotFound
	}
	out := *active
	return &out, nil
}

func (r *ConfigurationRepository) Update(_ context.Context, id string, upd entity.ConfigurationUpdate) (*entity.SourceConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.configs[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	if upd.IsActive != nil {
		if *upd.IsActive {
			for _, other := range r.configs {
				other.IsActive = false
			}
		}
		c.IsActive = *upd.IsActive
	}
	if upd.PollIntervalMinutes != nil {
		c.PollIntervalMinutes = *upd.PollIntervalMinutes
	}
	c.UpdatedAt = time.Now().UTC()
	out := *c
	return &out, nil
}

type CursorRepository struct {
	mu      sync.RWMutex
	cursors map[string]*entity.ImportCursor
	// UpsertHook, when set, runs before each write and may fail it.
	UpsertHook func(cur *entity.ImportCursor) error
}

func NewCursorRepository() *CursorRepository {
	return &CursorRepository{cursors: map[string]*entity.ImportCursor{}}
}

func (r *CursorRepository) Find(_ context.Context, sourceID string) (*entity.ImportCursor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cursors[sourceID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (r *CursorRepository) Upsert(_ context.Context, cur *entity.ImportCursor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpsertHook != nil {
		if err := r.UpsertHook(cur); err != nil {
			return err
		}
	}
	c := *cur
	if prev, ok := r.cursors[cur.SourceID]; ok {
		if c.LastProcessedID == "" {
			c.LastProcessedID = prev.LastProcessedID
		}
		if c.LastProcessedTime == nil {
			c.LastProcessedTime = prev.LastProcessedTime
		}
	}
	r.cursors[cur.SourceID] = &c
	return nil
}

type ImportLogRepository struct {
	mu      sync.RWMutex
	entries []*entity.ImportLog
}

func NewImportLogRepository() *ImportLogRepository {
	return &ImportLogRepository{}
}

func (r *ImportLogRepository) Append(_ context.Context, entry *entity.ImportLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *entry
	c.Errors = append([]string{}, entry.Errors...)
	r.entries = append(r.entries, &c)
	return nil
}

func (r *ImportLogRepository) ListBySource(_ context.Context, sourceID string, limit int) ([]*entity.ImportLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entity.ImportLog{}
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].SourceID == sourceID {
			c := *r.entries[i]
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RunAt.After(out[j].RunAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
