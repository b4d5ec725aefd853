package main

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"watchvault/models"
)

// watchStore is the persistence contract for the watch resource and its
// photos. Lookups return (nil, nil) when no row matches, mirroring the
// session store contracts.
type watchStore interface {
	FindByID(ctx context.Context, id string) (*models.Watch, error)
	FindByReference(ctx context.Context, reference string) (*models.Watch, error)
	// List returns a page ordered by newest first, plus the total count for
	// the same filter. Empty userID means no ownership filter.
	List(ctx context.Context, take, skip int, userID string) ([]models.Watch, int64, error)
	Create(ctx context.Context, w *models.Watch) error
	Update(ctx context.Context, w *models.Watch) error
	Delete(ctx context.Context, id string) error
	AddPhoto(ctx context.Context, p *models.WatchPhoto) error
	PhotosByWatch(ctx context.Context, watchID string) ([]models.WatchPhoto, error)
}

type gormWatchStore struct {
	db *gorm.DB
}

func (s gormWatchStore) FindByID(ctx context.Context, id string) (*models.Watch, error) {
	var w models.Watch
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s gormWatchStore) FindByReference(ctx context.Context, reference string) (*models.Watch, error) {
	var w models.Watch
	err := s.db.WithContext(ctx).Where("reference = ?", reference).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s gormWatchStore) List(ctx context.Context, take, skip int, userID string) ([]models.Watch, int64, error) {
	filter := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Watch{})
		if userID != "" {
			q = q.Where("user_id = ?", userID)
		}
		return q
	}
	var count int64
	if err := filter().Count(&count).Error; err != nil {
		return nil, 0, err
	}
	var items []models.Watch
	if err := filter().Order("created_at desc").Limit(take).Offset(skip).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (s gormWatchStore) Create(ctx context.Context, w *models.Watch) error {
	return s.db.WithContext(ctx).Create(w).Error
}

func (s gormWatchStore) Update(ctx context.Context, w *models.Watch) error {
	return s.db.WithContext(ctx).Save(w).Error
}

func (s gormWatchStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Watch{}).Error
}

func (s gormWatchStore) AddPhoto(ctx context.Context, p *models.WatchPhoto) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s gormWatchStore) PhotosByWatch(ctx context.Context, watchID string) ([]models.WatchPhoto, error) {
	var photos []models.WatchPhoto
	if err := s.db.WithContext(ctx).Where("watch_id = ?", watchID).Order("id desc").Find(&photos).Error; err != nil {
		return nil, err
	}
	return photos, nil
}

// memWatchStore backs handler tests and the no-DSN development mode.
type memWatchStore struct {
	mu      sync.Mutex
	watches map[string]models.Watch
	photos  []models.WatchPhoto
	photoID uint
}

func newMemWatchStore() *memWatchStore {
	return &memWatchStore{watches: map[string]models.Watch{}}
}

func (s *memWatchStore) FindByID(_ context.Context, id string) (*models.Watch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.watches[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (s *memWatchStore) FindByReference(_ context.Context, reference string) (*models.Watch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.watches {
		if w.Reference == reference {
			w := w
			return &w, nil
		}
	}
	return nil, nil
}

func (s *memWatchStore) List(_ context.Context, take, skip int, userID string) ([]models.Watch, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.Watch
	for _, w := range s.watches {
		if userID == "" || w.UserID == userID {
			all = append(all, w)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	count := int64(len(all))
	if skip >= len(all) {
		return nil, count, nil
	}
	all = all[skip:]
	if take < len(all) {
		all = all[:take]
	}
	return all, count, nil
}

func (s *memWatchStore) Create(_ context.Context, w *models.Watch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now
	s.watches[w.ID] = *w
	return nil
}

func (s *memWatchStore) Update(_ context.Context, w *models.Watch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.UpdatedAt = time.Now()
	s.watches[w.ID] = *w
	return nil
}

func (s *memWatchStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watches, id)
	return nil
}

func (s *memWatchStore) AddPhoto(_ context.Context, p *models.WatchPhoto) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photoID++
	p.ID = s.photoID
	p.CreatedAt = time.Now()
	s.photos = append(s.photos, *p)
	return nil
}

func (s *memWatchStore) PhotosByWatch(_ context.Context, watchID string) ([]models.WatchPhoto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.WatchPhoto
	for i := len(s.photos) - 1; i >= 0; i-- {
		if s.photos[i].WatchID == watchID {
			out = append(out, s.photos[i])
		}
	}
	return out, nil
}
