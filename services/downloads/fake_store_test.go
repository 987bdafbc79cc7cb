package downloads

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lac-hong-legacy/footage_api/dto"
	"github.com/lac-hong-legacy/footage_api/model"
)

var errStoreDown = errors.New("connection refused")

type fakeStore struct {
	mu            sync.Mutex
	subscriptions map[string]*model.Subscription
	planChanges   []*model.PlanChange
	history       map[string]*model.DownloadHistory
	counters      map[string]int

	failReads   bool
	failInsert  bool
	failCounter bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		subscriptions: map[string]*model.Subscription{},
		history:       map[string]*model.DownloadHistory{},
		counters:      map[string]int{},
	}
}

func historyKey(userID, videoID string) string {
	return userID + "|" + videoID
}

func (f *fakeStore) FindActiveSubscription(_ context.Context, userID string) (*model.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReads {
		return nil, errStoreDown
	}
	sub, ok := f.subscriptions[userID]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeStore) SaveSubscription(_ context.Context, sub *model.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *sub
	f.subscriptions[sub.UserID] = &cp
	return nil
}

func (f *fakeStore) RecordPlanChange(_ context.Context, change *model.PlanChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.planChanges = append(f.planChanges, change)
	return nil
}

func (f *fakeStore) CountDownloads(_ context.Context, userID string, since, until time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReads {
		return 0, errStoreDown
	}
	var n int64
	for _, rec := range f.history {
		if rec.UserID == userID && !rec.DownloadedAt.Before(since) && !rec.DownloadedAt.After(until) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) HasDownloaded(_ context.Context, userID, videoID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReads {
		return false, errStoreDown
	}
	_, ok := f.history[historyKey(userID, videoID)]
	return ok, nil
}

func (f *fakeStore) InsertDownloadRecord(_ context.Context, record *model.DownloadHistory) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return false, errStoreDown
	}
	key := historyKey(record.UserID, record.VideoID)
	if _, ok := f.history[key]; ok {
		return false, nil
	}
	cp := *record
	f.history[key] = &cp
	return true, nil
}

func (f *fakeStore) IncrementAssetCounter(_ context.Context, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCounter {
		return errors.New("counter update failed")
	}
	f.counters[videoID]++
	return nil
}

func (f *fakeStore) seedDownloads(userID string, at time.Time, videoIDs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, videoID := range videoIDs {
		f.history[historyKey(userID, videoID)] = &model.DownloadHistory{
			ID:           historyKey(userID, videoID),
			UserID:       userID,
			VideoID:      videoID,
			DownloadedAt: at,
		}
	}
}

func (f *fakeStore) historyLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.history)
}

func (f *fakeStore) counter(videoID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counters[videoID]
}

type fakeAssets map[string]string

func (a fakeAssets) ResolveAssetDownloadURL(_ context.Context, videoID string) (string, error) {
	return a[videoID], nil
}

type captureEvents struct {
	mu     sync.Mutex
	events []dto.AuditEvent
}

func (c *captureEvents) RecordEvent(_ context.Context, event dto.AuditEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureEvents) named(name string) []dto.AuditEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []dto.AuditEvent
	for _, e := range c.events {
		if e.Event == name {
			out = append(out, e)
		}
	}
	return out
}
