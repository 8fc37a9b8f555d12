package repository

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	pushDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const maxDeliveredPerSubscriber = 500

// FileStorage implements Repository using JSON files: one document per
// subscriber, one JSON-lines log per subscriber, one capped archive per
// subscriber.
type FileStorage struct {
	subscribersPath string
	logsPath        string
	deliveredPath   string
	mu              sync.RWMutex
	closed          bool
}

// NewFileStorage creates a new file-based repository under basePath
func NewFileStorage(basePath string) (*FileStorage, error) {
	s := &FileStorage{
		subscribersPath: filepath.Join(basePath, "subscribers"),
		logsPath:        filepath.Join(basePath, "push_logs"),
		deliveredPath:   filepath.Join(basePath, "delivered"),
	}

	for _, dir := range []string{s.subscribersPath, s.logsPath, s.deliveredPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, oops.With("base_path", basePath, "directory", dir, "context", "failed to create storage directory").Wrap(err)
		}
	}

	return s, nil
}

func (s *FileStorage) SaveSubscriber(_ context.Context, subscriber *domain.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrStorageClosed
	}

	data, err := json.MarshalIndent(subscriber, "", "  ")
	if err != nil {
		return oops.With("subscriber_id", subscriber.ID, "context", "failed to marshal subscriber").Wrap(err)
	}

	return writeFileAtomic(filepath.Join(s.subscribersPath, fileName(subscriber.ID, ".json")), data)
}

func (s *FileStorage) GetSubscriber(_ context.Context, subscriberID string) (*domain.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errors.ErrStorageClosed
	}

	data, err := os.ReadFile(filepath.Join(s.subscribersPath, fileName(subscriberID, ".json")))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrSubscriberNotFound
		}
		return nil, oops.With("subscriber_id", subscriberID, "context", "failed to read subscriber").Wrap(err)
	}

	var subscriber domain.Subscriber
	if err := json.Unmarshal(data, &subscriber); err != nil {
		return nil, oops.With("subscriber_id", subscriberID, "context", "failed to unmarshal subscriber").Wrap(err)
	}

	return &subscriber, nil
}

func (s *FileStorage) ListEnabled(_ context.Context) ([]*domain.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errors.ErrStorageClosed
	}

	entries, err := os.ReadDir(s.subscribersPath)
	if err != nil {
		return nil, oops.With("directory", s.subscribersPath, "context", "failed to read subscribers directory").Wrap(err)
	}

	subscribers := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (*domain.Subscriber, bool) {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			return nil, false
		}

		data, err := os.ReadFile(filepath.Join(s.subscribersPath, entry.Name()))
		if err != nil {
			return nil, false
		}

		var subscriber domain.Subscriber
		if err := json.Unmarshal(data, &subscriber); err != nil {
			return nil, false
		}

		return &subscriber, subscriber.Enabled
	})

	return subscribers, nil
}

func (s *FileStorage) AppendPushLog(_ context.Context, entry *pushDomain.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrStorageClosed
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return oops.With("subscriber_id", entry.SubscriberID, "context", "failed to marshal push log").Wrap(err)
	}

	path := filepath.Join(s.logsPath, fileName(entry.SubscriberID, ".jsonl"))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return oops.With("subscriber_id", entry.SubscriberID, "context", "failed to open push log").Wrap(err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return oops.With("subscriber_id", entry.SubscriberID, "context", "failed to append push log").Wrap(err)
	}
	return nil
}

// RecentPushLogs returns up to limit entries, newest first
func (s *FileStorage) RecentPushLogs(_ context.Context, subscriberID string, limit int) ([]*pushDomain.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errors.ErrStorageClosed
	}

	data, err := os.ReadFile(filepath.Join(s.logsPath, fileName(subscriberID, ".jsonl")))
	if err != nil {
		if os.IsNotExist(err) {
			return []*pushDomain.LogEntry{}, nil
		}
		return nil, oops.With("subscriber_id", subscriberID, "context", "failed to read push log").Wrap(err)
	}

	var entries []*pushDomain.LogEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var entry pushDomain.LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, &entry)
	}

	entries = lo.Reverse(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *FileStorage) SaveDelivered(_ context.Context, subscriberID string, items []pushDomain.DeliveredItem) error {
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrStorageClosed
	}

	path := filepath.Join(s.deliveredPath, fileName(subscriberID, ".json"))
	existing, err := readDelivered(path)
	if err != nil {
		return oops.With("subscriber_id", subscriberID, "context", "failed to read delivered archive").Wrap(err)
	}

	// newest first, capped
	archive := append(lo.Reverse(append([]pushDomain.DeliveredItem(nil), items...)), existing...)
	if len(archive) > maxDeliveredPerSubscriber {
		archive = archive[:maxDeliveredPerSubscriber]
	}

	data, err := json.Marshal(archive)
	if err != nil {
		return oops.With("subscriber_id", subscriberID, "context", "failed to marshal delivered archive").Wrap(err)
	}
	return writeFileAtomic(path, data)
}

// RecentDelivered returns up to limit archived items, newest first
func (s *FileStorage) RecentDelivered(_ context.Context, subscriberID string, limit int) ([]*pushDomain.DeliveredItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errors.ErrStorageClosed
	}

	archive, err := readDelivered(filepath.Join(s.deliveredPath, fileName(subscriberID, ".json")))
	if err != nil {
		return nil, oops.With("subscriber_id", subscriberID, "context", "failed to read delivered archive").Wrap(err)
	}
	if limit > 0 && len(archive) > limit {
		archive = archive[:limit]
	}

	return lo.ToSlicePtr(archive), nil
}

func (s *FileStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func readDelivered(path string) ([]pushDomain.DeliveredItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var archive []pushDomain.DeliveredItem
	if err := json.Unmarshal(data, &archive); err != nil {
		return nil, err
	}
	return archive, nil
}

// writeFileAtomic replaces path via a temp file so readers never see a torn write
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// fileName escapes platform ids before using them as file names
func fileName(id, ext string) string {
	return url.PathEscape(id) + ext
}
