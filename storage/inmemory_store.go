package storage

import (
	"context"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	UpdateBufferSize = 255
)

type InmemoryStore struct {
	mu          sync.Mutex
	values      []byte
	updateChans []chan *Update

	// sending is held for reading while updates are delivered outside mu.
	// Close takes it for writing before closing the update channels.
	sending sync.RWMutex

	// stop will be closed when Close() is called
	stop chan struct{}
}

func NewInmemoryStore() *InmemoryStore {
	return &InmemoryStore{
		values:      []byte(""),
		stop:        make(chan struct{}),
		updateChans: make([]chan *Update, 0),
	}
}

func (i *InmemoryStore) Close() error {
	i.mu.Lock()
	if !i.isRunning() {
		i.mu.Unlock()
		return nil
	}

	// Unblocks writers waiting on a full update channel
	close(i.stop)
	updateChans := i.updateChans
	i.mu.Unlock()

	i.sending.Lock()
	defer i.sending.Unlock()

	for _, updateChan := range updateChans {
		close(updateChan)
	}

	return nil
}

// Set writes value at key and tells every listener. Reads are not held up
// while a slow listener is being waited for.
func (i *InmemoryStore) Set(ctx context.Context, key []byte, value interface{}) error {
	i.mu.Lock()

	if !i.isRunning() {
		i.mu.Unlock()
		return ErrStoreClosed
	}

	values, err := sjson.SetBytes(i.values, string(key), value)
	if err != nil {
		i.mu.Unlock()
		return err
	}

	i.values = values

	update := &Update{
		Key:   key,
		Value: []byte(gjson.GetBytes(i.values, string(key)).Raw),
	}
	updateChans := append([]chan *Update{}, i.updateChans...)

	i.sending.RLock()
	i.mu.Unlock()
	defer i.sending.RUnlock()

	for _, updateChan := range updateChans {
		select {
		case updateChan <- update:
		case <-i.stop:
			return ErrStoreClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// Get returns the raw JSON at key, or nil when there is nothing there.
func (i *InmemoryStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	result := gjson.GetBytes(i.values, string(key))
	if !result.Exists() {
		return nil, nil
	}

	return []byte(result.Raw), nil
}

func (i *InmemoryStore) ListenToUpdates() <-chan *Update {
	i.mu.Lock()
	defer i.mu.Unlock()

	updateChan := make(chan *Update, UpdateBufferSize)
	if !i.isRunning() {
		close(updateChan)
		return updateChan
	}

	i.updateChans = append(i.updateChans, updateChan)

	return updateChan
}

func (i *InmemoryStore) Restore(values []byte) error {
	if len(values) > 0 && !gjson.ValidBytes(values) {
		return ErrInvalidDocument
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.values = append([]byte{}, values...)
	return nil
}

func (i *InmemoryStore) Backup() ([]byte, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.values) == 0 {
		return []byte("{}"), nil
	}

	return append([]byte{}, i.values...), nil
}

// isRunning returns true if Close has not been called
func (i *InmemoryStore) isRunning() bool {
	select {
	case <-i.stop:
		return false

	default:
		return true
	}
}

var _ Store = (*InmemoryStore)(nil)
