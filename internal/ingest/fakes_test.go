package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nerrad567/ring-extended-core/internal/coordinator"
	"github.com/nerrad567/ring-extended-core/internal/firmware"
	"github.com/nerrad567/ring-extended-core/internal/infrastructure/mqtt"
)

type published struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

type fakePublisher struct {
	mu           sync.Mutex
	messages     []published
	disconnected bool
	err          error
}

func (f *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, published{topic, payload, qos, retained})
	return nil
}

func (f *fakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.disconnected
}

func (f *fakePublisher) sent() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.messages...)
}

type fakeSubscriber struct {
	handlers map[string]mqtt.MessageHandler
	failOn   string
}

func (f *fakeSubscriber) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	if topic == f.failOn {
		return errors.New("broker refused")
	}
	if f.handlers == nil {
		f.handlers = make(map[string]mqtt.MessageHandler)
	}
	f.handlers[topic] = handler
	return nil
}

type broadcast struct {
	channel string
	payload any
}

type fakeHub struct {
	mu     sync.Mutex
	events []broadcast
}

func (f *fakeHub) Broadcast(channel string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, broadcast{channel, payload})
}

func (f *fakeHub) on(channel string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []any
	for _, e := range f.events {
		if e.channel == channel {
			out = append(out, e.payload)
		}
	}
	return out
}

type fakeSeries struct {
	mu      sync.Mutex
	changes []firmware.Change
	health  []coordinator.Metrics
}

func (f *fakeSeries) WriteFirmwareChange(c firmware.Change) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = append(f.changes, c)
}

func (f *fakeSeries) WriteCoordinatorHealth(m coordinator.Metrics, _ time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.health = append(f.health, m)
}

type fakeRecorder struct {
	mu          sync.Mutex
	initialized int
	changed     int
	failures    int
	snapshots   map[string]int
	statuses    map[string]int
	last        coordinator.Metrics
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{snapshots: map[string]int{}, statuses: map[string]int{}}
}

func (f *fakeRecorder) FirmwareChange(initial bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if initial {
		f.initialized++
	} else {
		f.changed++
	}
}

func (f *fakeRecorder) PersistenceFailure() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures++
}

func (f *fakeRecorder) Snapshot(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[result]++
}

func (f *fakeRecorder) Status(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[result]++
}

func (f *fakeRecorder) ObserveCoordinator(m coordinator.Metrics) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = m
}

// flakyStore fails Save while fail is set.
type flakyStore struct {
	*firmware.MemoryStore
	mu   sync.Mutex
	fail bool
}

func (s *flakyStore) setFail(v bool) {
	s.mu.Lock()
	s.fail = v
	s.mu.Unlock()
}

func (s *flakyStore) Save(ctx context.Context, h firmware.History) error {
	s.mu.Lock()
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return s.MemoryStore.Save(ctx, h)
}

type recordingLogger struct {
	mu    sync.Mutex
	infos []string
	warns []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Error(string, ...any) {}

func (l *recordingLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

func (l *recordingLogger) infoMessages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.infos...)
}
