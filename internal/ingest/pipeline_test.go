package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/ring-extended-core/internal/coordinator"
	"github.com/nerrad567/ring-extended-core/internal/firmware"
	"github.com/nerrad567/ring-extended-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/ring-extended-core/internal/snapshot"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type pipelineFixture struct {
	pipeline  *Pipeline
	registry  *snapshot.Registry
	tracker   *firmware.Tracker
	monitor   *coordinator.Monitor
	store     *flakyStore
	publisher *fakePublisher
	hub       *fakeHub
	series    *fakeSeries
	recorder  *fakeRecorder
	logger    *recordingLogger
}

func newPipelineFixture(t *testing.T, firmwarePath string) *pipelineFixture {
	t.Helper()

	monitor, err := coordinator.NewMonitor(coordinator.DefaultThresholds(), t0)
	if err != nil {
		t.Fatalf("NewMonitor() error = %v", err)
	}

	f := &pipelineFixture{
		registry:  snapshot.NewRegistry(),
		monitor:   monitor,
		store:     &flakyStore{MemoryStore: firmware.NewMemoryStore()},
		publisher: &fakePublisher{},
		hub:       &fakeHub{},
		series:    &fakeSeries{},
		recorder:  newFakeRecorder(),
		logger:    &recordingLogger{},
	}
	f.tracker = firmware.NewTracker(f.store)

	f.pipeline, err = NewPipeline(PipelineConfig{
		Topics:       mqtt.NewTopics("ring"),
		QoS:          1,
		FirmwarePath: firmwarePath,
		Registry:     f.registry,
		Tracker:      f.tracker,
		Monitor:      f.monitor,
		Publisher:    f.publisher,
		Hub:          f.hub,
		Series:       f.series,
		Metrics:      f.recorder,
		Now:          func() time.Time { return t0 },
	})
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	f.pipeline.SetLogger(f.logger)
	return f
}

func snapshotJSON(id, name, version string, at time.Time) []byte {
	return []byte(fmt.Sprintf(`{
		"device_id": %q,
		"name": %q,
		"captured_at": %q,
		"attributes": {"kind": "doorbell_v5", "health": {"firmware_version": %q}}
	}`, id, name, at.Format(time.RFC3339), version))
}

func TestNewPipeline_MissingDependency(t *testing.T) {
	_, err := NewPipeline(PipelineConfig{Registry: snapshot.NewRegistry()})
	if !errors.Is(err, ErrMissingDependency) {
		t.Errorf("NewPipeline() error = %v, want ErrMissingDependency", err)
	}
}

func TestPipeline_FirmwareChangeFlow(t *testing.T) {
	f := newPipelineFixture(t, "")
	ctx := context.Background()
	topic := "ring/snapshot/front_door"

	steps := []struct {
		version string
		at      time.Time
	}{
		{"cam-1.28.10700", t0},
		{"cam-1.28.10700", t0.Add(time.Minute)},
		{"cam-1.28.10800", t0.Add(2 * time.Minute)},
	}
	for _, s := range steps {
		if err := f.pipeline.HandleSnapshot(ctx, topic, snapshotJSON("front_door", "Front Door", s.version, s.at)); err != nil {
			t.Fatalf("HandleSnapshot(%s) error = %v", s.version, err)
		}
	}

	if got, _ := f.tracker.CurrentVersion("front_door"); got != "cam-1.28.10800" {
		t.Errorf("CurrentVersion() = %q", got)
	}
	if f.recorder.initialized != 1 || f.recorder.changed != 1 {
		t.Errorf("recorder initialized=%d changed=%d, want 1 and 1", f.recorder.initialized, f.recorder.changed)
	}
	if f.recorder.snapshots[ResultOK] != 3 {
		t.Errorf("ok snapshots = %d, want 3", f.recorder.snapshots[ResultOK])
	}
	if len(f.series.changes) != 2 {
		t.Fatalf("series changes = %d, want 2 (initial + change)", len(f.series.changes))
	}

	msgs := f.publisher.sent()
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}
	msg := msgs[0]
	if msg.topic != "ring/firmware/front_door/changed" || msg.retained || msg.qos != 1 {
		t.Errorf("published to %q retained=%v qos=%d", msg.topic, msg.retained, msg.qos)
	}

	var event ChangeEvent
	if err := json.Unmarshal(msg.payload, &event); err != nil {
		t.Fatalf("event payload: %v", err)
	}
	if _, err := uuid.Parse(event.ID); err != nil {
		t.Errorf("event ID %q is not a UUID", event.ID)
	}
	if event.Previous != "cam-1.28.10700" || event.Version != "cam-1.28.10800" || event.DeviceName != "Front Door" {
		t.Errorf("event = %+v", event)
	}
	if !event.FirstSeen.Equal(t0.Add(2 * time.Minute)) {
		t.Errorf("FirstSeen = %v", event.FirstSeen)
	}

	if got := f.hub.on(ChannelFirmwareChanged); len(got) != 1 {
		t.Errorf("hub firmware events = %d, want 1", len(got))
	}
}

func TestPipeline_DeviceIDFromTopic(t *testing.T) {
	f := newPipelineFixture(t, "")

	payload := []byte(`{"attributes": {"health": {"firmware_version": "1.0"}}}`)
	if err := f.pipeline.HandleSnapshot(context.Background(), "ring/snapshot/garage", payload); err != nil {
		t.Fatalf("HandleSnapshot() error = %v", err)
	}

	snap, err := f.registry.Get("garage")
	if err != nil {
		t.Fatalf("registry.Get() error = %v", err)
	}
	if !snap.CapturedAt.Equal(t0) {
		t.Errorf("CapturedAt = %v, want pipeline clock %v", snap.CapturedAt, t0)
	}
	if got := f.tracker.Format("garage"); got != "1.0 (0 updates)" {
		t.Errorf("Format() = %q", got)
	}
}

func TestPipeline_InvalidSnapshot(t *testing.T) {
	f := newPipelineFixture(t, "")

	err := f.pipeline.HandleSnapshot(context.Background(), "ring/other", []byte(`{"attributes": {}}`))
	if !errors.Is(err, snapshot.ErrInvalidSnapshot) {
		t.Errorf("HandleSnapshot() error = %v, want ErrInvalidSnapshot", err)
	}
	if f.recorder.snapshots[ResultInvalid] != 1 {
		t.Errorf("invalid count = %d, want 1", f.recorder.snapshots[ResultInvalid])
	}
}

func TestPipeline_OutOfOrderSnapshotDropped(t *testing.T) {
	f := newPipelineFixture(t, "")
	ctx := context.Background()

	if err := f.pipeline.HandleSnapshot(ctx, "", snapshotJSON("chime", "Chime", "2.0", t0.Add(5*time.Minute))); err != nil {
		t.Fatalf("HandleSnapshot() error = %v", err)
	}
	if err := f.pipeline.HandleSnapshot(ctx, "", snapshotJSON("chime", "Chime", "1.0", t0)); err != nil {
		t.Fatalf("HandleSnapshot() error = %v", err)
	}

	if got, _ := f.tracker.CurrentVersion("chime"); got != "2.0" {
		t.Errorf("CurrentVersion() = %q, want 2.0", got)
	}
	if f.recorder.snapshots[ResultStale] != 1 {
		t.Errorf("stale count = %d, want 1", f.recorder.snapshots[ResultStale])
	}
}

func TestPipeline_VersionResolution(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		attrs       string
		wantVersion string
		wantTracked bool
	}{
		{"default path", "", `{"health": {"firmware_version": "cam-1"}}`, "cam-1", true},
		{"numeric build", "firmware.build", `{"firmware": {"build": 10700}}`, "10700", true},
		{"path absent", "", `{"health": {"rssi": -50}}`, "", false},
		{"null version", "", `{"health": {"firmware_version": null}}`, "", false},
		{"unknown placeholder", "", `{"health": {"firmware_version": "Unknown"}}`, "", false},
		{"unavailable placeholder", "", `{"health": {"firmware_version": "unavailable"}}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPipelineFixture(t, tt.path)
			payload := []byte(`{"device_id": "d1", "attributes": ` + tt.attrs + `}`)

			if err := f.pipeline.HandleSnapshot(context.Background(), "", payload); err != nil {
				t.Fatalf("HandleSnapshot() error = %v", err)
			}

			got, ok := f.tracker.CurrentVersion("d1")
			if ok != tt.wantTracked || got != tt.wantVersion {
				t.Errorf("CurrentVersion() = %q, %v; want %q, %v", got, ok, tt.wantVersion, tt.wantTracked)
			}
		})
	}
}

func TestPipeline_PersistenceFailureIsNotFatal(t *testing.T) {
	f := newPipelineFixture(t, "")
	f.store.setFail(true)

	err := f.pipeline.HandleSnapshot(context.Background(), "", snapshotJSON("front_door", "", "1.0", t0))
	if err != nil {
		t.Fatalf("HandleSnapshot() error = %v, want nil", err)
	}

	if f.recorder.failures != 1 {
		t.Errorf("persistence failures = %d, want 1", f.recorder.failures)
	}
	if f.tracker.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", f.tracker.Pending())
	}
	if got, _ := f.tracker.CurrentVersion("front_door"); got != "1.0" {
		t.Errorf("in-memory version lost: %q", got)
	}
}

func TestPipeline_PublishFailureLogged(t *testing.T) {
	f := newPipelineFixture(t, "")
	f.publisher.err = mqtt.ErrNotConnected
	ctx := context.Background()

	for i, v := range []string{"1.0", "2.0"} {
		if err := f.pipeline.HandleSnapshot(ctx, "", snapshotJSON("d1", "", v, t0.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("HandleSnapshot() error = %v", err)
		}
	}

	if len(f.logger.warnings()) != 1 {
		t.Errorf("warnings = %v, want one publish failure", f.logger.warnings())
	}
	if got := f.hub.on(ChannelFirmwareChanged); len(got) != 1 {
		t.Errorf("hub events = %d, want 1 despite publish failure", len(got))
	}
}

func TestPipeline_HandleStatus(t *testing.T) {
	f := newPipelineFixture(t, "")

	ok := []byte(`{"observed_at": "2026-03-01T10:05:00Z", "success": true, "update_counter": 5}`)
	replay := []byte(`{"observed_at": "2026-03-01T10:04:00Z", "success": true, "update_counter": 4}`)
	bad := []byte(`{"observed_at": 12}`)

	if err := f.pipeline.HandleStatus(ok); err != nil {
		t.Fatalf("HandleStatus(ok) error = %v", err)
	}
	if err := f.pipeline.HandleStatus(replay); err != nil {
		t.Fatalf("HandleStatus(replay) error = %v, want nil", err)
	}
	if err := f.pipeline.HandleStatus(bad); !errors.Is(err, coordinator.ErrInvalidStatus) {
		t.Errorf("HandleStatus(bad) error = %v, want ErrInvalidStatus", err)
	}

	m := f.monitor.Metrics(t0.Add(5 * time.Minute))
	if m.UpdateCount != 1 || f.monitor.SourceCounter() != 5 {
		t.Errorf("UpdateCount = %d, SourceCounter = %d; want 1 and 5", m.UpdateCount, f.monitor.SourceCounter())
	}
	if m.MinutesSinceUpdate != 0 {
		t.Errorf("MinutesSinceUpdate = %v, want 0", m.MinutesSinceUpdate)
	}

	want := map[string]int{ResultOK: 1, ResultReplayed: 1, ResultInvalid: 1}
	for k, v := range want {
		if f.recorder.statuses[k] != v {
			t.Errorf("statuses[%s] = %d, want %d", k, f.recorder.statuses[k], v)
		}
	}
}

func TestPipeline_HandleStatus_RedeliveredWithoutObservedAt(t *testing.T) {
	f := newPipelineFixture(t, "")
	now := t0
	f.pipeline.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	payload := []byte(`{"last_success_time": "2026-03-01T09:59:00Z", "success": true, "update_counter": 7}`)
	for i := 0; i < 3; i++ {
		if err := f.pipeline.HandleStatus(payload); err != nil {
			t.Fatalf("HandleStatus() #%d error = %v", i, err)
		}
	}

	if got := f.monitor.Metrics(now).UpdateCount; got != 1 {
		t.Errorf("UpdateCount = %d, want 1", got)
	}
	if f.recorder.statuses[ResultReplayed] != 2 {
		t.Errorf("replayed = %d, want 2", f.recorder.statuses[ResultReplayed])
	}
}

func TestPipeline_Subscribe(t *testing.T) {
	f := newPipelineFixture(t, "")
	sub := &fakeSubscriber{}

	if err := f.pipeline.Subscribe(context.Background(), sub); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	snapHandler, ok := sub.handlers["ring/snapshot/+"]
	if !ok {
		t.Fatalf("snapshot topic not subscribed: %v", sub.handlers)
	}
	statusHandler, ok := sub.handlers["ring/coordinator/status"]
	if !ok {
		t.Fatalf("status topic not subscribed: %v", sub.handlers)
	}

	if err := snapHandler("ring/snapshot/porch", []byte(`{"attributes": {"health": {"firmware_version": "3.1"}}}`)); err != nil {
		t.Fatalf("snapshot handler error = %v", err)
	}
	if got, _ := f.tracker.CurrentVersion("porch"); got != "3.1" {
		t.Errorf("porch version = %q", got)
	}
	if err := statusHandler("ring/coordinator/status", []byte(`{"success": false}`)); err != nil {
		t.Fatalf("status handler error = %v", err)
	}
	if f.monitor.Classify(t0) != coordinator.StateFailed {
		t.Errorf("Classify() = %v, want failed", f.monitor.Classify(t0))
	}
}

func TestPipeline_SubscribeError(t *testing.T) {
	f := newPipelineFixture(t, "")
	sub := &fakeSubscriber{failOn: "ring/coordinator/status"}

	if err := f.pipeline.Subscribe(context.Background(), sub); err == nil {
		t.Error("Subscribe() should surface the broker error")
	}
}
