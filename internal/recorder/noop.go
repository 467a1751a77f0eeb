package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordFetch(_ *FetchEvent) error               { return nil }
func (n *NoopRecorder) RecordSnapshots(_ []Snapshot) error            { return nil }
func (n *NoopRecorder) LatestSnapshots() (map[string]Snapshot, error) { return map[string]Snapshot{}, nil }
func (n *NoopRecorder) Close() error                                  { return nil }
