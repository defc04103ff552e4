package offload

import (
	"context"
	"time"

	"github.com/allanpeda/motion-scripts/internal/domain"
	"github.com/allanpeda/motion-scripts/internal/port"
)

// mockLocalStore implements port.LocalStore for testing.
// Files must be provided newest-first, matching the interface contract.
type mockLocalStore struct {
	dir       string
	files     []domain.VideoFile
	dirSize   int64
	listErr   error
	sizeErr   error
	removeErr map[string]error

	removed []string
}

func (m *mockLocalStore) Dir() string { return m.dir }

func (m *mockLocalStore) ListVideos() ([]domain.VideoFile, error) {
	return m.files, m.listErr
}

func (m *mockLocalStore) DirSize() (int64, error) {
	return m.dirSize, m.sizeErr
}

func (m *mockLocalStore) Remove(path string) error {
	if err, ok := m.removeErr[path]; ok {
		return err
	}
	m.removed = append(m.removed, path)
	return nil
}

// mockOpenChecker implements port.OpenFileChecker for testing
type mockOpenChecker struct {
	open map[string]bool
	err  error
}

func (m *mockOpenChecker) IsOpen(path string) (bool, error) {
	return m.open[path], m.err
}

// uploadCall records one RemoteStore.Upload invocation
type uploadCall struct {
	LocalPath string
	SubPath   string
	Name      string
}

// mockRemoteStore implements port.RemoteStore for testing
type mockRemoteStore struct {
	objects      map[string][]port.RemoteObject // subPath -> objects
	listErr      error
	uploadErr    map[string]error // name -> error
	deleteCounts map[string]int   // subPath -> count to report
	deleteErr    error

	uploads       []uploadCall
	deleteCutoffs map[string]time.Time // subPath -> cutoff passed in
}

func (m *mockRemoteStore) ListNewerThan(ctx context.Context, subPath string, since time.Time) ([]port.RemoteObject, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []port.RemoteObject
	for _, obj := range m.objects[subPath] {
		if !obj.LastModified.Before(since) {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (m *mockRemoteStore) Upload(ctx context.Context, localPath, subPath, name string) error {
	if err, ok := m.uploadErr[name]; ok {
		return err
	}
	m.uploads = append(m.uploads, uploadCall{LocalPath: localPath, SubPath: subPath, Name: name})
	return nil
}

func (m *mockRemoteStore) DeleteOlderThan(ctx context.Context, subPath string, cutoff time.Time) (int, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	if m.deleteCutoffs == nil {
		m.deleteCutoffs = make(map[string]time.Time)
	}
	m.deleteCutoffs[subPath] = cutoff
	return m.deleteCounts[subPath], nil
}

// finishCall records one RunJournal.FinishRun invocation
type finishCall struct {
	ID                        int64
	Reaped, Uploaded, Expired int
}

// journalUpload records one RunJournal.RecordUpload invocation
type journalUpload struct {
	RunID   int64
	Name    string
	SubPath string
	Size    int64
}

// mockJournal implements port.RunJournal for testing
type mockJournal struct {
	nextID int64

	starts   []time.Time
	finishes []finishCall
	uploads  []journalUpload
}

func (m *mockJournal) RecordRunStart(start time.Time) (int64, error) {
	m.nextID++
	m.starts = append(m.starts, start)
	return m.nextID, nil
}

func (m *mockJournal) FinishRun(id int64, finish time.Time, reaped, uploaded, expired int) error {
	m.finishes = append(m.finishes, finishCall{ID: id, Reaped: reaped, Uploaded: uploaded, Expired: expired})
	return nil
}

func (m *mockJournal) RecordUpload(runID int64, name, subPath string, size int64, at time.Time) error {
	m.uploads = append(m.uploads, journalUpload{RunID: runID, Name: name, SubPath: subPath, Size: size})
	return nil
}

func (m *mockJournal) LastRun() (*port.RunRecord, error) {
	return nil, nil
}

func testChannelMap() *domain.ChannelMap {
	m, err := domain.NewChannelMap([]domain.Channel{
		{Prefix: "CAM01", SubPath: "cam01"},
		{Prefix: "CAM02", SubPath: "cam02"},
		{Prefix: "CAM03", SubPath: "cam03"},
		{Prefix: "CAM04", SubPath: "cam04", Retain: true},
	})
	if err != nil {
		panic(err)
	}
	return m
}
