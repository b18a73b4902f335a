package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/entity"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/pipeline"
)

type memoryRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entity.Job
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{jobs: make(map[uuid.UUID]*entity.Job)}
}

func (r *memoryRepo) Create(_ context.Context, job *entity.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *memoryRepo) Update(_ context.Context, job *entity.Job) error {
	return r.Create(context.Background(), job)
}

func (r *memoryRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *job
	return &copied, nil
}

type fakeIndexer struct {
	err     error
	summary pipeline.Summary
}

func (f *fakeIndexer) Run(_ context.Context, videoPath string) (*pipeline.Summary, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := f.summary
	if s.OutputDir == "" {
		s.OutputDir = filepath.Dir(videoPath)
	}
	return &s, nil
}

type fakeArchiver struct {
	err error
}

func (a *fakeArchiver) CreateZip(_ context.Context, _ string, outputPath string) error {
	if a.err != nil {
		return a.err
	}
	return os.WriteFile(outputPath, []byte("zip bytes"), 0644)
}

type recordingPublisher struct {
	mu       sync.Mutex
	statuses []entity.VideoStatusMessage
}

func (p *recordingPublisher) PublishStatus(_ context.Context, msg []byte) error {
	var status entity.VideoStatusMessage
	if err := json.Unmarshal(msg, &status); err != nil {
		return err
	}
	p.mu.Lock()
	p.statuses = append(p.statuses, status)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) last(t *testing.T) entity.VideoStatusMessage {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.statuses)
	return p.statuses[len(p.statuses)-1]
}

type recordingDLQ struct {
	mu       sync.Mutex
	messages [][]byte
	reasons  []string
}

func (d *recordingDLQ) PublishToDLQ(_ context.Context, msg []byte, reason string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, msg)
	d.reasons = append(d.reasons, reason)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	emails []string
}

func (n *recordingNotifier) NotifyFailure(_ context.Context, userEmail, _, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, userEmail)
	return nil
}

type ucFixture struct {
	repo      *memoryRepo
	storage   *uploadCountingStorage
	indexer   *fakeIndexer
	archiver  *fakeArchiver
	publisher *recordingPublisher
	dlq       *recordingDLQ
	notifier  *recordingNotifier
	uc        *IndexVideoUseCase
}

// uploadCountingStorage satisfies port.VideoStorage with an io.Reader upload.
type uploadCountingStorage struct {
	downloadErr error
	uploadErr   error
	mu          sync.Mutex
	uploadKeys  []string
}

func (s *uploadCountingStorage) DownloadVideo(_ context.Context, _ string, destPath string) error {
	if s.downloadErr != nil {
		return s.downloadErr
	}
	return os.WriteFile(destPath, []byte("video bytes"), 0644)
}

func (s *uploadCountingStorage) UploadArchive(_ context.Context, objectKey string, _ io.Reader, _ int64) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.mu.Lock()
	s.uploadKeys = append(s.uploadKeys, objectKey)
	s.mu.Unlock()
	return nil
}

func newFixture(t *testing.T, maxRetries int) *ucFixture {
	t.Helper()
	f := &ucFixture{
		repo:    newMemoryRepo(),
		storage: &uploadCountingStorage{},
		indexer: &fakeIndexer{summary: pipeline.Summary{
			Segments: 5, Kept: 4, Dropped: 1, VideoDuration: 30,
		}},
		archiver:  &fakeArchiver{},
		publisher: &recordingPublisher{},
		dlq:       &recordingDLQ{},
		notifier:  &recordingNotifier{},
	}
	f.uc = NewIndexVideoUseCase(
		f.repo, f.storage,
		func(string) Indexer { return f.indexer },
		f.archiver,
		f.publisher, f.dlq, f.notifier,
		zap.NewNop(),
		IndexVideoConfig{TempDir: t.TempDir(), MaxRetries: maxRetries},
	)
	return f
}

func indexingMessage(t *testing.T, jobID uuid.UUID) []byte {
	t.Helper()
	msg := entity.VideoIndexingMessage{
		JobID:     jobID,
		UserID:    "user-1",
		VideoKey:  "user-1/video.mp4",
		FileSize:  2048,
		UserEmail: "user@example.com",
	}
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return data
}

func TestExecuteHappyPath(t *testing.T) {
	f := newFixture(t, 3)
	jobID := uuid.New()

	err := f.uc.Execute(context.Background(), indexingMessage(t, jobID))
	require.NoError(t, err)

	job, err := f.repo.FindByID(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, job.Status)
	assert.Equal(t, 5, job.SegmentCount)
	assert.Equal(t, 4, job.RecordCount)
	assert.Equal(t, 1, job.DroppedCount)
	assert.NotEmpty(t, job.ArchiveKey)

	status := f.publisher.last(t)
	assert.Equal(t, entity.JobStatusCompleted, status.Status)
	assert.Equal(t, 4, status.RecordCount)

	require.Len(t, f.storage.uploadKeys, 1)
	assert.Contains(t, f.storage.uploadKeys[0], "user-1/records_")
	assert.Empty(t, f.dlq.messages)
}

func TestExecuteMalformedMessageGoesToDLQ(t *testing.T) {
	f := newFixture(t, 3)

	err := f.uc.Execute(context.Background(), []byte(`{invalid json`))
	require.NoError(t, err)

	require.Len(t, f.dlq.messages, 1)
	assert.Contains(t, f.dlq.reasons[0], "unmarshal_error")
}

func TestExecuteRetryableFailureReturnsError(t *testing.T) {
	f := newFixture(t, 3)
	f.indexer.err = errors.New("ffmpeg exploded")
	jobID := uuid.New()

	err := f.uc.Execute(context.Background(), indexingMessage(t, jobID))
	require.Error(t, err)

	job, findErr := f.repo.FindByID(context.Background(), jobID)
	require.NoError(t, findErr)
	assert.Equal(t, entity.JobStatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "ffmpeg exploded")
	// Still retryable: not yet dead-lettered, no failure email.
	assert.Empty(t, f.dlq.messages)
	assert.Empty(t, f.notifier.emails)
}

func TestExecutePermanentFailureNotifiesAndDeadLetters(t *testing.T) {
	f := newFixture(t, 1)
	f.indexer.err = errors.New("ffmpeg exploded")
	jobID := uuid.New()

	// Single allowed attempt: the first failure is permanent.
	err := f.uc.Execute(context.Background(), indexingMessage(t, jobID))
	require.NoError(t, err)

	job, findErr := f.repo.FindByID(context.Background(), jobID)
	require.NoError(t, findErr)
	assert.Equal(t, entity.JobStatusFailed, job.Status)

	require.Len(t, f.dlq.messages, 1)
	require.Len(t, f.notifier.emails, 1)
	assert.Equal(t, "user@example.com", f.notifier.emails[0])

	status := f.publisher.last(t)
	assert.Equal(t, entity.JobStatusFailed, status.Status)
}

func TestExecuteDownloadFailureIsRetryable(t *testing.T) {
	f := newFixture(t, 3)
	f.storage.downloadErr = errors.New("minio unreachable")

	err := f.uc.Execute(context.Background(), indexingMessage(t, uuid.New()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download_video")
}

func TestExecuteUploadFailureIsRetryable(t *testing.T) {
	f := newFixture(t, 3)
	f.storage.uploadErr = errors.New("minio unreachable")

	err := f.uc.Execute(context.Background(), indexingMessage(t, uuid.New()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload_archive")
}
