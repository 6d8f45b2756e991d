package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"hikayat/internal/capture"
	"hikayat/internal/config"
	"hikayat/internal/imaging"
	"hikayat/internal/localstore"
	"hikayat/internal/logging"
	"hikayat/internal/models"
	"hikayat/internal/repository"
	"hikayat/internal/storage"
)

type MediaService interface {
	UploadAvatar(ctx context.Context, profile localstore.Profile, file io.Reader) (*models.Session, error)
	UploadCover(ctx context.Context, profile localstore.Profile, file io.Reader) (string, error)
	RecordAudio(ctx context.Context, profile localstore.Profile, body io.ReadCloser) (*models.AudioUpload, error)

	// StopRecordings ends running and future recordings, keeping what was captured.
	StopRecordings()
}

type mediaService struct {
	auth     AuthService
	sessions repository.SessionRepository
	storage  storage.Storage
	cfg      *config.Config
	log      logging.Logger

	stopOnce sync.Once
	stopping chan struct{}
}

// NewMediaService accepts a nil storage; uploads then fail with ErrStorageUnavailable.
func NewMediaService(rep *repository.Repository, auth AuthService, storage storage.Storage, cfg *config.Config, log logging.Logger) MediaService {
	return &mediaService{
		auth:     auth,
		sessions: rep.Session,
		storage:  storage,
		cfg:      cfg,
		log:      log,
		stopping: make(chan struct{}),
	}
}

func (s *mediaService) StopRecordings() {
	s.stopOnce.Do(func() { close(s.stopping) })
}

// readLimited reads at most limit bytes and fails with ErrTooLarge beyond that.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("файл больше %s: %w", humanize.Bytes(uint64(limit)), models.ErrTooLarge)
	}
	return data, nil
}

func (s *mediaService) ready(ctx context.Context, profile localstore.Profile) (*models.Session, error) {
	if s.storage == nil {
		return nil, models.ErrStorageUnavailable
	}
	return requireSession(ctx, s.sessions, profile)
}

// uploadImage sniffs, scales and stores an image, returning its object name and public url.
func (s *mediaService) uploadImage(ctx context.Context, session *models.Session, prefix string, file io.Reader, width int) (string, string, error) {
	data, err := readLimited(file, s.cfg.MaxUploadSize)
	if err != nil {
		return "", "", err
	}

	mime := mimetype.Detect(data)
	if !imaging.Supported(mime.String()) {
		return "", "", fmt.Errorf("%w: %s", models.ErrUnsupportedMedia, mime.String())
	}

	resized, outType, err := imaging.Resize(data, mime.String(), width, s.cfg.Avatar.Interpolator)
	if err != nil {
		return "", "", err
	}

	objectName, url, err := s.storage.Upload(ctx, storage.Object{
		Prefix:      prefix,
		Extension:   mimetype.Lookup(outType).Extension(),
		ContentType: outType,
		Size:        int64(len(resized)),
		Metadata:    map[string]string{"user-id": session.UserID},
	}, bytes.NewReader(resized))
	if err != nil {
		return "", "", err
	}

	s.log.Info(ctx, "изображение загружено", "prefix", prefix, "size", humanize.Bytes(uint64(len(resized))))
	return objectName, url, nil
}

// discard removes an uploaded object that ended up referenced by nothing.
func (s *mediaService) discard(ctx context.Context, objectName string) {
	if err := s.storage.Delete(ctx, objectName); err != nil {
		s.log.Warn(ctx, "не удалось удалить загруженный объект", "object", objectName, "error", err)
	}
}

func (s *mediaService) UploadAvatar(ctx context.Context, profile localstore.Profile, file io.Reader) (*models.Session, error) {
	session, err := s.ready(ctx, profile)
	if err != nil {
		return nil, err
	}

	objectName, url, err := s.uploadImage(ctx, session, "avatars", file, s.cfg.Avatar.Width)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки аватара: %w", err)
	}

	updated, err := s.auth.UpdateAvatar(ctx, profile, url)
	if err != nil {
		s.discard(ctx, objectName)
		return nil, err
	}

	return updated, nil
}

// UploadCover keeps covers at their own width up to four times the avatar width.
func (s *mediaService) UploadCover(ctx context.Context, profile localstore.Profile, file io.Reader) (string, error) {
	session, err := s.ready(ctx, profile)
	if err != nil {
		return "", err
	}

	_, url, err := s.uploadImage(ctx, session, "covers", file, 4*s.cfg.Avatar.Width)
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки обложки: %w", err)
	}

	return url, nil
}

func audioType(mime *mimetype.MIME) bool {
	return strings.HasPrefix(mime.String(), "audio/") ||
		mime.Is("video/webm") ||
		mime.Is("application/ogg")
}

// RecordAudio captures body under the configured limits and stores the result.
// The body is closed on every path.
func (s *mediaService) RecordAudio(ctx context.Context, profile localstore.Profile, body io.ReadCloser) (*models.AudioUpload, error) {
	session, err := s.ready(ctx, profile)
	if err != nil {
		body.Close()
		return nil, err
	}

	recording := capture.Start(ctx, body, capture.Limits{
		MaxBytes:    s.cfg.Audio.MaxBytes,
		MaxDuration: s.cfg.Audio.MaxDuration,
		ChunkSize:   s.cfg.Audio.ChunkSize,
	})

	select {
	case <-recording.Done():
	case <-s.stopping:
		recording.Stop()
	}

	rec, err := recording.Wait()
	if err != nil {
		return nil, fmt.Errorf("ошибка записи аудио: %w", err)
	}
	if len(rec.Data) == 0 {
		return nil, fmt.Errorf("%w: empty recording", models.ErrValidation)
	}

	mime := mimetype.Detect(rec.Data)
	if !audioType(mime) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedMedia, mime.String())
	}

	_, url, err := s.storage.Upload(ctx, storage.Object{
		Prefix:      "audio",
		Extension:   mime.Extension(),
		ContentType: mime.String(),
		Size:        int64(len(rec.Data)),
		Metadata:    map[string]string{"user-id": session.UserID},
	}, bytes.NewReader(rec.Data))
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки аудио: %w", err)
	}

	if rec.Truncated {
		s.log.Warn(ctx, "запись обрезана по длительности", "limit", s.cfg.Audio.MaxDuration)
	}

	return &models.AudioUpload{
		URL:       url,
		Size:      int64(len(rec.Data)),
		SizeHuman: humanize.Bytes(uint64(len(rec.Data))),
		Duration:  rec.Duration,
		Truncated: rec.Truncated,
	}, nil
}
