package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/insultr/internal/classifier"
	"github.com/example/insultr/internal/face"
	"github.com/example/insultr/internal/logging"
	"github.com/example/insultr/internal/metrics"
	"github.com/example/insultr/internal/preferences"
	"github.com/example/insultr/internal/repository"
)

// AnalysisRepository defines the persistence operations needed by the use case.
type AnalysisRepository interface {
	SaveLog(ctx context.Context, log *repository.AnalysisLog) error
	FindByRequestIDAndUser(ctx context.Context, requestID, userID string) (*repository.AnalysisLog, error)
	AggregateMetrics(ctx context.Context) (*repository.MetricsAggregation, error)
	CountEmotions(ctx context.Context) ([]repository.EmotionCount, error)
}

// ImageStore uploads photos and fetches them back by URL.
type ImageStore interface {
	Upload(ctx context.Context, data []byte) (string, error)
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Analyzer runs face detection on an image URL.
type Analyzer interface {
	Detect(ctx context.Context, requestID, imageURL string) (*face.Response, error)
}

// PreferenceStore keeps each owner's current image URL.
type PreferenceStore interface {
	Load(ctx context.Context, owner string) (string, error)
	Save(ctx context.Context, owner, imageURL string) error
}

// Result is the outcome of one insult request.
type Result struct {
	RequestID string    `json:"request_id"`
	UserID    string    `json:"user_id"`
	ImageURL  string    `json:"image_url"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Age       string    `json:"age"`
	Emotion   string    `json:"emotion"`
	FaceCount int       `json:"face_count"`
	CreatedAt time.Time `json:"created_at"`
}

// InsultUseCase runs the upload and analysis pipeline:
// acquire image -> upload -> request analysis -> classify -> present.
type InsultUseCase struct {
	repo           AnalysisRepository
	cache          Cache
	store          ImageStore
	analyzer       Analyzer
	prefs          PreferenceStore
	metrics        *metrics.Recorder
	logger         *zap.Logger
	busy           inflight
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewInsultUseCase constructs a new use case instance. rec may be nil.
func NewInsultUseCase(repo AnalysisRepository, cache Cache, store ImageStore, analyzer Analyzer, prefs PreferenceStore, rec *metrics.Recorder, logger *zap.Logger) *InsultUseCase {
	return &InsultUseCase{
		repo:           repo,
		cache:          cache,
		store:          store,
		analyzer:       analyzer,
		prefs:          prefs,
		metrics:        rec,
		logger:         logger.Named("insult_usecase"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// UploadImage stores the photo and makes it the owner's current image.
func (uc *InsultUseCase) UploadImage(ctx context.Context, owner string, image []byte) (string, error) {
	release, ok := uc.busy.acquire(owner)
	if !ok {
		return "", ErrBusy
	}
	defer release()

	opLogger := logging.WithOperation(uc.logger, "usecase.upload_image", "").With(zap.String("user_id", owner))

	imageURL, err := uc.store.Upload(ctx, image)
	if err != nil {
		uc.metrics.Upload(metrics.OutcomeError)
		opLogger.Error("image upload failed", zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	if err := uc.prefs.Save(ctx, owner, imageURL); err != nil {
		uc.metrics.Upload(metrics.OutcomeError)
		wrapped := logging.NewOperationError("usecase.save_current_url", "", err)
		opLogger.Error("failed to save current image url", zap.Error(wrapped))
		return "", wrapped
	}

	uc.metrics.Upload(metrics.OutcomeSuccess)
	opLogger.Info("current image updated", zap.String("image_url", imageURL))
	return imageURL, nil
}

// CurrentImage returns the bytes and URL of the owner's current image.
func (uc *InsultUseCase) CurrentImage(ctx context.Context, owner string) ([]byte, string, error) {
	imageURL, err := uc.currentURL(ctx, owner, "")
	if err != nil {
		return nil, "", err
	}

	data, err := uc.store.Fetch(ctx, imageURL)
	if err != nil {
		logging.WithOperation(uc.logger, "usecase.current_image", "").Warn("failed to fetch current image", zap.Error(err))
		return nil, "", fmt.Errorf("%w: %w", ErrNoImage, err)
	}
	return data, imageURL, nil
}

// Insult analyses the owner's current image and classifies the first face.
// An empty face list yields face.ErrNoFace.
func (uc *InsultUseCase) Insult(ctx context.Context, owner string) (*Result, error) {
	release, ok := uc.busy.acquire(owner)
	if !ok {
		return nil, ErrBusy
	}
	defer release()

	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.insult", requestID)

	imageURL, err := uc.currentURL(ctx, owner, requestID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	resp, err := uc.analyzer.Detect(ctx, requestID, imageURL)
	took := time.Since(started)
	if err != nil {
		uc.metrics.Analysis(metrics.OutcomeError, took)
		opLogger.Error("face analysis failed", zap.Error(err))
		if errors.Is(err, face.ErrDecode) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	log := &repository.AnalysisLog{
		RequestID: requestID,
		UserID:    owner,
		ImageURL:  imageURL,
		FaceCount: resp.Count(),
		LatencyMs: took.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}

	first, err := resp.First()
	if err != nil {
		uc.metrics.Analysis(metrics.OutcomeNoFace, took)
		log.Details = "no face detected"
		if saveErr := uc.repo.SaveLog(ctx, log); saveErr != nil {
			opLogger.Warn("failed to persist no-face analysis", zap.Error(saveErr))
		}
		opLogger.Info("no face detected", zap.String("image_url", imageURL))
		return nil, logging.NewOperationError("usecase.select_face", requestID, err)
	}

	summary := classifier.Summarize(first)
	uc.metrics.Analysis(metrics.OutcomeSuccess, took)
	uc.metrics.Emotion(summary.Emotion)

	log.Success = true
	log.Age = summary.Age
	log.Emotion = summary.Emotion
	log.Details = fmt.Sprintf("age:%s emotion:%s faces:%d", summary.Age, summary.Emotion, log.FaceCount)
	if err := uc.repo.SaveLog(ctx, log); err != nil {
		wrapped := logging.NewOperationError("usecase.save_log", requestID, err)
		opLogger.Error("failed to persist analysis log", zap.Error(wrapped))
		return nil, wrapped
	}

	result := &Result{
		RequestID: requestID,
		UserID:    owner,
		ImageURL:  imageURL,
		Title:     summary.Title,
		Message:   summary.Message,
		Age:       summary.Age,
		Emotion:   summary.Emotion,
		FaceCount: log.FaceCount,
		CreatedAt: log.CreatedAt,
	}

	serialized, err := json.Marshal(result)
	if err != nil {
		opLogger.Error("failed to serialize analysis result", zap.Error(err))
		return nil, err
	}
	if err := uc.withRedisRetry(ctx, requestID, "cache.set.result", func() error {
		return uc.cache.Set(ctx, resultCacheKey(requestID), string(serialized), resultTTL)
	}); err != nil {
		// The log is already persisted, so GetResult can still serve it.
		opLogger.Warn("failed to cache analysis result", zap.Error(err))
	}

	opLogger.Info("analysis complete", zap.String("age", summary.Age), zap.String("emotion", summary.Emotion))
	return result, nil
}

// GetResult retrieves a cached analysis or loads it from persistence.
func (uc *InsultUseCase) GetResult(ctx context.Context, owner, requestID string) (*Result, error) {
	opLogger := logging.WithOperation(uc.logger, "usecase.get_result", requestID)

	cached, err := uc.withRedisGet(ctx, requestID, "cache.get.result", resultCacheKey(requestID))
	if err == nil {
		var result Result
		if err := json.Unmarshal([]byte(cached), &result); err != nil {
			opLogger.Warn("failed to decode cached result", zap.Error(err))
		} else if result.UserID == owner {
			return &result, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		opLogger.Warn("failed to read cache", zap.Error(err))
	}

	log, err := uc.repo.FindByRequestIDAndUser(ctx, requestID, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrResultNotFound, requestID)
		}
		opLogger.Error("failed to load analysis log", zap.Error(err))
		return nil, err
	}
	return resultFromLog(log), nil
}

func resultFromLog(log *repository.AnalysisLog) *Result {
	r := &Result{
		RequestID: log.RequestID,
		UserID:    log.UserID,
		ImageURL:  log.ImageURL,
		Title:     classifier.Title,
		Age:       log.Age,
		Emotion:   log.Emotion,
		FaceCount: log.FaceCount,
		CreatedAt: log.CreatedAt,
	}
	if log.Success {
		r.Message = classifier.Message(log.Age, log.Emotion)
	} else {
		r.Message = "No face detected."
	}
	return r
}

func (uc *InsultUseCase) currentURL(ctx context.Context, owner, requestID string) (string, error) {
	imageURL, err := uc.prefs.Load(ctx, owner)
	switch {
	case errors.Is(err, preferences.ErrNotSet), errors.Is(err, preferences.ErrInvalidURL):
		logging.WithOperation(uc.logger, "usecase.load_current_url", requestID).Info("no usable current image", zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrNoImage, err)
	case err != nil:
		return "", logging.NewOperationError("usecase.load_current_url", requestID, err)
	}
	return imageURL, nil
}

func (uc *InsultUseCase) withRedisRetry(ctx context.Context, requestID, operation string, fn func() error) error {
	if uc.retryAttempts <= 1 {
		return logging.NewOperationError(operation, requestID, fn())
	}

	backoff := uc.initialBackoff
	opLogger := logging.WithOperation(uc.logger, operation, requestID)
	var err error
	for attempt := 0; attempt < uc.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, requestID, ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= uc.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("redis operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}

		if !logging.IsTransient(err) || attempt == uc.retryAttempts-1 {
			if !errors.Is(err, redis.Nil) {
				opLogger.Error("redis operation failed", zap.Error(err), zap.Int("attempt", attempt+1))
			}
			return logging.NewOperationError(operation, requestID, err)
		}

		opLogger.Warn("transient redis error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, requestID, err)
}

func (uc *InsultUseCase) withRedisGet(ctx context.Context, requestID, operation, cacheKey string) (string, error) {
	var result string
	err := uc.withRedisRetry(ctx, requestID, operation, func() error {
		value, err := uc.cache.Get(ctx, cacheKey)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}
