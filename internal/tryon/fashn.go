// Package tryon runs Fashn.ai virtual try-on predictions.
package tryon

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"suitup-be/internal/apperr"
	"suitup-be/internal/logger"
	"suitup-be/internal/metrics"
	"suitup-be/internal/utils"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	provider = "fashn"

	DefaultPollInterval = 2 * time.Second
	DefaultMaxAttempts  = 20
)

const (
	statusCompleted = "completed"
	statusFailed    = "failed"
)

var (
	ErrNoPredictionID   = errors.New("fashn returned no prediction id")
	ErrPredictionFailed = errors.New("prediction failed")
)

type Config struct {
	APIKey       string
	BaseURL      string
	PollInterval time.Duration
	MaxAttempts  int
}

type Input struct {
	UserImage       []byte
	MimeType        string
	GarmentImageURL string
}

type Service interface {
	// Run starts a prediction and polls until it completes, fails or runs
	// out of attempts. It returns the result image URL.
	Run(ctx context.Context, input Input) (string, error)
}

type service struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	metrics    *metrics.Metrics
}

func NewService(cfg Config, m *metrics.Metrics) Service {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.APIKey == "" {
		logger.L().Warn("Fashn API key is empty, try-on calls will fail")
	}

	return &service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		breaker:    utils.NewBreaker(provider, logger.L()),
		metrics:    m,
	}
}

type runRequest struct {
	ModelImage       string `json:"model_image"`
	GarmentImage     string `json:"garment_image"`
	Category         string `json:"category"`
	SegmentationFree bool   `json:"segmentation_free"`
	ModerationLevel  string `json:"moderation_level"`
	GarmentPhotoType string `json:"garment_photo_type"`
	Mode             string `json:"mode"`
	Seed             int    `json:"seed"`
	NumSamples       int    `json:"num_samples"`
	OutputFormat     string `json:"output_format"`
	ReturnBase64     bool   `json:"return_base64"`
}

type runResponse struct {
	ID    string          `json:"id"`
	Error json.RawMessage `json:"error"`
}

type statusResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output []string        `json:"output"`
	Error  json.RawMessage `json:"error"`
}

// errorText flattens Fashn's error field, which is either a string or an
// object with a message.
func errorText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Name
	}
	return string(raw)
}

func dataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func (s *service) do(ctx context.Context, method, path string, body any, dst any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.BaseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	_, err = utils.ExecuteWithBreaker(s.breaker, func() (struct{}, error) {
		resp, err := s.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return struct{}{}, utils.CallerGone(err)
			}
			return struct{}{}, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to read fashn response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			var r runResponse
			_ = json.Unmarshal(raw, &r)
			if msg := errorText(r.Error); msg != "" {
				return struct{}{}, fmt.Errorf("fashn error (status %d): %s", resp.StatusCode, msg)
			}
			return struct{}{}, fmt.Errorf("fashn error (status %d)", resp.StatusCode)
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return struct{}{}, fmt.Errorf("decode fashn response: %w", err)
		}
		return struct{}{}, nil
	})
	if !utils.IsCallerGone(err) {
		s.metrics.UpstreamCall(provider, err)
	}
	return err
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *service) Run(ctx context.Context, input Input) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "TryOn.Run"),
	)

	if len(input.UserImage) == 0 || strings.TrimSpace(input.GarmentImageURL) == "" {
		return "", apperr.Invalid("Missing user or product image.")
	}

	var started runResponse
	err := s.do(ctx, http.MethodPost, "/run", runRequest{
		ModelImage:       dataURI(input.MimeType, input.UserImage),
		GarmentImage:     strings.TrimSpace(input.GarmentImageURL),
		Category:         "auto",
		SegmentationFree: true,
		ModerationLevel:  "permissive",
		GarmentPhotoType: "auto",
		Mode:             "balanced",
		Seed:             42,
		NumSamples:       1,
		OutputFormat:     "png",
	}, &started)
	if err == nil && started.ID == "" {
		err = ErrNoPredictionID
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Error("failed to start prediction", zap.Error(err))
		return "", apperr.Wrap(apperr.KindUpstreamFailure, "Failed to start prediction.", err)
	}

	log = log.With(zap.String("prediction_id", started.ID))
	log.Info("prediction started")

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if err := wait(ctx, s.cfg.PollInterval); err != nil {
			log.Info("prediction polling cancelled", zap.Int("attempt", attempt))
			return "", err
		}

		var status statusResponse
		if err := s.do(ctx, http.MethodGet, "/status/"+started.ID, nil, &status); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			log.Error("failed to poll prediction", zap.Int("attempt", attempt), zap.Error(err))
			return "", apperr.Wrap(apperr.KindUpstreamFailure, "Virtual try-on failed.", err)
		}

		switch status.Status {
		case statusCompleted:
			if len(status.Output) > 0 && status.Output[0] != "" {
				log.Info("prediction completed", zap.Int("attempts", attempt))
				return status.Output[0], nil
			}
		case statusFailed:
			reason := errorText(status.Error)
			log.Warn("prediction failed", zap.String("reason", reason))
			return "", apperr.Wrap(apperr.KindUpstreamFailure, "Prediction failed.",
				fmt.Errorf("%w: %s", ErrPredictionFailed, reason))
		}
	}

	log.Warn("prediction timed out", zap.Int("attempts", s.cfg.MaxAttempts))
	return "", apperr.New(apperr.KindRequestTimeout, "Prediction timed out.")
}
