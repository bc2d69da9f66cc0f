// Package media uploads files to Cloudinary and hands back their public URL.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"suitup-be/internal/apperr"
	"suitup-be/internal/logger"
	"suitup-be/internal/metrics"
	"suitup-be/internal/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	provider      = "cloudinary"
	uploadTimeout = 30 * time.Second
)

var (
	ErrNotConfigured = errors.New("cloudinary credentials are not configured")
	ErrNoSecureURL   = errors.New("cloudinary response has no secure_url")
)

type Uploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
}

type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	// BaseURL overrides the upload API root, mostly for tests.
	BaseURL string
}

type cloudinaryUploader struct {
	// cld is nil when credentials are missing.
	cld     *cloudinary.Cloudinary
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

func NewCloudinaryUploader(cfg Config, m *metrics.Metrics) Uploader {
	u := &cloudinaryUploader{
		breaker: utils.NewBreaker(provider, logger.L()),
		metrics: m,
	}

	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		logger.L().Warn("Cloudinary credentials are incomplete, uploads will fail")
		return u
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		logger.L().Warn("invalid Cloudinary configuration, uploads will fail", zap.Error(err))
		return u
	}
	if cfg.BaseURL != "" {
		cld.Config.API.UploadPrefix = strings.TrimRight(cfg.BaseURL, "/")
	}
	u.cld = cld
	return u
}

func (c *cloudinaryUploader) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "media"),
		zap.String("method", "Upload"),
		zap.String("filename", filename),
	)

	url, err := utils.ExecuteWithBreaker(c.breaker, func() (string, error) {
		url, err := c.upload(ctx, filename, file)
		if err != nil && ctx.Err() != nil {
			return "", utils.CallerGone(err)
		}
		return url, err
	})
	if utils.IsCallerGone(err) {
		log.Info("upload cancelled by client")
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	c.metrics.UpstreamCall(provider, err)
	if err != nil {
		log.Error("cloudinary upload failed", zap.Error(err))
		return "", apperr.Wrap(apperr.KindUpstreamFailure, "Upload failed.", err)
	}

	log.Info("file uploaded", zap.String("url", url))
	return url, nil
}

func (c *cloudinaryUploader) upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	if c.cld == nil {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	resp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		ResourceType:     "image",
		FilenameOverride: filename,
	})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", ErrNoSecureURL
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary error: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", ErrNoSecureURL
	}
	return resp.SecureURL, nil
}
