package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/yungbote/artspace-backend/internal/platform/gcp"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
	"github.com/yungbote/artspace-backend/internal/platform/mediastore"
)

var newBucketService = gcp.NewBucketService

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Bucket       string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "media mirror bootstrap failed"
	}
	return fmt.Sprintf(
		"media mirror bootstrap failed (code=%s bucket=%q emulator_host=%q): %v",
		e.Code,
		e.Bucket,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveMediaMirror returns the GCS mirror for published media, or nil when
// no bucket is configured and media is served from MEDIA_ROOT only.
func resolveMediaMirror(ctx context.Context, log *logger.Logger, cfg Config) (gcp.BucketService, error) {
	bucketCfg := gcp.BucketConfig{
		Bucket:       strings.TrimSpace(cfg.MediaBucket),
		CDNDomain:    strings.TrimSpace(cfg.MediaCDNDomain),
		EmulatorHost: strings.TrimSpace(cfg.StorageEmulator),
		Credentials:  cfg.GCPCredentials,
	}
	if bucketCfg.Bucket == "" {
		log.Info("Media mirror disabled; serving media from local root", "root", cfg.MediaRoot)
		return nil, nil
	}
	if bucketCfg.EmulatorHost != "" {
		if err := validateEmulatorHost(bucketCfg.EmulatorHost); err != nil {
			err = &StorageProviderBootstrapError{
				Code:         StorageProviderBootstrapErrorInvalidEmulatorHost,
				Bucket:       bucketCfg.Bucket,
				EmulatorHost: bucketCfg.EmulatorHost,
				Cause:        err,
			}
			log.Error("Media mirror selection failed", "bucket", bucketCfg.Bucket, "error", err)
			return nil, err
		}
	}

	log.Info(
		"Selecting media mirror",
		"bucket", bucketCfg.Bucket,
		"cdn_domain", bucketCfg.CDNDomain,
		"emulator_host", bucketCfg.EmulatorHost,
	)
	bucket, err := newBucketService(ctx, log, bucketCfg)
	if err != nil {
		classified := &StorageProviderBootstrapError{
			Code:         StorageProviderBootstrapErrorConnectFailed,
			Bucket:       bucketCfg.Bucket,
			EmulatorHost: bucketCfg.EmulatorHost,
			Cause:        err,
		}
		log.Error("Media mirror bootstrap failed", "error_code", classified.Code, "error", classified)
		return nil, classified
	}
	return bucket, nil
}

func validateEmulatorHost(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("emulator host must be an http(s) URL")
	}
	if u.Host == "" {
		return errors.New("emulator host has no host")
	}
	return nil
}

// wireMediaStore builds the local store, mirrored to GCS when configured.
func wireMediaStore(ctx context.Context, log *logger.Logger, cfg Config) (*mediastore.Store, gcp.BucketService, error) {
	bucket, err := resolveMediaMirror(ctx, log, cfg)
	if err != nil {
		return nil, nil, err
	}
	var mirror mediastore.Mirror
	if bucket != nil {
		mirror = bucket
	}
	store, err := mediastore.New(log, cfg.MediaRoot, cfg.MediaPublicBaseURL, mirror)
	if err != nil {
		if bucket != nil {
			_ = bucket.Close()
		}
		return nil, nil, fmt.Errorf("init media store: %w", err)
	}
	return store, bucket, nil
}
