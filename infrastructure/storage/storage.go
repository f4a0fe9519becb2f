// Package storage saves photo bytes to object storage with a local
// filesystem fallback and resolves the result into a models.ImageLocation.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"photocritic/domain/models"
	"photocritic/pkg/logger"
)

var ErrNoBackend = errors.New("storage: no backend for location")

// Store is one place image bytes can live.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	Get(ctx context.Context, key string) ([]byte, error)
	HealthCheck(ctx context.Context) error
}

// Storage writes to the cloud store when configured, then the local store,
// and finally keeps the bytes inline so an upload is never lost.
type Storage struct {
	cloud Store // may be nil
	local Store // may be nil
}

func New(cloud, local Store) *Storage {
	return &Storage{cloud: cloud, local: local}
}

// Save stores data under key and returns its resolved location.
func (s *Storage) Save(ctx context.Context, key string, data []byte, contentType string) models.ImageLocation {
	var cloudURL, localURL string

	if s.cloud != nil {
		url, err := s.cloud.Put(ctx, key, data, contentType)
		if err == nil {
			cloudURL = url
		} else {
			logger.StorageError("cloud_put", "Object storage upload failed, falling back", err, map[string]interface{}{"key": key})
		}
	}
	if cloudURL == "" && s.local != nil {
		url, err := s.local.Put(ctx, key, data, contentType)
		if err == nil {
			localURL = url
		} else {
			logger.StorageError("local_put", "Local storage write failed, keeping image inline", err, map[string]interface{}{"key": key})
		}
	}

	inline := ""
	if cloudURL == "" && localURL == "" {
		inline = base64.StdEncoding.EncodeToString(data)
	}
	loc, _ := models.ResolveImageLocation(cloudURL, key, localURL, key, inline)
	logger.Storage("save", "Image stored", map[string]interface{}{
		"key":     key,
		"backend": string(loc.Backend),
		"bytes":   len(data),
	})
	return loc
}

// Load reads the bytes behind a location.
func (s *Storage) Load(ctx context.Context, loc models.ImageLocation) ([]byte, error) {
	switch loc.Backend {
	case models.StorageInline:
		data, err := base64.StdEncoding.DecodeString(loc.InlineData)
		if err != nil {
			return nil, fmt.Errorf("decode inline image: %w", err)
		}
		return data, nil
	case models.StorageS3:
		if s.cloud == nil {
			return nil, ErrNoBackend
		}
		return s.cloud.Get(ctx, loc.StorageKey)
	case models.StorageLocal:
		if s.local == nil {
			return nil, ErrNoBackend
		}
		return s.local.Get(ctx, loc.StorageKey)
	}
	return nil, ErrNoBackend
}

// HealthCheck reports the state of each configured backend.
func (s *Storage) HealthCheck(ctx context.Context) map[string]error {
	out := make(map[string]error)
	if s.cloud != nil {
		out[string(models.StorageS3)] = s.cloud.HealthCheck(ctx)
	}
	if s.local != nil {
		out[string(models.StorageLocal)] = s.local.HealthCheck(ctx)
	}
	return out
}
