package geocode

import (
	"context"
	"fmt"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/config"
)

type resolver interface {
	Reverse(ctx context.Context, lat, lon float64) (*Address, error)
}

// Service answers reverse-geocode lookups with a bounded cache in
// front of the upstream provider.
type Service interface {
	Reverse(ctx context.Context, lat, lon float64) (*Address, error)
}

type service struct {
	client resolver
	cache  *Cache
}

// NewService builds a cached reverse-geocoding service.
func NewService(client resolver, cache *Cache) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("geocode client is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("geocode cache is required")
	}
	return &service{client: client, cache: cache}, nil
}

// NewServiceFromConfig wires the default Nominatim client and cache.
func NewServiceFromConfig(cfg config.GeocodeConfig) (Service, error) {
	client := NewClient(
		WithBaseURL(cfg.BaseURL),
		WithUserAgent(cfg.UserAgent),
	)
	return NewService(client, NewCache(cfg.CacheSize, cfg.CacheTTL))
}

func (s *service) Reverse(ctx context.Context, lat, lon float64) (*Address, error) {
	if address, ok := s.cache.Get(lat, lon); ok {
		return address, nil
	}
	address, err := s.client.Reverse(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	s.cache.Put(lat, lon, address)
	return address, nil
}
