package cache

import (
	"context"
	"errors"
	"time"

	pkgcache "KankoLens/pkg/cache"
)

// ServiceBytes adapts a pkg/cache Service (Redis or layered) to the
// BytesCache API used by the HTTP handlers. Payloads are stored as raw
// strings so cached JSON round-trips byte-identical.
type ServiceBytes struct {
	svc pkgcache.Service
}

func NewServiceBytes(svc pkgcache.Service) *ServiceBytes {
	return &ServiceBytes{svc: svc}
}

func (s *ServiceBytes) GetBytes(key string) ([]byte, bool, error) {
	var v string
	err := s.svc.Get(context.Background(), key, &v)
	if err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(v), true, nil
}

func (s *ServiceBytes) SetBytes(key string, value []byte, ttl time.Duration) error {
	return s.svc.Set(context.Background(), key, string(value), ttl)
}

var _ BytesCache = (*ServiceBytes)(nil)
