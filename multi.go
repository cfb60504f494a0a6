package ec2meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/hairyhenderson/go-ec2meta/internal/filecache"
)

// All returns every field in the field table. If a cached result for the
// full field set exists it is returned without contacting the metadata
// service; otherwise every field is fetched and the result is cached.
//
// Scalar fields and user-data that the instance doesn't have are left out of
// the result. Any other failure, including a failed sub-request of a composite
// field, fails the whole call and nothing is cached.
func (g *Getter) All(ctx context.Context) (Result, error) {
	return g.Multiple(ctx, Fields())
}

// Multiple returns the named fields, using the cache the same way as All.
// The cache entry depends only on the set of names, not their order.
func (g *Getter) Multiple(ctx context.Context, names []string) (Result, error) {
	fields := make([]Field, len(names))

	for i, name := range names {
		f, err := LookupField(name)
		if err != nil {
			return nil, err
		}

		fields[i] = f
	}

	key, err := filecache.Key(names)
	if err != nil {
		return nil, err
	}

	log := g.log.WithField("cache_key", key)

	if res, ok := g.loadCached(key); ok {
		log.Debug("cache hit")

		return res, nil
	}

	log.Debug("cache miss")

	if err := g.IsRunningOnEC2(ctx); err != nil {
		return nil, err
	}

	res := make(Result, len(fields))

	for _, f := range fields {
		v, err := g.value(ctx, f)

		switch {
		case err == nil:
			res[f.Name] = v
		case !f.Kind.Composite() && errors.Is(err, fs.ErrNotExist):
			// kernel-id, user-data and others are often absent
			log.WithField("field", f.Name).Debug("field not present, omitting")
		default:
			return nil, err
		}
	}

	if err := g.storeCached(key, res); err != nil {
		log.WithError(err).Warn("failed to write cache entry")
	}

	return res, nil
}

// value fetches one field through its accessor.
func (g *Getter) value(ctx context.Context, f Field) (any, error) {
	switch f.Kind {
	case KindBlockDeviceMapping:
		return g.blockDeviceMapping(ctx)
	case KindPublicKeys:
		return g.publicKeys(ctx)
	case KindNetwork:
		return g.network(ctx)
	default:
		return g.fetch(ctx, f, "")
	}
}

func (g *Getter) loadCached(key string) (Result, bool) {
	b, ok := g.cache.Get(key)
	if !ok {
		return nil, false
	}

	res := Result{}
	if err := json.Unmarshal(b, &res); err != nil {
		g.log.WithError(err).WithField("cache_key", key).Debug("ignoring undecodable cache entry")

		return nil, false
	}

	return res, true
}

func (g *Getter) storeCached(key string, res Result) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	return g.cache.Set(key, b)
}

// CacheKey returns the cache key for a set of field names. The cache file is
// named by the key with a ".json" extension.
func (g *Getter) CacheKey(names []string) (string, error) {
	for _, name := range names {
		if _, err := LookupField(name); err != nil {
			return "", err
		}
	}

	return filecache.Key(names)
}

// CachePath returns the path of the cache file for a set of field names.
func (g *Getter) CachePath(names []string) (string, error) {
	key, err := g.CacheKey(names)
	if err != nil {
		return "", err
	}

	return g.cache.Path(key), nil
}

// Forget removes the cached result for a set of field names, so that the
// next call to Multiple (or All, for the full set) fetches fresh values.
func (g *Getter) Forget(names []string) error {
	key, err := g.CacheKey(names)
	if err != nil {
		return err
	}

	return g.cache.Delete(key)
}
