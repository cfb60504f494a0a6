package ec2meta

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hairyhenderson/go-ec2meta/internal"
	"github.com/hairyhenderson/go-ec2meta/internal/env"
	"github.com/hairyhenderson/go-ec2meta/internal/filecache"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultEndpoint is the link-local address of the metadata service.
	DefaultEndpoint = "http://169.254.169.254"

	// EndpointEnvVar can be set to override DefaultEndpoint. As with other
	// variables, EC2META_ENDPOINT_FILE may name a file holding the value.
	EndpointEnvVar = "EC2META_ENDPOINT"

	metadataPrefix = "latest/meta-data/"
	rootPrefix     = "latest/"

	reachabilityField = "InstanceId"
)

// Getter reads instance metadata. It is not safe for concurrent use.
type Getter struct {
	base       *url.URL
	httpclient *http.Client
	imdsclient IMDSClient
	source     Provider
	dummy      Provider
	middleware []func(Provider) Provider
	cache      *filecache.Store
	log        logrus.FieldLogger
	timeout    time.Duration
	allowDummy bool
}

// New returns a Getter that caches bulk results in cacheDir. The directory
// must exist and be writable. No network requests are made.
func New(cacheDir string, opts ...Option) (*Getter, error) {
	store, err := filecache.New(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheDir, err)
	}

	cfg := config{}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.log == nil {
		cfg.log = logrus.StandardLogger()
	}

	if cfg.timeout == 0 {
		cfg.timeout = DefaultTimeout
	}

	if cfg.endpoint == nil {
		cfg.endpoint, err = endpointFromEnv()
		if err != nil {
			return nil, err
		}
	}

	dummyData := DefaultDummyData()
	if cfg.dummyData != nil {
		dummyData = *cfg.dummyData
	}

	g := &Getter{
		base:       cfg.endpoint,
		httpclient: cfg.httpclient,
		imdsclient: cfg.imdsclient,
		source:     cfg.provider,
		dummy:      NewDummyProvider(dummyData),
		middleware: cfg.middleware,
		cache:      store,
		log:        cfg.log,
		timeout:    cfg.timeout,
		allowDummy: cfg.dummy,
	}

	return g, nil
}

func endpointFromEnv() (*url.URL, error) {
	raw := env.Getenv(EndpointEnvVar, DefaultEndpoint)

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EndpointEnvVar, raw, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s %q: scheme and host are required", EndpointEnvVar, raw)
	}

	return u, nil
}

// AllowDummy switches the Getter to dummy mode for the rest of its lifetime.
// There is no way to switch back.
func (g *Getter) AllowDummy() {
	g.allowDummy = true
}

// Dummy reports whether dummy mode is enabled.
func (g *Getter) Dummy() bool {
	return g.allowDummy
}

// CacheDir returns the directory holding cached results.
func (g *Getter) CacheDir() string {
	return g.cache.Dir()
}

// provider returns the source fetches are made from, with any middleware
// applied.
func (g *Getter) provider(ctx context.Context) (Provider, error) {
	var p Provider

	switch {
	case g.allowDummy:
		p = g.dummy
	case g.source != nil:
		p = g.source
	default:
		client, err := g.getClient(ctx)
		if err != nil {
			return nil, err
		}

		g.source = &imdsProvider{client: client}
		p = g.source
	}

	for _, mw := range g.middleware {
		p = mw(p)
	}

	return p, nil
}

// IsRunningOnEC2 checks that the metadata service is reachable by reading the
// instance ID. In dummy mode it always succeeds. The returned error wraps
// ErrNotEC2 and the cause.
func (g *Getter) IsRunningOnEC2(ctx context.Context) error {
	if g.allowDummy {
		return nil
	}

	field, err := LookupField(reachabilityField)
	if err != nil {
		return err
	}

	p, err := g.provider(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotEC2, err)
	}

	if _, err := p.Get(ctx, field, ""); err != nil {
		g.log.WithError(err).Debug("metadata endpoint unreachable")

		return fmt.Errorf("%w: %w", ErrNotEC2, err)
	}

	return nil
}

// Get returns the raw value of the named field, or of subPath below it. For
// composite fields with an empty subPath this is the newline-delimited
// listing of child keys; use the dedicated methods to get assembled values.
func (g *Getter) Get(ctx context.Context, name, subPath string) (string, error) {
	field, err := LookupField(name)
	if err != nil {
		return "", err
	}

	if err := g.IsRunningOnEC2(ctx); err != nil {
		return "", err
	}

	return g.fetch(ctx, field, subPath)
}

// fetch issues a single request without checking the environment.
func (g *Getter) fetch(ctx context.Context, field Field, subPath string) (string, error) {
	p, err := g.provider(ctx)
	if err != nil {
		return "", err
	}

	log := g.log.WithField("field", field.Name)
	if u, err := g.url(field, subPath); err == nil {
		log = log.WithField("url", u.String())
	}

	v, err := p.Get(ctx, field, subPath)
	if err != nil {
		log.WithError(err).Debug("fetch failed")

		return "", fmt.Errorf("get %s: %w", field.requestPath(subPath), err)
	}

	log.Debug("fetched")

	return v, nil
}

// URL returns the URL that Get would request for the named field.
func (g *Getter) URL(name, subPath string) (*url.URL, error) {
	field, err := LookupField(name)
	if err != nil {
		return nil, err
	}

	return g.url(field, subPath)
}

func (g *Getter) url(field Field, subPath string) (*url.URL, error) {
	base := &url.URL{Scheme: g.base.Scheme, Host: g.base.Host, Path: "/"}

	if field.Kind == KindUserData {
		return internal.SubURL(base, rootPrefix+field.Path)
	}

	return internal.SubURL(base, metadataPrefix+field.requestPath(subPath))
}

// Call resolves an accessor name of the form "get<FieldName>" and calls it.
// The composite fields and "getAll" have dedicated methods; every other
// field is read with Get. Names without the "get" prefix fail with
// ErrUnknownAccessor, and unknown fields with ErrUnsupportedField.
func (g *Getter) Call(ctx context.Context, accessor string) (any, error) {
	name, ok := strings.CutPrefix(accessor, "get")
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAccessor, accessor)
	}

	switch name {
	case "All":
		return g.All(ctx)
	case "BlockDeviceMapping":
		return g.BlockDeviceMapping(ctx)
	case "PublicKeys":
		return g.PublicKeys(ctx)
	case "Network":
		return g.Network(ctx)
	}

	return g.Get(ctx, name, "")
}
