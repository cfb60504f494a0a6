package ec2meta

import (
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout is the per-request timeout used unless WithTimeout is given.
// It is short so that calls fail fast outside of EC2.
const DefaultTimeout = 100 * time.Millisecond

// Option configures a Getter.
type Option interface {
	apply(*config)
}

type config struct {
	endpoint   *url.URL
	httpclient *http.Client
	imdsclient IMDSClient
	provider   Provider
	middleware []func(Provider) Provider
	dummyData  *DummyData
	log        logrus.FieldLogger
	timeout    time.Duration
	dummy      bool
}

type optionFunc func(*config)

func (o optionFunc) apply(c *config) {
	o(c)
}

// WithDummy enables dummy mode from the start. See Getter.AllowDummy.
func WithDummy() Option {
	return optionFunc(func(cfg *config) {
		cfg.dummy = true
	})
}

// WithDummyData replaces the canned data served in dummy mode. The data is
// copied, so later changes to d have no effect.
func WithDummyData(d DummyData) Option {
	return optionFunc(func(cfg *config) {
		cfg.dummyData = &d
	})
}

// WithTimeout sets the per-request timeout. It has no effect when a client is
// given with WithHTTPClient or WithIMDSClient.
func WithTimeout(timeout time.Duration) Option {
	return optionFunc(func(cfg *config) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	})
}

// WithEndpoint overrides the metadata service endpoint. Only the scheme and
// host are used.
func WithEndpoint(u *url.URL) Option {
	return optionFunc(func(cfg *config) {
		if u != nil {
			cfg.endpoint = u
		}
	})
}

// WithHTTPClient sets the HTTP client used by the default IMDS client. The
// SDK can't add an AWS_CA_BUNDLE to a plain *http.Client, so loading the AWS
// config fails when that variable is set; leave this unset to get a client
// that supports it.
//
// Note that this should not be used together with WithIMDSClient.
func WithHTTPClient(client *http.Client) Option {
	return optionFunc(func(cfg *config) {
		if client != nil {
			cfg.httpclient = client
		}
	})
}

// WithIMDSClient overrides the AWS IMDS client. This can be used for
// configuring specialized client options.
func WithIMDSClient(client IMDSClient) Option {
	return optionFunc(func(cfg *config) {
		if client != nil {
			cfg.imdsclient = client
		}
	})
}

// WithProvider replaces the metadata service entirely with p. Dummy mode
// still takes precedence.
func WithProvider(p Provider) Option {
	return optionFunc(func(cfg *config) {
		if p != nil {
			cfg.provider = p
		}
	})
}

// WithProviderMiddleware wraps every provider the Getter reads from, including
// the dummy provider. Middleware is applied in the order given, so the last
// one is outermost.
func WithProviderMiddleware(mw func(Provider) Provider) Option {
	return optionFunc(func(cfg *config) {
		if mw != nil {
			cfg.middleware = append(cfg.middleware, mw)
		}
	})
}

// WithLogger sets the logger. The logrus standard logger is used by default.
func WithLogger(log logrus.FieldLogger) Option {
	return optionFunc(func(cfg *config) {
		if log != nil {
			cfg.log = log
		}
	})
}
