// Package fakeimds provides an in-process stand-in for the EC2 Instance
// Metadata Service, for tests.
package fakeimds

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
)

const (
	// MAC is the address of the fake instance's only network interface.
	MAC = "0e:49:61:0f:c3:11"

	// InstanceID is the fake instance's ID.
	InstanceID = "i-1234567890abcdef0"

	// PublicKey is the key material of public key 0.
	PublicKey = "ssh-rsa AAAAB3NzaC1yc2EAAAADAQABAAABAQC/JxGByvHDHgQAU+0nRFWdvMPi22OgNUn9ansrI8QN1ZJGxD1ML8DRnJ3Q3zFKq test"
)

// Server is a running fake metadata service.
type Server struct {
	*httptest.Server

	// Endpoint is the base URL of the service, suitable for WithEndpoint
	Endpoint *url.URL

	requests atomic.Int64
}

// Requests returns the number of HTTP requests served so far, including
// token requests.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Data returns the files served by a new Server. Directory listings are
// synthesized with index.html files holding one child per line, as IMDS
// does.
//
//nolint:funlen
func Data() fstest.MapFS {
	macDir := "latest/meta-data/network/interfaces/macs/" + MAC

	return fstest.MapFS{
		"index.html":        &fstest.MapFile{Data: []byte("latest/\n")},
		"latest/index.html": &fstest.MapFile{Data: []byte("dynamic/\nmeta-data/\nuser-data")},
		"latest/meta-data/index.html": &fstest.MapFile{Data: []byte(`ami-id
ami-launch-index
ami-manifest-path
ancestor-ami-ids
block-device-mapping/
hostname
instance-action
instance-id
instance-life-cycle
instance-type
kernel-id
local-hostname
local-ipv4
mac
network/
placement/
product-codes
public-hostname
public-ipv4
public-keys/
ramdisk-id
reservation-id
security-groups
`)},
		"latest/meta-data/ami-id":              &fstest.MapFile{Data: []byte("ami-0a887e401f7654935")},
		"latest/meta-data/ami-launch-index":    &fstest.MapFile{Data: []byte("0")},
		"latest/meta-data/ami-manifest-path":   &fstest.MapFile{Data: []byte("(unknown)")},
		"latest/meta-data/ancestor-ami-ids":    &fstest.MapFile{Data: []byte("ami-bff32ccc\nami-4e8a0c0f")},
		"latest/meta-data/hostname":            &fstest.MapFile{Data: []byte("ip-172-16-34-43.ec2.internal")},
		"latest/meta-data/instance-action":     &fstest.MapFile{Data: []byte("none")},
		"latest/meta-data/instance-id":         &fstest.MapFile{Data: []byte(InstanceID)},
		"latest/meta-data/instance-life-cycle": &fstest.MapFile{Data: []byte("on-demand")},
		"latest/meta-data/instance-type":       &fstest.MapFile{Data: []byte("m4.xlarge")},
		"latest/meta-data/kernel-id":           &fstest.MapFile{Data: []byte("aki-5c21674b")},
		"latest/meta-data/local-hostname":      &fstest.MapFile{Data: []byte("ip-172-16-34-43.ec2.internal")},
		"latest/meta-data/local-ipv4":          &fstest.MapFile{Data: []byte("172.16.34.43")},
		"latest/meta-data/mac":                 &fstest.MapFile{Data: []byte(MAC)},
		"latest/meta-data/product-codes":       &fstest.MapFile{Data: []byte("3iplms73etrdhxdepv72l6ywj")},
		"latest/meta-data/public-hostname":     &fstest.MapFile{Data: []byte("ec2-192-0-2-54.compute-1.amazonaws.com")},
		"latest/meta-data/public-ipv4":         &fstest.MapFile{Data: []byte("192.0.2.54")},
		"latest/meta-data/ramdisk-id":          &fstest.MapFile{Data: []byte("ari-01bb5768")},
		"latest/meta-data/reservation-id":      &fstest.MapFile{Data: []byte("r-046cb3eca3e201d2f")},
		"latest/meta-data/security-groups":     &fstest.MapFile{Data: []byte("ura-launch-wizard-harry-1")},

		"latest/meta-data/placement/index.html": &fstest.MapFile{
			Data: []byte("availability-zone\nregion"),
		},
		"latest/meta-data/placement/availability-zone": &fstest.MapFile{Data: []byte("us-east-1a")},
		"latest/meta-data/placement/region":            &fstest.MapFile{Data: []byte("us-east-1")},

		"latest/meta-data/block-device-mapping/index.html": &fstest.MapFile{
			Data: []byte("ami\nebs0\nephemeral0\nroot\nswap"),
		},
		"latest/meta-data/block-device-mapping/ami":        &fstest.MapFile{Data: []byte("/dev/xvda")},
		"latest/meta-data/block-device-mapping/ebs0":       &fstest.MapFile{Data: []byte("sdb")},
		"latest/meta-data/block-device-mapping/ephemeral0": &fstest.MapFile{Data: []byte("sdb")},
		"latest/meta-data/block-device-mapping/root":       &fstest.MapFile{Data: []byte("/dev/xvda")},
		"latest/meta-data/block-device-mapping/swap":       &fstest.MapFile{Data: []byte("sdcs")},

		"latest/meta-data/public-keys/index.html":    &fstest.MapFile{Data: []byte("0=my-key")},
		"latest/meta-data/public-keys/0/index.html":  &fstest.MapFile{Data: []byte("openssh-key")},
		"latest/meta-data/public-keys/0/openssh-key": &fstest.MapFile{Data: []byte(PublicKey)},

		"latest/meta-data/network/index.html":            &fstest.MapFile{Data: []byte("interfaces/")},
		"latest/meta-data/network/interfaces/index.html": &fstest.MapFile{Data: []byte("macs/")},
		"latest/meta-data/network/interfaces/macs/index.html": &fstest.MapFile{
			Data: []byte(MAC + "/"),
		},
		macDir + "/index.html": &fstest.MapFile{Data: []byte(`device-number
interface-id
ipv4-associations/
local-ipv4s
mac
subnet-id
vpc-id`)},
		macDir + "/device-number":                &fstest.MapFile{Data: []byte("0")},
		macDir + "/interface-id":                 &fstest.MapFile{Data: []byte("eni-0f95d3625f5c521cc")},
		macDir + "/ipv4-associations/index.html": &fstest.MapFile{Data: []byte("192.0.2.54")},
		macDir + "/ipv4-associations/192.0.2.54": &fstest.MapFile{Data: []byte("172.16.34.43")},
		macDir + "/local-ipv4s":                  &fstest.MapFile{Data: []byte("172.16.34.43")},
		macDir + "/mac":                          &fstest.MapFile{Data: []byte(MAC)},
		macDir + "/subnet-id":                    &fstest.MapFile{Data: []byte("subnet-0ac62554")},
		macDir + "/vpc-id":                       &fstest.MapFile{Data: []byte("vpc-d295a6a7")},

		"latest/user-data": &fstest.MapFile{Data: []byte("1234,john,reboot,true\n")},
	}
}

// NewServer starts a fake metadata service serving Data, after applying each
// of the given modifications to it. The server is closed when the test ends.
func NewServer(t *testing.T, modify ...func(fstest.MapFS)) *Server {
	t.Helper()

	files := Data()
	for _, m := range modify {
		m(files)
	}

	permRedirectMW := func(pathHandler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrec := httptest.NewRecorder()
			pathHandler.ServeHTTP(wrec, r)

			// try again on 301s - likely just a trailing `/` missing
			// (the AWS client won't follow them, and the real IMDS endpoint
			// doesn't care about /s)
			if wrec.Code == http.StatusMovedPermanently {
				if !strings.HasSuffix(r.URL.Path, "/") {
					r.URL.Path += "/"
				}

				pathHandler.ServeHTTP(w, r)

				return
			}

			for k, v := range wrec.Header() {
				w.Header()[k] = v
			}

			w.WriteHeader(wrec.Code)
			_, _ = w.Write(wrec.Body.Bytes())
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/latest/api/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			_, _ = io.Copy(io.Discard, r.Body)
			_ = r.Body.Close()
		}

		w.Header().Set("X-Aws-Ec2-Metadata-Token-Ttl-Seconds", "21600")
		_, _ = w.Write([]byte("testtoken"))
	})
	mux.Handle("/", http.FileServer(http.FS(files)))

	s := &Server{}

	handler := permRedirectMW(mux)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)

	u, err := url.Parse(s.URL)
	if err != nil {
		t.Fatal(err)
	}

	s.Endpoint = u

	return s
}

// Without returns a modification that removes the named files.
func Without(names ...string) func(fstest.MapFS) {
	return func(files fstest.MapFS) {
		for _, name := range names {
			delete(files, name)
		}
	}
}

// ClosedEndpoint returns the URL of a server that is no longer listening, for
// simulating an unreachable metadata service.
func ClosedEndpoint(t *testing.T) *url.URL {
	t.Helper()

	srv := httptest.NewServer(http.NotFoundHandler())
	u, err := url.Parse(srv.URL)

	srv.Close()

	if err != nil {
		t.Fatal(err)
	}

	return u
}
