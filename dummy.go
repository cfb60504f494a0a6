package ec2meta

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// DummyData is the canned data set served in dummy mode.
type DummyData struct {
	// Scalars holds values for scalar fields and user-data, by field name
	Scalars            map[string]string
	BlockDeviceMapping map[string]string
	PublicKeys         []PublicKey
	// Network maps MAC addresses to interface attributes
	Network map[string]map[string]string
}

// DefaultDummyData returns a new copy of the default canned data set.
func DefaultDummyData() DummyData {
	return DummyData{
		Scalars: map[string]string{
			"AmiId":             "ami-12345678",
			"AmiLaunchIndex":    "0",
			"AmiManifestPath":   "(unknown)",
			"AncestorAmiIds":    "ami-87654321",
			"AvailabilityZone":  "ap-northeast-1a",
			"Hostname":          "ip-10-0-0-10.ap-northeast-1.compute.internal",
			"InstanceAction":    "none",
			"InstanceId":        "i-0123456789abcdef0",
			"InstanceLifeCycle": "on-demand",
			"InstanceType":      "t3.micro",
			"KernelId":          "aki-12345678",
			"LocalHostname":     "ip-10-0-0-10.ap-northeast-1.compute.internal",
			"LocalIpv4":         "10.0.0.10",
			"Mac":               "0e:00:00:00:00:01",
			"ProductCodes":      "",
			"PublicHostname":    "ec2-192-0-2-10.ap-northeast-1.compute.amazonaws.com",
			"PublicIpv4":        "192.0.2.10",
			"RamdiskId":         "ari-12345678",
			"Region":            "ap-northeast-1",
			"ReservationId":     "r-0123456789abcdef0",
			"SecurityGroups":    "default",
			"UserData":          "#!/bin/sh\necho hello\n",
		},
		BlockDeviceMapping: map[string]string{
			"ebs0":       "sda",
			"ephemeral0": "sdb",
			"root":       "/dev/sda1",
		},
		PublicKeys: []PublicKey{
			{
				KeyName: "my-public-key",
				Index:   "0",
				Format:  "openssh-key",
				Key:     "ssh-rsa hogefuga my-public-key",
			},
		},
		Network: map[string]map[string]string{
			"0e:00:00:00:00:01": {
				"device-number":   "0",
				"interface-id":    "eni-0123456789abcdef0",
				"local-hostname":  "ip-10-0-0-10.ap-northeast-1.compute.internal",
				"local-ipv4s":     "10.0.0.10",
				"mac":             "0e:00:00:00:00:01",
				"owner-id":        "123456789012",
				"public-ipv4s":    "192.0.2.10",
				"security-groups": "default",
				"subnet-id":       "subnet-01234567",
				"vpc-id":          "vpc-01234567",
			},
		},
	}
}

// DummyProvider serves canned data in the same shape as the metadata
// service, so that composite fields are assembled exactly as they would be
// from real responses.
type DummyProvider struct {
	data DummyData
}

var _ Provider = (*DummyProvider)(nil)

// NewDummyProvider returns a provider for a copy of d.
func NewDummyProvider(d DummyData) *DummyProvider {
	return &DummyProvider{data: d.clone()}
}

func (d DummyData) clone() DummyData {
	out := DummyData{
		Scalars:            copyMap(d.Scalars),
		BlockDeviceMapping: copyMap(d.BlockDeviceMapping),
		PublicKeys:         append([]PublicKey(nil), d.PublicKeys...),
		Network:            make(map[string]map[string]string, len(d.Network)),
	}

	for mac, attrs := range d.Network {
		out.Network[mac] = copyMap(attrs)
	}

	return out
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

// Get returns the canned value for field. For composite fields an empty
// subPath lists the children, and subPath selects a child as it would on
// the real service.
func (p *DummyProvider) Get(_ context.Context, field Field, subPath string) (string, error) {
	subPath = strings.Trim(subPath, "/")

	var (
		v  string
		ok bool
	)

	switch field.Kind {
	case KindScalar, KindUserData:
		if subPath == "" {
			v, ok = p.data.Scalars[field.Name]
		}
	case KindBlockDeviceMapping:
		v, ok = p.blockDeviceMapping(subPath)
	case KindPublicKeys:
		v, ok = p.publicKeys(subPath)
	case KindNetwork:
		v, ok = p.network(subPath)
	}

	if !ok {
		return "", fmt.Errorf("%w: dummy data has no %s", fs.ErrNotExist, field.requestPath(subPath))
	}

	return v, nil
}

func (p *DummyProvider) blockDeviceMapping(subPath string) (string, bool) {
	if subPath == "" {
		return strings.Join(sortedKeys(p.data.BlockDeviceMapping, ""), "\n"), true
	}

	v, ok := p.data.BlockDeviceMapping[subPath]

	return v, ok
}

// publicKeys mimics public-keys/ (index=name lines), public-keys/<i>/ (the
// formats) and public-keys/<i>/<format>.
func (p *DummyProvider) publicKeys(subPath string) (string, bool) {
	if subPath == "" {
		lines := make([]string, len(p.data.PublicKeys))
		for i, k := range p.data.PublicKeys {
			lines[i] = k.Index + "=" + k.KeyName
		}

		return strings.Join(lines, "\n"), true
	}

	index, format, _ := strings.Cut(subPath, "/")

	for _, k := range p.data.PublicKeys {
		if k.Index != index {
			continue
		}

		switch format {
		case "":
			return k.Format, true
		case k.Format:
			return k.Key, true
		}
	}

	return "", false
}

func (p *DummyProvider) network(subPath string) (string, bool) {
	if subPath == "" {
		return strings.Join(sortedKeys(p.data.Network, "/"), "\n"), true
	}

	mac, attr, _ := strings.Cut(subPath, "/")

	attrs, ok := p.data.Network[mac]
	if !ok {
		return "", false
	}

	if attr == "" {
		return strings.Join(sortedKeys(attrs, ""), "\n"), true
	}

	v, ok := attrs[attr]

	return v, ok
}

func sortedKeys[V any](m map[string]V, suffix string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k+suffix)
	}

	sort.Strings(keys)

	return keys
}
