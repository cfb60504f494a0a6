package ec2meta

import (
	"context"
	"fmt"
	"strings"
)

// BlockDeviceMapping returns the instance's block device mapping, keyed by
// mapping name (e.g. "root", "ebs0") with the device as the value.
func (g *Getter) BlockDeviceMapping(ctx context.Context) (map[string]string, error) {
	if err := g.IsRunningOnEC2(ctx); err != nil {
		return nil, err
	}

	return g.blockDeviceMapping(ctx)
}

func (g *Getter) blockDeviceMapping(ctx context.Context) (map[string]string, error) {
	field, err := LookupField("BlockDeviceMapping")
	if err != nil {
		return nil, err
	}

	listing, err := g.fetch(ctx, field, "")
	if err != nil {
		return nil, err
	}

	out := map[string]string{}

	for _, name := range splitLines(listing) {
		name = strings.TrimSuffix(name, "/")

		out[name], err = g.fetch(ctx, field, name)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// PublicKeys returns the public keys available to the instance, in the order
// the metadata service lists them.
func (g *Getter) PublicKeys(ctx context.Context) ([]PublicKey, error) {
	if err := g.IsRunningOnEC2(ctx); err != nil {
		return nil, err
	}

	return g.publicKeys(ctx)
}

func (g *Getter) publicKeys(ctx context.Context) ([]PublicKey, error) {
	field, err := LookupField("PublicKeys")
	if err != nil {
		return nil, err
	}

	listing, err := g.fetch(ctx, field, "")
	if err != nil {
		return nil, err
	}

	keys := []PublicKey{}

	for _, line := range splitLines(listing) {
		index, name, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("malformed public-keys entry %q", line)
		}

		formats, err := g.fetch(ctx, field, index+"/")
		if err != nil {
			return nil, err
		}

		lines := splitLines(formats)
		if len(lines) == 0 {
			return nil, fmt.Errorf("no formats listed for public key %s", index)
		}

		format := strings.TrimSuffix(lines[0], "/")

		key, err := g.fetch(ctx, field, index+"/"+format)
		if err != nil {
			return nil, err
		}

		keys = append(keys, PublicKey{
			KeyName: name,
			Index:   index,
			Format:  format,
			Key:     key,
		})
	}

	return keys, nil
}

// Network returns the attributes of each network interface, keyed by MAC
// address and then by attribute name (e.g. "local-ipv4s", "subnet-id").
func (g *Getter) Network(ctx context.Context) (map[string]map[string]string, error) {
	if err := g.IsRunningOnEC2(ctx); err != nil {
		return nil, err
	}

	return g.network(ctx)
}

func (g *Getter) network(ctx context.Context) (map[string]map[string]string, error) {
	field, err := LookupField("Network")
	if err != nil {
		return nil, err
	}

	listing, err := g.fetch(ctx, field, "")
	if err != nil {
		return nil, err
	}

	out := map[string]map[string]string{}

	for _, mac := range splitLines(listing) {
		mac = strings.TrimSuffix(mac, "/")

		attrList, err := g.fetch(ctx, field, mac+"/")
		if err != nil {
			return nil, err
		}

		attrs := map[string]string{}

		for _, attr := range splitLines(attrList) {
			// sub-directories (e.g. ipv4-associations/) are kept as their
			// raw listing
			v, err := g.fetch(ctx, field, mac+"/"+attr)
			if err != nil {
				return nil, err
			}

			attrs[strings.TrimSuffix(attr, "/")] = v
		}

		out[mac] = attrs
	}

	return out, nil
}

// splitLines splits a newline-delimited listing, dropping blank lines.
func splitLines(s string) []string {
	lines := []string{}

	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lines = append(lines, line)
	}

	return lines
}
