package ec2meta

import "context"

// Typed wrappers for commonly used scalar fields. Each is equivalent to
// calling Get with the field name and no sub-path.

func (g *Getter) AmiID(ctx context.Context) (string, error) {
	return g.Get(ctx, "AmiId", "")
}

func (g *Getter) AvailabilityZone(ctx context.Context) (string, error) {
	return g.Get(ctx, "AvailabilityZone", "")
}

func (g *Getter) Hostname(ctx context.Context) (string, error) {
	return g.Get(ctx, "Hostname", "")
}

func (g *Getter) InstanceID(ctx context.Context) (string, error) {
	return g.Get(ctx, "InstanceId", "")
}

func (g *Getter) InstanceType(ctx context.Context) (string, error) {
	return g.Get(ctx, "InstanceType", "")
}

func (g *Getter) LocalHostname(ctx context.Context) (string, error) {
	return g.Get(ctx, "LocalHostname", "")
}

func (g *Getter) LocalIPv4(ctx context.Context) (string, error) {
	return g.Get(ctx, "LocalIpv4", "")
}

func (g *Getter) Mac(ctx context.Context) (string, error) {
	return g.Get(ctx, "Mac", "")
}

func (g *Getter) PublicHostname(ctx context.Context) (string, error) {
	return g.Get(ctx, "PublicHostname", "")
}

func (g *Getter) PublicIPv4(ctx context.Context) (string, error) {
	return g.Get(ctx, "PublicIpv4", "")
}

func (g *Getter) Region(ctx context.Context) (string, error) {
	return g.Get(ctx, "Region", "")
}

func (g *Getter) SecurityGroups(ctx context.Context) (string, error) {
	return g.Get(ctx, "SecurityGroups", "")
}

// UserData returns the user data supplied at launch.
func (g *Getter) UserData(ctx context.Context) (string, error) {
	return g.Get(ctx, "UserData", "")
}
