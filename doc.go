// Package ec2meta reads EC2 instance metadata from the Instance Metadata
// Service (IMDS), one field at a time or in bulk.
//
// # Usage
//
// Create a [Getter] with [New], giving it a writable directory for cached
// responses:
//
//	g, err := ec2meta.New("/var/cache/ec2meta")
//	if err != nil {
//		return err
//	}
//
//	id, err := g.InstanceID(ctx)
//
// Each field is resolved through a static table of field names (see [Fields])
// to a path below the IMDS "meta-data" category. The user-data field is read
// from its own top-level path instead.
//
// Composite fields ([Getter.BlockDeviceMapping], [Getter.PublicKeys] and
// [Getter.Network]) are assembled by walking the newline-delimited listings
// that IMDS returns for directories, one request at a time.
//
// # Caching
//
// [Getter.All] and [Getter.Multiple] store their combined result as a JSON file
// in the cache directory, named by a hash of the sorted set of requested field
// names. A cached file is returned as-is for as long as it exists and can be
// read, so the data may be arbitrarily stale. Use [Getter.Forget] (or remove
// the file) to refresh it.
//
// # Dummy mode
//
// Outside of EC2 the metadata endpoint is unreachable, and every fetch fails
// with [ErrNotEC2]. For local development and tests, [WithDummy] (or
// [Getter.AllowDummy]) switches all fetches to a fixed canned data set (see
// [DefaultDummyData]).
package ec2meta
