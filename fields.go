package ec2meta

import (
	"fmt"
	"sort"
	"strings"
)

// Kind describes how a field's value is assembled.
type Kind int

const (
	// KindScalar fields are read with a single request.
	KindScalar Kind = iota
	// KindBlockDeviceMapping is a mapping of device-mapping name to device.
	KindBlockDeviceMapping
	// KindPublicKeys is an ordered list of public keys.
	KindPublicKeys
	// KindNetwork is a mapping of MAC address to interface attributes.
	KindNetwork
	// KindUserData is read from the top-level user-data path.
	KindUserData
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindBlockDeviceMapping:
		return "block-device-mapping"
	case KindPublicKeys:
		return "public-keys"
	case KindNetwork:
		return "network"
	case KindUserData:
		return "user-data"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Composite reports whether values of this kind need more than one request.
func (k Kind) Composite() bool {
	return k == KindBlockDeviceMapping || k == KindPublicKeys || k == KindNetwork
}

// Field is an entry in the field table.
type Field struct {
	// Name is the logical field name, e.g. "InstanceId"
	Name string
	// Path is relative to latest/meta-data/ (or latest/ for user-data)
	Path string
	Kind Kind
}

// fieldTable maps field names to their IMDS paths. See
// https://docs.aws.amazon.com/AWSEC2/latest/UserGuide/instancedata-data-categories.html
//
//nolint:gochecknoglobals
var fieldTable = map[string]Field{
	"AmiId":              {Path: "ami-id"},
	"AmiLaunchIndex":     {Path: "ami-launch-index"},
	"AmiManifestPath":    {Path: "ami-manifest-path"},
	"AncestorAmiIds":     {Path: "ancestor-ami-ids"},
	"AvailabilityZone":   {Path: "placement/availability-zone"},
	"BlockDeviceMapping": {Path: "block-device-mapping", Kind: KindBlockDeviceMapping},
	"Hostname":           {Path: "hostname"},
	"InstanceAction":     {Path: "instance-action"},
	"InstanceId":         {Path: "instance-id"},
	"InstanceLifeCycle":  {Path: "instance-life-cycle"},
	"InstanceType":       {Path: "instance-type"},
	"KernelId":           {Path: "kernel-id"},
	"LocalHostname":      {Path: "local-hostname"},
	"LocalIpv4":          {Path: "local-ipv4"},
	"Mac":                {Path: "mac"},
	"Network":            {Path: "network/interfaces/macs", Kind: KindNetwork},
	"ProductCodes":       {Path: "product-codes"},
	"PublicHostname":     {Path: "public-hostname"},
	"PublicIpv4":         {Path: "public-ipv4"},
	"PublicKeys":         {Path: "public-keys", Kind: KindPublicKeys},
	"RamdiskId":          {Path: "ramdisk-id"},
	"Region":             {Path: "placement/region"},
	"ReservationId":      {Path: "reservation-id"},
	"SecurityGroups":     {Path: "security-groups"},
	"UserData":           {Path: "user-data", Kind: KindUserData},
}

// LookupField returns the table entry for the named field.
func LookupField(name string) (Field, error) {
	f, ok := fieldTable[name]
	if !ok {
		return Field{}, fmt.Errorf("%w: %q", ErrUnsupportedField, name)
	}

	f.Name = name

	return f, nil
}

// Fields returns the names of all supported fields, sorted.
func Fields() []string {
	names := make([]string, 0, len(fieldTable))
	for name := range fieldTable {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// requestPath joins the field's path and an optional sub-path. A trailing
// slash on subPath is kept, since IMDS uses it to mark listings.
func (f Field) requestPath(subPath string) string {
	subPath = strings.TrimPrefix(subPath, "/")
	if subPath == "" {
		return f.Path
	}

	return f.Path + "/" + subPath
}
