package tracemeta

import (
	"go.opentelemetry.io/otel/attribute"
)

const (
	typeKey    = attribute.Key("metadata.provider")
	fieldKey   = attribute.Key("metadata.field")
	kindKey    = attribute.Key("metadata.kind")
	pathKey    = attribute.Key("metadata.path")
	subPathKey = attribute.Key("metadata.sub_path")

	sizeKey = attribute.Key("value.size")
)

// The type of provider being read from.
//
// Type: string
// Required: No
// Examples: "*ec2meta.DummyProvider"
func Type(name string) attribute.KeyValue {
	return typeKey.String(name)
}

// The logical field name.
//
// Type: string
// Required: Yes
// Examples: "InstanceId", "PublicKeys"
func Field(name string) attribute.KeyValue {
	return fieldKey.String(name)
}

// The kind of field.
//
// Type: string
// Required: No
// Examples: "scalar", "network"
func Kind(kind string) attribute.KeyValue {
	return kindKey.String(kind)
}

// The field's path below the metadata root.
//
// Type: string
// Required: Yes
// Examples: "instance-id", "network/interfaces/macs"
func Path(p string) attribute.KeyValue {
	return pathKey.String(p)
}

// The sub-path requested below the field's path. Omitted when empty.
//
// Type: string
// Required: No
// Examples: "ebs0", "0/openssh-key"
func SubPath(p string) attribute.KeyValue {
	return subPathKey.String(p)
}

// The size of the returned value, in bytes.
//
// Type: int
// Required: No
// Examples: 19, 0
func ValueSize(n int) attribute.KeyValue {
	return sizeKey.Int(n)
}
