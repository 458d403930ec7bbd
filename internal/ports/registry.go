package ports

// ValueType is the wire width of a registered value.
type ValueType int

const (
	TypeUint8 ValueType = iota
	TypeUint16
)

// Max returns the largest value representable by t.
func (t ValueType) Max() uint32 {
	switch t {
	case TypeUint8:
		return 0xFF
	case TypeUint16:
		return 0xFFFF
	default:
		return 0
	}
}

func (t ValueType) String() string {
	switch t {
	case TypeUint8:
		return "uint8"
	case TypeUint16:
		return "uint16"
	default:
		return "unknown"
	}
}

// Registry accepts named accessors at initialization. Params are externally
// readable and writable; log variables are read-only telemetry.
type Registry interface {
	AddParam(group, name string, typ ValueType, get func() uint32, set func(uint32))
	AddLog(group, name string, typ ValueType, get func() uint32)
}
