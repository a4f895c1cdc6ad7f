package ir

type File struct {
	Path      string
	Package   string
	Namespace string
	CsOut     string
	Enums     []Enum
	Messages  []Message
}

type Enum struct {
	Name     string
	FullName string
	Values   []EnumValue
}

type EnumValue struct {
	Name   string
	Number int32
}

type Message struct {
	Name     string
	FullName string
	Fields   []Field
	Oneofs   []Oneof
}

// Oneof is a group of sibling fields sharing one storage slot and one
// discriminant. Members reference the group through Field.OneofIndex.
type Oneof struct {
	Name  string
	Index int
}

type Field struct {
	Name            string
	Number          int
	Kind            Kind
	IsRepeated      bool
	IsPacked        bool
	IsMap           bool
	OneofIndex      int // -1 when the field is not a oneof member
	DefaultValue    string
	MapKeyKind      Kind
	MapValueKind    Kind
	MapValueMessage string
	MapValueEnum    string
	MessageFullName string
	EnumFullName    string
	IsWrapper       bool
	WrapperKind     Kind
}

// InOneof reports whether the field is a member of a real oneof group.
func (f Field) InOneof() bool {
	return f.OneofIndex >= 0
}

type Kind int

const (
	KindBool Kind = iota
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindSint32
	KindSint64
	KindFixed32
	KindFixed64
	KindSfixed32
	KindSfixed64
	KindFloat
	KindDouble
	KindString
	KindBytes
	KindMessage
	KindEnum
)
