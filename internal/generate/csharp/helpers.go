package csgen

import (
	"fmt"

	"github.com/mkosieradzki/protogen/internal/ir"
)

// typeResolver maps proto full names to the C# names emitted for them.
type typeResolver struct {
	messages map[string]ir.Message
	enums    map[string]ir.Enum
}

func newTypeResolver(files []ir.File) *typeResolver {
	r := &typeResolver{
		messages: make(map[string]ir.Message),
		enums:    make(map[string]ir.Enum),
	}
	for _, file := range files {
		for _, msg := range file.Messages {
			r.messages[msg.FullName] = msg
		}
		for _, enum := range file.Enums {
			r.enums[enum.FullName] = enum
		}
	}
	return r
}

func (r *typeResolver) messageName(fullName string) (string, error) {
	msg, ok := r.messages[fullName]
	if !ok {
		return "", fmt.Errorf("unknown message type: %s", fullName)
	}
	return msg.Name, nil
}

func (r *typeResolver) enumName(fullName string) (string, error) {
	enum, ok := r.enums[fullName]
	if !ok {
		return "", fmt.Errorf("unknown enum type: %s", fullName)
	}
	return enum.Name, nil
}

func (r *typeResolver) enumDefault(fullName string) (string, error) {
	enum, ok := r.enums[fullName]
	if !ok {
		return "", fmt.Errorf("unknown enum type: %s", fullName)
	}
	if len(enum.Values) > 0 {
		return enum.Name + "." + enum.Values[0].Name, nil
	}
	return "(" + enum.Name + ") 0", nil
}

func csharpScalarType(kind ir.Kind) (string, error) {
	switch kind {
	case ir.KindBool:
		return "bool", nil
	case ir.KindInt32, ir.KindSint32, ir.KindSfixed32:
		return "int", nil
	case ir.KindInt64, ir.KindSint64, ir.KindSfixed64:
		return "long", nil
	case ir.KindUint32, ir.KindFixed32:
		return "uint", nil
	case ir.KindUint64, ir.KindFixed64:
		return "ulong", nil
	case ir.KindFloat:
		return "float", nil
	case ir.KindDouble:
		return "double", nil
	case ir.KindString:
		return "string", nil
	case ir.KindBytes:
		return "pb::ByteString", nil
	default:
		return "", fmt.Errorf("unsupported scalar kind: %v", kind)
	}
}

// capitalizedTypeName is the token spliced into runtime codec method names
// (ReadInt32, WriteSFixed64, ComputeStringSize, ...).
func capitalizedTypeName(kind ir.Kind) (string, error) {
	switch kind {
	case ir.KindBool:
		return "Bool", nil
	case ir.KindInt32:
		return "Int32", nil
	case ir.KindInt64:
		return "Int64", nil
	case ir.KindUint32:
		return "UInt32", nil
	case ir.KindUint64:
		return "UInt64", nil
	case ir.KindSint32:
		return "SInt32", nil
	case ir.KindSint64:
		return "SInt64", nil
	case ir.KindFixed32:
		return "Fixed32", nil
	case ir.KindFixed64:
		return "Fixed64", nil
	case ir.KindSfixed32:
		return "SFixed32", nil
	case ir.KindSfixed64:
		return "SFixed64", nil
	case ir.KindFloat:
		return "Float", nil
	case ir.KindDouble:
		return "Double", nil
	case ir.KindString:
		return "String", nil
	case ir.KindBytes:
		return "Bytes", nil
	case ir.KindEnum:
		return "Enum", nil
	case ir.KindMessage:
		return "Message", nil
	default:
		return "", fmt.Errorf("unsupported kind: %v", kind)
	}
}

func scalarDefaultValue(kind ir.Kind) (string, error) {
	switch kind {
	case ir.KindBool:
		return "false", nil
	case ir.KindInt32, ir.KindSint32, ir.KindSfixed32:
		return "0", nil
	case ir.KindInt64, ir.KindSint64, ir.KindSfixed64:
		return "0L", nil
	case ir.KindUint32, ir.KindFixed32:
		return "0U", nil
	case ir.KindUint64, ir.KindFixed64:
		return "0UL", nil
	case ir.KindFloat:
		return "0F", nil
	case ir.KindDouble:
		return "0D", nil
	case ir.KindString:
		return "\"\"", nil
	case ir.KindBytes:
		return "pb::ByteString.Empty", nil
	default:
		return "", fmt.Errorf("no scalar default for kind: %v", kind)
	}
}

// fixedWireSize returns the static per-value byte count, or -1 when the
// encoding is variable-length.
func fixedWireSize(kind ir.Kind) int {
	switch kind {
	case ir.KindBool:
		return 1
	case ir.KindFloat, ir.KindFixed32, ir.KindSfixed32:
		return 4
	case ir.KindDouble, ir.KindFixed64, ir.KindSfixed64:
		return 8
	default:
		return -1
	}
}

// wrapperNullableType is the C# type of a wrapper field: value kinds become
// nullable, string and bytes are reference types already.
func wrapperNullableType(kind ir.Kind) (string, error) {
	base, err := csharpScalarType(kind)
	if err != nil {
		return "", err
	}
	switch kind {
	case ir.KindString, ir.KindBytes:
		return base, nil
	default:
		return base + "?", nil
	}
}
