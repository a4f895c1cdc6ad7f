package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mkosieradzki/protogen/internal/ir"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/reflect/protoreflect"
)

type Parser struct {
	ImportPaths []string
}

func (p *Parser) Parse(ctx context.Context, filePaths []string) ([]ir.File, error) {
	resolver := &protocompile.SourceResolver{
		ImportPaths: p.ImportPaths,
		Accessor: func(path string) (io.ReadCloser, error) {
			if path == optionsProtoPath || strings.HasSuffix(path, string(os.PathSeparator)+optionsProtoPath) {
				return io.NopCloser(strings.NewReader(optionsProtoSource)), nil
			}
			return os.Open(path)
		},
	}
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(resolver),
	}
	files, err := compiler.Compile(ctx, filePaths...)
	if err != nil {
		return nil, err
	}

	var result []ir.File
	for _, file := range files {
		irFile, err := fileToIR(file)
		if err != nil {
			return nil, err
		}
		result = append(result, irFile)
	}
	return result, nil
}

func fileToIR(file protoreflect.FileDescriptor) (ir.File, error) {
	if file.Syntax() != protoreflect.Proto3 {
		return ir.File{}, fmt.Errorf("only proto3 is supported: %s", file.Path())
	}
	csOut, err := csOutFromOptions(file)
	if err != nil {
		return ir.File{}, err
	}
	namespace := namespaceFromOptions(file)
	if namespace == "" {
		namespace = defaultNamespace(string(file.Package()))
	}
	out := ir.File{
		Path:      file.Path(),
		Package:   string(file.Package()),
		Namespace: namespace,
		CsOut:     csOut,
	}
	out.Enums = collectEnums(file.Enums(), nil)
	msgs, nestedEnums, err := collectMessages(file.Messages(), nil)
	if err != nil {
		return ir.File{}, err
	}
	out.Messages = msgs
	out.Enums = append(out.Enums, nestedEnums...)
	return out, nil
}

func collectEnums(enums protoreflect.EnumDescriptors, prefix []string) []ir.Enum {
	var result []ir.Enum
	for i := 0; i < enums.Len(); i++ {
		enum := enums.Get(i)
		nameParts := childName(prefix, string(enum.Name()))
		irEnum := ir.Enum{
			Name:     flattenedName(nameParts),
			FullName: string(enum.FullName()),
		}
		values := enum.Values()
		for j := 0; j < values.Len(); j++ {
			value := values.Get(j)
			irEnum.Values = append(irEnum.Values, ir.EnumValue{
				Name:   ir.PascalName(string(value.Name())),
				Number: int32(value.Number()),
			})
		}
		result = append(result, irEnum)
	}
	return result
}

func collectMessages(messages protoreflect.MessageDescriptors, prefix []string) ([]ir.Message, []ir.Enum, error) {
	var result []ir.Message
	var enums []ir.Enum
	for i := 0; i < messages.Len(); i++ {
		msg := messages.Get(i)
		if msg.IsMapEntry() {
			continue
		}
		nameParts := childName(prefix, string(msg.Name()))
		irMsg := ir.Message{
			Name:     flattenedName(nameParts),
			FullName: string(msg.FullName()),
		}
		irMsg.Oneofs = collectOneofs(msg.Oneofs())
		fields, err := collectFields(msg.Fields())
		if err != nil {
			return nil, nil, err
		}
		irMsg.Fields = fields
		result = append(result, irMsg)

		enums = append(enums, collectEnums(msg.Enums(), nameParts)...)
		nested, nestedEnums, err := collectMessages(msg.Messages(), nameParts)
		if err != nil {
			return nil, nil, err
		}
		result = append(result, nested...)
		enums = append(enums, nestedEnums...)
	}
	return result, enums, nil
}

func collectOneofs(oneofs protoreflect.OneofDescriptors) []ir.Oneof {
	var result []ir.Oneof
	for i := 0; i < oneofs.Len(); i++ {
		oneof := oneofs.Get(i)
		if oneof.IsSynthetic() {
			continue
		}
		result = append(result, ir.Oneof{
			Name:  string(oneof.Name()),
			Index: oneof.Index(),
		})
	}
	return result
}

func collectFields(fields protoreflect.FieldDescriptors) ([]ir.Field, error) {
	var result []ir.Field
	for i := 0; i < fields.Len(); i++ {
		field := fields.Get(i)
		kind, err := kindFromField(field)
		if err != nil {
			return nil, err
		}
		oneofIndex := -1
		if oneof := field.ContainingOneof(); oneof != nil && !oneof.IsSynthetic() {
			oneofIndex = oneof.Index()
		}
		irField := ir.Field{
			Name:       string(field.Name()),
			Number:     int(field.Number()),
			Kind:       kind,
			IsRepeated: field.IsList(),
			IsPacked:   field.IsPacked(),
			OneofIndex: oneofIndex,
		}
		if field.IsMap() {
			irField.IsMap = true
			keyKind, err := kindFromField(field.MapKey())
			if err != nil {
				return nil, err
			}
			valKind, err := kindFromField(field.MapValue())
			if err != nil {
				return nil, err
			}
			irField.MapKeyKind = keyKind
			irField.MapValueKind = valKind
			if valKind == ir.KindMessage {
				irField.MapValueMessage = string(field.MapValue().Message().FullName())
			}
			if valKind == ir.KindEnum {
				irField.MapValueEnum = string(field.MapValue().Enum().FullName())
			}
		} else if kind == ir.KindMessage {
			fullName := string(field.Message().FullName())
			irField.MessageFullName = fullName
			if wrapped, ok := ir.WrapperKind(fullName); ok {
				irField.IsWrapper = true
				irField.WrapperKind = wrapped
			}
		} else if kind == ir.KindEnum {
			irField.EnumFullName = string(field.Enum().FullName())
		}
		result = append(result, irField)
	}
	return result, nil
}

func kindFromField(field protoreflect.FieldDescriptor) (ir.Kind, error) {
	switch field.Kind() {
	case protoreflect.BoolKind:
		return ir.KindBool, nil
	case protoreflect.Int32Kind:
		return ir.KindInt32, nil
	case protoreflect.Int64Kind:
		return ir.KindInt64, nil
	case protoreflect.Uint32Kind:
		return ir.KindUint32, nil
	case protoreflect.Uint64Kind:
		return ir.KindUint64, nil
	case protoreflect.Sint32Kind:
		return ir.KindSint32, nil
	case protoreflect.Sint64Kind:
		return ir.KindSint64, nil
	case protoreflect.Fixed32Kind:
		return ir.KindFixed32, nil
	case protoreflect.Fixed64Kind:
		return ir.KindFixed64, nil
	case protoreflect.Sfixed32Kind:
		return ir.KindSfixed32, nil
	case protoreflect.Sfixed64Kind:
		return ir.KindSfixed64, nil
	case protoreflect.FloatKind:
		return ir.KindFloat, nil
	case protoreflect.DoubleKind:
		return ir.KindDouble, nil
	case protoreflect.StringKind:
		return ir.KindString, nil
	case protoreflect.BytesKind:
		return ir.KindBytes, nil
	case protoreflect.MessageKind:
		return ir.KindMessage, nil
	case protoreflect.EnumKind:
		return ir.KindEnum, nil
	default:
		return 0, fmt.Errorf("unsupported field kind: %s", field.Kind())
	}
}

func defaultNamespace(pkg string) string {
	if pkg == "" {
		return ""
	}
	parts := strings.Split(pkg, ".")
	for i := range parts {
		parts[i] = ir.PascalName(parts[i])
	}
	return strings.Join(parts, ".")
}

// childName copies the prefix so sibling recursions cannot alias the same
// backing array.
func childName(prefix []string, name string) []string {
	return append(append([]string(nil), prefix...), name)
}

// flattenedName is the C# name of a possibly nested type: each path segment
// Pascal-cased, joined with underscores.
func flattenedName(parts []string) string {
	names := make([]string, len(parts))
	for i, part := range parts {
		names[i] = ir.PascalName(part)
	}
	return strings.Join(names, "_")
}
