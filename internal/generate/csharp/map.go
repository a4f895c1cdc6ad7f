package csgen

import (
	"fmt"

	"github.com/mkosieradzki/protogen/internal/generate"
	"github.com/mkosieradzki/protogen/internal/ir"
)

// mapField composes two sub-strategies over a synthetic two-field entry
// message: key at field 1, value at field 2. Each map entry travels as one
// independent length-delimited occurrence; decoding overwrites by key on
// insertion, so the last entry for a key wins.
type mapField struct {
	fieldGen
	keyGen   FieldStrategy
	valueGen FieldStrategy
	valueMsg bool
}

func newMapField(field ir.Field, r *typeResolver) (*mapField, error) {
	if !validMapKeyKind(field.MapKeyKind) {
		return nil, fmt.Errorf("map field %s: key must be an integral, bool, or string type", field.Name)
	}
	gen, err := newFieldGen(field, nil, r)
	if err != nil {
		return nil, err
	}

	keyField, valueField := syntheticEntryFields(field)
	entryMsg := ir.Message{Name: field.Name + "Entry"}
	keyGen, err := newFieldStrategy(keyField, entryMsg, r)
	if err != nil {
		return nil, fmt.Errorf("map field %s: %w", field.Name, err)
	}
	valueGen, err := newFieldStrategy(valueField, entryMsg, r)
	if err != nil {
		return nil, fmt.Errorf("map field %s: %w", field.Name, err)
	}

	keyType, err := fieldTypeName(keyField, r)
	if err != nil {
		return nil, err
	}
	valueType, err := fieldTypeName(valueField, r)
	if err != nil {
		return nil, err
	}
	keyDefault, err := fieldDefaultValue(keyField, keyType, r)
	if err != nil {
		return nil, err
	}
	valueDefault, err := fieldDefaultValue(valueField, valueType, r)
	if err != nil {
		return nil, err
	}

	gen.vars["key_type_name"] = keyType
	gen.vars["value_type_name"] = valueType
	gen.vars["key_default_value"] = keyDefault
	gen.vars["value_default_value"] = valueDefault
	gen.vars["key_tag"] = fmt.Sprintf("%d", fieldTag(keyField))
	gen.vars["value_tag"] = fmt.Sprintf("%d", fieldTag(valueField))

	return &mapField{
		fieldGen: gen,
		keyGen:   keyGen,
		valueGen: valueGen,
		valueMsg: valueField.Kind == ir.KindMessage && !valueField.IsWrapper,
	}, nil
}

func validMapKeyKind(kind ir.Kind) bool {
	switch kind {
	case ir.KindFloat, ir.KindDouble, ir.KindBytes, ir.KindMessage, ir.KindEnum:
		return false
	default:
		return true
	}
}

// syntheticEntryFields builds the key and value descriptions the entry's
// sub-strategies are constructed from.
func syntheticEntryFields(field ir.Field) (ir.Field, ir.Field) {
	key := ir.Field{
		Name:       "key",
		Number:     1,
		Kind:       field.MapKeyKind,
		OneofIndex: -1,
	}
	value := ir.Field{
		Name:            "value",
		Number:          2,
		Kind:            field.MapValueKind,
		OneofIndex:      -1,
		MessageFullName: field.MapValueMessage,
		EnumFullName:    field.MapValueEnum,
	}
	if wrapped, ok := ir.WrapperKind(field.MapValueMessage); ok {
		value.IsWrapper = true
		value.WrapperKind = wrapped
	}
	return key, value
}

func (g *mapField) GenerateMembers(p *generate.Printer) {
	p.Print(g.vars,
		"private readonly pbc::MapField<$key_type_name$, $value_type_name$> $name$_ = new pbc::MapField<$key_type_name$, $value_type_name$>();\n")
	p.Print(g.vars,
		"$access_level$ pbc::MapField<$key_type_name$, $value_type_name$> $property_name$ {\n"+
			"  get { return $name$_; }\n"+
			"}\n")
}

func (g *mapField) GenerateMergingCode(p *generate.Printer) {
	p.Print(g.vars, "$name$_.Add(other.$name$_);\n")
}

func (g *mapField) GenerateParsingCode(p *generate.Printer, lvalue string, forceNonPacked bool) {
	if lvalue == "" {
		lvalue = g.vars["name"] + "_"
	}
	vars := g.callVars(map[string]string{"lvalue_name": lvalue})
	p.Print(vars,
		"var mapOldLimit = input.BeginReadNested(ref immediateBuffer);\n"+
			"$key_type_name$ entryKey = $key_default_value$;\n"+
			"$value_type_name$ entryValue = $value_default_value$;\n"+
			"uint ntag;\n"+
			"while ((ntag = input.ReadTag(ref immediateBuffer)) != 0) {\n")
	p.Indent()
	p.Print(vars, "if (ntag == $key_tag$) {\n")
	p.Indent()
	g.keyGen.GenerateParsingCode(p, "entryKey", false)
	p.Outdent()
	p.Print(vars, "} else if (ntag == $value_tag$) {\n")
	p.Indent()
	g.valueGen.GenerateParsingCode(p, "entryValue", false)
	p.Outdent()
	// Unknown entry sub-fields are skipped for forward compatibility.
	p.Print(nil,
		"} else {\n"+
			"  input.SkipLastField(ref immediateBuffer);\n"+
			"}\n")
	p.Outdent()
	p.Print(nil, "}\n")
	if g.valueMsg {
		p.Print(vars,
			"if (entryValue == null) {\n"+
				"  entryValue = new $value_type_name$();\n"+
				"}\n")
	}
	p.Print(vars,
		"$lvalue_name$[entryKey] = entryValue;\n"+
			"input.EndReadNested(mapOldLimit);\n")
}

func (g *mapField) GenerateSerializationCode(p *generate.Printer, rvalue string) {
	vars := g.callVars(map[string]string{"rvalue_name": rvalue})
	p.Print(vars, "foreach (var entry in $rvalue_name$) {\n")
	p.Indent()
	p.Print(nil, "var messageSize = 0;\n")
	g.keyGen.GenerateSerializedSizeCode(p, "messageSize", "entry.Key")
	g.valueGen.GenerateSerializedSizeCode(p, "messageSize", "entry.Value")
	p.Print(vars,
		"output.WriteRawTag($tag_bytes$, ref immediateBuffer);\n"+
			"output.WriteLength(messageSize, ref immediateBuffer);\n")
	g.keyGen.GenerateSerializationCode(p, "entry.Key")
	g.valueGen.GenerateSerializationCode(p, "entry.Value")
	p.Outdent()
	p.Print(nil, "}\n")
}

func (g *mapField) GenerateSerializedSizeCode(p *generate.Printer, lvalue, rvalue string) {
	vars := g.callVars(map[string]string{"lvalue_name": lvalue, "rvalue_name": rvalue})
	p.Print(vars, "foreach (var entry in $rvalue_name$) {\n")
	p.Indent()
	p.Print(nil, "var messageSize = 0;\n")
	g.keyGen.GenerateSerializedSizeCode(p, "messageSize", "entry.Key")
	g.valueGen.GenerateSerializedSizeCode(p, "messageSize", "entry.Value")
	p.Print(vars, "$lvalue_name$ += $tag_size$ + pb::CodedOutputStream.ComputeLengthSize(messageSize) + messageSize;\n")
	p.Outdent()
	p.Print(nil, "}\n")
}

func (g *mapField) WriteHash(p *generate.Printer) {
	p.Print(g.vars, "hash ^= $property_name$.GetHashCode();\n")
}

func (g *mapField) WriteEquals(p *generate.Printer) {
	p.Print(g.vars, "if (!$property_name$.Equals(other.$property_name$)) return false;\n")
}

func (g *mapField) GenerateCloningCode(p *generate.Printer) {
	p.Print(g.vars, "$name$_ = other.$name$_.Clone();\n")
}
