package csgen

import (
	"strconv"

	"github.com/mkosieradzki/protogen/internal/generate"
	"github.com/mkosieradzki/protogen/internal/ir"
)

// primitiveField covers numeric, bool, enum, string, and bytes singular
// fields. Value kinds have no persisted has-bit; presence is re-tested
// against the default on every serialize and size pass. String and bytes are
// never null: the setter normalizes, presence means non-empty.
type primitiveField struct {
	fieldGen
	isValueType bool
}

func newPrimitiveField(field ir.Field, r *typeResolver) (*primitiveField, error) {
	return newPrimitiveFieldIn(field, nil, r)
}

func newPrimitiveFieldIn(field ir.Field, oneof *ir.Oneof, r *typeResolver) (*primitiveField, error) {
	gen, err := newFieldGen(field, oneof, r)
	if err != nil {
		return nil, err
	}
	g := &primitiveField{
		fieldGen:    gen,
		isValueType: field.Kind != ir.KindString && field.Kind != ir.KindBytes,
	}
	if !g.isValueType {
		g.vars["has_property_check_sufix"] = ".Length != 0"
		g.vars["has_property_check"] = g.vars["property_name"] + ".Length != 0"
		g.vars["other_has_property_check"] = "other." + g.vars["property_name"] + ".Length != 0"
		if oneof != nil {
			setOneofVars(g.vars, oneof)
		}
	}
	return g, nil
}

func (g *primitiveField) GenerateMembers(p *generate.Printer) {
	p.Print(g.vars, "private $type_name$ $name_def_message$;\n")
	p.Print(g.vars,
		"$access_level$ $type_name$ $property_name$ {\n"+
			"  get { return $name$_; }\n"+
			"  set {\n")
	if g.isValueType {
		p.Print(g.vars, "    $name$_ = value;\n")
	} else {
		p.Print(g.vars, "    $name$_ = pb::ProtoPreconditions.CheckNotNull(value, \"value\");\n")
	}
	p.Print(nil,
		"  }\n"+
			"}\n")
}

func (g *primitiveField) GenerateMergingCode(p *generate.Printer) {
	p.Print(g.vars,
		"if ($other_has_property_check$) {\n"+
			"  $property_name$ = other.$property_name$;\n"+
			"}\n")
}

func (g *primitiveField) GenerateParsingCode(p *generate.Printer, lvalue string, forceNonPacked bool) {
	// Assign through the property setter so null-to-empty normalization for
	// strings and bytes applies on the decode path too.
	if lvalue == "" {
		lvalue = g.vars["property_name"]
	}
	p.Print(g.callVars(map[string]string{"lvalue_name": lvalue}),
		"$lvalue_name$ = $read_cast$input.Read$capitalized_type_name$(ref immediateBuffer);\n")
}

func (g *primitiveField) GenerateSerializationCode(p *generate.Printer, rvalue string) {
	vars := g.callVars(map[string]string{"rvalue_name": rvalue})
	p.Print(vars, "if ($rvalue_name$$has_property_check_sufix$) {\n")
	p.Print(vars,
		"  output.WriteRawTag($tag_bytes$, ref immediateBuffer);\n"+
			"  output.Write$capitalized_type_name$($write_cast$$rvalue_name$, ref immediateBuffer);\n"+
			"}\n")
}

func (g *primitiveField) GenerateSerializedSizeCode(p *generate.Printer, lvalue, rvalue string) {
	vars := g.callVars(map[string]string{"lvalue_name": lvalue, "rvalue_name": rvalue})
	p.Print(vars, "if ($rvalue_name$$has_property_check_sufix$) {\n")
	p.Indent()
	if fixed := fixedWireSize(g.field.Kind); fixed != -1 {
		vars["fixed_size"] = strconv.Itoa(fixed)
		p.Print(vars, "$lvalue_name$ += $tag_size$ + $fixed_size$;\n")
	} else {
		p.Print(vars, "$lvalue_name$ += $tag_size$ + pb::CodedOutputStream.Compute$capitalized_type_name$Size($write_cast$$rvalue_name$);\n")
	}
	p.Outdent()
	p.Print(nil, "}\n")
}

func (g *primitiveField) WriteHash(p *generate.Printer) {
	// Bitwise comparers keep NaN and negative zero hashing consistent with
	// the equality fragments.
	text := "if ($has_property_check$) hash ^= $property_name$.GetHashCode();\n"
	switch g.field.Kind {
	case ir.KindFloat:
		text = "if ($has_property_check$) hash ^= pbc::ProtobufEqualityComparers.BitwiseSingleEqualityComparer.GetHashCode($property_name$);\n"
	case ir.KindDouble:
		text = "if ($has_property_check$) hash ^= pbc::ProtobufEqualityComparers.BitwiseDoubleEqualityComparer.GetHashCode($property_name$);\n"
	}
	p.Print(g.vars, text)
}

func (g *primitiveField) WriteEquals(p *generate.Printer) {
	text := "if ($property_name$ != other.$property_name$) return false;\n"
	switch g.field.Kind {
	case ir.KindFloat:
		text = "if (!pbc::ProtobufEqualityComparers.BitwiseSingleEqualityComparer.Equals($property_name$, other.$property_name$)) return false;\n"
	case ir.KindDouble:
		text = "if (!pbc::ProtobufEqualityComparers.BitwiseDoubleEqualityComparer.Equals($property_name$, other.$property_name$)) return false;\n"
	}
	p.Print(g.vars, text)
}

func (g *primitiveField) GenerateCloningCode(p *generate.Printer) {
	p.Print(g.vars, "$name$_ = other.$name$_;\n")
}

// primitiveOneofField stores its value in the group's shared slot. Setting
// the property records the discriminant unconditionally, so an explicit
// default still marks the member active.
type primitiveOneofField struct {
	primitiveField
}

func newPrimitiveOneofField(field ir.Field, oneof *ir.Oneof, r *typeResolver) (*primitiveOneofField, error) {
	inner, err := newPrimitiveFieldIn(field, oneof, r)
	if err != nil {
		return nil, err
	}
	return &primitiveOneofField{primitiveField: *inner}, nil
}

func (g *primitiveOneofField) GenerateMembers(p *generate.Printer) {
	p.Print(g.vars,
		"$access_level$ $type_name$ $property_name$ {\n"+
			"  get { return $has_property_check$ ? ($type_name$) $oneof_name$_ : $default_value$; }\n"+
			"  set {\n")
	if g.isValueType {
		p.Print(g.vars, "    $oneof_name$_ = value;\n")
	} else {
		p.Print(g.vars, "    $oneof_name$_ = pb::ProtoPreconditions.CheckNotNull(value, \"value\");\n")
	}
	p.Print(g.vars,
		"    $oneof_name$Case_ = $oneof_property_name$OneofCase.$property_name$;\n"+
			"  }\n"+
			"}\n")
}

func (g *primitiveOneofField) GenerateMergingCode(p *generate.Printer) {
	p.Print(g.vars, "$property_name$ = other.$property_name$;\n")
}

func (g *primitiveOneofField) GenerateSerializationCode(p *generate.Printer, rvalue string) {
	vars := g.callVars(map[string]string{"rvalue_name": rvalue})
	p.Print(vars, "if ($has_property_check$) {\n")
	p.Print(vars,
		"  output.WriteRawTag($tag_bytes$, ref immediateBuffer);\n"+
			"  output.Write$capitalized_type_name$($write_cast$$rvalue_name$, ref immediateBuffer);\n"+
			"}\n")
}

func (g *primitiveOneofField) GenerateSerializedSizeCode(p *generate.Printer, lvalue, rvalue string) {
	// The presence test ignores the rvalue: the discriminant decides.
	vars := g.callVars(map[string]string{"lvalue_name": lvalue, "rvalue_name": rvalue})
	p.Print(vars, "if ($has_property_check$) {\n")
	p.Indent()
	if fixed := fixedWireSize(g.field.Kind); fixed != -1 {
		vars["fixed_size"] = strconv.Itoa(fixed)
		p.Print(vars, "$lvalue_name$ += $tag_size$ + $fixed_size$;\n")
	} else {
		p.Print(vars, "$lvalue_name$ += $tag_size$ + pb::CodedOutputStream.Compute$capitalized_type_name$Size($write_cast$$rvalue_name$);\n")
	}
	p.Outdent()
	p.Print(nil, "}\n")
}

func (g *primitiveOneofField) GenerateCloningCode(p *generate.Printer) {
	p.Print(g.vars, "$property_name$ = other.$property_name$;\n")
}
