package csgen

import (
	"github.com/mkosieradzki/protogen/internal/generate"
	"github.com/mkosieradzki/protogen/internal/ir"
)

// wrapperField gives a primitive explicit-presence semantics through the
// wire presence of its wrapper submessage. Merge and parse share one rule:
// a non-default incoming value always wins, a default incoming value only
// fills an absent target. That keeps "never set" and "explicitly set to the
// default" distinguishable across merges.
type wrapperField struct {
	fieldGen
}

func newWrapperField(field ir.Field, r *typeResolver) (*wrapperField, error) {
	gen, err := newFieldGen(field, nil, r)
	if err != nil {
		return nil, err
	}
	setMessageChecks(gen.vars)
	return &wrapperField{fieldGen: gen}, nil
}

func (g *wrapperField) GenerateMembers(p *generate.Printer) {
	p.Print(g.vars, "private $type_name$ $name$_;\n")
	p.Print(g.vars,
		"$access_level$ $type_name$ $property_name$ {\n"+
			"  get { return $name$_; }\n"+
			"  set {\n"+
			"    $name$_ = value;\n"+
			"  }\n"+
			"}\n")
}

func (g *wrapperField) GenerateMergingCode(p *generate.Printer) {
	p.Print(g.vars,
		"if (other.$has_property_check$) {\n"+
			"  if ($has_not_property_check$ || other.$property_name$ != $default_value$) {\n"+
			"    $property_name$ = other.$property_name$;\n"+
			"  }\n"+
			"}\n")
}

func (g *wrapperField) GenerateParsingCode(p *generate.Printer, lvalue string, forceNonPacked bool) {
	if lvalue == "" {
		lvalue = g.vars["property_name"]
	}
	p.Print(g.callVars(map[string]string{"lvalue_name": lvalue}),
		"$type_name$ value = input.ReadWrapped$wrapped_type_capitalized_name$(ref immediateBuffer);\n"+
			"if ($lvalue_name$ == null || value != $default_value$) {\n"+
			"  $lvalue_name$ = value;\n"+
			"}\n")
}

func (g *wrapperField) GenerateSerializationCode(p *generate.Printer, rvalue string) {
	p.Print(g.callVars(map[string]string{"rvalue_name": rvalue}),
		"if ($rvalue_name$$has_property_check_sufix$) {\n"+
			"  output.WriteRawTag($tag_bytes$, ref immediateBuffer);\n"+
			"  output.WriteWrapped$wrapped_type_capitalized_name$($rvalue_name$, ref immediateBuffer);\n"+
			"}\n")
}

func (g *wrapperField) GenerateSerializedSizeCode(p *generate.Printer, lvalue, rvalue string) {
	p.Print(g.callVars(map[string]string{"lvalue_name": lvalue, "rvalue_name": rvalue}),
		"if ($rvalue_name$$has_property_check_sufix$) {\n"+
			"  $lvalue_name$ += $tag_size$ + pb::CodedOutputStream.ComputeWrapped$wrapped_type_capitalized_name$Size($rvalue_name$);\n"+
			"}\n")
}

func (g *wrapperField) WriteHash(p *generate.Printer) {
	text := "if ($has_property_check$) hash ^= $property_name$.GetHashCode();\n"
	switch g.field.WrapperKind {
	case ir.KindFloat:
		text = "if ($has_property_check$) hash ^= pbc::ProtobufEqualityComparers.BitwiseNullableSingleEqualityComparer.GetHashCode($property_name$);\n"
	case ir.KindDouble:
		text = "if ($has_property_check$) hash ^= pbc::ProtobufEqualityComparers.BitwiseNullableDoubleEqualityComparer.GetHashCode($property_name$);\n"
	}
	p.Print(g.vars, text)
}

func (g *wrapperField) WriteEquals(p *generate.Printer) {
	text := "if ($property_name$ != other.$property_name$) return false;\n"
	switch g.field.WrapperKind {
	case ir.KindFloat:
		text = "if (!pbc::ProtobufEqualityComparers.BitwiseNullableSingleEqualityComparer.Equals($property_name$, other.$property_name$)) return false;\n"
	case ir.KindDouble:
		text = "if (!pbc::ProtobufEqualityComparers.BitwiseNullableDoubleEqualityComparer.Equals($property_name$, other.$property_name$)) return false;\n"
	}
	p.Print(g.vars, text)
}

func (g *wrapperField) GenerateCloningCode(p *generate.Printer) {
	p.Print(g.vars, "$property_name$ = other.$property_name$;\n")
}

// wrapperOneofField always targets the shared slot and always records the
// discriminant; the conditional-overwrite rule does not apply there.
type wrapperOneofField struct {
	wrapperField
}

func newWrapperOneofField(field ir.Field, oneof *ir.Oneof, r *typeResolver) (*wrapperOneofField, error) {
	gen, err := newFieldGen(field, oneof, r)
	if err != nil {
		return nil, err
	}
	setMessageChecks(gen.vars)
	setOneofVars(gen.vars, oneof)
	return &wrapperOneofField{wrapperField: wrapperField{fieldGen: gen}}, nil
}

func (g *wrapperOneofField) GenerateMembers(p *generate.Printer) {
	p.Print(g.vars,
		"$access_level$ $type_name$ $property_name$ {\n"+
			"  get { return $has_property_check$ ? ($type_name$) $oneof_name$_ : ($type_name$) null; }\n"+
			"  set {\n"+
			"    $oneof_name$_ = value;\n"+
			"    $oneof_name$Case_ = value == null ? $oneof_property_name$OneofCase.None : $oneof_property_name$OneofCase.$property_name$;\n"+
			"  }\n"+
			"}\n")
}

func (g *wrapperOneofField) GenerateMergingCode(p *generate.Printer) {
	p.Print(g.vars, "$property_name$ = other.$property_name$;\n")
}

func (g *wrapperOneofField) GenerateParsingCode(p *generate.Printer, lvalue string, forceNonPacked bool) {
	if lvalue == "" {
		lvalue = g.vars["property_name"]
	}
	p.Print(g.callVars(map[string]string{"lvalue_name": lvalue}),
		"$lvalue_name$ = input.ReadWrapped$wrapped_type_capitalized_name$(ref immediateBuffer);\n")
}

func (g *wrapperOneofField) GenerateSerializationCode(p *generate.Printer, rvalue string) {
	p.Print(g.callVars(map[string]string{"rvalue_name": rvalue}),
		"if ($has_property_check$) {\n"+
			"  output.WriteRawTag($tag_bytes$, ref immediateBuffer);\n"+
			"  output.WriteWrapped$wrapped_type_capitalized_name$($property_name$, ref immediateBuffer);\n"+
			"}\n")
}

func (g *wrapperOneofField) GenerateSerializedSizeCode(p *generate.Printer, lvalue, rvalue string) {
	// Presence and value both come from the property; the rvalue override is
	// ignored, matching the serialization fragment.
	p.Print(g.callVars(map[string]string{"lvalue_name": lvalue}),
		"if ($has_property_check$) {\n"+
			"  $lvalue_name$ += $tag_size$ + pb::CodedOutputStream.ComputeWrapped$wrapped_type_capitalized_name$Size($property_name$);\n"+
			"}\n")
}
