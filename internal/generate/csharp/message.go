package csgen

import (
	"github.com/mkosieradzki/protogen/internal/generate"
	"github.com/mkosieradzki/protogen/internal/ir"
)

// messageField: storage is nullable, presence is non-null. Repeated wire
// occurrences of the same singular message field accumulate via merge
// rather than overwrite.
type messageField struct {
	fieldGen
}

func newMessageField(field ir.Field, r *typeResolver) (*messageField, error) {
	gen, err := newFieldGen(field, nil, r)
	if err != nil {
		return nil, err
	}
	setMessageChecks(gen.vars)
	return &messageField{fieldGen: gen}, nil
}

func setMessageChecks(vars map[string]string) {
	vars["has_property_check"] = vars["name"] + "_ != null"
	vars["has_property_check_sufix"] = " != null"
	vars["has_not_property_check"] = vars["name"] + "_ == null"
}

func (g *messageField) GenerateMembers(p *generate.Printer) {
	p.Print(g.vars, "private $type_name$ $name$_;\n")
	p.Print(g.vars,
		"$access_level$ $type_name$ $property_name$ {\n"+
			"  get { return $name$_; }\n"+
			"  set {\n"+
			"    $name$_ = value;\n"+
			"  }\n"+
			"}\n")
}

func (g *messageField) GenerateMergingCode(p *generate.Printer) {
	p.Print(g.vars,
		"if (other.$has_property_check$) {\n"+
			"  if ($has_not_property_check$) {\n"+
			"    $name$_ = new $type_name$();\n"+
			"  }\n"+
			"  $property_name$.MergeFrom(other.$property_name$);\n"+
			"}\n")
}

func (g *messageField) GenerateParsingCode(p *generate.Printer, lvalue string, forceNonPacked bool) {
	if lvalue == "" {
		lvalue = g.vars["name"] + "_"
	}
	// The nested read limit bounds the recursive merge; the pop is on the
	// same control path, truncated payloads surface in the codec.
	p.Print(g.callVars(map[string]string{"lvalue_name": lvalue}),
		"if ($lvalue_name$ == null) {\n"+
			"  $lvalue_name$ = new $type_name$();\n"+
			"}\n"+
			"var oldLimit = input.BeginReadNested(ref immediateBuffer);\n"+
			"$lvalue_name$.MergeFrom(input, ref immediateBuffer);\n"+
			"input.EndReadNested(oldLimit);\n")
}

func (g *messageField) GenerateSerializationCode(p *generate.Printer, rvalue string) {
	p.Print(g.callVars(map[string]string{"rvalue_name": rvalue}),
		"if ($rvalue_name$$has_property_check_sufix$) {\n"+
			"  output.WriteRawTag($tag_bytes$, ref immediateBuffer);\n"+
			"  output.WriteLength($rvalue_name$.CalculateSize(), ref immediateBuffer);\n"+
			"  $rvalue_name$.WriteTo(output, ref immediateBuffer);\n"+
			"}\n")
}

func (g *messageField) GenerateSerializedSizeCode(p *generate.Printer, lvalue, rvalue string) {
	p.Print(g.callVars(map[string]string{"lvalue_name": lvalue, "rvalue_name": rvalue}),
		"if ($rvalue_name$$has_property_check_sufix$) {\n"+
			"  $lvalue_name$ += $tag_size$ + pb::CodedOutputStream.ComputeMessageSize($rvalue_name$);\n"+
			"}\n")
}

func (g *messageField) WriteHash(p *generate.Printer) {
	p.Print(g.vars, "if ($has_property_check$) hash ^= $property_name$.GetHashCode();\n")
}

func (g *messageField) WriteEquals(p *generate.Printer) {
	p.Print(g.vars, "if (!object.Equals($property_name$, other.$property_name$)) return false;\n")
}

func (g *messageField) GenerateCloningCode(p *generate.Printer) {
	p.Print(g.vars, "$name$_ = other.$has_property_check$ ? other.$name$_.Clone() : null;\n")
}

// messageOneofField shares the group slot with its siblings. Parsing must
// keep merge semantics for repeated occurrences of this same member, so the
// currently-active value is folded into a sub-builder before installing.
type messageOneofField struct {
	messageField
}

func newMessageOneofField(field ir.Field, oneof *ir.Oneof, r *typeResolver) (*messageOneofField, error) {
	gen, err := newFieldGen(field, oneof, r)
	if err != nil {
		return nil, err
	}
	setMessageChecks(gen.vars)
	setOneofVars(gen.vars, oneof)
	return &messageOneofField{messageField: messageField{fieldGen: gen}}, nil
}

func (g *messageOneofField) GenerateMembers(p *generate.Printer) {
	p.Print(g.vars,
		"$access_level$ $type_name$ $property_name$ {\n"+
			"  get { return $has_property_check$ ? ($type_name$) $oneof_name$_ : null; }\n"+
			"  set {\n"+
			"    $oneof_name$_ = value;\n"+
			"    $oneof_name$Case_ = value == null ? $oneof_property_name$OneofCase.None : $oneof_property_name$OneofCase.$property_name$;\n"+
			"  }\n"+
			"}\n")
}

func (g *messageOneofField) GenerateMergingCode(p *generate.Printer) {
	p.Print(g.vars,
		"if ($property_name$ == null) {\n"+
			"  $property_name$ = new $type_name$();\n"+
			"}\n"+
			"$property_name$.MergeFrom(other.$property_name$);\n")
}

func (g *messageOneofField) GenerateParsingCode(p *generate.Printer, lvalue string, forceNonPacked bool) {
	if lvalue == "" {
		lvalue = g.vars["property_name"]
	}
	p.Print(g.callVars(map[string]string{"lvalue_name": lvalue}),
		"$type_name$ subBuilder = new $type_name$();\n"+
			"if ($has_property_check$) {\n"+
			"  subBuilder.MergeFrom($property_name$);\n"+
			"}\n"+
			"var oldLimit = input.BeginReadNested(ref immediateBuffer);\n"+
			"subBuilder.MergeFrom(input, ref immediateBuffer);\n"+
			"input.EndReadNested(oldLimit);\n"+
			"$lvalue_name$ = subBuilder;\n")
}

func (g *messageOneofField) GenerateCloningCode(p *generate.Printer) {
	p.Print(g.vars, "$property_name$ = other.$property_name$.Clone();\n")
}
