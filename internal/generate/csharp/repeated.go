package csgen

import (
	"strconv"

	"github.com/mkosieradzki/protogen/internal/generate"
	"github.com/mkosieradzki/protogen/internal/ir"
)

// repeatedPrimitiveField stores an ordered, duplicate-permitting sequence.
// Decoding accepts both packed and unpacked representations for packable
// element kinds no matter what the schema declared; the dispatcher picks the
// branch from the matched tag's wire type.
type repeatedPrimitiveField struct {
	fieldGen
}

func newRepeatedPrimitiveField(field ir.Field, r *typeResolver) (*repeatedPrimitiveField, error) {
	gen, err := newFieldGen(field, nil, r)
	if err != nil {
		return nil, err
	}
	return &repeatedPrimitiveField{fieldGen: gen}, nil
}

func (g *repeatedPrimitiveField) GenerateMembers(p *generate.Printer) {
	p.Print(g.vars,
		"private readonly pbc::RepeatedField<$type_name$> $name$_ = new pbc::RepeatedField<$type_name$>();\n")
	p.Print(g.vars,
		"$access_level$ pbc::RepeatedField<$type_name$> $property_name$ {\n"+
			"  get { return $name$_; }\n"+
			"}\n")
}

func (g *repeatedPrimitiveField) GenerateMergingCode(p *generate.Printer) {
	p.Print(g.vars, "$name$_.Add(other.$name$_);\n")
}

func (g *repeatedPrimitiveField) GenerateParsingCode(p *generate.Printer, lvalue string, forceNonPacked bool) {
	if lvalue == "" {
		lvalue = g.vars["name"] + "_"
	}
	vars := g.callVars(map[string]string{"lvalue_name": lvalue})
	if isPackable(g.field.Kind) && !forceNonPacked {
		p.Print(vars,
			"int length = input.ReadLength(ref immediateBuffer);\n"+
				"if (length > 0) {\n"+
				"  var oldLimit = input.PushLimit(length);\n"+
				"  while (!input.ReachedLimit) {\n"+
				"    $lvalue_name$.Add($read_cast$input.Read$capitalized_type_name$(ref immediateBuffer));\n"+
				"  }\n"+
				"  input.PopLimit(oldLimit);\n"+
				"}\n")
	} else {
		p.Print(vars, "$lvalue_name$.Add($read_cast$input.Read$capitalized_type_name$(ref immediateBuffer));\n")
	}
}

func (g *repeatedPrimitiveField) packed() bool {
	return g.field.IsPacked && isPackable(g.field.Kind)
}

func (g *repeatedPrimitiveField) GenerateSerializationCode(p *generate.Printer, rvalue string) {
	vars := g.callVars(map[string]string{"rvalue_name": rvalue})
	if g.packed() {
		p.Print(vars, "{\n")
		g.generatePackedSize(p, vars)
		p.Print(vars,
			"  if (packedSize > 0) {\n"+
				"    output.WriteRawTag($tag_bytes$, ref immediateBuffer);\n"+
				"    output.WriteLength(packedSize, ref immediateBuffer);\n"+
				"    for (var i = 0; i < $rvalue_name$.Count; i++) {\n"+
				"      output.Write$capitalized_type_name$($write_cast$$rvalue_name$[i], ref immediateBuffer);\n"+
				"    }\n"+
				"  }\n"+
				"}\n")
		return
	}
	p.Print(vars,
		"for (var i = 0; i < $rvalue_name$.Count; i++) {\n"+
			"  output.WriteRawTag($tag_bytes$, ref immediateBuffer);\n"+
			"  output.Write$capitalized_type_name$($write_cast$$rvalue_name$[i], ref immediateBuffer);\n"+
			"}\n")
}

func (g *repeatedPrimitiveField) GenerateSerializedSizeCode(p *generate.Printer, lvalue, rvalue string) {
	vars := g.callVars(map[string]string{"lvalue_name": lvalue, "rvalue_name": rvalue})
	if g.packed() {
		// An empty packed field contributes no tag and no length prefix, in
		// lock-step with the serialization fragment above.
		p.Print(vars, "{\n")
		g.generatePackedSize(p, vars)
		p.Print(vars,
			"  if (packedSize > 0) {\n"+
				"    $lvalue_name$ += $tag_size$ + packedSize + pb::CodedOutputStream.ComputeLengthSize(packedSize);\n"+
				"  }\n"+
				"}\n")
		return
	}
	if fixed := g.elementFixedSize(); fixed != -1 {
		vars["fixed_size"] = strconv.Itoa(fixed)
		p.Print(vars, "$lvalue_name$ += ($tag_size$ + $fixed_size$) * $rvalue_name$.Count;\n")
		return
	}
	p.Print(vars,
		"for (var i = 0; i < $rvalue_name$.Count; i++) {\n"+
			"  $lvalue_name$ += $tag_size$ + pb::CodedOutputStream.Compute$capitalized_type_name$Size($write_cast$$rvalue_name$[i]);\n"+
			"}\n")
}

// generatePackedSize emits the packedSize computation, taking the static
// per-element width fast path when one exists.
func (g *repeatedPrimitiveField) generatePackedSize(p *generate.Printer, vars map[string]string) {
	if fixed := g.elementFixedSize(); fixed != -1 {
		vars["fixed_size"] = strconv.Itoa(fixed)
		p.Print(vars, "  var packedSize = $fixed_size$ * $rvalue_name$.Count;\n")
		return
	}
	p.Print(vars,
		"  var packedSize = 0;\n"+
			"  for (var i = 0; i < $rvalue_name$.Count; i++) {\n"+
			"    packedSize += pb::CodedOutputStream.Compute$capitalized_type_name$Size($write_cast$$rvalue_name$[i]);\n"+
			"  }\n")
}

func (g *repeatedPrimitiveField) elementFixedSize() int {
	if g.field.IsWrapper {
		return -1
	}
	return fixedWireSize(g.field.Kind)
}

func (g *repeatedPrimitiveField) WriteHash(p *generate.Printer) {
	p.Print(g.vars, "hash ^= $name$_.GetHashCode();\n")
}

func (g *repeatedPrimitiveField) WriteEquals(p *generate.Printer) {
	p.Print(g.vars, "if(!$name$_.Equals(other.$name$_)) return false;\n")
}

func (g *repeatedPrimitiveField) GenerateCloningCode(p *generate.Printer) {
	p.Print(g.vars, "$name$_ = other.$name$_.Clone();\n")
}

// repeatedEnumField shares the repeated-primitive wire policy; elements go
// through the enum codec methods with int casts supplied by the context.
type repeatedEnumField struct {
	repeatedPrimitiveField
}

func newRepeatedEnumField(field ir.Field, r *typeResolver) (*repeatedEnumField, error) {
	inner, err := newRepeatedPrimitiveField(field, r)
	if err != nil {
		return nil, err
	}
	return &repeatedEnumField{repeatedPrimitiveField: *inner}, nil
}

// repeatedMessageField frames each element as an independent
// length-delimited occurrence.
type repeatedMessageField struct {
	fieldGen
}

func newRepeatedMessageField(field ir.Field, r *typeResolver) (*repeatedMessageField, error) {
	gen, err := newFieldGen(field, nil, r)
	if err != nil {
		return nil, err
	}
	return &repeatedMessageField{fieldGen: gen}, nil
}

func (g *repeatedMessageField) GenerateMembers(p *generate.Printer) {
	p.Print(g.vars,
		"private readonly pbc::RepeatedField<$type_name$> $name$_ = new pbc::RepeatedField<$type_name$>();\n")
	p.Print(g.vars,
		"$access_level$ pbc::RepeatedField<$type_name$> $property_name$ {\n"+
			"  get { return $name$_; }\n"+
			"}\n")
}

func (g *repeatedMessageField) GenerateMergingCode(p *generate.Printer) {
	p.Print(g.vars, "$name$_.Add(other.$name$_);\n")
}

func (g *repeatedMessageField) GenerateParsingCode(p *generate.Printer, lvalue string, forceNonPacked bool) {
	if lvalue == "" {
		lvalue = g.vars["name"] + "_"
	}
	p.Print(g.callVars(map[string]string{"lvalue_name": lvalue}),
		"var item = new $type_name$();\n"+
			"var oldLimit = input.BeginReadNested(ref immediateBuffer);\n"+
			"item.MergeFrom(input, ref immediateBuffer);\n"+
			"input.EndReadNested(oldLimit);\n"+
			"$lvalue_name$.Add(item);\n")
}

func (g *repeatedMessageField) GenerateSerializationCode(p *generate.Printer, rvalue string) {
	p.Print(g.callVars(map[string]string{"rvalue_name": rvalue}),
		"for (var i = 0; i < $rvalue_name$.Count; i++) {\n"+
			"  output.WriteRawTag($tag_bytes$, ref immediateBuffer);\n"+
			"  output.WriteLength($rvalue_name$[i].CalculateSize(), ref immediateBuffer);\n"+
			"  $rvalue_name$[i].WriteTo(output, ref immediateBuffer);\n"+
			"}\n")
}

func (g *repeatedMessageField) GenerateSerializedSizeCode(p *generate.Printer, lvalue, rvalue string) {
	p.Print(g.callVars(map[string]string{"lvalue_name": lvalue, "rvalue_name": rvalue}),
		"for (var i = 0; i < $rvalue_name$.Count; i++) {\n"+
			"  $lvalue_name$ += $tag_size$ + pb::CodedOutputStream.ComputeMessageSize($rvalue_name$[i]);\n"+
			"}\n")
}

func (g *repeatedMessageField) WriteHash(p *generate.Printer) {
	p.Print(g.vars, "hash ^= $name$_.GetHashCode();\n")
}

func (g *repeatedMessageField) WriteEquals(p *generate.Printer) {
	p.Print(g.vars, "if(!$name$_.Equals(other.$name$_)) return false;\n")
}

func (g *repeatedMessageField) GenerateCloningCode(p *generate.Printer) {
	p.Print(g.vars, "$name$_ = other.$name$_.Clone();\n")
}
