package csgen

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mkosieradzki/protogen/internal/generate"
	"github.com/mkosieradzki/protogen/internal/ir"

	"golang.org/x/sync/errgroup"
)

type Generator struct{}

func (g Generator) Name() string {
	return "csharp"
}

func (g Generator) Generate(files []ir.File, options generate.Options) ([]generate.OutputFile, error) {
	resolver := newTypeResolver(files)

	results := make([]*generate.OutputFile, len(files))
	var group errgroup.Group
	for i, file := range files {
		csOut := options.CsOut
		if csOut == "" {
			csOut = file.CsOut
		}
		if csOut == "" {
			continue
		}
		namespace := options.Namespace
		if namespace == "" {
			namespace = file.Namespace
		}
		if namespace == "" {
			return nil, fmt.Errorf("C# namespace is required (set -namespace or option csharp_namespace): %s", file.Path)
		}
		i, file, namespace, csOut := i, file, namespace, csOut
		group.Go(func() error {
			content, err := buildFile(file, resolver, namespace)
			if err != nil {
				return err
			}
			results[i] = &generate.OutputFile{
				Path:    filepath.Join(csOut, outputName(file.Path)),
				Content: content,
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var outputs []generate.OutputFile
	for _, result := range results {
		if result != nil {
			outputs = append(outputs, *result)
		}
	}
	return outputs, nil
}

func outputName(protoPath string) string {
	base := strings.TrimSuffix(filepath.Base(protoPath), ".proto")
	return ir.PascalName(base) + ".g.cs"
}

func buildFile(file ir.File, r *typeResolver, namespace string) ([]byte, error) {
	p := generate.NewPrinter()
	p.Print(map[string]string{"path": file.Path},
		"// <auto-generated>\n"+
			"//     Generated by protogen. Do not edit.\n"+
			"//     source: $path$\n"+
			"// </auto-generated>\n"+
			"#pragma warning disable 1591, 0612, 3021\n"+
			"#region Designer generated code\n"+
			"\n"+
			"using pb = global::Google.Protobuf;\n"+
			"using pbc = global::Google.Protobuf.Collections;\n"+
			"\n")
	p.Print(map[string]string{"namespace": namespace}, "namespace $namespace$ {\n")
	p.Indent()

	for _, enum := range file.Enums {
		writeEnum(p, enum)
	}
	for _, msg := range file.Messages {
		if err := writeMessage(p, msg, r); err != nil {
			return nil, err
		}
	}

	p.Outdent()
	p.Print(nil,
		"}\n"+
			"\n"+
			"#endregion Designer generated code\n")
	return p.Bytes(), nil
}

func writeEnum(p *generate.Printer, enum ir.Enum) {
	p.Print(map[string]string{"name": enum.Name}, "public enum $name$ {\n")
	p.Indent()
	for _, value := range enum.Values {
		p.Print(map[string]string{
			"name":   value.Name,
			"number": strconv.FormatInt(int64(value.Number), 10),
		}, "$name$ = $number$,\n")
	}
	p.Outdent()
	p.Print(nil, "}\n\n")
}

// messageGen holds the per-field strategies of one message in declaration
// order, plus the oneof groups they share.
type messageGen struct {
	msg        ir.Message
	strategies []FieldStrategy
}

func newMessageGen(msg ir.Message, r *typeResolver) (*messageGen, error) {
	gen := &messageGen{msg: msg}
	for _, field := range msg.Fields {
		strategy, err := newFieldStrategy(field, msg, r)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", msg.FullName, err)
		}
		gen.strategies = append(gen.strategies, strategy)
	}
	return gen, nil
}

func writeMessage(p *generate.Printer, msg ir.Message, r *typeResolver) error {
	gen, err := newMessageGen(msg, r)
	if err != nil {
		return err
	}

	p.Print(map[string]string{"name": msg.Name},
		"public sealed partial class $name$ : pb::IMessage<$name$> {\n")
	p.Indent()

	gen.writeMembers(p)
	gen.writeOneofMembers(p)
	gen.writeConstructors(p)
	gen.writeEquality(p)
	gen.writeMergeFromMessage(p)
	gen.writeMergeFromStream(p)
	gen.writeWriteTo(p)
	gen.writeCalculateSize(p)

	p.Outdent()
	p.Print(nil, "}\n\n")
	return nil
}

func (g *messageGen) writeMembers(p *generate.Printer) {
	for _, strategy := range g.strategies {
		strategy.GenerateMembers(p)
	}
	if len(g.strategies) > 0 {
		p.Print(nil, "\n")
	}
}

func (g *messageGen) oneofVars(oneof ir.Oneof) map[string]string {
	return map[string]string{
		"oneof_name":          ir.CamelName(oneof.Name),
		"oneof_property_name": ir.PascalName(oneof.Name),
	}
}

func (g *messageGen) oneofMembers(oneof ir.Oneof) []int {
	var members []int
	for i, field := range g.msg.Fields {
		if field.OneofIndex == oneof.Index {
			members = append(members, i)
		}
	}
	return members
}

func (g *messageGen) writeOneofMembers(p *generate.Printer) {
	for _, oneof := range g.msg.Oneofs {
		vars := g.oneofVars(oneof)
		p.Print(vars,
			"private object $oneof_name$_;\n"+
				"private $oneof_property_name$OneofCase $oneof_name$Case_ = $oneof_property_name$OneofCase.None;\n"+
				"public enum $oneof_property_name$OneofCase {\n"+
				"  None = 0,\n")
		for _, i := range g.oneofMembers(oneof) {
			field := g.msg.Fields[i]
			p.Print(map[string]string{
				"member": ir.PascalName(field.Name),
				"number": strconv.Itoa(field.Number),
			}, "  $member$ = $number$,\n")
		}
		p.Print(vars,
			"}\n"+
				"public $oneof_property_name$OneofCase $oneof_property_name$Case {\n"+
				"  get { return $oneof_name$Case_; }\n"+
				"}\n"+
				"public void Clear$oneof_property_name$() {\n"+
				"  $oneof_name$Case_ = $oneof_property_name$OneofCase.None;\n"+
				"  $oneof_name$_ = null;\n"+
				"}\n"+
				"\n")
	}
}

func (g *messageGen) writeConstructors(p *generate.Printer) {
	name := map[string]string{"name": g.msg.Name}
	p.Print(name,
		"public $name$() {\n"+
			"}\n"+
			"\n"+
			"public $name$($name$ other) : this() {\n")
	p.Indent()
	for i, field := range g.msg.Fields {
		if field.InOneof() {
			continue
		}
		g.strategies[i].GenerateCloningCode(p)
	}
	for _, oneof := range g.msg.Oneofs {
		g.writeOneofSwitch(p, oneof, func(i int) {
			g.strategies[i].GenerateCloningCode(p)
		})
	}
	p.Outdent()
	p.Print(name,
		"}\n"+
			"\n"+
			"public $name$ Clone() {\n"+
			"  return new $name$(this);\n"+
			"}\n"+
			"\n")
}

// writeOneofSwitch dispatches on other's discriminant and runs emit for the
// active member.
func (g *messageGen) writeOneofSwitch(p *generate.Printer, oneof ir.Oneof, emit func(i int)) {
	vars := g.oneofVars(oneof)
	p.Print(vars, "switch (other.$oneof_property_name$Case) {\n")
	p.Indent()
	for _, i := range g.oneofMembers(oneof) {
		field := g.msg.Fields[i]
		caseVars := g.oneofVars(oneof)
		caseVars["member"] = ir.PascalName(field.Name)
		p.Print(caseVars, "case $oneof_property_name$OneofCase.$member$:\n")
		p.Indent()
		emit(i)
		p.Print(nil, "break;\n")
		p.Outdent()
	}
	p.Outdent()
	p.Print(nil, "}\n")
}

func (g *messageGen) writeEquality(p *generate.Printer) {
	name := map[string]string{"name": g.msg.Name}
	p.Print(name,
		"public override bool Equals(object other) {\n"+
			"  return Equals(other as $name$);\n"+
			"}\n"+
			"\n"+
			"public bool Equals($name$ other) {\n"+
			"  if (ReferenceEquals(other, null)) {\n"+
			"    return false;\n"+
			"  }\n"+
			"  if (ReferenceEquals(other, this)) {\n"+
			"    return true;\n"+
			"  }\n")
	p.Indent()
	for _, strategy := range g.strategies {
		strategy.WriteEquals(p)
	}
	for _, oneof := range g.msg.Oneofs {
		p.Print(g.oneofVars(oneof), "if ($oneof_name$Case_ != other.$oneof_name$Case_) return false;\n")
	}
	p.Print(nil, "return true;\n")
	p.Outdent()
	p.Print(nil,
		"}\n"+
			"\n"+
			"public override int GetHashCode() {\n"+
			"  int hash = 1;\n")
	p.Indent()
	for _, strategy := range g.strategies {
		strategy.WriteHash(p)
	}
	for _, oneof := range g.msg.Oneofs {
		p.Print(g.oneofVars(oneof), "hash ^= (int) $oneof_name$Case_;\n")
	}
	p.Print(nil, "return hash;\n")
	p.Outdent()
	p.Print(nil,
		"}\n"+
			"\n")
}

func (g *messageGen) writeMergeFromMessage(p *generate.Printer) {
	p.Print(map[string]string{"name": g.msg.Name},
		"public void MergeFrom($name$ other) {\n"+
			"  if (other == null) {\n"+
			"    return;\n"+
			"  }\n")
	p.Indent()
	for i, field := range g.msg.Fields {
		if field.InOneof() {
			continue
		}
		g.strategies[i].GenerateMergingCode(p)
	}
	for _, oneof := range g.msg.Oneofs {
		g.writeOneofSwitch(p, oneof, func(i int) {
			g.strategies[i].GenerateMergingCode(p)
		})
	}
	p.Outdent()
	p.Print(nil,
		"}\n"+
			"\n")
}

func (g *messageGen) writeMergeFromStream(p *generate.Printer) {
	p.Print(nil,
		"public void MergeFrom(pb::CodedInputStream input, ref pb::ImmediateBuffer immediateBuffer) {\n"+
			"  uint tag;\n"+
			"  while ((tag = input.ReadTag(ref immediateBuffer)) != 0) {\n"+
			"    switch(tag) {\n"+
			"      default:\n"+
			"        input.SkipLastField(ref immediateBuffer);\n"+
			"        break;\n")
	p.Indent()
	p.Indent()
	p.Indent()
	for i, field := range g.msg.Fields {
		strategy := g.strategies[i]
		primary := fieldTag(field)
		g.writeParseCase(p, primary, strategy, field.IsPacked && isPackable(field.Kind))
		if alt := alternateTag(field); alt != 0 {
			// The alternate representation is legal on the wire regardless
			// of the declared packed flag.
			g.writeParseCase(p, alt, strategy, !field.IsPacked)
		}
	}
	p.Outdent()
	p.Outdent()
	p.Outdent()
	p.Print(nil,
		"    }\n"+
			"  }\n"+
			"}\n"+
			"\n")
}

func (g *messageGen) writeParseCase(p *generate.Printer, tag uint32, strategy FieldStrategy, packed bool) {
	p.Print(map[string]string{"tag": strconv.FormatUint(uint64(tag), 10)}, "case $tag$: {\n")
	p.Indent()
	strategy.GenerateParsingCode(p, "", !packed)
	p.Print(nil, "break;\n")
	p.Outdent()
	p.Print(nil, "}\n")
}

func (g *messageGen) writeWriteTo(p *generate.Printer) {
	p.Print(nil, "public void WriteTo(pb::CodedOutputStream output, ref pb::ImmediateBuffer immediateBuffer) {\n")
	p.Indent()
	for i, field := range g.msg.Fields {
		g.strategies[i].GenerateSerializationCode(p, ir.PascalName(field.Name))
	}
	p.Outdent()
	p.Print(nil,
		"}\n"+
			"\n")
}

func (g *messageGen) writeCalculateSize(p *generate.Printer) {
	p.Print(nil,
		"public int CalculateSize() {\n"+
			"  int size = 0;\n")
	p.Indent()
	for i, field := range g.msg.Fields {
		g.strategies[i].GenerateSerializedSizeCode(p, "size", ir.PascalName(field.Name))
	}
	p.Print(nil, "return size;\n")
	p.Outdent()
	p.Print(nil, "}\n")
}
