package csgen

import (
	"testing"

	"github.com/mkosieradzki/protogen/internal/generate"
	"github.com/mkosieradzki/protogen/internal/ir"

	"github.com/stretchr/testify/require"
)

func mustStrategy(t *testing.T, field ir.Field, msg ir.Message) FieldStrategy {
	t.Helper()
	strategy, err := newFieldStrategy(field, msg, testResolver())
	require.NoError(t, err)
	return strategy
}

func render(emit func(p *generate.Printer)) string {
	p := generate.NewPrinter()
	emit(p)
	return p.String()
}

func TestPrimitiveSerializationAndSizeAgree(t *testing.T) {
	field := ir.Field{Name: "total_size", Number: 1, Kind: ir.KindInt32, OneofIndex: -1}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	serialized := render(func(p *generate.Printer) { strategy.GenerateSerializationCode(p, "TotalSize") })
	require.Equal(t,
		"if (TotalSize != 0) {\n"+
			"  output.WriteRawTag(8, ref immediateBuffer);\n"+
			"  output.WriteInt32(TotalSize, ref immediateBuffer);\n"+
			"}\n",
		serialized)

	sized := render(func(p *generate.Printer) { strategy.GenerateSerializedSizeCode(p, "size", "TotalSize") })
	require.Equal(t,
		"if (TotalSize != 0) {\n"+
			"  size += 1 + pb::CodedOutputStream.ComputeInt32Size(TotalSize);\n"+
			"}\n",
		sized)
}

func TestPrimitiveFixedSizeFastPath(t *testing.T) {
	field := ir.Field{Name: "stamp", Number: 1, Kind: ir.KindSfixed64, OneofIndex: -1}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	sized := render(func(p *generate.Printer) { strategy.GenerateSerializedSizeCode(p, "size", "Stamp") })
	require.Equal(t,
		"if (Stamp != 0L) {\n"+
			"  size += 1 + 8;\n"+
			"}\n",
		sized)
}

func TestPrimitiveStringPresenceIsNonEmpty(t *testing.T) {
	field := ir.Field{Name: "name", Number: 2, Kind: ir.KindString, OneofIndex: -1}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	merged := render(func(p *generate.Printer) { strategy.GenerateMergingCode(p) })
	require.Equal(t,
		"if (other.Name.Length != 0) {\n"+
			"  Name = other.Name;\n"+
			"}\n",
		merged)

	// Decode assigns through the property so nulls are rejected there too.
	parsed := render(func(p *generate.Printer) { strategy.GenerateParsingCode(p, "", true) })
	require.Equal(t, "Name = input.ReadString(ref immediateBuffer);\n", parsed)

	members := render(func(p *generate.Printer) { strategy.GenerateMembers(p) })
	require.Contains(t, members, "pb::ProtoPreconditions.CheckNotNull(value, \"value\")")
}

func TestPrimitiveFloatUsesBitwiseComparer(t *testing.T) {
	field := ir.Field{Name: "ratio", Number: 3, Kind: ir.KindFloat, OneofIndex: -1}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	equals := render(func(p *generate.Printer) { strategy.WriteEquals(p) })
	require.Equal(t,
		"if (!pbc::ProtobufEqualityComparers.BitwiseSingleEqualityComparer.Equals(Ratio, other.Ratio)) return false;\n",
		equals)

	hash := render(func(p *generate.Printer) { strategy.WriteHash(p) })
	require.Contains(t, hash, "BitwiseSingleEqualityComparer.GetHashCode(Ratio)")
}

func TestPrimitiveEnumCasts(t *testing.T) {
	field := ir.Field{Name: "color", Number: 2, Kind: ir.KindEnum, EnumFullName: "demo.Color", OneofIndex: -1}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	parsed := render(func(p *generate.Printer) { strategy.GenerateParsingCode(p, "", true) })
	require.Equal(t, "Color = (Color) input.ReadEnum(ref immediateBuffer);\n", parsed)

	serialized := render(func(p *generate.Printer) { strategy.GenerateSerializationCode(p, "Color") })
	require.Contains(t, serialized, "output.WriteEnum((int) Color, ref immediateBuffer);")
}

func TestPrimitiveOneofMembers(t *testing.T) {
	msg := ir.Message{Name: "M", Oneofs: []ir.Oneof{{Name: "kind", Index: 0}}}
	field := ir.Field{Name: "name", Number: 4, Kind: ir.KindString, OneofIndex: 0}
	strategy := mustStrategy(t, field, msg)

	members := render(func(p *generate.Printer) { strategy.GenerateMembers(p) })
	require.Equal(t,
		"public string Name {\n"+
			"  get { return kindCase_ == KindOneofCase.Name ? (string) kind_ : \"\"; }\n"+
			"  set {\n"+
			"    kind_ = pb::ProtoPreconditions.CheckNotNull(value, \"value\");\n"+
			"    kindCase_ = KindOneofCase.Name;\n"+
			"  }\n"+
			"}\n",
		members)

	// Presence is the discriminant, not the value: a member holding the
	// default still serializes.
	serialized := render(func(p *generate.Printer) { strategy.GenerateSerializationCode(p, "Name") })
	require.Contains(t, serialized, "if (kindCase_ == KindOneofCase.Name) {")
}

func TestMessageParseFraming(t *testing.T) {
	field := ir.Field{Name: "addr", Number: 5, Kind: ir.KindMessage, MessageFullName: "demo.Address", OneofIndex: -1}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	parsed := render(func(p *generate.Printer) { strategy.GenerateParsingCode(p, "", true) })
	require.Equal(t,
		"if (addr_ == null) {\n"+
			"  addr_ = new Address();\n"+
			"}\n"+
			"var oldLimit = input.BeginReadNested(ref immediateBuffer);\n"+
			"addr_.MergeFrom(input, ref immediateBuffer);\n"+
			"input.EndReadNested(oldLimit);\n",
		parsed)
}

func TestMessageMergeMaterializesTarget(t *testing.T) {
	field := ir.Field{Name: "addr", Number: 5, Kind: ir.KindMessage, MessageFullName: "demo.Address", OneofIndex: -1}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	merged := render(func(p *generate.Printer) { strategy.GenerateMergingCode(p) })
	require.Equal(t,
		"if (other.addr_ != null) {\n"+
			"  if (addr_ == null) {\n"+
			"    addr_ = new Address();\n"+
			"  }\n"+
			"  Addr.MergeFrom(other.Addr);\n"+
			"}\n",
		merged)
}

func TestMessageOneofParseKeepsMergeSemantics(t *testing.T) {
	msg := ir.Message{Name: "M", Oneofs: []ir.Oneof{{Name: "kind", Index: 0}}}
	field := ir.Field{Name: "addr", Number: 5, Kind: ir.KindMessage, MessageFullName: "demo.Address", OneofIndex: 0}
	strategy := mustStrategy(t, field, msg)

	parsed := render(func(p *generate.Printer) { strategy.GenerateParsingCode(p, "", true) })
	require.Equal(t,
		"Address subBuilder = new Address();\n"+
			"if (kindCase_ == KindOneofCase.Addr) {\n"+
			"  subBuilder.MergeFrom(Addr);\n"+
			"}\n"+
			"var oldLimit = input.BeginReadNested(ref immediateBuffer);\n"+
			"subBuilder.MergeFrom(input, ref immediateBuffer);\n"+
			"input.EndReadNested(oldLimit);\n"+
			"Addr = subBuilder;\n",
		parsed)
}

func TestWrapperMergeOverwriteRule(t *testing.T) {
	field := ir.Field{
		Name: "count", Number: 3, Kind: ir.KindMessage,
		MessageFullName: "google.protobuf.Int32Value",
		IsWrapper:       true, WrapperKind: ir.KindInt32,
		OneofIndex: -1,
	}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	merged := render(func(p *generate.Printer) { strategy.GenerateMergingCode(p) })
	require.Equal(t,
		"if (other.count_ != null) {\n"+
			"  if (count_ == null || other.Count != 0) {\n"+
			"    Count = other.Count;\n"+
			"  }\n"+
			"}\n",
		merged)

	// Decode applies the same rule: a default value only fills an absent
	// target, so set-to-default survives a re-merge of the same field.
	parsed := render(func(p *generate.Printer) { strategy.GenerateParsingCode(p, "", true) })
	require.Equal(t,
		"int? value = input.ReadWrappedInt32(ref immediateBuffer);\n"+
			"if (Count == null || value != 0) {\n"+
			"  Count = value;\n"+
			"}\n",
		parsed)
}

func TestWrapperSerializationUsesWrappedCodec(t *testing.T) {
	field := ir.Field{
		Name: "label", Number: 6, Kind: ir.KindMessage,
		MessageFullName: "google.protobuf.StringValue",
		IsWrapper:       true, WrapperKind: ir.KindString,
		OneofIndex: -1,
	}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	serialized := render(func(p *generate.Printer) { strategy.GenerateSerializationCode(p, "Label") })
	require.Equal(t,
		"if (Label != null) {\n"+
			"  output.WriteRawTag(50, ref immediateBuffer);\n"+
			"  output.WriteWrappedString(Label, ref immediateBuffer);\n"+
			"}\n",
		serialized)

	sized := render(func(p *generate.Printer) { strategy.GenerateSerializedSizeCode(p, "size", "Label") })
	require.Contains(t, sized, "size += 1 + pb::CodedOutputStream.ComputeWrappedStringSize(Label);")
}

func TestWrapperOneofAlwaysInstalls(t *testing.T) {
	msg := ir.Message{Name: "M", Oneofs: []ir.Oneof{{Name: "kind", Index: 0}}}
	field := ir.Field{
		Name: "count", Number: 3, Kind: ir.KindMessage,
		MessageFullName: "google.protobuf.Int32Value",
		IsWrapper:       true, WrapperKind: ir.KindInt32,
		OneofIndex: 0,
	}
	strategy := mustStrategy(t, field, msg)

	// No conditional-overwrite here: installing the member is what selects it.
	parsed := render(func(p *generate.Printer) { strategy.GenerateParsingCode(p, "", true) })
	require.Equal(t, "Count = input.ReadWrappedInt32(ref immediateBuffer);\n", parsed)

	members := render(func(p *generate.Printer) { strategy.GenerateMembers(p) })
	require.Contains(t, members, "kindCase_ = value == null ? KindOneofCase.None : KindOneofCase.Count;")
}

func TestRepeatedPrimitiveParseBothRepresentations(t *testing.T) {
	field := ir.Field{Name: "ids", Number: 3, Kind: ir.KindInt32, IsRepeated: true, IsPacked: true, OneofIndex: -1}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	packed := render(func(p *generate.Printer) { strategy.GenerateParsingCode(p, "", false) })
	require.Equal(t,
		"int length = input.ReadLength(ref immediateBuffer);\n"+
			"if (length > 0) {\n"+
			"  var oldLimit = input.PushLimit(length);\n"+
			"  while (!input.ReachedLimit) {\n"+
			"    ids_.Add(input.ReadInt32(ref immediateBuffer));\n"+
			"  }\n"+
			"  input.PopLimit(oldLimit);\n"+
			"}\n",
		packed)

	unpacked := render(func(p *generate.Printer) { strategy.GenerateParsingCode(p, "", true) })
	require.Equal(t, "ids_.Add(input.ReadInt32(ref immediateBuffer));\n", unpacked)
}

func TestRepeatedPackedSerializationSkipsEmpty(t *testing.T) {
	field := ir.Field{Name: "ids", Number: 3, Kind: ir.KindInt32, IsRepeated: true, IsPacked: true, OneofIndex: -1}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	serialized := render(func(p *generate.Printer) { strategy.GenerateSerializationCode(p, "Ids") })
	require.Equal(t,
		"{\n"+
			"  var packedSize = 0;\n"+
			"  for (var i = 0; i < Ids.Count; i++) {\n"+
			"    packedSize += pb::CodedOutputStream.ComputeInt32Size(Ids[i]);\n"+
			"  }\n"+
			"  if (packedSize > 0) {\n"+
			"    output.WriteRawTag(26, ref immediateBuffer);\n"+
			"    output.WriteLength(packedSize, ref immediateBuffer);\n"+
			"    for (var i = 0; i < Ids.Count; i++) {\n"+
			"      output.WriteInt32(Ids[i], ref immediateBuffer);\n"+
			"    }\n"+
			"  }\n"+
			"}\n",
		serialized)

	sized := render(func(p *generate.Printer) { strategy.GenerateSerializedSizeCode(p, "size", "Ids") })
	require.Contains(t, sized, "if (packedSize > 0) {")
	require.Contains(t, sized, "size += 1 + packedSize + pb::CodedOutputStream.ComputeLengthSize(packedSize);")
}

func TestRepeatedPackedFixedSizeFastPath(t *testing.T) {
	field := ir.Field{Name: "codes", Number: 5, Kind: ir.KindFixed32, IsRepeated: true, IsPacked: true, OneofIndex: -1}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	serialized := render(func(p *generate.Printer) { strategy.GenerateSerializationCode(p, "Codes") })
	require.Contains(t, serialized, "var packedSize = 4 * Codes.Count;")
}

func TestRepeatedNonPackedFixedSizeFastPath(t *testing.T) {
	field := ir.Field{Name: "codes", Number: 5, Kind: ir.KindFixed32, IsRepeated: true, OneofIndex: -1}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	sized := render(func(p *generate.Printer) { strategy.GenerateSerializedSizeCode(p, "size", "Codes") })
	require.Equal(t, "size += (1 + 4) * Codes.Count;\n", sized)
}

func TestRepeatedEnumCastsElements(t *testing.T) {
	field := ir.Field{Name: "colors", Number: 7, Kind: ir.KindEnum, EnumFullName: "demo.Color", IsRepeated: true, IsPacked: true, OneofIndex: -1}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	unpacked := render(func(p *generate.Printer) { strategy.GenerateParsingCode(p, "", true) })
	require.Equal(t, "colors_.Add((Color) input.ReadEnum(ref immediateBuffer));\n", unpacked)

	serialized := render(func(p *generate.Printer) { strategy.GenerateSerializationCode(p, "Colors") })
	require.Contains(t, serialized, "output.WriteEnum((int) Colors[i], ref immediateBuffer);")
}

func TestRepeatedMessageFramesEachElement(t *testing.T) {
	field := ir.Field{Name: "addrs", Number: 8, Kind: ir.KindMessage, MessageFullName: "demo.Address", IsRepeated: true, OneofIndex: -1}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	parsed := render(func(p *generate.Printer) { strategy.GenerateParsingCode(p, "", true) })
	require.Equal(t,
		"var item = new Address();\n"+
			"var oldLimit = input.BeginReadNested(ref immediateBuffer);\n"+
			"item.MergeFrom(input, ref immediateBuffer);\n"+
			"input.EndReadNested(oldLimit);\n"+
			"addrs_.Add(item);\n",
		parsed)

	serialized := render(func(p *generate.Printer) { strategy.GenerateSerializationCode(p, "Addrs") })
	require.Contains(t, serialized, "output.WriteLength(Addrs[i].CalculateSize(), ref immediateBuffer);")
	require.Contains(t, serialized, "Addrs[i].WriteTo(output, ref immediateBuffer);")
}

func TestRepeatedWrapperUsesWrappedCodec(t *testing.T) {
	field := ir.Field{
		Name: "counts", Number: 9, Kind: ir.KindMessage,
		MessageFullName: "google.protobuf.Int32Value",
		IsWrapper:       true, WrapperKind: ir.KindInt32,
		IsRepeated: true, OneofIndex: -1,
	}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	members := render(func(p *generate.Printer) { strategy.GenerateMembers(p) })
	require.Contains(t, members, "pbc::RepeatedField<int?>")

	parsed := render(func(p *generate.Printer) { strategy.GenerateParsingCode(p, "", true) })
	require.Equal(t, "counts_.Add(input.ReadWrappedInt32(ref immediateBuffer));\n", parsed)
}

func TestMapParseLastKeyWins(t *testing.T) {
	field := ir.Field{
		Name: "attrs", Number: 4, IsMap: true, Kind: ir.KindMessage,
		MapKeyKind: ir.KindString, MapValueKind: ir.KindInt32,
		OneofIndex: -1,
	}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	parsed := render(func(p *generate.Printer) { strategy.GenerateParsingCode(p, "", true) })
	require.Equal(t,
		"var mapOldLimit = input.BeginReadNested(ref immediateBuffer);\n"+
			"string entryKey = \"\";\n"+
			"int entryValue = 0;\n"+
			"uint ntag;\n"+
			"while ((ntag = input.ReadTag(ref immediateBuffer)) != 0) {\n"+
			"  if (ntag == 10) {\n"+
			"    entryKey = input.ReadString(ref immediateBuffer);\n"+
			"  } else if (ntag == 16) {\n"+
			"    entryValue = input.ReadInt32(ref immediateBuffer);\n"+
			"  } else {\n"+
			"    input.SkipLastField(ref immediateBuffer);\n"+
			"  }\n"+
			"}\n"+
			"attrs_[entryKey] = entryValue;\n"+
			"input.EndReadNested(mapOldLimit);\n",
		parsed)
}

func TestMapMessageValueMaterializedWhenAbsent(t *testing.T) {
	field := ir.Field{
		Name: "addrs", Number: 4, IsMap: true, Kind: ir.KindMessage,
		MapKeyKind: ir.KindInt32, MapValueKind: ir.KindMessage,
		MapValueMessage: "demo.Address",
		OneofIndex:      -1,
	}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	parsed := render(func(p *generate.Printer) { strategy.GenerateParsingCode(p, "", true) })
	require.Contains(t, parsed, "Address entryValue = null;")
	require.Contains(t, parsed,
		"if (entryValue == null) {\n"+
			"  entryValue = new Address();\n"+
			"}\n")
}

func TestMapSerializationFramesEntries(t *testing.T) {
	field := ir.Field{
		Name: "attrs", Number: 4, IsMap: true, Kind: ir.KindMessage,
		MapKeyKind: ir.KindString, MapValueKind: ir.KindInt32,
		OneofIndex: -1,
	}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	serialized := render(func(p *generate.Printer) { strategy.GenerateSerializationCode(p, "Attrs") })
	require.Contains(t, serialized, "foreach (var entry in Attrs) {")
	require.Contains(t, serialized, "var messageSize = 0;")
	require.Contains(t, serialized, "output.WriteRawTag(34, ref immediateBuffer);")
	require.Contains(t, serialized, "output.WriteLength(messageSize, ref immediateBuffer);")
	require.Contains(t, serialized, "output.WriteString(entry.Key, ref immediateBuffer);")
	require.Contains(t, serialized, "output.WriteInt32(entry.Value, ref immediateBuffer);")

	sized := render(func(p *generate.Printer) { strategy.GenerateSerializedSizeCode(p, "size", "Attrs") })
	require.Contains(t, sized, "size += 1 + pb::CodedOutputStream.ComputeLengthSize(messageSize) + messageSize;")
}

func TestMapMembers(t *testing.T) {
	field := ir.Field{
		Name: "attrs", Number: 4, IsMap: true, Kind: ir.KindMessage,
		MapKeyKind: ir.KindString, MapValueKind: ir.KindString,
		OneofIndex: -1,
	}
	strategy := mustStrategy(t, field, ir.Message{Name: "M"})

	members := render(func(p *generate.Printer) { strategy.GenerateMembers(p) })
	require.Contains(t, members, "private readonly pbc::MapField<string, string> attrs_ = new pbc::MapField<string, string>();")
	require.Contains(t, members, "public pbc::MapField<string, string> Attrs {")
}
