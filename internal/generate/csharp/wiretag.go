package csgen

import (
	"strconv"
	"strings"

	"github.com/mkosieradzki/protogen/internal/ir"

	"google.golang.org/protobuf/encoding/protowire"
)

// scalarWireType returns the wire type a single value of the kind is encoded
// with: varint, fixed32, fixed64, or length-delimited.
func scalarWireType(kind ir.Kind) protowire.Type {
	switch kind {
	case ir.KindString, ir.KindBytes, ir.KindMessage:
		return protowire.BytesType
	case ir.KindFloat, ir.KindFixed32, ir.KindSfixed32:
		return protowire.Fixed32Type
	case ir.KindDouble, ir.KindFixed64, ir.KindSfixed64:
		return protowire.Fixed64Type
	default:
		return protowire.VarintType
	}
}

// makeTag computes (field_number << 3) | wire_type.
func makeTag(number int, typ protowire.Type) uint32 {
	return uint32(protowire.EncodeTag(protowire.Number(number), typ))
}

// fieldTag returns the tag a field's occurrences carry on the wire. Maps,
// messages, wrappers, and packed repeated fields are length-delimited;
// everything else uses the element wire type.
func fieldTag(field ir.Field) uint32 {
	switch {
	case field.IsMap:
		return makeTag(field.Number, protowire.BytesType)
	case field.IsRepeated && field.IsPacked && isPackable(field.Kind):
		return makeTag(field.Number, protowire.BytesType)
	default:
		return makeTag(field.Number, scalarWireType(field.Kind))
	}
}

// alternateTag returns the second dispatch tag a packable repeated field must
// accept: the element-typed tag when the field is declared packed, the
// length-delimited tag otherwise. Zero means the field has a single tag.
func alternateTag(field ir.Field) uint32 {
	if !field.IsRepeated || field.IsMap || !isPackable(field.Kind) {
		return 0
	}
	if field.IsPacked {
		return makeTag(field.Number, scalarWireType(field.Kind))
	}
	return makeTag(field.Number, protowire.BytesType)
}

func isPackable(kind ir.Kind) bool {
	switch kind {
	case ir.KindString, ir.KindBytes, ir.KindMessage:
		return false
	default:
		return true
	}
}

// tagBytes renders the little-endian varint encoding of a tag as the
// comma-separated byte list expected by WriteRawTag.
func tagBytes(tag uint32) string {
	raw := protowire.AppendVarint(nil, uint64(tag))
	parts := make([]string, len(raw))
	for i, b := range raw {
		parts[i] = strconv.Itoa(int(b))
	}
	return strings.Join(parts, ", ")
}

// tagSize is the encoded byte length of a tag. Serialize and size fragments
// must agree on this value or length-prefixed framing breaks.
func tagSize(tag uint32) int {
	return protowire.SizeVarint(uint64(tag))
}
