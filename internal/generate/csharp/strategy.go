package csgen

import (
	"fmt"

	"github.com/mkosieradzki/protogen/internal/generate"
	"github.com/mkosieradzki/protogen/internal/ir"
)

// FieldStrategy emits the per-field fragments of a generated message class.
// One implementation exists per field category; all wire-format policy lives
// in the implementations, the driver only sequences the calls.
type FieldStrategy interface {
	// GenerateMembers declares the backing slot and the public accessor.
	GenerateMembers(p *generate.Printer)
	// GenerateMergingCode combines other's field value into the current one.
	GenerateMergingCode(p *generate.Printer)
	// GenerateParsingCode consumes one wire occurrence into lvalue (the
	// field's own storage when empty). forceNonPacked selects element
	// decoding when the dispatcher matched a non-length-delimited tag.
	GenerateParsingCode(p *generate.Printer, lvalue string, forceNonPacked bool)
	// GenerateSerializationCode writes tag and payload when present.
	GenerateSerializationCode(p *generate.Printer, rvalue string)
	// GenerateSerializedSizeCode adds the exact byte count the serialization
	// fragment produces. Must mirror its presence test.
	GenerateSerializedSizeCode(p *generate.Printer, lvalue, rvalue string)
	WriteHash(p *generate.Printer)
	WriteEquals(p *generate.Printer)
	GenerateCloningCode(p *generate.Printer)
	// GenerateFreezingCode is a reserved extension hook; no current strategy
	// emits anything here.
	GenerateFreezingCode(p *generate.Printer)
}

// fieldGen carries the field description and its variable table, shared by
// every strategy implementation.
type fieldGen struct {
	field ir.Field
	vars  map[string]string
}

func newFieldGen(field ir.Field, oneof *ir.Oneof, r *typeResolver) (fieldGen, error) {
	vars, err := buildFieldVars(field, oneof, r)
	if err != nil {
		return fieldGen{}, err
	}
	return fieldGen{field: field, vars: vars}, nil
}

// callVars layers transient per-call overrides (lvalue/rvalue names) over the
// immutable construction-time table.
func (g *fieldGen) callVars(extra map[string]string) map[string]string {
	vars := make(map[string]string, len(g.vars)+len(extra))
	for k, v := range g.vars {
		vars[k] = v
	}
	for k, v := range extra {
		vars[k] = v
	}
	return vars
}

func (g *fieldGen) GenerateFreezingCode(p *generate.Printer) {
}

// newFieldStrategy selects the concrete strategy for a field from its kind,
// cardinality, and oneof membership.
func newFieldStrategy(field ir.Field, msg ir.Message, r *typeResolver) (FieldStrategy, error) {
	switch {
	case field.IsMap:
		return newMapField(field, r)
	case field.IsRepeated:
		switch {
		case field.IsWrapper:
			// Wrapper elements read and write through the WrappedXxx codec
			// methods; per-element absence carries no meaning in a list.
			return newRepeatedPrimitiveField(field, r)
		case field.Kind == ir.KindMessage:
			return newRepeatedMessageField(field, r)
		case field.Kind == ir.KindEnum:
			return newRepeatedEnumField(field, r)
		default:
			return newRepeatedPrimitiveField(field, r)
		}
	case field.IsWrapper:
		oneof, err := oneofFor(field, msg)
		if err != nil {
			return nil, err
		}
		if oneof != nil {
			return newWrapperOneofField(field, oneof, r)
		}
		return newWrapperField(field, r)
	case field.Kind == ir.KindMessage:
		oneof, err := oneofFor(field, msg)
		if err != nil {
			return nil, err
		}
		if oneof != nil {
			return newMessageOneofField(field, oneof, r)
		}
		return newMessageField(field, r)
	default:
		oneof, err := oneofFor(field, msg)
		if err != nil {
			return nil, err
		}
		if oneof != nil {
			return newPrimitiveOneofField(field, oneof, r)
		}
		return newPrimitiveField(field, r)
	}
}

func oneofFor(field ir.Field, msg ir.Message) (*ir.Oneof, error) {
	if !field.InOneof() {
		return nil, nil
	}
	for i := range msg.Oneofs {
		if msg.Oneofs[i].Index == field.OneofIndex {
			return &msg.Oneofs[i], nil
		}
	}
	return nil, fmt.Errorf("field %s references missing oneof group %d in %s", field.Name, field.OneofIndex, msg.FullName)
}
