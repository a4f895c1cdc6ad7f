package csgen

import (
	"strconv"

	"github.com/mkosieradzki/protogen/internal/ir"
)

// buildFieldVars computes the per-field variable table consumed by the emit
// operations. It is populated once at strategy construction; the tag value
// and tag byte length recorded here are reused verbatim by the parse,
// serialize, and size fragments so the three can never disagree.
func buildFieldVars(field ir.Field, oneof *ir.Oneof, r *typeResolver) (map[string]string, error) {
	tag := fieldTag(field)
	vars := map[string]string{
		"name":            ir.CamelName(field.Name),
		"property_name":   ir.PascalName(field.Name),
		"descriptor_name": field.Name,
		"access_level":    "public",
		"tag":             strconv.FormatUint(uint64(tag), 10),
		"tag_bytes":       tagBytes(tag),
		"tag_size":        strconv.Itoa(tagSize(tag)),
		"read_cast":       "",
		"write_cast":      "",
	}

	typeName, err := fieldTypeName(field, r)
	if err != nil {
		return nil, err
	}
	vars["type_name"] = typeName

	defaultValue, err := fieldDefaultValue(field, typeName, r)
	if err != nil {
		return nil, err
	}
	vars["default_value"] = defaultValue

	capitalized, err := capitalizedTypeName(elementKind(field))
	if err != nil {
		return nil, err
	}
	if field.IsWrapper {
		vars["wrapped_type_capitalized_name"] = capitalized
		capitalized = "Wrapped" + capitalized
	}
	vars["capitalized_type_name"] = capitalized

	if elementKind(field) == ir.KindEnum {
		vars["read_cast"] = "(" + typeName + ") "
		vars["write_cast"] = "(int) "
	}

	vars["name_def_message"] = vars["name"] + "_ = " + defaultValue

	// Presence checks for value kinds compare against the default; string,
	// bytes, message, and wrapper strategies override these.
	vars["has_property_check"] = vars["property_name"] + " != " + defaultValue
	vars["other_has_property_check"] = "other." + vars["property_name"] + " != " + defaultValue
	vars["has_property_check_sufix"] = " != " + defaultValue

	if oneof != nil {
		setOneofVars(vars, oneof)
	}
	return vars, nil
}

// setOneofVars rebinds the presence check to the group discriminant shared by
// all sibling members.
func setOneofVars(vars map[string]string, oneof *ir.Oneof) {
	vars["oneof_name"] = ir.CamelName(oneof.Name)
	vars["oneof_property_name"] = ir.PascalName(oneof.Name)
	vars["has_property_check"] = vars["oneof_name"] + "Case_ == " + vars["oneof_property_name"] + "OneofCase." + vars["property_name"]
}

func elementKind(field ir.Field) ir.Kind {
	if field.IsWrapper {
		return field.WrapperKind
	}
	return field.Kind
}

func fieldTypeName(field ir.Field, r *typeResolver) (string, error) {
	if field.IsMap {
		// The map strategy synthesizes key/value type names itself.
		return "", nil
	}
	if field.IsWrapper {
		return wrapperNullableType(field.WrapperKind)
	}
	switch field.Kind {
	case ir.KindMessage:
		return r.messageName(field.MessageFullName)
	case ir.KindEnum:
		return r.enumName(field.EnumFullName)
	default:
		return csharpScalarType(field.Kind)
	}
}

func fieldDefaultValue(field ir.Field, typeName string, r *typeResolver) (string, error) {
	if field.DefaultValue != "" {
		return field.DefaultValue, nil
	}
	if field.IsWrapper {
		return scalarDefaultValue(field.WrapperKind)
	}
	switch field.Kind {
	case ir.KindMessage:
		return "null", nil
	case ir.KindEnum:
		return r.enumDefault(field.EnumFullName)
	default:
		return scalarDefaultValue(field.Kind)
	}
}
