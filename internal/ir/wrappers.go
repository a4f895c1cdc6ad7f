package ir

// WrapperKind maps a well-known wrapper message full name to the primitive
// kind it wraps.
func WrapperKind(fullName string) (Kind, bool) {
	switch fullName {
	case "google.protobuf.DoubleValue":
		return KindDouble, true
	case "google.protobuf.FloatValue":
		return KindFloat, true
	case "google.protobuf.Int64Value":
		return KindInt64, true
	case "google.protobuf.UInt64Value":
		return KindUint64, true
	case "google.protobuf.Int32Value":
		return KindInt32, true
	case "google.protobuf.UInt32Value":
		return KindUint32, true
	case "google.protobuf.BoolValue":
		return KindBool, true
	case "google.protobuf.StringValue":
		return KindString, true
	case "google.protobuf.BytesValue":
		return KindBytes, true
	default:
		return 0, false
	}
}
