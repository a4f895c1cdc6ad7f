package parser

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/runtime/protoimpl"
	"google.golang.org/protobuf/types/descriptorpb"
)

const optionsProtoPath = "protogen/options.proto"

const optionsProtoSource = `
syntax = "proto3";

package protogen;

import "google/protobuf/descriptor.proto";

extend google.protobuf.FileOptions {
  string cs_out = 50020;
}
`

var E_CsOut = &protoimpl.ExtensionInfo{
	ExtendedType:  (*descriptorpb.FileOptions)(nil),
	ExtensionType: (*string)(nil),
	Field:         50020,
	Name:          "protogen.cs_out",
	Tag:           "bytes,50020,opt,name=cs_out",
	Filename:      optionsProtoPath,
}

func csOutFromOptions(file protoreflect.FileDescriptor) (string, error) {
	opts, ok := file.Options().(*descriptorpb.FileOptions)
	if !ok || opts == nil {
		return "", nil
	}
	val := proto.GetExtension(opts, E_CsOut)
	str, ok := val.(string)
	if !ok {
		return "", nil
	}
	return str, nil
}

func namespaceFromOptions(file protoreflect.FileDescriptor) string {
	opts, ok := file.Options().(*descriptorpb.FileOptions)
	if !ok || opts == nil {
		return ""
	}
	return opts.GetCsharpNamespace()
}
