// Package api holds the published contracts of the user registry.
package api

import _ "embed"

// OpenAPI is the OpenAPI 3 document served at /openapi.json.
//
//go:embed openapi.json
var OpenAPI []byte

// UserRegistryProtoPath is the import path of the gRPC service definition.
const UserRegistryProtoPath = "userregistry/v1/user_registry.proto"

// UserRegistryProto is the source of the gRPC service definition.
//
//go:embed userregistry/v1/user_registry.proto
var UserRegistryProto string
