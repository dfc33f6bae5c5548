package grpc

import (
	"context"
	"fmt"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/reflect/protoreflect"

	"user-registry-service/api"
)

const serviceName = "userregistry.v1.UserRegistry"

// registryService is the UserRegistry descriptor compiled from the embedded .proto.
var registryService = mustLoadService()

// loadService compiles the embedded service definition. Well-known imports
// resolve from protocompile's bundled copies.
func loadService(ctx context.Context) (protoreflect.ServiceDescriptor, error) {
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(map[string]string{
				api.UserRegistryProtoPath: api.UserRegistryProto,
			}),
		}),
	}

	files, err := compiler.Compile(ctx, api.UserRegistryProtoPath)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", api.UserRegistryProtoPath, err)
	}

	svc := files[0].Services().ByName("UserRegistry")
	if svc == nil || string(svc.FullName()) != serviceName {
		return nil, fmt.Errorf("service %s not found in %s", serviceName, api.UserRegistryProtoPath)
	}
	return svc, nil
}

func mustLoadService() protoreflect.ServiceDescriptor {
	svc, err := loadService(context.Background())
	if err != nil {
		panic(err)
	}
	return svc
}

// methodDescriptor panics on an unknown name; method names are fixed at compile time.
func methodDescriptor(name string) protoreflect.MethodDescriptor {
	md := registryService.Methods().ByName(protoreflect.Name(name))
	if md == nil {
		panic(fmt.Sprintf("grpc: method %s not defined on %s", name, serviceName))
	}
	return md
}
