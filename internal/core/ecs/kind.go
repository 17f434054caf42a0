package ecs

import (
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Kind identifies the storage slot of one component type. It is derived from
// the fully-qualified type name, so it is identical in every process built
// from the same code.
type Kind uint64

// KindOf returns the kind of component type K.
func KindOf[K any]() Kind {
	return kindOfType(reflect.TypeFor[K]())
}

func kindOfType(t reflect.Type) Kind {
	return Kind(xxhash.Sum64String(typeName(t)))
}

func typeName(t reflect.Type) string {
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
