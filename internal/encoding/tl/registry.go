// Copyright (c) 2024 RoseLoverX

package tl

import (
	"reflect"
	"sync"
)

var (
	registryMu  sync.RWMutex
	objectByCrc = make(map[uint32]reflect.Type)
)

// RegisterObjects makes the given constructors decodable through
// DecodeUnknownObject and interface typed fields. Later registrations
// of the same crc win.
func RegisterObjects(obs ...Object) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, o := range obs {
		typ := reflect.TypeOf(o)
		if typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
			panic("tl: registered object must be a pointer to struct, got " + typ.String())
		}
		objectByCrc[o.CRC()] = typ
	}
}

func objectTypeByCrc(crc uint32) (reflect.Type, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	typ, ok := objectByCrc[crc]
	return typ, ok
}
