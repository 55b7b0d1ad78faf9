// Copyright (c) 2024 RoseLoverX

package tl

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Marshal encodes v into its TL representation. v is usually a pointer to
// a registered object, but any supported value works.
func Marshal(v any) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	e := NewEncoder(buf)
	e.encodeValue(reflect.ValueOf(v))
	if err := e.CheckErr(); err != nil {
		return nil, errors.Wrapf(err, "encode %T", v)
	}

	return buf.Bytes(), nil
}

// PutObject writes a boxed object.
func (e *Encoder) PutObject(o Object) {
	e.encodeValue(reflect.ValueOf(o))
}

func (e *Encoder) encodeValue(value reflect.Value) {
	if e.err != nil {
		return
	}

	if !value.IsValid() {
		e.err = errors.New("can't encode nil value")
		return
	}

	if value.CanInterface() {
		if m, ok := value.Interface().(Marshaler); ok {
			if value.Kind() == reflect.Ptr && value.IsNil() {
				e.err = errors.Errorf("can't encode nil %v", value.Type())
				return
			}
			if err := m.MarshalTL(e); err != nil {
				e.err = err
			}
			return
		}
	}

	switch value.Kind() {
	case reflect.Bool:
		e.PutBool(value.Bool())
	case reflect.Int32:
		e.PutInt(int32(value.Int()))
	case reflect.Int64:
		e.PutLong(value.Int())
	case reflect.Uint32:
		e.PutUint(uint32(value.Uint()))
	case reflect.Float64:
		e.PutDouble(value.Float())
	case reflect.String:
		e.PutString(value.String())

	case reflect.Slice:
		if value.Type().Elem().Kind() == reflect.Uint8 {
			e.PutMessage(value.Bytes())
			return
		}
		e.encodeVector(value, false)

	case reflect.Interface:
		if value.IsNil() {
			e.err = errors.Errorf("can't encode nil %v", value.Type())
			return
		}
		e.encodeValue(value.Elem())

	case reflect.Ptr:
		if value.IsNil() {
			e.err = errors.Errorf("can't encode nil %v", value.Type())
			return
		}
		if o, ok := value.Interface().(Object); ok && value.Elem().Kind() == reflect.Struct {
			e.encodeObject(o)
			return
		}
		e.encodeValue(value.Elem())

	default:
		e.err = fmt.Errorf("unsupported type for TL encoding: %v", value.Type())
	}
}

func (e *Encoder) encodeVector(value reflect.Value, bare bool) {
	if !bare {
		e.PutCRC(CrcVector)
	}
	e.PutUint(uint32(value.Len()))
	for i := 0; i < value.Len(); i++ {
		e.encodeValue(value.Index(i))
	}
}

func (e *Encoder) encodeObject(o Object) {
	value := reflect.ValueOf(o).Elem()
	vtyp := value.Type()

	layout, err := layoutOf(vtyp)
	if err != nil {
		e.err = err
		return
	}

	e.PutCRC(o.CRC())

	for i := 0; i <= value.NumField(); i++ {
		if i == layout.flagIndex {
			flags, flags2 := computeFlags(value, layout)
			e.PutUint(flags)
			if layout.hasFlags2 {
				e.PutUint(flags2)
			}
		}
		if i == value.NumField() {
			break
		}

		info := layout.fields[i]
		field := value.Field(i)
		if info.ignore || info.encodedInBitflag {
			continue
		}
		if info.optional && field.IsZero() {
			continue
		}

		e.encodeValue(field)
		if e.err != nil {
			e.err = errors.Wrapf(e.err, "encode %s.%s", vtyp.Name(), vtyp.Field(i).Name)
			return
		}
	}
}

func computeFlags(value reflect.Value, layout *structLayout) (flags, flags2 uint32) {
	for i, info := range layout.fields {
		if !info.optional || info.ignore || value.Field(i).IsZero() {
			continue
		}
		if info.version == 2 {
			flags2 |= 1 << info.index
		} else {
			flags |= 1 << info.index
		}
	}
	return flags, flags2
}
