// Copyright (c) 2024 RoseLoverX

package tl

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var objectType = reflect.TypeOf((*Object)(nil)).Elem()

// Decode reads a TL value from data into res, which must be a pointer.
func Decode(data []byte, res any) error {
	if res == nil {
		return errors.New("can't unmarshal to nil value")
	}
	if reflect.TypeOf(res).Kind() != reflect.Ptr {
		return fmt.Errorf("res value is not pointer as expected. got %v", reflect.TypeOf(res))
	}

	d, err := NewDecoder(bytes.NewReader(data))
	if err != nil {
		return err
	}

	d.decodeValue(reflect.ValueOf(res))
	if d.err != nil {
		return errors.Wrapf(d.err, "decode %T", res)
	}

	return nil
}

// DecodeUnknownObject reads a boxed value whose constructor is looked up in
// the registry.
func DecodeUnknownObject(data []byte, expectNextTypes ...reflect.Type) (Object, error) {
	d, err := NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(expectNextTypes) > 0 {
		d.ExpectTypesInInterface(expectNextTypes...)
	}

	obj := d.PopObj()
	if d.err != nil {
		return obj, errors.Wrap(d.err, "decoding predicted object")
	}
	return obj, nil
}

// PopObj reads a boxed value of any registered type.
func (d *Decoder) PopObj() Object {
	return d.decodeRegisteredObject()
}

func (d *Decoder) decodeObject(o Object, ignoreCRC bool) {
	if d.err != nil {
		return
	}

	if !ignoreCRC {
		crc := d.PopCRC()
		if d.err != nil {
			d.err = errors.Wrap(d.err, "read crc")
			return
		}
		if crc != o.CRC() {
			d.err = &ErrInvalidCrc{Got: crc, Want: o.CRC()}
			return
		}
	}

	value := reflect.ValueOf(o).Elem()
	vtyp := value.Type()

	layout, err := layoutOf(vtyp)
	if err != nil {
		d.err = err
		return
	}

	var flags, flags2 uint32
	for i := 0; i < value.NumField(); i++ {
		if i == layout.flagIndex {
			flags = d.PopUint()
			if layout.hasFlags2 {
				flags2 = d.PopUint()
			}
			if d.err != nil {
				d.err = errors.Wrapf(d.err, "reading bitset(%s)", vtyp.Name())
				return
			}
		}

		info := layout.fields[i]
		if info.ignore {
			continue
		}

		field := value.Field(i)
		if info.optional {
			set := flags
			if info.version == 2 {
				set = flags2
			}
			if set&(1<<info.index) == 0 {
				continue
			}
			if info.encodedInBitflag {
				field.Set(reflect.ValueOf(true).Convert(field.Type()))
				continue
			}
		}

		d.decodeValue(field)
		if d.err != nil {
			d.err = errors.Wrapf(d.err, "decode object: %s.%s", vtyp.Name(), vtyp.Field(i).Name)
			return
		}
	}
}

func (d *Decoder) decodeValue(value reflect.Value) {
	if d.err != nil {
		return
	}

	if value.Kind() != reflect.Ptr && value.CanAddr() {
		if m, ok := value.Addr().Interface().(Unmarshaler); ok {
			if err := m.UnmarshalTL(d); err != nil {
				d.err = err
			}
			return
		}
	}

	switch value.Kind() {
	case reflect.Float64:
		value.SetFloat(d.PopDouble())
	case reflect.Int64:
		value.SetInt(d.PopLong())
	case reflect.Int32:
		value.SetInt(int64(d.PopInt()))
	case reflect.Uint32:
		value.SetUint(uint64(d.PopUint()))
	case reflect.Bool:
		value.SetBool(d.PopBool())
	case reflect.String:
		value.SetString(string(d.PopMessage()))

	case reflect.Slice:
		if value.Type().Elem().Kind() == reflect.Uint8 {
			value.SetBytes(d.PopMessage())
			return
		}
		vec := d.PopVector(value.Type().Elem())
		if d.err == nil {
			value.Set(reflect.ValueOf(vec))
		}

	case reflect.Ptr:
		if value.IsNil() {
			value.Set(reflect.New(value.Type().Elem()))
		}
		if m, ok := value.Interface().(Unmarshaler); ok {
			if o, boxed := value.Interface().(Object); boxed {
				crc := d.PopCRC()
				if d.err == nil && crc != o.CRC() {
					d.err = &ErrInvalidCrc{Got: crc, Want: o.CRC()}
				}
				if d.err != nil {
					return
				}
			}
			if err := m.UnmarshalTL(d); err != nil {
				d.err = err
			}
			return
		}
		if o, ok := value.Interface().(Object); ok && value.Elem().Kind() == reflect.Struct {
			d.decodeObject(o, false)
			return
		}
		d.decodeValue(value.Elem())

	case reflect.Interface:
		obj := d.decodeRegisteredObject()
		if d.err != nil {
			d.err = errors.Wrap(d.err, "decode interface")
			return
		}

		if obj == nil {
			return
		}
		val := reflect.ValueOf(obj)
		if native := UnwrapNativeTypes(obj); native == nil {
			if _, isNil := obj.(*PseudoNil); isNil {
				return
			}
		} else if nv := reflect.ValueOf(native); nv.Type().AssignableTo(value.Type()) {
			val = nv
		}
		if !val.Type().AssignableTo(value.Type()) {
			d.err = fmt.Errorf("decoded %v is not assignable to %v", val.Type(), value.Type())
			return
		}
		value.Set(val)

	default:
		d.err = fmt.Errorf("unsupported type for TL decoding: %v", value.Type())
	}
}

func (d *Decoder) decodeRegisteredObject() Object {
	crc := d.PopCRC()
	if d.err != nil {
		d.err = errors.Wrap(d.err, "reading crc")
		return nil
	}

	switch crc {
	case CrcFalse:
		return &PseudoFalse{}
	case CrcTrue:
		return &PseudoTrue{}
	case CrcNull:
		return &PseudoNil{}
	case CrcVector:
		return d.decodeUnknownVector()
	}

	typ, ok := objectTypeByCrc(crc)
	if !ok {
		msg, _ := d.DumpWithoutRead()
		d.err = &ErrRegisteredObjectNotFound{Crc: crc, Data: msg}
		return nil
	}

	o := reflect.New(typ.Elem()).Interface().(Object)
	if m, ok := o.(Unmarshaler); ok {
		if err := m.UnmarshalTL(d); err != nil {
			d.err = err
			return nil
		}
		return o
	}

	d.decodeObject(o, true)
	if d.err != nil {
		d.err = errors.Wrapf(d.err, "decode registered object %T", o)
	}
	return o
}

// decodeUnknownVector reads a vector whose crc was already consumed.
func (d *Decoder) decodeUnknownVector() Object {
	if len(d.expectedTypes) > 0 {
		typ := d.expectedTypes[0]
		d.expectedTypes = d.expectedTypes[1:]
		res := d.popVector(typ.Elem(), true)
		if d.err != nil {
			return nil
		}
		return &WrappedSlice{data: res}
	}

	size := d.PopUint()
	if d.err != nil {
		return nil
	}
	if size == 0 {
		return &WrappedSlice{data: []Object{}}
	}

	// peek at the first element to tell boxed from bare vectors
	first := d.PopCRC()
	if d.err != nil {
		return nil
	}
	d.unread(2 * WordLen)

	if _, ok := objectTypeByCrc(first); !ok && first != CrcTrue && first != CrcFalse {
		d.err = &ErrMustParseSlicesExplicitly{}
		return nil
	}

	res := d.popVector(objectType, true)
	if d.err != nil {
		return nil
	}
	return &WrappedSlice{data: res}
}
