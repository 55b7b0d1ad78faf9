// Copyright (c) 2024 RoseLoverX

package tl

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/structtag"
	"github.com/pkg/errors"
)

const tagName = "tl"

type fieldTag struct {
	index            int  // flag:<N>
	encodedInBitflag bool // encoded_in_bitflags
	ignore           bool // -
	optional         bool // flag or flag2 present
	version          int  // 1 for flags, 2 for flags2
}

func parseTag(s reflect.StructTag) (*fieldTag, error) {
	tags, err := structtag.Parse(string(s))
	if err != nil {
		return nil, errors.Wrap(err, "parsing field tags")
	}

	tag, err := tags.Get(tagName)
	if err != nil {
		return &fieldTag{}, nil
	}

	info := &fieldTag{}
	if tag.Name == "-" {
		info.ignore = true
		return info, nil
	}

	switch {
	case strings.HasPrefix(tag.Name, "flag2:"):
		info.version = 2
		info.index, err = parseFlagIndex(strings.TrimPrefix(tag.Name, "flag2:"))
	case strings.HasPrefix(tag.Name, "flag:"):
		info.version = 1
		info.index, err = parseFlagIndex(strings.TrimPrefix(tag.Name, "flag:"))
	case tag.Name == "":
	default:
		return nil, errors.Errorf("unknown tl tag %q", tag.Name)
	}
	if err != nil {
		return nil, err
	}
	info.optional = info.version != 0

	if tag.HasOption("encoded_in_bitflags") {
		if !info.optional {
			return nil, errors.New("have 'encoded_in_bitflags' option without flag index")
		}
		info.encodedInBitflag = true
	}

	return info, nil
}

func parseFlagIndex(s string) (int, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing index number '%s'", s)
	}
	if n >= 32 {
		return 0, errors.Errorf("flag index %d out of range", n)
	}
	return int(n), nil
}

// structLayout is the parsed tag set of a struct type.
type structLayout struct {
	fields    []*fieldTag
	flagIndex int // -1 when the type has no flags word
	hasFlags2 bool
}

var layouts sync.Map // reflect.Type -> *structLayout

func layoutOf(typ reflect.Type) (*structLayout, error) {
	if l, ok := layouts.Load(typ); ok {
		return l.(*structLayout), nil
	}

	l := &structLayout{flagIndex: -1}
	anyFlag := false
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		info, err := parseTag(f.Tag)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s", typ.Name(), f.Name)
		}
		if !f.IsExported() {
			info.ignore = true
		}
		if info.optional {
			anyFlag = true
		}
		if info.version == 2 {
			l.hasFlags2 = true
		}
		l.fields = append(l.fields, info)
	}

	if anyFlag {
		getter, ok := reflect.New(typ).Interface().(FlagIndexGetter)
		if !ok {
			return nil, errors.Errorf("type %s has flag tags, but doesn't implement tl.FlagIndexGetter", typ)
		}
		l.flagIndex = getter.FlagIndex()
		if l.flagIndex < 0 || l.flagIndex > typ.NumField() {
			return nil, errors.Errorf("type %s: flag index %d out of range", typ, l.flagIndex)
		}
	}

	layouts.Store(typ, l)
	return l, nil
}
