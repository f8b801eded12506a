package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

const (
	// PartSeparator joins multiple serialized arguments.
	PartSeparator = "|"

	// MaxDiscriminatorLength is the longest discriminator kept verbatim. Longer
	// ones are replaced by their xxhash64 digest.
	MaxDiscriminatorLength = 200
)

// KeySerializer builds the request-specific discriminator of a cache key.
// Equal inputs must always produce equal output.
type KeySerializer interface {
	SerializeKey(args ...any) string
}

type defaultKeySerializer struct {
	maxLen int
}

// NewDefaultKeySerializer returns the reflection based serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{maxLen: MaxDiscriminatorLength}
}

// NewKeySerializer returns a serializer that hashes discriminators longer than maxLen.
// maxLen <= 0 disables hashing.
func NewKeySerializer(maxLen int) KeySerializer {
	return &defaultKeySerializer{maxLen: maxLen}
}

// SerializeKey renders args canonically. A lone string is kept as is so that
// point lookups read "get-item:<id>".
func (s *defaultKeySerializer) SerializeKey(args ...any) string {
	var out string
	switch {
	case len(args) == 0:
		out = ""
	case len(args) == 1 && isPlainString(args[0]):
		out = reflect.ValueOf(args[0]).String()
	default:
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = s.serializeValue(arg)
		}
		out = strings.Join(parts, PartSeparator)
	}

	if s.maxLen > 0 && len(out) > s.maxLen {
		return "h" + strconv.FormatUint(xxhash.Sum64String(out), 16)
	}
	return out
}

func isPlainString(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.String
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	switch tv := v.(type) {
	case time.Time:
		return tv.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		// uuid.UUID and friends
		if reflect.TypeOf(v).Kind() == reflect.Array {
			return strconv.Quote(tv.String())
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	case reflect.String:
		return strconv.Quote(rv.String())
	case reflect.Slice:
		if rv.IsNil() {
			return "[]"
		}
		return s.serializeList(rv)
	case reflect.Array:
		return s.serializeList(rv)
	case reflect.Map:
		return s.serializeMap(rv)
	case reflect.Struct:
		return s.serializeStruct(rv)
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%v", v)
	}

	return s.jsonFallback(v)
}

func (s *defaultKeySerializer) serializeList(rv reflect.Value) string {
	parts := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		parts[i] = s.serializeValue(rv.Index(i).Interface())
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// serializeMap sorts entries by their serialized key.
func (s *defaultKeySerializer) serializeMap(rv reflect.Value) string {
	pairs := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, s.serializeValue(iter.Key().Interface())+"="+s.serializeValue(iter.Value().Interface()))
	}
	sort.Strings(pairs)
	return "{" + strings.Join(pairs, ",") + "}"
}

// serializeStruct renders exported fields sorted by name. The json tag name is
// used when present so keys read like the query string that produced them.
func (s *defaultKeySerializer) serializeStruct(rv reflect.Value) string {
	rt := rv.Type()
	pairs := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		pairs = append(pairs, name+"="+s.serializeValue(rv.Field(i).Interface()))
	}
	sort.Strings(pairs)
	return "{" + strings.Join(pairs, "&") + "}"
}

func (s *defaultKeySerializer) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "type:" + reflect.TypeOf(v).String()
	}
	return "json:" + string(data)
}
