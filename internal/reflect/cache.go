// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package reflect caches the reflection information needed to decode result
// rows into structs.
package reflect

import (
	"reflect"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// cache is responsible for generating, caching and retrieving reflection
// information about struct types.
type cache struct {
	mutex sync.RWMutex
	cache map[reflect.Type]*Struct
}

var (
	singleCache *cache
	once        sync.Once
)

// Cache returns the process-wide cache.
func Cache() *cache {
	once.Do(func() {
		singleCache = &cache{
			cache: make(map[reflect.Type]*Struct),
		}
	})
	return singleCache
}

// Reflect returns the Struct info of typ, generating and caching it as
// required. Pointers are dereferenced.
func (r *cache) Reflect(typ reflect.Type) (*Struct, error) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	r.mutex.RLock()
	info, ok := r.cache[typ]
	r.mutex.RUnlock()
	if ok {
		return info, nil
	}

	info, err := generate(typ)
	if err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	// Another goroutine may have got there first.
	if existing, ok := r.cache[typ]; ok {
		return existing, nil
	}
	r.cache[typ] = info
	return info, nil
}

// generate produces the reflection information of a struct type.
func generate(typ reflect.Type) (*Struct, error) {
	if typ.Kind() != reflect.Struct {
		return nil, errors.Errorf("cannot reflect %s: not a struct", typ)
	}

	info := &Struct{Type: typ}
	seen := map[string]string{}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		column, err := parseTag(tag)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s of %s", field.Name, typ)
		}
		if !field.IsExported() {
			return nil, errors.Errorf("field %s of %s is tagged but not exported", field.Name, typ)
		}
		if other, ok := seen[column]; ok {
			return nil, errors.Errorf("fields %s and %s of %s have the same tag %q", other, field.Name, typ, column)
		}
		seen[column] = field.Name

		info.Fields = append(info.Fields, Field{
			Name:   field.Name,
			Column: column,
			Index:  field.Index,
			Type:   field.Type,
		})
	}
	return info, nil
}

// parseTag returns the column name held by a "db" tag. Options are not
// supported.
func parseTag(tag string) (string, error) {
	options := strings.Split(tag, ",")
	if len(options) > 1 {
		return "", errors.Errorf("unexpected tag value %q", options[1])
	}
	name := strings.TrimSpace(options[0])
	if name == "" {
		return "", errors.Errorf("empty column name in tag %q", tag)
	}
	return name, nil
}
