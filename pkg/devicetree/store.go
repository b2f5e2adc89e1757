package devicetree

import (
	"strconv"
	"strings"
)

// Store is the typed property accessor over one node. It never mutates the
// node; missing properties read as Absent so the same store can serve
// templates with different schemas, leaving required-ness to the binder.
type Store struct {
	node *Node
}

// NewStore wraps a node for property access.
func NewStore(node *Node) *Store {
	return &Store{node: node}
}

// Has reports whether the node declares the property.
func (s *Store) Has(name string) bool {
	_, ok := s.node.Properties[name]
	return ok
}

// Get returns the property value, or Absent when the node does not declare
// it. Missing properties are not an error at this layer.
func (s *Store) Get(name string) PropertyValue {
	if v, ok := s.node.Properties[name]; ok {
		return v
	}
	return Absent()
}

// GetPath resolves a slash-separated property path such as "reg/0" or
// "interrupts/prio". The first segment names a property; a numeric segment
// indexes into a list-kind value, yielding the scalar element. A path that
// matches a literal property name takes precedence over segment walking.
// Unresolvable paths return Absent.
func (s *Store) GetPath(path string) PropertyValue {
	if v, ok := s.node.Properties[path]; ok {
		return v
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 {
		return Absent()
	}

	value := s.Get(segments[0])
	for _, segment := range segments[1:] {
		index, err := strconv.Atoi(segment)
		if err != nil {
			return Absent()
		}
		switch value.Kind {
		case PropertyKindIntList:
			if index < 0 || index >= len(value.Ints) {
				return Absent()
			}
			value = IntValue(value.Ints[index])
		case PropertyKindStringList:
			if index < 0 || index >= len(value.Strs) {
				return Absent()
			}
			value = StringValue(value.Strs[index])
		default:
			return Absent()
		}
	}
	return value
}

// Int reads a scalar integer property.
func (s *Store) Int(name string) (int64, error) {
	v := s.Get(name)
	if v.Kind != PropertyKindInt {
		return 0, &TypeMismatchError{Property: name, Want: PropertyKindInt, Got: v.Kind}
	}
	return v.Int, nil
}

// Ints reads an integer-list property.
func (s *Store) Ints(name string) ([]int64, error) {
	v := s.Get(name)
	if v.Kind != PropertyKindIntList {
		return nil, &TypeMismatchError{Property: name, Want: PropertyKindIntList, Got: v.Kind}
	}
	return v.Ints, nil
}

// String reads a scalar string property.
func (s *Store) String(name string) (string, error) {
	v := s.Get(name)
	if v.Kind != PropertyKindString {
		return "", &TypeMismatchError{Property: name, Want: PropertyKindString, Got: v.Kind}
	}
	return v.Str, nil
}

// Strings reads a string-list property.
func (s *Store) Strings(name string) ([]string, error) {
	v := s.Get(name)
	if v.Kind != PropertyKindStringList {
		return nil, &TypeMismatchError{Property: name, Want: PropertyKindStringList, Got: v.Kind}
	}
	return v.Strs, nil
}

// Bool reads a boolean feature flag. An absent flag reads as false, matching
// devicetree boolean property semantics.
func (s *Store) Bool(name string) (bool, error) {
	v := s.Get(name)
	switch v.Kind {
	case PropertyKindBool:
		return v.Flag, nil
	case PropertyKindAbsent, "":
		return false, nil
	default:
		return false, &TypeMismatchError{Property: name, Want: PropertyKindBool, Got: v.Kind}
	}
}

// Ref reads a cross-reference property as its opaque symbol.
func (s *Store) Ref(name string) (string, error) {
	v := s.Get(name)
	if v.Kind != PropertyKindRef {
		return "", &TypeMismatchError{Property: name, Want: PropertyKindRef, Got: v.Kind}
	}
	return v.Ref, nil
}
