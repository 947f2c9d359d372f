package object

import (
	"errors"
	"fmt"

	"github.com/gitrefdb/refdb/pkg/oid"
)

// ErrObjectNotFound is returned when Peel is asked to resolve an id that
// is not in the store.
var ErrObjectNotFound = errors.New("object: not found")

// Peel follows a chain of tag objects starting at id until it reaches a
// non-tag object, returning that object's id. If id itself does not
// refer to a tag, it is returned unchanged (this is the "peel = leaf"
// case for peeled-non-tag references described in spec.md §3).
func (s *Store) Peel(id oid.ID) (oid.ID, error) {
	cur := id
	for {
		if !s.Has(cur) {
			return oid.Zero, fmt.Errorf("peel %s: %w", cur, ErrObjectNotFound)
		}
		objType, data, err := s.Read(cur)
		if err != nil {
			return oid.Zero, err
		}
		if objType != TypeTag {
			return cur, nil
		}
		tag, err := UnmarshalTag(data)
		if err != nil {
			return oid.Zero, fmt.Errorf("peel %s: %w", cur, err)
		}
		cur = tag.Object
	}
}

// IsTag reports whether id refers to a tag object.
func (s *Store) IsTag(id oid.ID) (bool, error) {
	objType, err := s.Type(id)
	if err != nil {
		return false, err
	}
	return objType == TypeTag, nil
}
