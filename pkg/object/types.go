package object

import "github.com/gitrefdb/refdb/pkg/oid"

// Type identifies the kind of a loose object. The reference database
// only ever needs to tell a tag apart from everything else, but the
// full set is kept so objects read off disk round-trip their real type.
type Type string

const (
	TypeBlob   Type = "blob"
	TypeTree   Type = "tree"
	TypeCommit Type = "commit"
	TypeTag    Type = "tag"
)

// Tag is an annotated tag object: a named pointer at another object
// (usually a commit, but tags may point at any type, including another
// tag) plus free-form message text.
type Tag struct {
	Object  oid.ID
	ObjType Type
	Name    string
	Tagger  string
	Message string
}
