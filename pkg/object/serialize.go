package object

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gitrefdb/refdb/pkg/oid"
)

// MarshalTag serializes a Tag to its canonical text form:
//
//	object <40-hex-oid>
//	type <type>
//	tag <name>
//	tagger <tagger>
//
//	<message>
func MarshalTag(t *Tag) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "object %s\n", t.Object.String())
	fmt.Fprintf(&buf, "type %s\n", t.ObjType)
	fmt.Fprintf(&buf, "tag %s\n", t.Name)
	if strings.TrimSpace(t.Tagger) != "" {
		fmt.Fprintf(&buf, "tagger %s\n", t.Tagger)
	}
	buf.WriteByte('\n')
	buf.WriteString(t.Message)
	return buf.Bytes()
}

// UnmarshalTag parses a Tag from its serialized form.
func UnmarshalTag(data []byte) (*Tag, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal tag: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	t := &Tag{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal tag: malformed header line %q", line)
		}
		switch key {
		case "object":
			id, err := oid.FromHex(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal tag: bad object id %q: %w", val, err)
			}
			t.Object = id
		case "type":
			t.ObjType = Type(val)
		case "tag":
			t.Name = val
		case "tagger":
			t.Tagger = val
		default:
			return nil, fmt.Errorf("unmarshal tag: unknown header key %q", key)
		}
	}
	return t, nil
}
