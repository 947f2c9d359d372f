package refs

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gitrefdb/refdb/pkg/oid"
)

const packedHeaderPrefix = "# pack-refs with:"

// packedList pairs a parsed packed-refs List with the FileSnapshot of
// the file it came from (or the MISSING sentinel if packed-refs does
// not exist).
type packedList struct {
	list *List
	snap FileSnapshot
}

var emptyPackedList = &packedList{list: emptyList, snap: missingSnapshot}

// ParsePackedRefs parses the line-oriented packed-refs text format
// described in spec.md §4.5. Lines must be sorted by name; if they are
// not, the full result is sorted before being returned rather than
// rejected, per spec.md §4.5.
func ParsePackedRefs(data []byte) (*List, error) {
	b := NewBuilder(16)
	sorted := true
	var lastName string

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	peeled := false
	first := true
	var pending *Reference // ref awaiting a possible following ^-line

	flush := func() {
		if pending != nil {
			if peeled {
				pending = NewPeeledNonTag(pending.name, pending.id, StoragePacked)
			}
			b.Append(pending)
			pending = nil
		}
	}

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if first {
			first = false
			if strings.HasPrefix(line, packedHeaderPrefix) {
				flags := strings.Fields(strings.TrimPrefix(line, packedHeaderPrefix))
				for _, f := range flags {
					if f == "peeled" {
						peeled = true
					}
				}
				continue
			}
		}
		if line == "" {
			continue
		}
		if line[0] == '#' {
			continue
		}
		if line[0] == '^' {
			if pending == nil {
				return nil, newMalformed("packed-refs", []byte(line), fmt.Errorf("line %d: peeled line before any ref", lineNo))
			}
			peeledID, err := oid.FromHex(line[1:])
			if err != nil {
				return nil, newMalformed("packed-refs", []byte(line), fmt.Errorf("line %d: bad peeled oid: %w", lineNo, err))
			}
			pending = NewPeeledTag(pending.name, pending.id, peeledID, StoragePacked)
			b.Append(pending)
			pending = nil
			continue
		}

		flush()

		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			return nil, newMalformed("packed-refs", []byte(line), fmt.Errorf("line %d: expected \"<oid> <name>\"", lineNo))
		}
		id, err := oid.FromHex(parts[0])
		if err != nil {
			return nil, newMalformed("packed-refs", []byte(line), fmt.Errorf("line %d: bad oid: %w", lineNo, err))
		}
		name := parts[1]
		if name < lastName {
			sorted = false
		}
		lastName = name
		pending = NewDirect(name, id, StoragePacked)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("packed-refs: %w", err)
	}
	flush()

	if !sorted {
		b.Sort()
	}
	return b.ToList(), nil
}

// WritePackedRefs writes list in the packed-refs text format. A header
// declaring "peeled" is emitted iff the list is non-empty and every
// entry carries known peel information (as entries parsed under a
// "peeled" header do); otherwise no header is written, so refs the
// database never peeled are written without a ^-line and without
// implying they are peeled-non-tag, matching the legacy (pre-peeled)
// format. Names are copied out of the List's backing strings before
// writing so the writer never pins a large parse buffer (spec.md §4.5).
func WritePackedRefs(w io.Writer, list *List) error {
	allPeelKnown := list.Len() > 0
	for _, r := range list.All() {
		if r.peel == peelUnknown {
			allPeelKnown = false
			break
		}
	}

	bw := bufio.NewWriter(w)
	if allPeelKnown {
		if _, err := bw.WriteString(packedHeaderPrefix + " peeled\n"); err != nil {
			return err
		}
	}

	for _, r := range list.All() {
		name := string([]byte(r.name)) // copy out of any shared/parse buffer
		if _, err := fmt.Fprintf(bw, "%s %s\n", r.id.String(), name); err != nil {
			return err
		}
		if r.peel == peelIsTag {
			if _, err := fmt.Fprintf(bw, "^%s\n", r.peeledID.String()); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
