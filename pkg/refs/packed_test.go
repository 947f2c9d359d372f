package refs

import (
	"bytes"
	"strings"
	"testing"
)

func TestParsePackedRefsWithPeeled(t *testing.T) {
	input := strings.Join([]string{
		"# pack-refs with: peeled",
		"1111111111111111111111111111111111111111 refs/heads/a",
		"2222222222222222222222222222222222222222 refs/tags/v1",
		"^3333333333333333333333333333333333333333",
		"",
	}, "\n")

	list, err := ParsePackedRefs([]byte(input))
	if err != nil {
		t.Fatalf("ParsePackedRefs: %v", err)
	}
	if list.Len() != 2 {
		t.Fatalf("len = %d, want 2", list.Len())
	}

	a := list.Get("refs/heads/a")
	if a == nil || !a.IsPeeled() || a.IsTag() {
		t.Errorf("refs/heads/a = %+v, want peeled non-tag", a)
	}
	peeled, ok := a.PeeledObjectID()
	if !ok || peeled != a.ObjectID() {
		t.Error("peeled-non-tag's peel should equal its own id")
	}

	v1 := list.Get("refs/tags/v1")
	if v1 == nil || !v1.IsTag() {
		t.Fatalf("refs/tags/v1 = %+v, want a tag", v1)
	}
	tagPeel, ok := v1.PeeledObjectID()
	if !ok || tagPeel.String() != "3333333333333333333333333333333333333333" {
		t.Errorf("refs/tags/v1 peel = %v, %v", tagPeel, ok)
	}
}

func TestParsePackedRefsPeeledLineBeforeAnyRefIsError(t *testing.T) {
	_, err := ParsePackedRefs([]byte("^3333333333333333333333333333333333333333\n"))
	if err == nil {
		t.Fatal("expected an error for a ^-line before any ref")
	}
}

func TestParsePackedRefsSortsOutOfOrderInput(t *testing.T) {
	input := strings.Join([]string{
		"2222222222222222222222222222222222222222 refs/heads/b",
		"1111111111111111111111111111111111111111 refs/heads/a",
		"",
	}, "\n")
	list, err := ParsePackedRefs([]byte(input))
	if err != nil {
		t.Fatalf("ParsePackedRefs: %v", err)
	}
	if list.GetAt(0).Name() != "refs/heads/a" || list.GetAt(1).Name() != "refs/heads/b" {
		t.Errorf("out-of-order input not sorted: %s, %s", list.GetAt(0).Name(), list.GetAt(1).Name())
	}
}

func TestWritePackedRefsRoundTrip(t *testing.T) {
	input := strings.Join([]string{
		"# pack-refs with: peeled",
		"1111111111111111111111111111111111111111 refs/heads/a",
		"2222222222222222222222222222222222222222 refs/tags/v1",
		"^3333333333333333333333333333333333333333",
		"",
	}, "\n")

	list, err := ParsePackedRefs([]byte(input))
	if err != nil {
		t.Fatalf("ParsePackedRefs: %v", err)
	}

	var buf bytes.Buffer
	if err := WritePackedRefs(&buf, list); err != nil {
		t.Fatalf("WritePackedRefs: %v", err)
	}
	if buf.String() != input {
		t.Errorf("round trip mismatch:\ngot:  %q\nwant: %q", buf.String(), input)
	}
}

func TestParsePackedRefsMalformedOid(t *testing.T) {
	_, err := ParsePackedRefs([]byte("not-an-oid refs/heads/a\n"))
	if err == nil {
		t.Fatal("expected an error for a malformed oid")
	}
}
