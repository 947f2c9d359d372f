package oid

import "testing"

func TestSumDeterminism(t *testing.T) {
	data := []byte("hello world")
	h1 := Sum("blob", data)
	h2 := Sum("blob", data)
	if h1 != h2 {
		t.Errorf("Sum not deterministic: %s != %s", h1, h2)
	}
}

func TestSumEnvelopeMattersForType(t *testing.T) {
	data := []byte("hello")
	h1 := Sum("blob", data)
	h2 := Sum("tag", data)
	if h1 == h2 {
		t.Error("different object types should produce different ids for the same data")
	}
}

func TestSumKnownVector(t *testing.T) {
	// Git's own "hash-object" for an empty blob is well known.
	got := Sum("blob", nil)
	want := "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"
	if got.String() != want {
		t.Errorf("Sum(blob, nil) = %s, want %s", got.String(), want)
	}
}

func TestFromHexRoundTrip(t *testing.T) {
	id := Sum("blob", []byte("round trip"))
	s := id.String()
	got, err := FromHex(s)
	if err != nil {
		t.Fatalf("FromHex: %v", err)
	}
	if got != id {
		t.Errorf("FromHex(String()) = %v, want %v", got, id)
	}
}

func TestFromHexRejectsWrongLength(t *testing.T) {
	cases := []string{"", "abc", "0123456789012345678901234567890123456789a"}
	for _, c := range cases {
		if _, err := FromHex(c); err == nil {
			t.Errorf("FromHex(%q) = nil error, want ErrInvalid", c)
		}
	}
}

func TestFromHexRejectsNonHex(t *testing.T) {
	bad := "zz91da06e69613397b38e0808e0ba5ee6983251b"
	if _, err := FromHex(bad); err == nil {
		t.Errorf("FromHex(%q) = nil error, want ErrInvalid", bad)
	}
}

func TestIsZero(t *testing.T) {
	if !Zero.IsZero() {
		t.Error("Zero.IsZero() = false, want true")
	}
	id := Sum("blob", []byte("x"))
	if id.IsZero() {
		t.Error("non-zero id reported as zero")
	}
}

func TestFromBytesRejectsWrongLength(t *testing.T) {
	if _, err := FromBytes([]byte{1, 2, 3}); err == nil {
		t.Error("FromBytes with wrong length should fail")
	}
}
