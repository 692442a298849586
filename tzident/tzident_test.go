package tzident

import "testing"

func TestTrieInsertLookupCaseInsensitive(t *testing.T) {
	tr := NewTrie()
	tr.Insert("America/New_York", 7)

	tests := []string{"America/New_York", "america/new_york", "AMERICA/NEW_YORK", "AmErIcA/nEw_YoRk"}
	for _, key := range tests {
		v, ok := tr.Lookup(key)
		if !ok || v != 7 {
			t.Errorf("Lookup(%q) = %d, %v; want 7, true", key, v, ok)
		}
	}
}

func TestTrieLookupMiss(t *testing.T) {
	tr := NewTrie()
	tr.Insert("UTC", 0)
	if _, ok := tr.Lookup("Etc/UTC"); ok {
		t.Error("Lookup(\"Etc/UTC\") found a value, want miss")
	}
	if _, ok := tr.Lookup(""); ok {
		t.Error("Lookup(\"\") found a value, want miss")
	}
}

func TestTrieRejectsNonASCII(t *testing.T) {
	tr := NewTrie()
	tr.Insert("Europe/Zürich", 1)
	if _, ok := tr.Lookup("Europe/Zürich"); ok {
		t.Error("Lookup of a non-ASCII key succeeded, want rejection")
	}
}

func TestTrieRejectsOverlongKey(t *testing.T) {
	tr := NewTrie()
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	tr.Insert(string(long), 1)
	if _, ok := tr.Lookup(string(long)); ok {
		t.Error("Insert/Lookup of a 256-byte key succeeded, want rejection")
	}
}

func TestTrieSerializeRoundTrip(t *testing.T) {
	tr := NewTrie()
	tr.Insert("UTC", 0)
	tr.Insert("Etc/UTC", 0)
	tr.Insert("America/New_York", 1)
	tr.Insert("America/Los_Angeles", 2)

	b := tr.Serialize()
	got, err := DeserializeTrie(b)
	if err != nil {
		t.Fatalf("DeserializeTrie() error: %v", err)
	}

	for _, tc := range []struct {
		key  string
		want uint32
	}{
		{"utc", 0}, {"ETC/UTC", 0}, {"america/new_york", 1}, {"America/Los_Angeles", 2},
	} {
		v, ok := got.Lookup(tc.key)
		if !ok || v != tc.want {
			t.Errorf("Lookup(%q) = %d, %v; want %d, true", tc.key, v, ok, tc.want)
		}
	}
	if _, ok := got.Lookup("Asia/Tokyo"); ok {
		t.Error("Lookup(\"Asia/Tokyo\") found a value, want miss")
	}
}

func TestNormalizerCanonicalAndAlias(t *testing.T) {
	n := NewNormalizer("2024a")
	utc := n.AddCanonical("UTC")
	n.AddAlias("Etc/UTC", utc)

	canonical, id, ok := n.Normalize("etc/utc")
	if !ok || canonical != "UTC" || id != utc {
		t.Fatalf("Normalize(\"etc/utc\") = %q, %d, %v; want UTC, %d, true", canonical, id, ok, utc)
	}
	got, err := n.CanonicalOf(id)
	if err != nil || got != "UTC" {
		t.Fatalf("CanonicalOf(%d) = %q, %v; want UTC, nil", id, got, err)
	}
	if _, err := n.CanonicalOf(ResolvedId(99)); err != ErrNotFound {
		t.Errorf("CanonicalOf(99) error = %v, want ErrNotFound", err)
	}
}
