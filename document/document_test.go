package document

import "testing"

func TestDetachIDRoundTrip(t *testing.T) {
	doc := Doc{"id": "u1", "name": "ada", "age": 36}

	id, rest, err := DetachID(doc)
	if err != nil {
		t.Fatalf("DetachID: %v", err)
	}
	if id != "u1" {
		t.Errorf("id = %q, want u1", id)
	}
	if _, ok := rest[IDField]; ok {
		t.Error("rest still carries id")
	}
	if _, ok := doc[IDField]; !ok {
		t.Error("DetachID mutated the caller's map")
	}

	back := WithID(id, rest)
	if back[IDField] != "u1" {
		t.Errorf("WithID did not set id, got %v", back[IDField])
	}
	if back["name"] != "ada" {
		t.Errorf("WithID lost field name, got %v", back["name"])
	}
}

func TestDetachIDMissing(t *testing.T) {
	if _, _, err := DetachID(Doc{"name": "ada"}); err == nil {
		t.Error("expected error for missing id field")
	}
}

func TestDetachIDNotString(t *testing.T) {
	if _, _, err := DetachID(Doc{"id": 42}); err == nil {
		t.Error("expected error for non-string id field")
	}
}

func TestDetachIDEmpty(t *testing.T) {
	if _, _, err := DetachID(Doc{"id": ""}); err == nil {
		t.Error("expected error for empty id field")
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	doc := Doc{"a": float64(1), "b": "two"}

	text, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	back, err := Unmarshal(text)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if back["a"] != float64(1) || back["b"] != "two" {
		t.Errorf("round trip mismatch: %#v", back)
	}
}

func TestUnmarshalRejectsNonObject(t *testing.T) {
	if _, err := Unmarshal(`[1,2,3]`); err == nil {
		t.Error("expected error for top-level array")
	}
	if _, err := Unmarshal(`42`); err == nil {
		t.Error("expected error for top-level scalar")
	}
}

func TestMarshalLiteral(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"abc", `"abc"`},
		{float64(3), `3`},
		{true, `true`},
		{nil, `null`},
	}

	for _, c := range cases {
		got, err := MarshalLiteral(c.in)
		if err != nil {
			t.Fatalf("MarshalLiteral(%v): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("MarshalLiteral(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
