package normalize

import "testing"

func TestName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  Acme, Inc.  ", "acme inc"},
		{"Wal-Mart  Inc.", "walmart inc"},
		{"walmart inc", "walmart inc"},
		{"José García", "jose garcia"},
		{"UPPER   lower\tMixed", "upper lower mixed"},
		{"- no customer/project -", "no customerproject"},
		{"123 Go!", "123 go"},
		{"!!!", ""},
	}
	for _, c := range cases {
		if got := Name(c.in); got != c.want {
			t.Errorf("Name(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNameIdempotent(t *testing.T) {
	inputs := []string{"  Acme, Inc.  ", "José García", "Wal-Mart  Inc.", "plain name"}
	for _, in := range inputs {
		once := Name(in)
		if twice := Name(once); twice != once {
			t.Errorf("Name not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNameEquatesSpellings(t *testing.T) {
	// The same customer as spelled by the accounting export and by the
	// reference table.
	if Name("Wal-Mart  Inc.") != Name("walmart inc") {
		t.Fatalf("spellings should canonicalize identically")
	}
}
