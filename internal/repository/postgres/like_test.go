package postgres

import "testing"

func TestEscapeLikePrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/acme/reports", "/acme/reports"},
		{"/10%", `/10\%`},
		{"/a_b", `/a\_b`},
		{`/back\slash`, `/back\\slash`},
		{"/10%/q_1", `/10\%/q\_1`},
		{"", ""},
	}

	for _, tt := range tests {
		if got := escapeLikePrefix(tt.in); got != tt.want {
			t.Errorf("escapeLikePrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
