package osd

import "testing"

func TestIsCompatibleVersion(t *testing.T) {
	cases := map[int]bool{
		1:  true,
		2:  true,
		0:  false,
		3:  false,
		-1: false,
	}
	for tag, want := range cases {
		if got := IsCompatibleVersion(tag); got != want {
			t.Errorf("IsCompatibleVersion(%d) = %v, want %v", tag, got, want)
		}
	}
}
