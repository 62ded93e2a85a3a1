package fs

import "testing"

func TestCowPolicyOnlyFirstWriteCopies(t *testing.T) {
	p := NewCowPolicy(true)
	if !p.IsCOW(0) {
		t.Fatal("expected IsCOW true before any write")
	}
	p.ObjectChanged(0)
	if p.IsCOW(0) {
		t.Fatal("expected IsCOW false after ObjectChanged")
	}
	if !p.IsCOW(1) {
		t.Fatal("expected IsCOW true for an untouched object")
	}
}

func TestCowPolicyDisabled(t *testing.T) {
	p := NewCowPolicy(false)
	if p.CowEnabled() {
		t.Fatal("expected CowEnabled false")
	}
	if p.IsCOW(0) {
		t.Fatal("expected IsCOW always false when disabled")
	}
}
