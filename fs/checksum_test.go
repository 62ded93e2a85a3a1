package fs

import "testing"

func TestChecksumEngineDisabledReturnsZero(t *testing.T) {
	e := NewChecksumEngine(false, DefaultChecksumAlgorithm, nil)
	if e.Enabled() {
		t.Fatal("expected disabled engine")
	}
	if got := e.Calc([]byte("payload")); got != 0 {
		t.Fatalf("disabled engine Calc() = %d, want 0", got)
	}
}

func TestChecksumEngineDeterministic(t *testing.T) {
	e := NewChecksumEngine(true, DefaultChecksumAlgorithm, nil)
	if !e.Enabled() {
		t.Fatal("expected enabled engine")
	}
	a := e.Calc([]byte("hello world"))
	b := e.Calc([]byte("hello world"))
	if a != b {
		t.Fatalf("Calc not deterministic: %d vs %d", a, b)
	}
	c := e.Calc([]byte("hello worlD"))
	if a == c {
		t.Fatal("Calc did not distinguish different payloads")
	}
}

func TestChecksumEngineUnavailableAlgorithmDisables(t *testing.T) {
	e := NewChecksumEngine(true, "no-such-algorithm", nil)
	if e.Enabled() {
		t.Fatal("expected engine to be disabled when algorithm lookup fails")
	}
	if got := e.Calc([]byte("x")); got != 0 {
		t.Fatalf("Calc() = %d, want 0 for disabled fallback", got)
	}
}

func TestChecksumAlgorithmFactoryKnownNames(t *testing.T) {
	f := NewChecksumAlgorithmFactory()
	for _, name := range []string{"xxhash64", "xxh3", ""} {
		if _, ok := f.Get(name); !ok {
			t.Errorf("factory.Get(%q) not ok, want registered", name)
		}
	}
	if _, ok := f.Get("unknown"); ok {
		t.Error("factory.Get(unknown) = ok, want not registered")
	}
}
