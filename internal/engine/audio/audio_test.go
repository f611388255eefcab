package audio

import "testing"

func TestVolumeExponent(t *testing.T) {
	if got := volumeExponent(100); got != 0 {
		t.Errorf("volumeExponent(100) = %v, want 0", got)
	}
	if got := volumeExponent(0); got != minVolumeDB {
		t.Errorf("volumeExponent(0) = %v, want %v", got, minVolumeDB)
	}
	if got := volumeExponent(150); got != 0 {
		t.Errorf("volumeExponent(150) = %v, want 0", got)
	}

	// The curve must be monotonic: more percent, less attenuation.
	prev := volumeExponent(1)
	for p := 2; p < 100; p++ {
		cur := volumeExponent(p)
		if cur < prev {
			t.Fatalf("volumeExponent not monotonic at %d%%: %v < %v", p, cur, prev)
		}
		prev = cur
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := ErrNoAudio
	e := &Error{Kind: KindDevice, Err: inner}
	if e.Unwrap() != inner {
		t.Error("Unwrap should return the inner error")
	}
	if e.Kind.String() != "device" {
		t.Errorf("Kind.String() = %q, want device", e.Kind.String())
	}
}
