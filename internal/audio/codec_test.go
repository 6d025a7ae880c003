package audio

import "testing"

func TestUlawRoundTrip(t *testing.T) {
	frames := make([]byte, FrameSize*3)
	for i := range frames {
		frames[i] = byte(i * 7)
	}

	samples, rate, err := Decode(frames, CodecG711Ulaw, WireSampleRate)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rate != WireSampleRate {
		t.Fatalf("rate = %d, want %d", rate, WireSampleRate)
	}

	encoded, err := Encode(samples, WireSampleRate, CodecG711Ulaw)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(encoded) != len(frames) {
		t.Fatalf("encoded length = %d, want %d", len(encoded), len(frames))
	}

	for i := range frames {
		if encoded[i] != frames[i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, encoded[i], frames[i])
		}
	}
}

func TestFrameChunksWholeFrames(t *testing.T) {
	data := make([]byte, FrameSize*4)
	frames := Frame(data)
	if len(frames) != 4 {
		t.Fatalf("got %d frames, want 4", len(frames))
	}
	for _, f := range frames {
		if len(f) != FrameSize {
			t.Fatalf("frame length = %d, want %d", len(f), FrameSize)
		}
	}
}

func TestFramePadsPartialFrame(t *testing.T) {
	data := make([]byte, FrameSize+10)
	frames := Frame(data)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if len(frames[1]) != FrameSize {
		t.Fatalf("trailing frame length = %d, want %d", len(frames[1]), FrameSize)
	}
}

func TestFrameEmpty(t *testing.T) {
	if frames := Frame(nil); frames != nil {
		t.Fatalf("Frame(nil) = %v, want nil", frames)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1, -1, 0.25}
	wav := SamplesToWAV(samples, 16000)

	decoded, rate, err := DecodeWAV(wav)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if rate != 16000 {
		t.Fatalf("rate = %d, want 16000", rate)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("decoded length = %d, want %d", len(decoded), len(samples))
	}
}
