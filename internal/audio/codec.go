package audio

import "fmt"

type Codec string

const (
	CodecPCM      Codec = "pcm"
	CodecG711Ulaw Codec = "g711_ulaw"
	CodecG711Alaw Codec = "g711_alaw"
)

// WireSampleRate is the telephony wire rate: 8 kHz mono.
const WireSampleRate = 8000

// FrameDurationMs is the telephony frame duration.
const FrameDurationMs = 20

// FrameSize is the byte size of one 20ms mu-law frame at 8 kHz (one sample per byte).
const FrameSize = WireSampleRate * FrameDurationMs / 1000 // 160

// Decode converts encoded audio bytes to float32 PCM samples normalized to [-1, 1].
// Returns samples and the sample rate.
func Decode(data []byte, codec Codec, sampleRate int) ([]float32, int, error) {
	if codec == CodecPCM {
		return decodePCM(data), sampleRate, nil
	}

	if codec == CodecG711Ulaw {
		return decodeG711Ulaw(data), WireSampleRate, nil
	}

	if codec == CodecG711Alaw {
		return decodeG711Alaw(data), WireSampleRate, nil
	}

	return nil, 0, fmt.Errorf("unsupported codec: %s", codec)
}

// Encode converts float32 PCM samples at sampleRate into the wire codec, resampling
// to WireSampleRate first if needed. Synthesized audio is always mono.
func Encode(samples []float32, sampleRate int, codec Codec) ([]byte, error) {
	wire := samples
	if sampleRate != WireSampleRate {
		wire = Resample(samples, sampleRate, WireSampleRate)
	}

	switch codec {
	case CodecG711Ulaw:
		return encodeG711Ulaw(wire), nil
	case CodecG711Alaw:
		return encodeG711Alaw(wire), nil
	default:
		return nil, fmt.Errorf("unsupported wire codec: %s", codec)
	}
}

// Frame splits a mu-law byte slice into 160-byte (20ms) frames. A trailing
// partial frame is zero-padded (silence) rather than dropped, so whole
// frames round-trip exactly through Frame(Encode(Decode(...))).
func Frame(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}

	frames := make([][]byte, 0, (len(data)+FrameSize-1)/FrameSize)
	for i := 0; i < len(data); i += FrameSize {
		end := i + FrameSize
		if end > len(data) {
			frame := make([]byte, FrameSize)
			copy(frame, data[i:])
			frames = append(frames, frame)
			break
		}
		frames = append(frames, data[i:end])
	}
	return frames
}
