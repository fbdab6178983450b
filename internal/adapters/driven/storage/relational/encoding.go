package relational

import (
	"encoding/binary"
	"encoding/json"
	"math"
)

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
// Returns ok=false for a truncated blob.
func bytesToFloat32Slice(data []byte) (floats []float32, ok bool) {
	if len(data) == 0 {
		return nil, true
	}
	if len(data)%4 != 0 {
		return nil, false
	}
	floats = make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats, true
}

// encodeKeywords renders a keyword list as a JSON array; nil becomes [].
func encodeKeywords(keywords []string) (string, error) {
	if keywords == nil {
		keywords = []string{}
	}
	raw, err := json.Marshal(keywords)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// decodeKeywords parses a JSON array, treating malformed input as empty.
func decodeKeywords(raw string) []string {
	var keywords []string
	if err := json.Unmarshal([]byte(raw), &keywords); err != nil || len(keywords) == 0 {
		return nil
	}
	return keywords
}
