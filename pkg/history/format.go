package history

// File layout, big endian:
//
//	header: [Magic:4][Version:2][RunIDLen:2][RunID:N]
//	frame:  [Turn:4][DataLen:4][Data:N][Checksum:4]
//
// Data is a snappy-compressed JSON TurnRecord; the checksum is crc32 (IEEE)
// over the compressed bytes.
const (
	Magic   uint32 = 0x50535748 // "PSWH"
	Version uint16 = 1

	headerFixed = 4 + 2 + 2
	frameFixed  = 4 + 4 + 4

	// maxFrame bounds a single compressed record
	maxFrame = 64 << 20
)
