// Package capture records inbound frames to an append-only file and reads
// them back.
//
// File format:
//
//	[magic:8 "SCNLCAP\x01"][session:16 ULID]
//	[Record]*
//
// Record wire format:
//
//	[Length:4][Checksum:4][UnixMilli:8][PeerLen:2][Peer][Frame]
//
// Where:
//   - Length covers everything after the Length field (big-endian uint32)
//   - Checksum is murmur3 (32-bit) of everything after the Checksum field
//   - Frame is the complete frame including its kind byte
//
// A torn record at the end of the file (crash while writing) is treated as
// the end of the capture.
package capture
