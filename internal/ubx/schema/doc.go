// Package schema describes UBX message byte layouts and decodes payloads
// against them.
//
// Ownership boundary:
// - descriptor variants (Pad, Scalar, BitField with Flags, RepeatedBlock)
// - message layout validation and repeat-count resolution
// - class/message registry dispatch
//
// Framing, checksums and transport live in sibling packages.
package schema
