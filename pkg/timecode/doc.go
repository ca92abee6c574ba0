// Package timecode models SMPTE timecodes as exact, signed frame numbers.
//
// A Timecode pairs a FrameRate with a signed int64 frame number. The
// HH:MM:SS:FF (or HH:MM:SS;FF for drop-frame) string is derived from that
// pair on demand and never stored:
//
//	tc, err := timecode.New("29.97", "00:01:00;02")
//	tc.FrameNumber() // 1800
//	tc.SubFrames(1801).String() // "-00:00:00;01"
//
// Arithmetic follows a left-precedence rule: the result of a binary
// operation takes the frame rate of its left Timecode operand and combines
// raw frame numbers without rate conversion. Comparison, by contrast, is
// rate aware and orders values by the real time they denote.
//
// All types are immutable values and safe for concurrent use.
package timecode
