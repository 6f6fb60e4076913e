package transcript

import "encoding/base64"

// Manual protobuf encoding for the get_transcript params blob. The implicit
// schema is two optional string fields:
//
//	message Params {
//	  string field1 = 1;
//	  string field2 = 2;
//	}
//
// Only the encoder exists: the endpoint never sends this format back, so
// there is nothing to decode outside the tests.

// encodeVarint encodes v as a protobuf varint: 7 data bits per byte, low
// bits first, continuation bit 0x80 on every byte except the last. Zero
// encodes as a single zero byte.
func encodeVarint(v uint64) []byte {
	buf := make([]byte, 0, 2)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if v == 0 {
			return buf
		}
	}
}

// encodeStringField encodes one length-delimited (wire type 2) string field:
// tag varint, UTF-8 byte length varint, then the bytes themselves.
func encodeStringField(fieldNumber int, value string) []byte {
	tag := encodeVarint(uint64(fieldNumber)<<3 | 2)
	length := encodeVarint(uint64(len(value)))
	out := make([]byte, 0, len(tag)+len(length)+len(value))
	out = append(out, tag...)
	out = append(out, length...)
	out = append(out, value...)
	return out
}

// paramBlock is the two-field record serialized into a params blob. A nil
// field is omitted entirely, which the protocol treats differently from an
// empty string (an empty string still emits a tag plus zero length).
type paramBlock struct {
	field1 *string
	field2 *string
}

// encode serializes the present fields in field-number order and
// base64-encodes the result.
func (p paramBlock) encode() string {
	var buf []byte
	if p.field1 != nil {
		buf = append(buf, encodeStringField(1, *p.field1)...)
	}
	if p.field2 != nil {
		buf = append(buf, encodeStringField(2, *p.field2)...)
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// transcriptParams builds the nested params blob for a get_transcript call:
// an inner track record (field2 = language, field1 = "asr" only for
// auto-generated tracks) wrapped as field2 of an outer record whose field1
// is the video ID. For human-authored tracks field1 of the inner record is
// omitted, not sent empty.
func transcriptParams(videoID string, track TrackDescriptor) string {
	inner := paramBlock{field2: &track.Language}
	if track.Kind == TrackASR {
		kind := string(TrackASR)
		inner.field1 = &kind
	}
	encodedInner := inner.encode()

	outer := paramBlock{field1: &videoID, field2: &encodedInner}
	return outer.encode()
}
