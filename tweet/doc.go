// Package tweet defines the persisted tweet record and its fixed-size layout.
//
// A [Record] holds one author's short text note. It is stored in a single
// account whose size never changes after allocation:
//
//	discriminator  8 bytes
//	author        32 bytes
//	created_at     8 bytes, little-endian int64
//	length         4 bytes, little-endian uint32
//	content      <= 1000 bytes of UTF-8
//
// The content budget reserves 4 bytes for each of the [MaxContentChars]
// scalar values, so every record fits in [Space] bytes whatever it says.
//
// Each author owns at most one record, located at the address returned by
// [RecordAddress].
//
// # Errors
//
//   - [ErrContentTooLong] - content exceeds 250 scalar values
//   - [ErrInvalidContent] - content is not valid UTF-8
//   - [ErrCorruptRecord] - stored bytes do not decode as a record
package tweet
