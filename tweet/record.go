package tweet

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Layout sizes in bytes.
const (
	DiscriminatorLength = 8
	AuthorLength        = KeyLength
	TimestampLength     = 8
	ContentPrefixLength = 4

	// MaxContentChars is the content limit in Unicode scalar values.
	MaxContentChars = 250

	// MaxContentBytes reserves the worst case of 4 UTF-8 bytes per scalar value.
	MaxContentBytes = MaxContentChars * utf8.UTFMax

	// HeaderLength is everything before the content bytes.
	HeaderLength = DiscriminatorLength + AuthorLength + TimestampLength + ContentPrefixLength

	// Space is the fixed allocation of every record account.
	Space = HeaderLength + MaxContentBytes
)

const (
	authorOffset    = DiscriminatorLength
	timestampOffset = authorOffset + AuthorLength
	lengthOffset    = timestampOffset + TimestampLength
)

// Discriminator tags record accounts. It is the first 8 bytes of
// sha256("account:Record").
var Discriminator = accountDiscriminator("Record")

func accountDiscriminator(name string) [DiscriminatorLength]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [DiscriminatorLength]byte
	copy(d[:], sum[:DiscriminatorLength])
	return d
}

// Record is one author's tweet.
type Record struct {
	// Author is the identity that created the record. It never changes.
	Author Identity

	// Content is the tweet text, verbatim.
	Content string

	// CreatedAt is the UNIX timestamp taken from the host clock at creation.
	CreatedAt int64
}

// ValidateContent checks content against the length limit.
func ValidateContent(content string) error {
	if utf8.RuneCountInString(content) > MaxContentChars {
		return ErrContentTooLong
	}
	if !utf8.ValidString(content) {
		return ErrInvalidContent
	}
	return nil
}

// MarshalBinary encodes the record into exactly Space bytes. Unused content
// capacity is zero-filled.
func (r *Record) MarshalBinary() ([]byte, error) {
	if err := ValidateContent(r.Content); err != nil {
		return nil, err
	}

	buf := make([]byte, Space)
	copy(buf, Discriminator[:])
	copy(buf[authorOffset:], r.Author[:])
	binary.LittleEndian.PutUint64(buf[timestampOffset:], uint64(r.CreatedAt))
	binary.LittleEndian.PutUint32(buf[lengthOffset:], uint32(len(r.Content)))
	copy(buf[HeaderLength:], r.Content)
	return buf, nil
}

// UnmarshalBinary decodes a record written by MarshalBinary. Trailing
// capacity beyond the content is ignored.
func (r *Record) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderLength {
		return fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorruptRecord, len(data))
	}
	if [DiscriminatorLength]byte(data[:DiscriminatorLength]) != Discriminator {
		return fmt.Errorf("%w: discriminator mismatch", ErrCorruptRecord)
	}

	n := int(binary.LittleEndian.Uint32(data[lengthOffset:]))
	if n > MaxContentBytes || HeaderLength+n > len(data) {
		return fmt.Errorf("%w: content length %d out of range", ErrCorruptRecord, n)
	}
	content := data[HeaderLength : HeaderLength+n]
	if !utf8.Valid(content) {
		return fmt.Errorf("%w: content is not valid UTF-8", ErrCorruptRecord)
	}

	copy(r.Author[:], data[authorOffset:timestampOffset])
	r.CreatedAt = int64(binary.LittleEndian.Uint64(data[timestampOffset:]))
	r.Content = string(content)
	return nil
}
