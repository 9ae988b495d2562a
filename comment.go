// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vorbis

import "unicode/utf8"

// commentDecodeFailureSentinel substitutes a comment-header string whose
// bytes were valid Vorbis wire format but not valid UTF-8: the read
// succeeded, so parsing continues, but the result isn't usable as text.
const commentDecodeFailureSentinel = "�"

// parseCommentHeader reads the comment packet body (§4.3.2) into info. Per
// the comment header's lenient policy, neither a UTF-8 decode failure nor
// an EndOfPacket is fatal to the overall parse: both instead set
// info.CommentHeaderDecodingFailed. A UTF-8 failure still lets parsing
// continue past it (the bytes were read); EndOfPacket has nothing left to
// read and stops the header here. The packet type byte and "vorbis" sync
// are already consumed by the caller.
func parseCommentHeader(br *BitReader, info *LogicalStreamInfo) error {
	vendor, bad, err := readCommentString(br)
	if err != nil {
		info.CommentHeaderDecodingFailed = true
		return nil
	}
	info.VendorString = vendor
	if bad {
		info.CommentHeaderDecodingFailed = true
	}

	countVal, err := br.ReadUint(32)
	if err != nil {
		info.CommentHeaderDecodingFailed = true
		return nil
	}
	if countVal > maxReasonableCount {
		return corrupted(br.Offset(), "comment header user_comment_list_length %d exceeds sanity bound", countVal)
	}

	count := int(countVal)
	comments := make([]string, 0, count)
	for i := 0; i < count; i++ {
		s, bad, err := readCommentString(br)
		if err != nil {
			info.CommentHeaderDecodingFailed = true
			info.UserComments = comments
			return nil
		}
		if bad {
			info.CommentHeaderDecodingFailed = true
		}
		comments = append(comments, s)
	}
	info.UserComments = comments

	framingBit, err := br.ReadBit()
	if err != nil || framingBit == 0 {
		info.CommentHeaderDecodingFailed = true
	}
	return nil
}

// readCommentString reads one 32-bit-length-prefixed string. err is
// non-nil only when the bit reader was exhausted (a condition the caller
// must stop on); bad reports a UTF-8 decode failure on otherwise
// successfully read bytes, which the caller may recover from.
func readCommentString(br *BitReader) (value string, bad bool, err error) {
	length, err := br.ReadUint(32)
	if err != nil {
		return "", false, err
	}
	raw, err := br.ReadBytes(int(length))
	if err != nil {
		return "", false, err
	}
	if !utf8.Valid(raw) {
		return commentDecodeFailureSentinel, true, nil
	}
	return string(raw), false, nil
}
