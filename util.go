// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vorbis

import "io"

// readBytes is the teacher's byte-aligned reader, kept for the Ogg page
// header: unlike the Vorbis packet payload (bit packed, see BitReader),
// every field of an Ogg page header up to and including the segment table
// is byte-aligned.
func readBytes(r io.Reader, n uint) ([]byte, error) {
	b := make([]byte, n)
	_, err := io.ReadFull(r, b)
	if err != nil {
		return nil, err
	}
	return b, nil
}
