package md5trace

import "strconv"

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// EncodingError reports text that has no UTF-8 byte encoding. Offset is the index of the first
// byte that does not begin a valid sequence.
type EncodingError struct {
	Offset int
}

func (e *EncodingError) Error() string {
	return "md5trace: text is not valid UTF-8 at byte " + strconv.Itoa(e.Offset)
}

// BlockSizeError reports a block, or the tail of a padded message, that is not BlockSize bytes
// long. It can only be produced by a caller bypassing Pad and always indicates a defect.
type BlockSizeError int

func (e BlockSizeError) Error() string {
	return "md5trace: invalid block size " + strconv.Itoa(int(e))
}
