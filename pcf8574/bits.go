// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcf8574

// testBit reports whether bit n of b is set.
func testBit(b byte, n int) bool {
	return b&(1<<n) != 0
}

// setBit returns b with bit n set. No other bit is altered.
func setBit(b byte, n int) byte {
	return b | 1<<n
}

// clearBit returns b with bit n cleared. No other bit is altered.
func clearBit(b byte, n int) byte {
	return b &^ (1 << n)
}
