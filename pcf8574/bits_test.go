// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcf8574

import "testing"

// The bit primitives must be lossless over the full byte range and must
// never touch any bit other than the one addressed.
func TestBitPrimitives(t *testing.T) {
	for b := range 256 {
		v := byte(b)
		for n := range 8 {
			mask := byte(1) << n
			if !testBit(setBit(v, n), n) {
				t.Fatalf("testBit(setBit(%#x, %d), %d) is false", v, n, n)
			}
			if testBit(clearBit(v, n), n) {
				t.Fatalf("testBit(clearBit(%#x, %d), %d) is true", v, n, n)
			}
			if setBit(v, n)&^mask != v&^mask {
				t.Fatalf("setBit(%#x, %d) altered other bits", v, n)
			}
			if clearBit(v, n)&^mask != v&^mask {
				t.Fatalf("clearBit(%#x, %d) altered other bits", v, n)
			}
			if setBit(setBit(v, n), n) != setBit(v, n) {
				t.Fatalf("setBit(%#x, %d) is not idempotent", v, n)
			}
			if clearBit(clearBit(v, n), n) != clearBit(v, n) {
				t.Fatalf("clearBit(%#x, %d) is not idempotent", v, n)
			}
			// Setting or clearing a bit to its current value is a no-op.
			if testBit(v, n) {
				if setBit(v, n) != v {
					t.Fatalf("setBit(%#x, %d) changed an already set bit", v, n)
				}
			} else if clearBit(v, n) != v {
				t.Fatalf("clearBit(%#x, %d) changed an already clear bit", v, n)
			}
		}
	}
}
