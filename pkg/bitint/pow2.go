// SPDX-License-Identifier: MIT

/*
Package bitint provides the power-of-2 helpers used to size transform
windows.

Usage:

	// Smallest window that holds a 100ms segment at 44.1kHz
	windowSize := bitint.NextPowerOfTwo(4410) // Returns 8192

	// Radix-2 kernels are fastest on power-of-2 windows
	fast := bitint.IsPowerOfTwo(windowSize)

----------------------------------------------------------------------

What this code does:

	NextPowerOfTwo returns the next power of 2 greater than or
	equal to size. For powers of 2, it returns the same value.

	The subtraction (size-1) is critical, without the subtraction,
	powers of 2 would be incorrectly doubled.

	WITH subtraction (correct):
	- For input 8 (already a power of 2):
	  size-1 = 7 (binary 0111)
	  bits.Len(7) = 3
	  1 << 3 = 8

	WITHOUT subtraction (incorrect):
	- For input 8:
	  bits.Len(8) = 4 (binary 1000)
	  1 << 4 = 16
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size.
//
// Examples:
//
//	Input  Output  Explanation
//	4      4      Already power of 2 (preserved)
//	5      8      Next power after 5
//	0      1      Handle zero case
//	-1     1      Handle negative case
func NextPowerOfTwo(size int) int {
	if size <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo checks if n is a power of 2 using bit manipulation.
// The expression (n & (n-1)) == 0 works because:
//   - Powers of 2 have exactly one bit set
//   - Subtracting 1 from a power of 2 sets all lower bits
//   - AND operation will be 0 only for powers of 2
//
// Examples:
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   Not positive
//	-8     false   Not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
