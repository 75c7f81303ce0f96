/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package coupongen hashes raw keys into hll4core coupons. It is the
// upstream collaborator hll4core itself never imports: the core consumes
// already-hashed coupons and is deliberately silent on hash function
// choice.
package coupongen

import (
	"math/bits"

	"github.com/twmb/murmur3"
)

const (
	defaultUpdateSeed = uint64(9001)
	keyBits26         = 26
	keyMask26         = (1 << keyBits26) - 1
)

// Murmur3Coupon hashes key with a 128-bit murmur3 and folds the result into
// a coupon: the low 26 bits of the low hash half become the address, and
// the number of leading zero bits of the high half (capped at 62, plus one
// so a coupon value is never 0) becomes the value.
func Murmur3Coupon(key []byte) int {
	lo, hi := murmur3.SeedSum128(defaultUpdateSeed, defaultUpdateSeed, key)
	return Coupon(lo, hi)
}

// Coupon builds a coupon directly from a pair of 64-bit hash halves,
// matching the bit layout hll4core.Coupon expects.
func Coupon(hashLo uint64, hashHi uint64) int {
	addr26 := hashLo & keyMask26
	lz := uint64(bits.LeadingZeros64(hashHi))
	value := clampValue(lz, 62) + 1
	return int((value << keyBits26) | addr26)
}
