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

package hll4core

import "fmt"

// A Coupon is a 32-bit word produced upstream of this package by hashing one
// stream item: the low 26 bits are an address, the high 6 bits a candidate
// value in [1, 63]. A Pair has the identical bit layout but the address field
// is already masked down to a register index (slotNo); it is the storage
// word used inside AuxTable.

// AddressOf returns the low 26 address bits of a coupon.
func AddressOf(coupon int) int {
	return coupon & keyMask
}

// ValueOf returns the high 6 value bits of a coupon.
func ValueOf(coupon int) int {
	return coupon >> keyBits
}

// SlotNo returns the register index a coupon targets, given lgConfigK.
func SlotNo(coupon int, lgConfigK int) int {
	return AddressOf(coupon) & ((1 << lgConfigK) - 1)
}

// MakePair packs a slotNo and a value into the shared 32-bit encoding.
func MakePair(slotNo int, value int) int {
	return (value << keyBits) | (slotNo & keyMask)
}

// PairSlotNo returns the low-26-bit field of a pair, masked to lgConfigK
// bits to recover the register index.
func PairSlotNo(p int, lgConfigK int) int {
	return (p & keyMask) & ((1 << lgConfigK) - 1)
}

// PairValue returns the high 6 bits of a pair.
func PairValue(p int) int {
	return p >> keyBits
}

func pairString(p int) string {
	return fmt.Sprintf("slotNo: %d, value: %d", p&keyMask, PairValue(p))
}
