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

package coupongen

import (
	"encoding/binary"
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

// DeterministicStream produces a reproducible sequence of coupons from a
// seed, for property tests that need a long, replayable stream without
// pulling in a general-purpose PRNG. It re-hashes its own output with
// xxhash: each call hashes the previous 64-bit state seeded by a running
// counter to get one half, hashes the state again seeded by that half to
// get the other, then folds the two halves into a coupon exactly as Coupon
// does.
type DeterministicStream struct {
	state   uint64
	counter uint64
}

// NewDeterministicStream starts a stream from seed.
func NewDeterministicStream(seed uint64) *DeterministicStream {
	return &DeterministicStream{state: seed}
}

// Next returns the next coupon in the stream.
func (d *DeterministicStream) Next() int {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], d.state)

	h0 := xxhash.NewWithSeed(d.counter)
	h0.Write(buf[:])
	lo := h0.Sum64()

	h1 := xxhash.NewWithSeed(lo)
	h1.Write(buf[:])
	hi := h1.Sum64()

	d.state = lo ^ bits.RotateLeft64(hi, 17)
	d.counter++
	return Coupon(lo, hi)
}

// NextN returns the next n coupons.
func (d *DeterministicStream) NextN(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = d.Next()
	}
	return out
}
