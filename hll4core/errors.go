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

import "errors"

// The four error kinds the core can surface, per the propagation policy:
// every fallible method wraps one of these with a descriptive message, so
// callers can classify a failure with errors.Is without parsing text.
var (
	// ErrInvalidInput means the caller passed bad data: an illegal coupon
	// value, an out-of-range slotNo, a truncated deserialization buffer, or
	// a duplicate slotNo in serialized aux data.
	ErrInvalidInput = errors.New("hll4core: invalid input")

	// ErrInvariantViolated means internal state was found unexpectedly
	// inconsistent: a full aux probe with no match, an impossible update
	// case, a zero nibble found during a shift, an aux count mismatch.
	ErrInvariantViolated = errors.New("hll4core: invariant violated")

	// ErrStateCorruption means deserialized state disagrees with its
	// declared metadata (e.g. auxCount mismatch after load).
	ErrStateCorruption = errors.New("hll4core: state corruption")

	// ErrResource means an allocation failed.
	ErrResource = errors.New("hll4core: resource allocation failure")
)
