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

// Hll4Store is a dense array of K=1<<lgConfigK registers packed 4 bits per
// register, with a curMin baseline subtracted from every stored nibble and
// an optional owned AuxTable for values that overflow the 4-bit window.
//
// curMin can in principle grow without bound under an adversarial stream,
// but the coupon value field is only 6 bits wide, so no valid update can
// ever push curMin past 63 in practice; no runtime cap is enforced here.
type Hll4Store struct {
	lgConfigK   int
	nibbles     []byte
	curMin      int
	numAtCurMin int
	aux         *AuxTable
	gen         uint64
}

// NewHll4Store allocates a store of K=1<<lgConfigK registers, all zero,
// curMin 0, numAtCurMin K, and no aux table.
func NewHll4Store(lgConfigK int) (*Hll4Store, error) {
	if lgConfigK < MinLgConfigK || lgConfigK > MaxLgConfigK {
		return nil, fmt.Errorf("lgConfigK must be in [%d, %d]: %d: %w", MinLgConfigK, MaxLgConfigK, lgConfigK, ErrInvalidInput)
	}
	k := 1 << lgConfigK
	return &Hll4Store{
		lgConfigK:   lgConfigK,
		nibbles:     make([]byte, k/2),
		numAtCurMin: k,
	}, nil
}

// LgConfigK returns the configured log2(K).
func (s *Hll4Store) LgConfigK() int { return s.lgConfigK }

// CurMin returns the current baseline subtracted from every stored nibble.
func (s *Hll4Store) CurMin() int { return s.curMin }

// NumAtCurMin returns the number of registers whose stored nibble is 0.
func (s *Hll4Store) NumAtCurMin() int { return s.numAtCurMin }

// AuxTableOrNil returns the store's aux table, or nil if none of its
// registers currently hold an exception.
func (s *Hll4Store) AuxTableOrNil() *AuxTable { return s.aux }

// HllByteArrBytes is K/2, the size in bytes of the packed nibble array.
func (s *Hll4Store) HllByteArrBytes() int { return len(s.nibbles) }

// CompactAuxBytes is the wire size of the aux table in compact form: zero
// if there is no aux table.
func (s *Hll4Store) CompactAuxBytes() int {
	if s.aux == nil {
		return 0
	}
	return s.aux.Count() << 2
}

// UpdatableAuxBytes is the wire size of the aux table in updatable form,
// using the configured starting size even when no aux table yet exists (a
// header laid out for updatable access always reserves that much).
func (s *Hll4Store) UpdatableAuxBytes() int {
	if s.aux == nil {
		return 4 << LgAuxArrIntsFor(s.lgConfigK)
	}
	return 4 << s.aux.LgSize()
}

// UpdatableSerializationBytes returns the total size of the updatable form
// given hllByteArrStart, the offset of the register array within the
// enclosing header format (a constant owned by that surrounding format,
// not by this core).
func (s *Hll4Store) UpdatableSerializationBytes(hllByteArrStart int) int {
	return hllByteArrStart + s.HllByteArrBytes() + s.UpdatableAuxBytes()
}

// Copy returns a deep, fully independent clone, including its aux table.
func (s *Hll4Store) Copy() *Hll4Store {
	clone := *s
	clone.nibbles = make([]byte, len(s.nibbles))
	copy(clone.nibbles, s.nibbles)
	if s.aux != nil {
		clone.aux = s.aux.Copy()
	}
	clone.gen = 0
	return &clone
}

// getSlot returns the raw stored nibble at slotNo (0..15), before adding
// curMin and before resolving AuxToken through the aux table.
func (s *Hll4Store) getSlot(slotNo int) int {
	b := int(s.nibbles[slotNo>>1])
	if slotNo&1 != 0 {
		b >>= 4
	}
	return b & loNibbleMask
}

// putSlot overwrites exactly one nibble, preserving its neighbor.
func (s *Hll4Store) putSlot(slotNo int, value byte) {
	byteNo := slotNo >> 1
	old := s.nibbles[byteNo]
	if slotNo&1 == 0 {
		s.nibbles[byteNo] = (old & hiNibbleMask) | (value & loNibbleMask)
	} else {
		s.nibbles[byteNo] = (old & loNibbleMask) | ((value << 4) & hiNibbleMask)
	}
}

// getSlotValue returns the logical value at slotNo: stored+curMin if the
// nibble isn't AuxToken, else the aux table's entry for slotNo.
func (s *Hll4Store) getSlotValue(slotNo int) (int, error) {
	nib := s.getSlot(slotNo)
	if nib == AuxToken {
		if s.aux == nil {
			return 0, fmt.Errorf("slot %d reads AuxToken but no aux table exists: %w", slotNo, ErrInvariantViolated)
		}
		return s.aux.MustFindValueFor(slotNo)
	}
	return nib + s.curMin, nil
}

// Iterate returns a lazy iterator over all K registers, in slot order,
// including registers whose logical value is 0. It must not be stepped
// past a structural mutation of the store (a CouponUpdate that touches the
// nibble array or aux table).
func (s *Hll4Store) Iterate() *StoreIterator {
	return &StoreIterator{store: s, gen: s.gen, index: -1}
}

// IterateAux returns a lazy iterator over aux entries only, or an iterator
// that immediately reports exhausted if there is no aux table.
func (s *Hll4Store) IterateAux() *AuxIterator {
	if s.aux == nil {
		return &AuxIterator{table: &AuxTable{lgConfigK: s.lgConfigK}, index: -1}
	}
	return s.aux.Iterate()
}

func (s *Hll4Store) newAuxTable() *AuxTable {
	return NewAuxTable(LgAuxArrIntsFor(s.lgConfigK), s.lgConfigK)
}

// StoreIterator walks every register of an Hll4Store, resolving AuxToken
// slots through the owning aux table.
type StoreIterator struct {
	store *Hll4Store
	gen   uint64
	index int
	err   error
}

// Next advances to the next register (0..K-1), returning false once all K
// have been visited or the store was structurally mutated mid-iteration.
func (it *StoreIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if it.store.gen != it.gen {
		it.err = fmt.Errorf("store iterator stepped after structural mutation: %w", ErrInvalidInput)
		return false
	}
	k := 1 << it.store.lgConfigK
	if it.index+1 >= k {
		return false
	}
	it.index++
	return true
}

// Err returns the error that stopped iteration early, if any.
func (it *StoreIterator) Err() error { return it.err }

// SlotNo returns the current register index.
func (it *StoreIterator) SlotNo() int { return it.index }

// Value returns the current register's logical value.
func (it *StoreIterator) Value() (int, error) {
	return it.store.getSlotValue(it.index)
}
