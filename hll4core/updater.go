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

// ValueChangeHook is called once per register whose logical value actually
// increases, before the mutation that realizes the increase is applied. The
// typical caller maintains HIP/kxq cardinality accumulators outside this
// package; oldValue and newValue satisfy newValue > oldValue >= 0. The hook
// must not call CouponUpdate again on the same store (no re-entrancy).
type ValueChangeHook func(store *Hll4Store, oldValue int, newValue int) error

// CouponUpdate applies one coupon's monotonic-max update to the store. It
// is idempotent: a coupon whose value does not exceed the current logical
// value at its slot leaves the store bit-identical. hook may be nil, in
// which case no notification is sent.
func (s *Hll4Store) CouponUpdate(coupon int, hook ValueChangeHook) error {
	newValue := ValueOf(coupon)
	if newValue < 1 {
		return fmt.Errorf("coupon value must be >= 1: %d: %w", newValue, ErrInvalidInput)
	}
	slotNo := SlotNo(coupon, s.lgConfigK)
	k := 1 << s.lgConfigK
	if slotNo < 0 || slotNo >= k {
		return fmt.Errorf("slotNo out of range [0,%d): %d: %w", k, slotNo, ErrInvalidInput)
	}
	return s.update(slotNo, newValue, hook)
}

// update implements the four-case mutation described in spec.md §4.3.
func (s *Hll4Store) update(slotNo int, newValue int, hook ValueChangeHook) error {
	curMin := s.curMin

	// Quick reject: newValue is a lower bound on the true value at slotNo
	// that cannot possibly raise it if it doesn't clear the baseline.
	if newValue <= curMin {
		return nil
	}

	rawStored := s.getSlot(slotNo)
	lowerBound := rawStored + curMin // provable lower bound; may be 0

	if newValue <= lowerBound {
		return nil
	}

	var actualOld int

	if rawStored == AuxToken {
		if s.aux == nil {
			return fmt.Errorf("slot %d reads AuxToken but no aux table exists: %w", slotNo, ErrInvariantViolated)
		}
		var err error
		actualOld, err = s.aux.MustFindValueFor(slotNo)
		if err != nil {
			return err
		}
		if newValue <= actualOld {
			return nil
		}
		if hook != nil {
			if err := hook(s, actualOld, newValue); err != nil {
				return err
			}
		}
		shifted := newValue - curMin
		if shifted < 0 {
			return fmt.Errorf("shifted new value < 0: %w", ErrInvariantViolated)
		}
		if shifted >= AuxToken { // case 1: still an exception, replace in place
			if err := s.aux.MustReplace(slotNo, newValue); err != nil {
				return err
			}
		} else { // case 2: would mean actualOld > newValue already — impossible
			return fmt.Errorf("exception graduated back below AUX_TOKEN without curMin moving: %w", ErrInvariantViolated)
		}
	} else {
		actualOld = lowerBound
		if hook != nil {
			if err := hook(s, actualOld, newValue); err != nil {
				return err
			}
		}
		shifted := newValue - curMin
		if shifted < 0 {
			return fmt.Errorf("shifted new value < 0: %w", ErrInvariantViolated)
		}
		if shifted >= AuxToken { // case 3: newly exceptional
			s.putSlot(slotNo, AuxToken)
			if s.aux == nil {
				s.aux = s.newAuxTable()
			}
			if err := s.aux.MustAdd(slotNo, newValue); err != nil {
				return err
			}
		} else { // case 4: plain in-range update
			s.putSlot(slotNo, byte(shifted))
		}
	}
	s.gen++

	if actualOld == curMin {
		if s.numAtCurMin < 1 {
			return fmt.Errorf("numAtCurMin < 1 while retiring a curMin occupant: %w", ErrInvariantViolated)
		}
		s.numAtCurMin--
		for s.numAtCurMin == 0 {
			if err := s.shiftToBiggerCurMin(); err != nil {
				return err
			}
		}
	}
	return nil
}

// shiftToBiggerCurMin advances curMin by one and rebalances storage: plain
// nibbles slide down by one, registers still above the window keep their
// exception entry unchanged, and registers whose exception just fell back
// within the window graduate to a plain nibble of 14.
//
// Precondition: numAtCurMin == 0, i.e. every stored nibble is in [1, 15].
func (s *Hll4Store) shiftToBiggerCurMin() error {
	newCurMin := s.curMin + 1
	k := 1 << s.lgConfigK

	numAtNewCurMin := 0
	numAuxTokensSeen := 0

	for i := 0; i < k; i++ {
		old := s.getSlot(i)
		if old == 0 {
			return fmt.Errorf("register %d held 0 nibble during shift: %w", i, ErrInvariantViolated)
		}
		if old < AuxToken {
			old--
			s.putSlot(i, byte(old))
			if old == 0 {
				numAtNewCurMin++
			}
		} else {
			numAuxTokensSeen++
			if s.aux == nil {
				return fmt.Errorf("register %d holds AUX_TOKEN but store has no aux table: %w", i, ErrInvariantViolated)
			}
		}
	}

	oldAux := s.aux
	var newAux *AuxTable

	if oldAux != nil {
		it := oldAux.Iterate()
		for it.Next() {
			slotNo := it.SlotNo()
			oldActual := it.Value()
			newShifted := oldActual - newCurMin
			if newShifted < 0 {
				return fmt.Errorf("aux entry for slot %d shifted below zero: %w", slotNo, ErrInvariantViolated)
			}
			if s.getSlot(slotNo) != AuxToken {
				return fmt.Errorf("register array slot %d != AUX_TOKEN during shift reconciliation: %w", slotNo, ErrInvariantViolated)
			}
			if newShifted < AuxToken {
				if newShifted != 14 {
					return fmt.Errorf("graduating exception at slot %d shifted to %d, expected 14: %w", slotNo, newShifted, ErrInvariantViolated)
				}
				s.putSlot(slotNo, byte(newShifted))
				numAuxTokensSeen--
			} else {
				if newAux == nil {
					newAux = s.newAuxTable()
				}
				if err := newAux.MustAdd(slotNo, oldActual); err != nil {
					return err
				}
			}
		}
		if err := it.Err(); err != nil {
			return err
		}
	} else if numAuxTokensSeen != 0 {
		return fmt.Errorf("numAuxTokensSeen != 0 with no prior aux table: %w", ErrInvariantViolated)
	}

	if newAux != nil {
		if newAux.Count() != numAuxTokensSeen {
			return fmt.Errorf("new aux count %d != remaining aux tokens %d: %w", newAux.Count(), numAuxTokensSeen, ErrInvariantViolated)
		}
	} else if numAuxTokensSeen != 0 {
		return fmt.Errorf("no new aux table built but %d aux tokens remain: %w", numAuxTokensSeen, ErrInvariantViolated)
	}

	s.aux = newAux
	s.curMin = newCurMin
	s.numAtCurMin = numAtNewCurMin
	s.gen++
	return nil
}
