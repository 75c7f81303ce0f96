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

// Snapshot is the core-owned subset of a serialized Hll4Store: the packed
// nibble array plus curMin/numAtCurMin/aux metadata. It intentionally omits
// everything that belongs to the enclosing sketch header format (HIP/kxq
// accumulators, family/version/mode bytes, out-of-order flags) — those are
// the surrounding serialization layer's responsibility, per spec.
type Snapshot struct {
	LgConfigK   int
	CurMin      int
	NumAtCurMin int
	Nibbles     []byte
	AuxCount    int
	AuxBytes    []byte // compact or updatable encoding of the aux table
	AuxLgSize   int    // only meaningful when AuxBytes is the updatable form
}

// SaveCompact captures the store's state with its aux table (if any) in
// compact wire form: exactly AuxCount pairs, no holes.
func (s *Hll4Store) SaveCompact() Snapshot {
	snap := Snapshot{
		LgConfigK:   s.lgConfigK,
		CurMin:      s.curMin,
		NumAtCurMin: s.numAtCurMin,
		Nibbles:     append([]byte(nil), s.nibbles...),
	}
	if s.aux != nil {
		snap.AuxCount = s.aux.Count()
		snap.AuxBytes = s.aux.ToCompactBytes()
	}
	return snap
}

// SaveUpdatable captures the store's state with its aux table (if any) in
// updatable wire form: exactly 1<<LgSize pairs, holes allowed.
func (s *Hll4Store) SaveUpdatable() Snapshot {
	snap := Snapshot{
		LgConfigK:   s.lgConfigK,
		CurMin:      s.curMin,
		NumAtCurMin: s.numAtCurMin,
		Nibbles:     append([]byte(nil), s.nibbles...),
	}
	if s.aux != nil {
		snap.AuxCount = s.aux.Count()
		snap.AuxLgSize = s.aux.LgSize()
		snap.AuxBytes = s.aux.ToUpdatableBytes()
	}
	return snap
}

// LoadCompactSnapshot reconstructs a store from a Snapshot produced by
// SaveCompact.
func LoadCompactSnapshot(snap Snapshot) (*Hll4Store, error) {
	store, err := loadCommon(snap)
	if err != nil {
		return nil, err
	}
	if snap.AuxCount > 0 {
		aux, err := LoadCompactAuxTable(snap.AuxBytes, snap.AuxCount, snap.LgConfigK)
		if err != nil {
			return nil, err
		}
		store.aux = aux
	}
	return store, nil
}

// LoadUpdatableSnapshot reconstructs a store from a Snapshot produced by
// SaveUpdatable.
func LoadUpdatableSnapshot(snap Snapshot) (*Hll4Store, error) {
	store, err := loadCommon(snap)
	if err != nil {
		return nil, err
	}
	if snap.AuxCount > 0 {
		aux, err := LoadUpdatableAuxTable(snap.AuxBytes, snap.AuxLgSize, snap.AuxCount, snap.LgConfigK)
		if err != nil {
			return nil, err
		}
		store.aux = aux
	}
	return store, nil
}

func loadCommon(snap Snapshot) (*Hll4Store, error) {
	store, err := NewHll4Store(snap.LgConfigK)
	if err != nil {
		return nil, err
	}
	want := store.HllByteArrBytes()
	if len(snap.Nibbles) != want {
		return nil, fmt.Errorf("nibble array wrong size: want %d, got %d: %w", want, len(snap.Nibbles), ErrInvalidInput)
	}
	store.nibbles = append([]byte(nil), snap.Nibbles...)
	store.curMin = snap.CurMin
	store.numAtCurMin = snap.NumAtCurMin
	return store, nil
}
