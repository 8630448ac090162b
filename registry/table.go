// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

import (
	"maps"
	"slices"
)

// descriptorTable holds the descriptors of one use case, keyed by id, with a
// unique fingerprint index and a non-unique symbol code index. The symbol
// index keeps ids in ascending order so a lookup behaves like a range scan.
type descriptorTable struct {
	rows          map[uint64]*Descriptor
	byFingerprint map[Fingerprint]uint64
	bySymbol      map[string][]uint64
}

func newDescriptorTable() *descriptorTable {
	return &descriptorTable{
		rows:          make(map[uint64]*Descriptor),
		byFingerprint: make(map[Fingerprint]uint64),
		bySymbol:      make(map[string][]uint64),
	}
}

func (t *descriptorTable) len() int {
	return len(t.rows)
}

// nextID returns one past the largest id in use, or 0 for an empty table
func (t *descriptorTable) nextID() uint64 {
	if len(t.rows) == 0 {
		return 0
	}
	return slices.Max(slices.Collect(maps.Keys(t.rows))) + 1
}

func (t *descriptorTable) get(id uint64) (*Descriptor, bool) {
	d, ok := t.rows[id]
	return d, ok
}

func (t *descriptorTable) getByFingerprint(fp Fingerprint) (*Descriptor, bool) {
	id, ok := t.byFingerprint[fp]
	if !ok {
		return nil, false
	}
	return t.get(id)
}

// withSymbol returns the descriptors carrying code in ascending id order
func (t *descriptorTable) withSymbol(code string) []*Descriptor {
	ids := t.bySymbol[code]
	ret := make([]*Descriptor, 0, len(ids))
	for _, id := range ids {
		ret = append(ret, t.rows[id])
	}
	return ret
}

// all returns every descriptor in ascending id order
func (t *descriptorTable) all() []*Descriptor {
	ids := slices.Sorted(maps.Keys(t.rows))
	ret := make([]*Descriptor, 0, len(ids))
	for _, id := range ids {
		ret = append(ret, t.rows[id])
	}
	return ret
}

func (t *descriptorTable) insert(d *Descriptor) {
	t.rows[d.ID] = d
	t.byFingerprint[d.Fingerprint] = d.ID
	ids := t.bySymbol[d.SymbolCode]
	pos, _ := slices.BinarySearch(ids, d.ID)
	t.bySymbol[d.SymbolCode] = slices.Insert(ids, pos, d.ID)
}

func (t *descriptorTable) remove(id uint64) {
	d, ok := t.rows[id]
	if !ok {
		return
	}
	delete(t.byFingerprint, d.Fingerprint)
	ids := t.bySymbol[d.SymbolCode]
	if pos, found := slices.BinarySearch(ids, id); found {
		ids = slices.Delete(ids, pos, pos+1)
	}
	if len(ids) == 0 {
		delete(t.bySymbol, d.SymbolCode)
	} else {
		t.bySymbol[d.SymbolCode] = ids
	}
	delete(t.rows, id)
}
