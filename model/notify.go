// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

// Observer receives change notifications from a DatasetModel. Dispatch is synchronous
// and in registration order, on the goroutine performing the mutation.
//
// Structural changes are bracketed: RowsAboutToBeInserted fires before the underlying
// mutation and RowsInserted after it (likewise for removal). Between the two an
// observer must not query the model; after the end notification every address captured
// before the bracket is stale and must be re-resolved. Brackets never nest.
type Observer interface {
	// ModelReset invalidates the entire tree. Observers re-query from the virtual root.
	ModelReset()

	// ValueChanged reports a content change at one address. The tree shape is unchanged.
	ValueChanged(addr Address)

	RowsAboutToBeInserted(parent Address, first, last int)
	RowsInserted()

	RowsAboutToBeRemoved(parent Address, first, last int)
	RowsRemoved()
}

// AddObserver registers an observer for all subsequent notifications.
func (m *DatasetModel) AddObserver(o Observer) {
	m.observers = append(m.observers, o)
}

// RemoveObserver unregisters a previously added observer.
func (m *DatasetModel) RemoveObserver(o Observer) {
	for i, registered := range m.observers {
		if registered == o {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

func (m *DatasetModel) notifyReset() {
	for _, o := range m.observers {
		o.ModelReset()
	}
}

func (m *DatasetModel) notifyValueChanged(addr Address) {
	for _, o := range m.observers {
		o.ValueChanged(addr)
	}
}

func (m *DatasetModel) notifyBeginInsertRows(parent Address, first, last int) {
	for _, o := range m.observers {
		o.RowsAboutToBeInserted(parent, first, last)
	}
}

func (m *DatasetModel) notifyEndInsertRows() {
	for _, o := range m.observers {
		o.RowsInserted()
	}
}

func (m *DatasetModel) notifyBeginRemoveRows(parent Address, first, last int) {
	for _, o := range m.observers {
		o.RowsAboutToBeRemoved(parent, first, last)
	}
}

func (m *DatasetModel) notifyEndRemoveRows() {
	for _, o := range m.observers {
		o.RowsRemoved()
	}
}
