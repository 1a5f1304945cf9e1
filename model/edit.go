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

import (
	"errors"
	"fmt"
	"os"

	"github.com/r-matlock/dcmedit/dicom"
)

var (
	// ErrNotFound reports an address that no longer resolves to a node: a stale ref or
	// the virtual root where a node is required.
	ErrNotFound = errors.New("no node at address")

	// ErrTypeMismatch reports a structural operation on a node of the wrong kind.
	ErrTypeMismatch = errors.New("wrong node kind for operation")

	// ErrInvalidLength reports an odd-length byte source; DICOM value fields are word
	// aligned.
	ErrInvalidLength = errors.New("byte source length must be even")
)

// resolveLeafEdit resolves an address for a value mutation. It returns NilRef with a
// nil error when the edit policy denies the tag: the caller must treat that as a silent
// no-op, which is the specified behavior of every mutation entry point.
func (m *DatasetModel) resolveLeafEdit(addr Address, action string) (*dicom.Store, dicom.NodeRef, error) {
	store := m.store()
	if store == nil || !addr.IsValid() || !store.Valid(addr.ref) {
		return nil, dicom.NilRef, fmt.Errorf("%v: %w", action, ErrNotFound)
	}
	switch store.Kind(addr.ref) {
	case dicom.KindElement, dicom.KindSequence:
	default:
		return nil, dicom.NilRef, fmt.Errorf("%v: node is %v: %w", action, store.Kind(addr.ref), ErrTypeMismatch)
	}
	if !isAllowedEditTag(store, addr.ref) {
		m.Logger.Infof("Ignoring %v of non-whitelisted tag %v", action, store.Tag(addr.ref))
		return nil, dicom.NilRef, nil
	}
	return store, addr.ref, nil
}

// SetValue encodes value into the addressed leaf. Edits of tags outside the edit policy
// are silently ignored. ValueChanged fires and the file is marked dirty even when the
// codec rejects the text; the resulting encoding error still propagates. An edit that
// writes the same value as before still marks the file dirty.
func (m *DatasetModel) SetValue(addr Address, value string) error {
	store, ref, err := m.resolveLeafEdit(addr, "value edit")
	if err != nil || ref == dicom.NilRef {
		return err
	}

	err = store.SetString(ref, value)
	m.notifyValueChanged(addr)
	m.markAsModified()
	return err
}

// SetValueBytes replaces the addressed leaf's value field wholesale. The same edit
// policy gate as SetValue applies. An odd-length source fails with ErrInvalidLength
// before anything is mutated.
func (m *DatasetModel) SetValueBytes(addr Address, value []byte) error {
	store, ref, err := m.resolveLeafEdit(addr, "blob edit")
	if err != nil || ref == dicom.NilRef {
		return err
	}
	if len(value)%2 != 0 {
		return fmt.Errorf("blob edit of %d bytes: %w", len(value), ErrInvalidLength)
	}

	err = store.SetBytes(ref, value)
	m.notifyValueChanged(addr)
	m.markAsModified()
	return err
}

// SetValueFromFile reads the file at path and assigns its contents to the addressed
// leaf. The read is synchronous; the caller owns cancellation and timeouts. The file
// size must be even.
func (m *DatasetModel) SetValueFromFile(addr Address, path string) error {
	store, ref, err := m.resolveLeafEdit(addr, "file-based edit")
	if err != nil || ref == dicom.NilRef {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file-based edit: %v", err)
	}
	if info.Size()%2 != 0 {
		return fmt.Errorf("file-based edit from %v (%d bytes): %w", path, info.Size(), ErrInvalidLength)
	}
	value, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("file-based edit: %v", err)
	}

	err = store.SetBytes(ref, value)
	m.notifyValueChanged(addr)
	m.markAsModified()
	return err
}

// AddItem appends an empty item to the addressed sequence. The insertion is bracketed
// with before/after notifications at the sequence's current visible row count.
func (m *DatasetModel) AddItem(addr Address) error {
	store := m.store()
	if store == nil || !addr.IsValid() || !store.Valid(addr.ref) {
		return fmt.Errorf("adding item: %w", ErrNotFound)
	}
	if store.Kind(addr.ref) != dicom.KindSequence {
		return fmt.Errorf("adding item: node is %v: %w", store.Kind(addr.ref), ErrTypeMismatch)
	}

	pos := m.RowCount(addr)
	m.notifyBeginInsertRows(addr, pos, pos)
	_, err := store.AppendItem(addr.ref)
	m.notifyEndInsertRows()
	m.markAsModified()
	return err
}

// Delete removes the addressed node: an element from its dataset or item parent, or an
// item from its sequence parent. The removal is bracketed with before/after
// notifications around the parent at the node's row; once the end notification fires,
// every previously captured address into the removed subtree is invalid.
//
// The file is marked dirty even when the removal itself fails: the UI treats a deletion
// as irrevocable once announced.
func (m *DatasetModel) Delete(addr Address) error {
	store := m.store()
	if store == nil || !addr.IsValid() || !store.Valid(addr.ref) {
		return fmt.Errorf("deleting node: %w", ErrNotFound)
	}
	parentRef := store.Parent(addr.ref)
	if parentRef == dicom.NilRef {
		return fmt.Errorf("deleting node: no parent: %w", ErrNotFound)
	}

	parentKind := store.Kind(parentRef)
	row := addr.row
	var err error
	badKind := false

	m.notifyBeginRemoveRows(m.Parent(addr), row, row)
	switch parentKind {
	case dicom.KindDataSet, dicom.KindItem, dicom.KindSequence:
		err = store.Remove(addr.ref)
	default:
		badKind = true
	}
	m.notifyEndRemoveRows()
	m.markAsModified()

	if badKind {
		return fmt.Errorf("deleting node: parent is %v: %w", parentKind, ErrTypeMismatch)
	}
	return err
}

// AddElement sets (creating if needed) the element named by tagPath below the addressed
// container, bypassing the edit policy: this is the dialog-driven "add element" path,
// not a cell edit. The whole tree resets afterwards because a tag-path set can create
// sequences and items anywhere below the container.
func (m *DatasetModel) AddElement(addr Address, tagPath, value string) error {
	store := m.store()
	container := m.nodeOf(store, addr)
	if container == dicom.NilRef {
		return fmt.Errorf("adding element: %w", ErrNotFound)
	}

	if err := store.SetElementAtPath(container, tagPath, value, true); err != nil {
		return fmt.Errorf("adding element: %w", err)
	}
	m.notifyReset()
	m.markAsModified()
	return nil
}
