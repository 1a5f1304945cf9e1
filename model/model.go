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

// Package model projects the current DICOM file's data set as an editable tree of rows
// and columns.
//
// The projection never owns nodes: it computes (row, column, node) addresses over the
// session's dicom.Store on every call, filtering leaf elements through the fixed edit
// policy. Containers (sequence items, sequences) always project; leaf elements project
// only when their tag is editable. Mutations go through the model so that every
// structural change is bracketed with before/after notifications and every successful
// edit marks the owning file as having unsaved changes.
package model

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/r-matlock/dcmedit/dicom"
	"github.com/r-matlock/dcmedit/session"
)

// maxValueDisplayLength is the largest value field rendered inline, in bytes.
const maxValueDisplayLength = 100

// largeValuePlaceholder is shown instead of values above maxValueDisplayLength.
const largeValuePlaceholder = `<Large value, right-click and choose "Edit" for more details.>`

// unknownTagName is displayed for tags absent from the data dictionary.
const unknownTagName = "Unknown Tag & Data"

// DatasetModel is the editable tree model over the current file of a session.
//
// It resets itself whenever the session's current file changes or a batch edit touches
// all files.
type DatasetModel struct {
	files     *session.Files
	observers []Observer

	// DatasetChanged fires after every mutation and reset, for listeners that track
	// whole-dataset state (window titles, save indicators) rather than tree shape.
	DatasetChanged *session.Event

	Logger *logrus.Logger
}

// NewDatasetModel returns a model projecting the current file of files. A nil logger
// falls back to a default logrus logger.
func NewDatasetModel(files *session.Files, logger *logrus.Logger) *DatasetModel {
	if logger == nil {
		logger = logrus.New()
	}
	m := &DatasetModel{
		files:          files,
		DatasetChanged: &session.Event{},
		Logger:         logger,
	}
	files.CurrentFileSet.AddCallback(m.resetModel)
	files.AllFilesEdited.AddCallback(m.resetModel)
	return m
}

// store returns the current file's data set store, or nil if no file is open.
func (m *DatasetModel) store() *dicom.Store {
	file := m.files.CurrentFile()
	if file == nil {
		m.Logger.Debug("Failed to get dataset")
		return nil
	}
	return file.Store()
}

// nodeOf resolves an address to its node. The virtual root resolves to the data set
// root. Stale addresses resolve to NilRef.
func (m *DatasetModel) nodeOf(store *dicom.Store, addr Address) dicom.NodeRef {
	if store == nil {
		return dicom.NilRef
	}
	if !addr.IsValid() {
		return store.Root()
	}
	if !store.Valid(addr.ref) {
		return dicom.NilRef
	}
	return addr.ref
}

// visibleChild reports whether a node receives a row under its parent. Containers
// always do; leaf elements only when the edit policy allows their tag.
func visibleChild(store *dicom.Store, ref dicom.NodeRef) bool {
	if !store.IsLeaf(ref) {
		return true
	}
	return isAllowedEditTag(store, ref)
}

// Index resolves the cell at (row, column) under parent. Rows enumerate the parent's
// policy-visible children in underlying order. Out-of-range rows, malformed requests
// and stale parents yield the invalid address; this is a recoverable "no such row"
// result, not a fault.
func (m *DatasetModel) Index(row int, column Column, parent Address) Address {
	if row < 0 || column < 0 || column >= ColumnCount {
		return Address{}
	}
	store := m.store()
	parentRef := m.nodeOf(store, parent)
	if parentRef == dicom.NilRef {
		return Address{}
	}

	visible := -1
	for i := 0; i < store.ChildCount(parentRef); i++ {
		child := store.Child(parentRef, i)
		if !visibleChild(store, child) {
			continue
		}
		visible++
		if visible == row {
			return Address{row: row, column: column, ref: child}
		}
	}
	return Address{}
}

// visibleRow returns a node's row among its parent's visible children, or -1 if the
// node itself is not visible.
func visibleRow(store *dicom.Store, ref dicom.NodeRef) int {
	parent := store.Parent(ref)
	if parent == dicom.NilRef {
		return -1
	}
	visible := -1
	for i := 0; i < store.ChildCount(parent); i++ {
		child := store.Child(parent, i)
		if !visibleChild(store, child) {
			continue
		}
		visible++
		if child == ref {
			return visible
		}
	}
	return -1
}

// Parent returns the address of a node's parent, or the virtual root when the parent is
// the data set root itself or the address is stale.
func (m *DatasetModel) Parent(addr Address) Address {
	if !addr.IsValid() {
		return RootAddress
	}
	store := m.store()
	if store == nil || !store.Valid(addr.ref) {
		return RootAddress
	}
	parent := store.Parent(addr.ref)
	if parent == dicom.NilRef || parent == store.Root() {
		return RootAddress
	}
	return Address{row: visibleRow(store, parent), column: ColumnTag, ref: parent}
}

// RowCount returns the number of visible children under parent: all items of a
// sequence, and the policy-passing leaves plus sequences of a dataset or item. Leaves
// have no children.
func (m *DatasetModel) RowCount(parent Address) int {
	store := m.store()
	parentRef := m.nodeOf(store, parent)
	if parentRef == dicom.NilRef || store.IsLeaf(parentRef) {
		return 0
	}
	count := 0
	for i := 0; i < store.ChildCount(parentRef); i++ {
		if visibleChild(store, store.Child(parentRef, i)) {
			count++
		}
	}
	return count
}

// ColumnCount returns the fixed number of columns.
func (m *DatasetModel) ColumnCount() int {
	return int(ColumnCount)
}

// Data returns the display text of one cell.
func (m *DatasetModel) Data(addr Address, column Column) string {
	store := m.store()
	if store == nil || !addr.IsValid() || !store.Valid(addr.ref) {
		return ""
	}
	if store.Kind(addr.ref) == dicom.KindItem {
		return m.itemData(store, addr, column)
	}
	return m.elementData(store, addr.ref, column)
}

// itemData renders a sequence item row: a synthetic 1-based label and its length.
func (m *DatasetModel) itemData(store *dicom.Store, addr Address, column Column) string {
	switch column {
	case ColumnTag:
		return "Item " + strconv.Itoa(addr.row+1)
	case ColumnLength:
		return strconv.FormatUint(uint64(store.Length(addr.ref)), 10)
	}
	return ""
}

// elementData renders an element or sequence row from its tag, VR, length and value.
func (m *DatasetModel) elementData(store *dicom.Store, ref dicom.NodeRef, column Column) string {
	switch column {
	case ColumnTag:
		name := store.Tag(ref).Keyword()
		if name == "" {
			name = unknownTagName
		}
		return store.Tag(ref).String() + " " + name
	case ColumnVR:
		return store.VR(ref).Name
	case ColumnLength:
		return strconv.FormatUint(uint64(store.Length(ref)), 10)
	case ColumnValue:
		if store.VR(ref).IsSequence() {
			return ""
		}
		if store.Length(ref) > maxValueDisplayLength {
			return largeValuePlaceholder
		}
		value, err := store.ValueString(ref)
		if err != nil {
			m.Logger.WithError(err).Debugf("Failed to decode value of %v", store.Tag(ref))
			return ""
		}
		return value
	}
	return ""
}

// Emphasis is the advisory rendering weight of a row.
type Emphasis int

const (
	// EmphasisNormal renders in the regular foreground color.
	EmphasisNormal Emphasis = iota
	// EmphasisMuted renders greyed out.
	EmphasisMuted
)

// Style is advisory display metadata for a row. It is not an access control mechanism;
// the mutation entry points enforce the edit policy independently.
type Style struct {
	Editable bool
	Emphasis Emphasis
}

// Style returns the rendering style of a row: editable leaves render normal, everything
// else muted.
func (m *DatasetModel) Style(addr Address) Style {
	store := m.store()
	if store != nil && addr.IsValid() && isAllowedEditTag(store, addr.ref) {
		return Style{Editable: true, Emphasis: EmphasisNormal}
	}
	return Style{Editable: false, Emphasis: EmphasisMuted}
}

// EditableCell reports whether a cell accepts in-place edits: only the value column of
// a leaf whose tag the edit policy allows.
func (m *DatasetModel) EditableCell(addr Address, column Column) bool {
	if column != ColumnValue || !addr.IsValid() {
		return false
	}
	return isAllowedEditTag(m.store(), addr.ref)
}

// resetModel announces a full tree reset. Observers re-query from the virtual root.
func (m *DatasetModel) resetModel() {
	m.notifyReset()
	m.DatasetChanged.Fire()
	m.Logger.Debug("Dataset model was reset")
}

// markAsModified flags the current file as having unsaved changes after a mutation.
func (m *DatasetModel) markAsModified() {
	if file := m.files.CurrentFile(); file != nil {
		file.SetUnsavedChanges(true)
	}
	m.DatasetChanged.Fire()
}
