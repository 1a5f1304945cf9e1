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

import "github.com/r-matlock/dcmedit/dicom"

// Column indexes the four fixed columns of the projected tree.
type Column int

const (
	// ColumnTag shows the element tag and its dictionary name, or "Item N" for items.
	ColumnTag Column = iota
	// ColumnVR shows the two-letter value representation code.
	ColumnVR
	// ColumnLength shows the encoded value length in bytes.
	ColumnLength
	// ColumnValue shows the decoded value text. This is the only editable column.
	ColumnValue

	// ColumnCount is the fixed number of columns.
	ColumnCount
)

// ColumnName returns the header caption of a column.
func ColumnName(c Column) string {
	switch c {
	case ColumnTag:
		return "Tag"
	case ColumnVR:
		return "VR"
	case ColumnLength:
		return "Length"
	case ColumnValue:
		return "Value"
	}
	return ""
}

// Address identifies one visible cell of the projected tree: the node it shows, the
// node's row among its parent's policy-visible children, and a column.
//
// The zero Address is the virtual root: it addresses no node but stands for the data
// set root when passed as a parent. An Address captured before a structural change must
// be discarded once the change's end notification fires; the node ref inside it may be
// dead.
type Address struct {
	row    int
	column Column
	ref    dicom.NodeRef
}

// RootAddress is the virtual root: parent of the top-level rows.
var RootAddress = Address{}

// IsValid reports whether the address refers to a node, as opposed to the virtual root.
func (a Address) IsValid() bool {
	return a.ref != dicom.NilRef
}

// Row returns the address's row among its parent's visible children.
func (a Address) Row() int {
	return a.row
}

// Column returns the address's column.
func (a Address) Column() Column {
	return a.column
}
