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

// editableTags is the fixed set of tags users may edit. It is a design constant, not
// configuration: every read, write, structural and styling decision consults
// isAllowedEditTag and nothing else.
var editableTags = map[dicom.DataElementTag]bool{
	dicom.PatientNameTag:      true, // (0010,0010)
	dicom.PatientIDTag:        true, // (0010,0020)
	dicom.StudyInstanceUIDTag: true, // (0020,000D)
}

// isAllowedEditTag reports whether the addressed node is a leaf element carrying one of
// the editable tags. Invalid refs and containers (items, sequences) are never editable.
func isAllowedEditTag(store *dicom.Store, ref dicom.NodeRef) bool {
	if store == nil || !store.IsLeaf(ref) {
		return false
	}
	return editableTags[store.Tag(ref)]
}
