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

// Package dicom implements the mutable DICOM data set store underneath the dcmedit
// dataset model, following the file format specified in
// [http://dicom.nema.org/medical/dicom/current/output/pdf/part05.pdf].
//
// The package keeps every node of a data set (elements, sequences, items) in a single
// arena addressed by NodeRef indices. Parse builds a Store from a DICOM file or a bare
// explicit VR little endian element stream, Write encodes a Store back to a file with a
// regenerated meta header, and the Store methods navigate and mutate the tree. Textual
// value access (ValueString, SetString) converts between value fields and the
// backslash-delimited textual form of each value representation.
package dicom
