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

package dicom

import (
	"fmt"
)

// vrType is to group common encodings together
type vrType int

const (
	// textVR is for value fields that will be interpreted as simple text with space padding
	textVR vrType = iota

	// numberBinaryVR is for value fields that are parsed as binary numbers
	numberBinaryVR

	// bulkDataVR groups sequences of binary numbers
	bulkDataVR

	// uniqueIdentifierVR is for VR: UI. It has null padding
	uniqueIdentifierVR

	// sequenceVR is for VR: SQ
	sequenceVR

	// tagVR is for tags. Distinct from numberBinaryVR due to little endian byte ordering
	tagVR
)

// UndefinedLength as specified
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.1
const UndefinedLength = 0xffffffff

// VR models the DICOM Value representations (VR)
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
type VR struct {
	// Name represents the 2-character VR Code
	Name string

	kind vrType

	// wordSize is the size in bytes of one binary value, 0 for text-like VRs
	wordSize int
}

// IsSequence is true if and only if the VR is SQ. Sequence values have no flat
// textual form and are displayed through their items instead.
func (vr *VR) IsSequence() bool {
	return vr.kind == sequenceVR
}

// paddingByte returns the byte used to pad odd-length encoded values to even length as
// required by http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
func (vr *VR) paddingByte() byte {
	if vr.kind == uniqueIdentifierVR {
		return 0x00
	}
	return ' '
}

// isTextual reports whether the value field is decoded as character data. UC, UR and UT
// are carried in the bulk data group for length encoding purposes but hold text.
func (vr *VR) isTextual() bool {
	switch vr.kind {
	case textVR, uniqueIdentifierVR:
		return true
	}
	return vr == UCVR || vr == URVR || vr == UTVR
}

var vrLookupMap = map[string]*VR{}

func newVR(text string, vrType vrType, wordSize int) *VR {
	vr := &VR{text, vrType, wordSize}
	vrLookupMap[vr.Name] = vr

	return vr
}

func lookupVRByName(name string) (*VR, error) {
	r, ok := vrLookupMap[name]
	if !ok {
		return nil, fmt.Errorf("unknown vr name: %v", name)
	}
	return r, nil
}

// VR list obtained from
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
var (
	// textual VRs
	CSVR = newVR("CS", textVR, 0)
	SHVR = newVR("SH", textVR, 0)
	LOVR = newVR("LO", textVR, 0)
	STVR = newVR("ST", textVR, 0)
	LTVR = newVR("LT", textVR, 0)
	ASVR = newVR("AS", textVR, 0)

	// person name
	PNVR = newVR("PN", textVR, 0)

	// application entity
	AEVR = newVR("AE", textVR, 0)

	// dates/time VR
	DAVR = newVR("DA", textVR, 0)
	TMVR = newVR("TM", textVR, 0)
	DTVR = newVR("DT", textVR, 0)

	// textual numbers
	ISVR = newVR("IS", textVR, 0)
	DSVR = newVR("DS", textVR, 0)

	// binary numbers
	SSVR = newVR("SS", numberBinaryVR, 2)
	USVR = newVR("US", numberBinaryVR, 2)
	SLVR = newVR("SL", numberBinaryVR, 4)
	ULVR = newVR("UL", numberBinaryVR, 4)
	FLVR = newVR("FL", numberBinaryVR, 4)
	FDVR = newVR("FD", numberBinaryVR, 8)

	// large binary sequences
	OBVR = newVR("OB", bulkDataVR, 1)
	ODVR = newVR("OD", bulkDataVR, 8)
	OLVR = newVR("OL", bulkDataVR, 4)
	OWVR = newVR("OW", bulkDataVR, 2)
	OFVR = newVR("OF", bulkDataVR, 4)

	// unlimited char
	UCVR = newVR("UC", bulkDataVR, 0)

	// unknown
	UNVR = newVR("UN", bulkDataVR, 1)

	// URL
	URVR = newVR("UR", bulkDataVR, 0)

	// unlimited text
	UTVR = newVR("UT", bulkDataVR, 0)

	// attribute tag
	ATVR = newVR("AT", tagVR, 4)

	// unique identifier
	UIVR = newVR("UI", uniqueIdentifierVR, 0)

	// sequence
	SQVR = newVR("SQ", sequenceVR, 0)
)

// longLengthVRs need the 32-bit length form of the explicit VR syntax as specified in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.2
var longLengthVRs = map[*VR]bool{
	OBVR: true,
	ODVR: true,
	OFVR: true,
	OLVR: true,
	OWVR: true,
	SQVR: true,
	UCVR: true,
	URVR: true,
	UTVR: true,
	UNVR: true,
}
