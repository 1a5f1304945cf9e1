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

import "fmt"

// DataElementTag is a unique identifier for a Data Element composed of an ordered pair
// of numbers (a group number followed by an element number) as specified in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.1
type DataElementTag uint32

// NewTag returns the DataElementTag with the given group and element numbers.
func NewTag(group, element uint16) DataElementTag {
	return DataElementTag(uint32(group)<<16 | uint32(element))
}

// GroupNumber returns the group number component of the DataElementTag
func (t DataElementTag) GroupNumber() uint16 {
	return uint16(t >> 16)
}

// ElementNumber returns the element number component of the DataElementTag
func (t DataElementTag) ElementNumber() uint16 {
	return uint16(t & 0xFFFF)
}

// IsMetadataElement is true if and only if the Data Element is a meta data element
func (t DataElementTag) IsMetadataElement() bool {
	return t.GroupNumber() == uint16(0x0002)
}

// IsPrivate is true if and only if the Data Element is a private data element
func (t DataElementTag) IsPrivate() bool {
	return t.GroupNumber()%2 != 0
}

func (t DataElementTag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.GroupNumber(), t.ElementNumber())
}

// DictionaryVR returns the VR the data dictionary assigns to the tag, or UN for tags
// absent from the dictionary.
func (t DataElementTag) DictionaryVR() *VR {
	if entry, ok := dataDictionary[t]; ok {
		return entry.vr
	}
	return UNVR
}

// Keyword returns the data dictionary keyword of the tag, or the empty string for tags
// absent from the dictionary.
func (t DataElementTag) Keyword() string {
	return dataDictionary[t].keyword
}

// delimitation tags from
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.5
const (
	ItemTag                     = DataElementTag(0xFFFEE000)
	ItemDelimitationItemTag     = DataElementTag(0xFFFEE00D)
	SequenceDelimitationItemTag = DataElementTag(0xFFFEE0DD)
)

// File Meta (group 0002) element tags from
// http://dicom.nema.org/medical/dicom/current/output/html/part10.html#table_7.1-1
const (
	FileMetaInformationGroupLengthTag = DataElementTag(0x00020000)
	FileMetaInformationVersionTag     = DataElementTag(0x00020001)
	MediaStorageSOPClassUIDTag        = DataElementTag(0x00020002)
	MediaStorageSOPInstanceUIDTag     = DataElementTag(0x00020003)
	TransferSyntaxUIDTag              = DataElementTag(0x00020010)
	ImplementationClassUIDTag         = DataElementTag(0x00020012)
	ImplementationVersionNameTag      = DataElementTag(0x00020013)
)

// data element tags from
// http://dicom.nema.org/medical/dicom/current/output/html/part06.html#chapter_6
const (
	SpecificCharacterSetTag      = DataElementTag(0x00080005)
	ImageTypeTag                 = DataElementTag(0x00080008)
	SOPClassUIDTag               = DataElementTag(0x00080016)
	SOPInstanceUIDTag            = DataElementTag(0x00080018)
	StudyDateTag                 = DataElementTag(0x00080020)
	SeriesDateTag                = DataElementTag(0x00080021)
	StudyTimeTag                 = DataElementTag(0x00080030)
	AccessionNumberTag           = DataElementTag(0x00080050)
	ModalityTag                  = DataElementTag(0x00080060)
	ReferringPhysicianNameTag    = DataElementTag(0x00080090)
	StudyDescriptionTag          = DataElementTag(0x00081030)
	ReferencedStudySequenceTag   = DataElementTag(0x00081110)
	ReferencedSOPClassUIDTag     = DataElementTag(0x00081150)
	ReferencedSOPInstanceUIDTag  = DataElementTag(0x00081155)
	PatientNameTag               = DataElementTag(0x00100010)
	PatientIDTag                 = DataElementTag(0x00100020)
	PatientBirthDateTag          = DataElementTag(0x00100030)
	PatientSexTag                = DataElementTag(0x00100040)
	StudyInstanceUIDTag          = DataElementTag(0x0020000D)
	SeriesInstanceUIDTag         = DataElementTag(0x0020000E)
	StudyIDTag                   = DataElementTag(0x00200010)
	SeriesNumberTag              = DataElementTag(0x00200011)
	InstanceNumberTag            = DataElementTag(0x00200013)
	SamplesPerPixelTag           = DataElementTag(0x00280002)
	PhotometricInterpretationTag = DataElementTag(0x00280004)
	RowsTag                      = DataElementTag(0x00280010)
	ColumnsTag                   = DataElementTag(0x00280011)
	BitsAllocatedTag             = DataElementTag(0x00280100)
	BitsStoredTag                = DataElementTag(0x00280101)
	HighBitTag                   = DataElementTag(0x00280102)
	PixelRepresentationTag       = DataElementTag(0x00280103)
	PixelDataTag                 = DataElementTag(0x7FE00010)
)

type dictionaryEntry struct {
	keyword string
	vr      *VR
}

// dataDictionary covers the tags the editor's headers commonly carry. Tags outside the
// dictionary still parse and display, with UN as the fallback VR.
var dataDictionary = map[DataElementTag]dictionaryEntry{
	SpecificCharacterSetTag:      {"SpecificCharacterSet", CSVR},
	ImageTypeTag:                 {"ImageType", CSVR},
	SOPClassUIDTag:               {"SOPClassUID", UIVR},
	SOPInstanceUIDTag:            {"SOPInstanceUID", UIVR},
	StudyDateTag:                 {"StudyDate", DAVR},
	SeriesDateTag:                {"SeriesDate", DAVR},
	StudyTimeTag:                 {"StudyTime", TMVR},
	AccessionNumberTag:           {"AccessionNumber", SHVR},
	ModalityTag:                  {"Modality", CSVR},
	ReferringPhysicianNameTag:    {"ReferringPhysicianName", PNVR},
	StudyDescriptionTag:          {"StudyDescription", LOVR},
	ReferencedStudySequenceTag:   {"ReferencedStudySequence", SQVR},
	ReferencedSOPClassUIDTag:     {"ReferencedSOPClassUID", UIVR},
	ReferencedSOPInstanceUIDTag:  {"ReferencedSOPInstanceUID", UIVR},
	PatientNameTag:               {"PatientName", PNVR},
	PatientIDTag:                 {"PatientID", LOVR},
	PatientBirthDateTag:          {"PatientBirthDate", DAVR},
	PatientSexTag:                {"PatientSex", CSVR},
	StudyInstanceUIDTag:          {"StudyInstanceUID", UIVR},
	SeriesInstanceUIDTag:         {"SeriesInstanceUID", UIVR},
	StudyIDTag:                   {"StudyID", SHVR},
	SeriesNumberTag:              {"SeriesNumber", ISVR},
	InstanceNumberTag:            {"InstanceNumber", ISVR},
	SamplesPerPixelTag:           {"SamplesPerPixel", USVR},
	PhotometricInterpretationTag: {"PhotometricInterpretation", CSVR},
	RowsTag:                      {"Rows", USVR},
	ColumnsTag:                   {"Columns", USVR},
	BitsAllocatedTag:             {"BitsAllocated", USVR},
	BitsStoredTag:                {"BitsStored", USVR},
	HighBitTag:                   {"HighBit", USVR},
	PixelRepresentationTag:       {"PixelRepresentation", USVR},
	PixelDataTag:                 {"PixelData", OWVR},
}

// tagByKeyword resolves dictionary keywords back to tags, for tag-path parsing.
var tagByKeyword = map[string]DataElementTag{}

func init() {
	for tag, entry := range dataDictionary {
		tagByKeyword[entry.keyword] = tag
	}
}
