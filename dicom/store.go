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

// NodeRef identifies a node within a Store. Refs are plain arena indices: they carry no
// ownership and become invalid when the node they address is removed. The zero value is
// NilRef and never addresses a node.
type NodeRef int32

// NilRef is the null node reference.
const NilRef NodeRef = 0

// NodeKind discriminates the kinds of nodes in a Data Set tree.
type NodeKind int

const (
	// KindNone marks the nil ref and removed nodes.
	KindNone NodeKind = iota

	// KindDataSet is the root container. Its children are elements and sequences.
	KindDataSet

	// KindItem is a Sequence item. Its children are elements and sequences.
	KindItem

	// KindSequence is a Sequence of Items element. Its children are items.
	KindSequence

	// KindElement is a leaf Data Element carrying a VR and an encoded value field.
	KindElement
)

func (k NodeKind) String() string {
	switch k {
	case KindDataSet:
		return "dataset"
	case KindItem:
		return "item"
	case KindSequence:
		return "sequence"
	case KindElement:
		return "element"
	}
	return "none"
}

type node struct {
	kind     NodeKind
	parent   NodeRef
	children []NodeRef

	// tag and vr are set for KindElement and KindSequence nodes
	tag DataElementTag
	vr  *VR

	// value holds the encoded value field of KindElement nodes. Always even length.
	value []byte
}

// Store owns every node of one DICOM Data Set as defined in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10.
//
// All nodes live in a single arena and refer to each other through NodeRef indices, so
// parent back references never form ownership cycles. Removal tombstones the subtree in
// place: stale refs held by callers resolve to KindNone instead of reaching freed memory.
type Store struct {
	nodes []node

	// meta holds the group 0002 File Meta elements of the source file, preserved so a
	// save can reconstruct the header.
	meta []MetaElement
}

// MetaElement is one File Meta (group 0002) element. The meta header is flat, so it is
// kept outside the node arena.
type MetaElement struct {
	Tag   DataElementTag
	VR    *VR
	Value []byte
}

// NewStore returns a Store holding an empty Data Set.
func NewStore() *Store {
	s := &Store{nodes: make([]node, 1)} // index 0 is NilRef
	s.alloc(node{kind: KindDataSet})
	return s
}

func (s *Store) alloc(n node) NodeRef {
	s.nodes = append(s.nodes, n)
	return NodeRef(len(s.nodes) - 1)
}

// Root returns the ref of the Data Set root container.
func (s *Store) Root() NodeRef {
	return NodeRef(1)
}

// Valid reports whether ref addresses a live node.
func (s *Store) Valid(ref NodeRef) bool {
	return ref > 0 && int(ref) < len(s.nodes) && s.nodes[ref].kind != KindNone
}

// Kind returns the kind of the addressed node, or KindNone for invalid refs.
func (s *Store) Kind(ref NodeRef) NodeKind {
	if !s.Valid(ref) {
		return KindNone
	}
	return s.nodes[ref].kind
}

// IsLeaf reports whether ref addresses a leaf Data Element. Sequences are containers,
// not leaves, even though they carry a tag.
func (s *Store) IsLeaf(ref NodeRef) bool {
	return s.Kind(ref) == KindElement
}

// Parent returns the parent of the addressed node, or NilRef for the root and for
// invalid refs.
func (s *Store) Parent(ref NodeRef) NodeRef {
	if !s.Valid(ref) {
		return NilRef
	}
	return s.nodes[ref].parent
}

// ChildCount returns the number of children of the addressed node. Leaves have none.
func (s *Store) ChildCount(ref NodeRef) int {
	if !s.Valid(ref) {
		return 0
	}
	return len(s.nodes[ref].children)
}

// Child returns the i-th child of the addressed container in underlying order, or
// NilRef if i is out of range.
func (s *Store) Child(ref NodeRef, i int) NodeRef {
	if !s.Valid(ref) || i < 0 || i >= len(s.nodes[ref].children) {
		return NilRef
	}
	return s.nodes[ref].children[i]
}

// Index returns the position of the addressed node among its parent's children in
// underlying order, or -1 for the root and for invalid refs.
func (s *Store) Index(ref NodeRef) int {
	parent := s.Parent(ref)
	if parent == NilRef {
		return -1
	}
	for i, child := range s.nodes[parent].children {
		if child == ref {
			return i
		}
	}
	return -1
}

// Tag returns the Data Element tag of the addressed element or sequence node. The root
// and items have no tag; they report the zero tag.
func (s *Store) Tag(ref NodeRef) DataElementTag {
	if !s.Valid(ref) {
		return 0
	}
	return s.nodes[ref].tag
}

// VR returns the value representation of the addressed element or sequence node, or nil
// for containers without one.
func (s *Store) VR(ref NodeRef) *VR {
	if !s.Valid(ref) {
		return nil
	}
	return s.nodes[ref].vr
}

// ValueBytes returns the encoded value field of a leaf element. The returned slice is
// the store's own storage; callers must not modify it.
func (s *Store) ValueBytes(ref NodeRef) []byte {
	if s.Kind(ref) != KindElement {
		return nil
	}
	return s.nodes[ref].value
}

// Length returns the encoded length in bytes of the addressed node's value. For leaves
// this is the value field length; for items and the root it is the encoded length of
// their contents; for sequences the encoded length of all items.
func (s *Store) Length(ref NodeRef) uint32 {
	if !s.Valid(ref) {
		return 0
	}
	n := &s.nodes[ref]
	switch n.kind {
	case KindElement:
		return uint32(len(n.value))
	case KindSequence:
		var total uint32
		for _, item := range n.children {
			total += itemHeaderSize + s.Length(item)
		}
		return total
	default: // KindDataSet, KindItem
		var total uint32
		for _, child := range n.children {
			total += s.headerSize(child) + s.Length(child)
		}
		return total
	}
}

const itemHeaderSize = 8 // item tag + 32-bit length

// headerSize returns the encoded size of a child element's tag/VR/length prefix under
// the explicit VR little endian syntax.
func (s *Store) headerSize(ref NodeRef) uint32 {
	if longLengthVRs[s.nodes[ref].vr] {
		return 12 // tag + VR + reserved + 32-bit length
	}
	return 8 // tag + VR + 16-bit length
}

// FindElement returns the element or sequence child of container with the given tag, or
// NilRef if absent.
func (s *Store) FindElement(container NodeRef, tag DataElementTag) NodeRef {
	if !s.Valid(container) {
		return NilRef
	}
	for _, child := range s.nodes[container].children {
		if s.nodes[child].kind != KindItem && s.nodes[child].tag == tag {
			return child
		}
	}
	return NilRef
}

// AppendElement adds a new empty element with the given tag and VR to a dataset or item
// container, keeping children in ascending tag order. A nil vr uses the dictionary VR
// of the tag. SQ elements become sequence container nodes.
func (s *Store) AppendElement(container NodeRef, tag DataElementTag, vr *VR) (NodeRef, error) {
	kind := s.Kind(container)
	if kind != KindDataSet && kind != KindItem {
		return NilRef, fmt.Errorf("inserting element: container is %v, want dataset or item", kind)
	}
	if s.FindElement(container, tag) != NilRef {
		return NilRef, fmt.Errorf("inserting element: tag %v already present", tag)
	}
	if vr == nil {
		vr = tag.DictionaryVR()
	}

	n := node{kind: KindElement, parent: container, tag: tag, vr: vr}
	if vr.IsSequence() {
		n.kind = KindSequence
	}
	ref := s.alloc(n)

	children := s.nodes[container].children
	pos := len(children)
	for i, child := range children {
		if s.nodes[child].tag > tag {
			pos = i
			break
		}
	}
	children = append(children, NilRef)
	copy(children[pos+1:], children[pos:])
	children[pos] = ref
	s.nodes[container].children = children
	return ref, nil
}

// AppendItem appends a new empty item at the end of a sequence container.
func (s *Store) AppendItem(seq NodeRef) (NodeRef, error) {
	if s.Kind(seq) != KindSequence {
		return NilRef, fmt.Errorf("appending item: node is %v, want sequence", s.Kind(seq))
	}
	ref := s.alloc(node{kind: KindItem, parent: seq})
	s.nodes[seq].children = append(s.nodes[seq].children, ref)
	return ref, nil
}

// Remove detaches the addressed node from its parent and tombstones the whole subtree.
// Every outstanding ref into the subtree resolves to KindNone afterwards. The root
// cannot be removed.
func (s *Store) Remove(ref NodeRef) error {
	if !s.Valid(ref) {
		return fmt.Errorf("removing node: invalid ref %d", ref)
	}
	parent := s.nodes[ref].parent
	if parent == NilRef {
		return fmt.Errorf("removing node: cannot remove the dataset root")
	}

	children := s.nodes[parent].children
	for i, child := range children {
		if child == ref {
			s.nodes[parent].children = append(children[:i], children[i+1:]...)
			break
		}
	}
	s.tombstone(ref)
	return nil
}

func (s *Store) tombstone(ref NodeRef) {
	for _, child := range s.nodes[ref].children {
		s.tombstone(child)
	}
	s.nodes[ref] = node{}
}
