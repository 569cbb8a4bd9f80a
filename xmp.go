// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

import (
	"bytes"
	"encoding/xml"
)

// XMPNode is a generic XML element. XMP transforms walk and rewrite the
// tree without the package needing to know any particular schema.
type XMPNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []*XMPNode `xml:",any"`
}

// Walk visits n and every descendant in document order.
func (n *XMPNode) Walk(fn func(*XMPNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// XMPTransform rewrites the XMP tree. Returning nil clears the
// document's XMP metadata stream.
type XMPTransform func(root *XMPNode) *XMPNode

// XMPSerializer renders the transformed tree back to bytes. When nil,
// encoding/xml marshaling is used.
type XMPSerializer func(root *XMPNode) ([]byte, error)

// updateXMP parses doc.XMP, runs the transforms, and writes the result
// back. A document with no XMP stream still runs the transforms with a
// nil root so a filter can install metadata from scratch.
func updateXMP(doc *Document, filters []XMPTransform, serialize XMPSerializer) error {
	if len(filters) == 0 {
		return nil
	}
	var root *XMPNode
	if len(doc.XMP) > 0 {
		root = parseXMP(doc.XMP)
	}
	for _, f := range filters {
		root = f(root)
	}
	if root == nil {
		doc.XMP = nil
		return nil
	}
	if serialize == nil {
		serialize = marshalXMP
	}
	out, err := serialize(root)
	if err != nil {
		return err
	}
	doc.XMP = out
	return nil
}

// parseXMP decodes the XMP packet leniently. XMP found in the wild is
// frequently malformed, so a packet that fails to parse is treated as
// absent rather than fatal.
func parseXMP(data []byte) *XMPNode {
	var root XMPNode
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&root); err != nil {
		return nil
	}
	return &root
}

func marshalXMP(root *XMPNode) ([]byte, error) {
	return xml.Marshal(root)
}
