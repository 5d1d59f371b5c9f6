// =============================================================================
// Pallet Manifest Importer - XML Writer Module
// =============================================================================
//
// This module writes the clean items of an import as an XML document, grouped
// by pallet, for systems that take manifests as XML uploads.
//
// XML STRUCTURE:
//
//   <manifest lines="3" pallets="2">             <!-- Root element -->
//     <summary>
//       <totalLines>3</totalLines>
//       <totalQty>7</totalQty>
//       <totalWeightKg>13</totalWeightKg>
//     </summary>
//     <pallet n="1" number="P1">                 <!-- One per pallet key -->
//       <lines>2</lines>
//       <totalQty>3</totalQty>
//       <totalWeightKg>13</totalWeightKg>
//       <item n="1">                             <!-- Global numbering -->
//         <identNumber>A</identNumber>
//         <type>EP</type>
//         <weight>5</weight>
//         <qty>2</qty>
//       </item>
//     </pallet>
//     <pallet n="2" number="UNKNOWN">
//       <item n="3">...</item>                   <!-- Numbering continues -->
//     </pallet>
//   </manifest>
//
// Pallets appear in pallet key order, items in import order within their
// pallet. Empty optional fields are left out.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/ginjaninja78/pallet-manifest/internal/cleaner"
	"github.com/ginjaninja78/pallet-manifest/internal/types"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// RootAttributes are additional attributes for the root element, written
	// in key order.
	// Example: {"xmlns": "http://example.com/manifest"}
	RootAttributes map[string]string

	// ItemNumberingGlobal determines if item numbering is global.
	// If true: items are numbered 1, 2, 3, 4... across all pallets.
	// If false: items restart at 1 for each pallet.
	// Default: true
	ItemNumberingGlobal bool

	// IncludeSummary adds the <summary> element.
	// Default: true
	IncludeSummary bool
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		RootAttributes:        make(map[string]string),
		ItemNumberingGlobal:   true,
		IncludeSummary:        true,
	}
}

// Element names.
const (
	RootElement    = "manifest"
	SummaryElement = "summary"
	PalletElement  = "pallet"
	ItemElement    = "item"
	IndexAttribute = "n"
)

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate creates an XML document from the clean items and their summary.
//
// PARAMETERS:
//   - items: The clean items in import order.
//   - summary: The summary computed from items.
//
// RETURNS:
//   - The XML document as a byte slice.
func Generate(items []types.CleanItem, summary types.ImportSummary) []byte {
	return GenerateWithOptions(items, summary, DefaultGenerateOptions())
}

// GenerateWithOptions creates an XML document with custom options.
func GenerateWithOptions(items []types.CleanItem, summary types.ImportSummary, options GenerateOptions) []byte {
	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString(xml.Header)
	}

	root := buildDocument(items, summary, options)
	writeElement(&buffer, root, options.Indent, 0)

	return buffer.Bytes()
}

// WriteXML writes the document produced by Generate to w.
func WriteXML(w io.Writer, items []types.CleanItem, summary types.ImportSummary) error {
	if _, err := w.Write(Generate(items, summary)); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// XMLElement represents a generic XML element.
type XMLElement struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []XMLElement
}

// buildDocument constructs the XML document structure.
func buildDocument(items []types.CleanItem, summary types.ImportSummary, options GenerateOptions) XMLElement {
	root := XMLElement{
		XMLName: xml.Name{Local: RootElement},
		Attributes: []xml.Attr{
			attr("lines", strconv.Itoa(summary.TotalLines)),
			attr("pallets", strconv.Itoa(len(summary.Pallets))),
		},
	}

	keys := make([]string, 0, len(options.RootAttributes))
	for key := range options.RootAttributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		root.Attributes = append(root.Attributes, attr(key, options.RootAttributes[key]))
	}

	if options.IncludeSummary {
		root.Children = append(root.Children, XMLElement{
			XMLName: xml.Name{Local: SummaryElement},
			Children: []XMLElement{
				createSimpleElement("totalLines", strconv.Itoa(summary.TotalLines)),
				createSimpleElement("totalQty", types.FormatNumber(summary.TotalQty)),
				createSimpleElement("totalWeightKg", types.FormatNumber(summary.TotalWeightKg)),
			},
		})
	}

	globalItemIndex := 1

	for i, key := range summary.PalletKeys() {
		root.Children = append(root.Children, buildPalletElement(
			i+1,
			key,
			summary.Pallets[key],
			cleaner.PalletItems(items, key),
			options,
			&globalItemIndex,
		))
	}

	return root
}

// buildPalletElement constructs a pallet element with its totals and items.
//
// STRUCTURE:
//
//	<pallet n="1" number="P1">
//	  <lines>2</lines>
//	  <totalQty>3</totalQty>
//	  <totalWeightKg>13</totalWeightKg>
//	  <item n="1">...</item>
//	</pallet>
func buildPalletElement(index int, key string, totals types.PalletTotals, items []types.CleanItem, options GenerateOptions, globalItemIndex *int) XMLElement {
	element := XMLElement{
		XMLName: xml.Name{Local: PalletElement},
		Attributes: []xml.Attr{
			attr(IndexAttribute, strconv.Itoa(index)),
			attr("number", key),
		},
		Children: []XMLElement{
			createSimpleElement("lines", strconv.Itoa(totals.Lines)),
			createSimpleElement("totalQty", types.FormatNumber(totals.TotalQty)),
			createSimpleElement("totalWeightKg", types.FormatNumber(totals.TotalWeightKg)),
		},
	}

	for i, item := range items {
		n := i + 1
		if options.ItemNumberingGlobal {
			n = *globalItemIndex
			(*globalItemIndex)++
		}
		element.Children = append(element.Children, buildItemElement(n, item))
	}

	return element
}

// buildItemElement constructs an item element. Text fields are written when
// non-empty; identNumber, type and qty are always written.
func buildItemElement(index int, item types.CleanItem) XMLElement {
	element := XMLElement{
		XMLName:    xml.Name{Local: ItemElement},
		Attributes: []xml.Attr{attr(IndexAttribute, strconv.Itoa(index))},
	}

	optional := func(name, value string) {
		if value != "" {
			element.Children = append(element.Children, createSimpleElement(name, value))
		}
	}

	optional("position", item.Position)
	optional("positionIdent", item.PositionIdent)
	optional("barCodeNumber", item.BarCodeNumber)
	optional("positionDetail", item.PositionDetail)
	element.Children = append(element.Children, createSimpleElement("identNumber", item.IdentNumber))
	optional("detail", item.Detail)
	element.Children = append(element.Children, createSimpleElement("type", string(item.Type)))
	if item.Weight != nil {
		optional("weight", types.FormatNumber(*item.Weight))
	}
	optional("unit", string(item.Unit))
	element.Children = append(element.Children, createSimpleElement("qty", types.FormatNumber(item.Qty)))
	optional("workNumber", item.WorkNumber)
	if item.SealNumber != nil {
		optional("sealNumber", *item.SealNumber)
	}
	if item.ContainerNumber != nil {
		optional("containerNumber", *item.ContainerNumber)
	}

	return element
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// createSimpleElement creates a simple XML element with a text value.
func createSimpleElement(name, value string) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: name},
		Value:   value,
	}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element XMLElement, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)

	for _, a := range element.Attributes {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", a.Name.Local, escapeXML(a.Value)))
	}

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if element.Value != "" {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")

		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}

		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer
	xml.EscapeText(&buffer, []byte(s))
	return buffer.String()
}
