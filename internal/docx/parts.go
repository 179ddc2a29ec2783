// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const (
	nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

const contentTypesXML = xmlHeader +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/word/settings.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>` +
	`</Types>`

const packageRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="` + nsR + `/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`<Relationship Id="rId3" Type="` + nsR + `/extended-properties" Target="docProps/app.xml"/>` +
	`</Relationships>`

const documentRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="` + nsR + `/styles" Target="styles.xml"/>` +
	`<Relationship Id="rId2" Type="` + nsR + `/settings" Target="settings.xml"/>` +
	`</Relationships>`

const appPropsXML = xmlHeader +
	`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">` +
	`<Application>decktools</Application></Properties>`

const settingsXML = xmlHeader +
	`<w:settings xmlns:w="` + nsW + `"><w:defaultTabStop w:val="420"/><w:compat/></w:settings>`

func corePropsXML(title string, now time.Time) string {
	var t strings.Builder
	_ = xml.EscapeText(&t, []byte(title))
	ts := now.Format(time.RFC3339)
	return xmlHeader + `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + t.String() + `</dc:title><dc:creator>decktools</dc:creator>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + ts + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + ts + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

// stylesXML defines Normal, Title, and Heading1-2. Sizes are half-points.
func stylesXML(font string, size float64) string {
	if size <= 0 {
		size = 11
	}
	var fonts string
	if font != "" {
		var f strings.Builder
		_ = xml.EscapeText(&f, []byte(font))
		n := f.String()
		fonts = fmt.Sprintf(`<w:rFonts w:ascii="%s" w:hAnsi="%s" w:eastAsia="%s" w:cs="%s"/>`, n, n, n, n)
	}
	halfPts := int(size * 2)

	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:styles xmlns:w="` + nsW + `">`)
	fmt.Fprintf(&b, `<w:docDefaults><w:rPrDefault><w:rPr>%s<w:sz w:val="%d"/><w:szCs w:val="%d"/><w:lang w:val="en-US" w:eastAsia="zh-CN"/></w:rPr></w:rPrDefault>`+
		`<w:pPrDefault><w:pPr><w:spacing w:after="120"/></w:pPr></w:pPrDefault></w:docDefaults>`, fonts, halfPts, halfPts)
	fmt.Fprintf(&b, `<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/>`+
		`<w:rPr>%s<w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr></w:style>`, fonts, halfPts, halfPts)
	b.WriteString(headingStyleXML("Title", "Title", 0, 52, "17365D", false))
	b.WriteString(headingStyleXML("Heading1", "heading 1", 1, 28, "365F91", true))
	b.WriteString(headingStyleXML("Heading2", "heading 2", 2, 26, "4F81BD", true))
	b.WriteString(`</w:styles>`)
	return b.String()
}

func headingStyleXML(id, name string, level, halfPts int, color string, bold bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="%s"><w:name w:val="%s"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>`, id, name)
	b.WriteString(`<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="120"/>`)
	if level > 0 {
		fmt.Fprintf(&b, `<w:outlineLvl w:val="%d"/>`, level-1)
	}
	b.WriteString(`</w:pPr><w:rPr>`)
	if bold {
		b.WriteString(`<w:b/><w:bCs/>`)
	}
	fmt.Fprintf(&b, `<w:color w:val="%s"/><w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr></w:style>`, color, halfPts, halfPts)
	return b.String()
}
