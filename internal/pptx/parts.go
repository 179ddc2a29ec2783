// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pptx

import (
	"fmt"
	"strings"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const (
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"

	nsAttrs = `xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `"`
)

// Relationship types.
const (
	relOfficeDocument = nsR + "/officeDocument"
	relCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relExtendedProps  = nsR + "/extended-properties"
	relSlideMaster    = nsR + "/slideMaster"
	relSlideLayout    = nsR + "/slideLayout"
	relSlide          = nsR + "/slide"
	relNotesMaster    = nsR + "/notesMaster"
	relNotesSlide     = nsR + "/notesSlide"
	relTheme          = nsR + "/theme"
	relPresProps      = nsR + "/presProps"
	relViewProps      = nsR + "/viewProps"
	relTableStyles    = nsR + "/tableStyles"
)

// Content types.
const (
	ctPresentation = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ctSlideMaster  = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ctSlideLayout  = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ctSlide        = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctNotesMaster  = "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"
	ctNotesSlide   = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	ctTheme        = "application/vnd.openxmlformats-officedocument.theme+xml"
	ctPresProps    = "application/vnd.openxmlformats-officedocument.presentationml.presProps+xml"
	ctViewProps    = "application/vnd.openxmlformats-officedocument.presentationml.viewProps+xml"
	ctTableStyles  = "application/vnd.openxmlformats-officedocument.presentationml.tableStyles+xml"
	ctCoreProps    = "application/vnd.openxmlformats-package.core-properties+xml"
	ctAppProps     = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	ctRels         = "application/vnd.openxmlformats-package.relationships+xml"
)

// Notes pages are portrait letter size.
const (
	notesWidth  EMU = 6858000
	notesHeight EMU = 9144000
)

// Identifier bases. Master and layout ids share one space starting at
// 2^31; slide ids start at 256.
const (
	masterIDBase = 2147483648
	slideIDBase  = 256
)

type rect struct{ x, y, w, h EMU }

func frac(total EMU, f float64) EMU { return EMU(float64(total) * f) }

// placeholderRect returns the layout geometry of a placeholder kind on a
// slide of the given size.
func placeholderRect(kind ShapeKind, w, h EMU) rect {
	switch kind {
	case KindCenterTitle:
		return rect{frac(w, 0.075), frac(h, 0.31), frac(w, 0.85), frac(h, 0.21)}
	case KindSubtitle:
		return rect{frac(w, 0.075), frac(h, 0.55), frac(w, 0.85), frac(h, 0.17)}
	case KindTitle:
		return rect{frac(w, 0.05), frac(h, 0.05), frac(w, 0.9), frac(h, 0.16)}
	case KindBody:
		return rect{frac(w, 0.05), frac(h, 0.24), frac(w, 0.9), frac(h, 0.66)}
	}
	return rect{}
}

const groupHeader = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

const clrMap = `<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" ` +
	`accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>`

const clrMapOvr = `<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`

// layoutSpec describes one slide layout part.
type layoutSpec struct {
	layout Layout
	typ    string
	name   string
	kinds  []ShapeKind
}

var layoutSpecs = []layoutSpec{
	{LayoutTitle, "title", "Title Slide", []ShapeKind{KindCenterTitle, KindSubtitle}},
	{LayoutTitleContent, "obj", "Title and Content", []ShapeKind{KindTitle, KindBody}},
	{LayoutBlank, "blank", "Blank", nil},
}

// phElement returns the p:ph element identifying a placeholder kind.
func phElement(kind ShapeKind) string {
	switch kind {
	case KindTitle:
		return `<p:ph type="title"/>`
	case KindCenterTitle:
		return `<p:ph type="ctrTitle"/>`
	case KindSubtitle:
		return `<p:ph type="subTitle" idx="1"/>`
	case KindBody:
		return `<p:ph idx="1"/>`
	}
	return ""
}

func placeholderName(kind ShapeKind) string {
	switch kind {
	case KindTitle, KindCenterTitle:
		return "Title"
	case KindSubtitle:
		return "Subtitle"
	case KindBody:
		return "Content Placeholder"
	}
	return "Placeholder"
}

// emptyPlaceholder writes a layout or master placeholder with geometry and
// an empty text body.
func emptyPlaceholder(b *strings.Builder, id int, kind ShapeKind, r rect) {
	fmt.Fprintf(b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s %d"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr>%s</p:nvPr></p:nvSpPr>`,
		id, placeholderName(kind), id-1, phElement(kind))
	fmt.Fprintf(b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm></p:spPr>`, r.x, r.y, r.w, r.h)
	b.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:endParaRPr lang="en-US"/></a:p></p:txBody></p:sp>`)
}

func slideMasterXML(w, h EMU) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sldMaster ` + nsAttrs + `><p:cSld>`)
	b.WriteString(`<p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg><p:spTree>`)
	b.WriteString(groupHeader)
	emptyPlaceholder(&b, 2, KindTitle, placeholderRect(KindTitle, w, h))
	masterBody := placeholderRect(KindBody, w, h)
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="3" name="Text Placeholder 2"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr>`+
		`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm></p:spPr>`+
		`<p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:endParaRPr lang="en-US"/></a:p></p:txBody></p:sp>`,
		masterBody.x, masterBody.y, masterBody.w, masterBody.h)
	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(clrMap)
	b.WriteString(`<p:sldLayoutIdLst>`)
	for i := range layoutSpecs {
		fmt.Fprintf(&b, `<p:sldLayoutId id="%d" r:id="rId%d"/>`, masterIDBase+1+i, i+1)
	}
	b.WriteString(`</p:sldLayoutIdLst>`)
	b.WriteString(`<p:txStyles>` +
		`<p:titleStyle><a:lvl1pPr algn="l"><a:defRPr sz="4400"><a:solidFill><a:schemeClr val="tx1"/></a:solidFill>` +
		`<a:latin typeface="+mj-lt"/><a:ea typeface="+mj-ea"/><a:cs typeface="+mj-cs"/></a:defRPr></a:lvl1pPr></p:titleStyle>` +
		`<p:bodyStyle><a:lvl1pPr marL="342900" indent="-342900" algn="l"><a:buFont typeface="Arial"/><a:buChar char="•"/>` +
		`<a:defRPr sz="2800"><a:solidFill><a:schemeClr val="tx1"/></a:solidFill>` +
		`<a:latin typeface="+mn-lt"/><a:ea typeface="+mn-ea"/><a:cs typeface="+mn-cs"/></a:defRPr></a:lvl1pPr></p:bodyStyle>` +
		`<p:otherStyle><a:defPPr><a:defRPr lang="en-US"/></a:defPPr></p:otherStyle>` +
		`</p:txStyles>`)
	b.WriteString(`</p:sldMaster>`)
	return b.String()
}

func slideLayoutXML(spec layoutSpec, w, h EMU) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:sldLayout %s type="%s" preserve="1"><p:cSld name="%s"><p:spTree>`, nsAttrs, spec.typ, spec.name)
	b.WriteString(groupHeader)
	for i, kind := range spec.kinds {
		emptyPlaceholder(&b, i+2, kind, placeholderRect(kind, w, h))
	}
	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(clrMapOvr)
	b.WriteString(`</p:sldLayout>`)
	return b.String()
}

func notesMasterXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:notesMaster ` + nsAttrs + `><p:cSld><p:spTree>`)
	b.WriteString(groupHeader)
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image Placeholder 1"/>`+
		`<p:cNvSpPr><a:spLocks noGrp="1" noRot="1" noChangeAspect="1"/></p:cNvSpPr><p:nvPr><p:ph type="sldImg" idx="2"/></p:nvPr></p:nvSpPr>`+
		`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:sp>`,
		frac(notesWidth, 0.1), frac(notesHeight, 0.1), frac(notesWidth, 0.8), frac(notesHeight, 0.35))
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes Placeholder 2"/>`+
		`<p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr>`+
		`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm></p:spPr>`+
		`<p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:endParaRPr lang="en-US"/></a:p></p:txBody></p:sp>`,
		frac(notesWidth, 0.1), frac(notesHeight, 0.5), frac(notesWidth, 0.8), frac(notesHeight, 0.4))
	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(clrMap)
	b.WriteString(`</p:notesMaster>`)
	return b.String()
}

const themeXML = xmlHeader + `<a:theme xmlns:a="` + nsA + `" name="Office Theme"><a:themeElements>` +
	`<a:clrScheme name="Office">` +
	`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>` +
	`<a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="1F497D"/></a:dk2>` +
	`<a:lt2><a:srgbClr val="EEECE1"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="4F81BD"/></a:accent1>` +
	`<a:accent2><a:srgbClr val="C0504D"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="9BBB59"/></a:accent3>` +
	`<a:accent4><a:srgbClr val="8064A2"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="4BACC6"/></a:accent5>` +
	`<a:accent6><a:srgbClr val="F79646"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="0000FF"/></a:hlink>` +
	`<a:folHlink><a:srgbClr val="800080"/></a:folHlink>` +
	`</a:clrScheme>` +
	`<a:fontScheme name="Office">` +
	`<a:majorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
	`</a:fontScheme>` +
	`<a:fmtScheme name="Office">` +
	`<a:fillStyleLst>` + phSolid + phSolid + phSolid + `</a:fillStyleLst>` +
	`<a:lnStyleLst>` +
	`<a:ln w="9525">` + phSolid + `</a:ln>` +
	`<a:ln w="25400">` + phSolid + `</a:ln>` +
	`<a:ln w="38100">` + phSolid + `</a:ln>` +
	`</a:lnStyleLst>` +
	`<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>` +
	`<a:bgFillStyleLst>` + phSolid + phSolid + phSolid + `</a:bgFillStyleLst>` +
	`</a:fmtScheme>` +
	`</a:themeElements><a:objectDefaults/><a:extraClrSchemeLst/></a:theme>`

const phSolid = `<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`

const presPropsXML = xmlHeader + `<p:presentationPr ` + nsAttrs + `/>`

const viewPropsXML = xmlHeader + `<p:viewPr ` + nsAttrs + `><p:normalViewPr><p:restoredLeft sz="15620"/><p:restoredTop sz="94660"/></p:normalViewPr><p:gridSpacing cx="76200" cy="76200"/></p:viewPr>`

const tableStylesXML = xmlHeader + `<a:tblStyleLst xmlns:a="` + nsA + `" def="{5C22544A-7EE6-4342-B048-85BDC9FD1C3A}"/>`
