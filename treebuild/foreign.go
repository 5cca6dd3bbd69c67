package treebuild

import (
	"strings"

	"github.com/jsimonetti/html5parser/elements"
	"github.com/jsimonetti/html5parser/sink"
	"github.com/jsimonetti/html5parser/tokenizer"
)

// svgTagNameAdjustments implements the foreign-content dispatch rules' SVG tag-name case
// fixups (camelCase names the tokeniser has already lowercased),
// grounded in Hubbub's element-type.h SVG entries (foreignObject).
var svgTagNameAdjustments = map[string]string{
	"altglyph":            "altGlyph",
	"altglyphdef":         "altGlyphDef",
	"altglyphitem":        "altGlyphItem",
	"animatecolor":        "animateColor",
	"animatemotion":       "animateMotion",
	"animatetransform":    "animateTransform",
	"clippath":            "clipPath",
	"feblend":             "feBlend",
	"foreignobject":       "foreignObject",
	"glyphref":            "glyphRef",
	"lineargradient":      "linearGradient",
	"radialgradient":      "radialGradient",
	"textpath":            "textPath",
}

// mathMLAttrAdjustments and svgAttrAdjustments implement the foreign
// content attribute case-fixup tables.
var mathMLAttrAdjustments = map[string]string{"definitionurl": "definitionURL"}

var svgAttrAdjustments = map[string]string{
	"attributename": "attributeName", "attributetype": "attributeType",
	"basefrequency": "baseFrequency", "baseprofile": "baseProfile",
	"calcmode": "calcMode", "clippathunits": "clipPathUnits",
	"contentscripttype": "contentScriptType", "contentstyletype": "contentStyleType",
	"diffuseconstant": "diffuseConstant", "edgemode": "edgeMode",
	"externalresourcesrequired": "externalResourcesRequired",
	"filterunits":               "filterUnits", "glyphref": "glyphRef",
	"gradienttransform": "gradientTransform", "gradientunits": "gradientUnits",
	"kernelmatrix": "kernelMatrix", "kernelunitlength": "kernelUnitLength",
	"keypoints": "keyPoints", "keysplines": "keySplines", "keytimes": "keyTimes",
	"lengthadjust": "lengthAdjust", "limitingconeangle": "limitingConeAngle",
	"markerheight": "markerHeight", "markerunits": "markerUnits",
	"markerwidth": "markerWidth", "maskcontentunits": "maskContentUnits",
	"maskunits": "maskUnits", "numoctaves": "numOctaves",
	"pathlength": "pathLength", "patterncontentunits": "patternContentUnits",
	"patterntransform": "patternTransform", "patternunits": "patternUnits",
	"pointsatx": "pointsAtX", "pointsaty": "pointsAtY", "pointsatz": "pointsAtZ",
	"preservealpha": "preserveAlpha", "preserveaspectratio": "preserveAspectRatio",
	"primitiveunits": "primitiveUnits", "refx": "refX", "refy": "refY",
	"repeatcount": "repeatCount", "repeatdur": "repeatDur",
	"requiredextensions": "requiredExtensions", "requiredfeatures": "requiredFeatures",
	"specularconstant": "specularConstant", "specularexponent": "specularExponent",
	"spreadmethod": "spreadMethod", "startoffset": "startOffset",
	"stddeviation": "stdDeviation", "stitchtiles": "stitchTiles",
	"surfacescale": "surfaceScale", "systemlanguage": "systemLanguage",
	"tablevalues": "tableValues", "targetx": "targetX", "targety": "targetY",
	"textlength": "textLength", "viewbox": "viewBox", "viewtarget": "viewTarget",
	"xchannelselector": "xChannelSelector", "ychannelselector": "yChannelSelector",
	"zoomandpan": "zoomAndPan",
}

// foreignAttrNamespaces implements the xlink:/xml:/xmlns namespace
// promotion for the handful of attributes the foreign-content dispatch rules calls out by
// name, regardless of host element (MathML or SVG).
var foreignAttrNamespaces = map[string]sink.Namespace{
	"xlink:actuate": sink.XLink, "xlink:arcrole": sink.XLink, "xlink:href": sink.XLink,
	"xlink:role": sink.XLink, "xlink:show": sink.XLink, "xlink:title": sink.XLink,
	"xlink:type": sink.XLink,
	"xml:lang":   sink.XML, "xml:space": sink.XML,
	"xmlns": sink.XMLNS, "xmlns:xlink": sink.XMLNS,
}

func adjustSVGTagName(name string) string {
	if adj, ok := svgTagNameAdjustments[name]; ok {
		return adj
	}
	return name
}

// adjustForeignAttributes builds the sink.Attribute slice for a new
// element, applying whichever adjustment table matches ns; for
// sink.HTML the attributes keep their names and the HTML namespace.
func adjustForeignAttributes(ns sink.Namespace, attrs []tokenizer.Attribute) []sink.Attribute {
	out := make([]sink.Attribute, 0, len(attrs))
	for _, a := range attrs {
		name := a.Name
		if ns == sink.MathML {
			if adj, ok := mathMLAttrAdjustments[name]; ok {
				name = adj
			}
		}
		if ns == sink.SVG {
			if adj, ok := svgAttrAdjustments[name]; ok {
				name = adj
			}
		}
		attrNS := sink.HTML
		if promoted, ok := foreignAttrNamespaces[name]; ok && (ns == sink.MathML || ns == sink.SVG) {
			attrNS = promoted
		}
		out = append(out, sink.Attribute{Namespace: attrNS, Name: name, Value: a.Value})
	}
	return out
}

// isMathMLTextIntegrationPoint and isHTMLIntegrationPoint implement the
// foreign-content dispatch boundary, consulting the elements package's
// MathMLTextIntegration/HTMLIntegration flags for the classification that
// depends only on name and namespace. annotation-xml's integration-point
// status also depends on its encoding attribute at parse time, which the
// static table can't express, so that case stays hardcoded here.
func isMathMLTextIntegrationPoint(name string, ns sink.Namespace) bool {
	if ns != sink.MathML {
		return false
	}
	_, f := elements.Lookup(name, ns)
	return f.MathMLTextIntegration
}

func isHTMLIntegrationPoint(name string, ns sink.Namespace, attrs []sink.Attribute) bool {
	if ns == sink.MathML && name == "annotation-xml" {
		for _, a := range attrs {
			if a.Name == "encoding" && (strings.EqualFold(a.Value, "text/html") || strings.EqualFold(a.Value, "application/xhtml+xml")) {
				return true
			}
		}
		return false
	}
	_, f := elements.Lookup(name, ns)
	return f.HTMLIntegration
}
