package treebuild

import (
	"strings"

	"github.com/jsimonetti/html5parser/sink"
	"github.com/jsimonetti/html5parser/tokenizer"
)

// quirksModeForDoctype implements the tree construction algorithm's DOCTYPE-driven quirks
// mode determination, grounded in the standard HTML5 table of legacy
// public/system identifier prefixes.
func quirksModeForDoctype(tok tokenizer.Token) sink.QuirksMode {
	if tok.ForceQuirks {
		return sink.Quirks
	}
	name := strings.ToLower(tok.DoctypeName)
	if name != "html" {
		return sink.Quirks
	}
	pub := strings.ToLower(tok.PublicID)
	sys := strings.ToLower(tok.SystemID)

	if pub == "-//w3o//dtd w3 html strict 3.0//en//" || pub == "-/w3d/dtd html 4.0 transitional/en" || pub == "html" {
		return sink.Quirks
	}
	if sys == "http://www.ibm.com/data/dtd/v11/ibmxhtml1-transitional.dtd" {
		return sink.Quirks
	}

	quirksPrefixes := []string{
		"+//silmaril//dtd html pro v0r11 19970101//",
		"-//as//dtd html 3.0 aswedit + extensions//",
		"-//advasoft ltd//dtd html 3.0 aswedit + extensions//",
		"-//ietf//dtd html 2.0//",
		"-//ietf//dtd html 2.1e//",
		"-//ietf//dtd html 3//",
		"-//ietf//dtd html 3.0//",
		"-//ietf//dtd html 3.2 final//",
		"-//ietf//dtd html 3.2//",
		"-//ietf//dtd html level 0//",
		"-//ietf//dtd html level 1//",
		"-//ietf//dtd html level 2//",
		"-//ietf//dtd html level 3//",
		"-//ietf//dtd html strict level 0//",
		"-//ietf//dtd html strict level 1//",
		"-//ietf//dtd html strict level 2//",
		"-//ietf//dtd html strict level 3//",
		"-//ietf//dtd html strict//",
		"-//ietf//dtd html//",
		"-//metrius//dtd metrius presentational//",
		"-//microsoft//dtd internet explorer 2.0 html strict//",
		"-//microsoft//dtd internet explorer 2.0 html//",
		"-//microsoft//dtd internet explorer 2.0 tables//",
		"-//microsoft//dtd internet explorer 3.0 html strict//",
		"-//microsoft//dtd internet explorer 3.0 html//",
		"-//microsoft//dtd internet explorer 3.0 tables//",
		"-//netscape comm. corp.//dtd html//",
		"-//netscape comm. corp.//dtd strict html//",
		"-//o'reilly and associates//dtd html 2.0//",
		"-//o'reilly and associates//dtd html extended 1.0//",
		"-//o'reilly and associates//dtd html extended relaxed 1.0//",
		"-//sq//dtd html 2.0 hotmetal + extensions//",
		"-//softquad software//dtd hotmetal pro 6.0::19990601::extensions to html 4.0//",
		"-//softquad//dtd hotmetal pro 4.0::19971010::extensions to html 4.0//",
		"-//spyglass//dtd html 2.0 extended//",
		"-//sun microsystems corp.//dtd hotjava html//",
		"-//sun microsystems corp.//dtd hotjava strict html//",
		"-//w3c//dtd html 3 1995-03-24//",
		"-//w3c//dtd html 3.2 draft//",
		"-//w3c//dtd html 3.2 final//",
		"-//w3c//dtd html 3.2//",
		"-//w3c//dtd html 3.2s draft//",
		"-//w3c//dtd html 4.0 frameset//",
		"-//w3c//dtd html 4.0 transitional//",
		"-//w3c//dtd html experimental 19960712//",
		"-//w3c//dtd html experimental 970421//",
		"-//w3c//dtd w3 html//",
		"-//w3o//dtd w3 html 3.0//",
		"-//webtechs//dtd mozilla html 2.0//",
		"-//webtechs//dtd mozilla html//",
	}
	for _, p := range quirksPrefixes {
		if strings.HasPrefix(pub, p) {
			return sink.Quirks
		}
	}

	limitedPrefixes := []string{
		"-//w3c//dtd xhtml 1.0 frameset//",
		"-//w3c//dtd xhtml 1.0 transitional//",
	}
	for _, p := range limitedPrefixes {
		if strings.HasPrefix(pub, p) {
			return sink.LimitedQuirks
		}
	}
	if tok.SystemID != "" {
		limitedWithSystem := []string{
			"-//w3c//dtd html 4.01 frameset//",
			"-//w3c//dtd html 4.01 transitional//",
		}
		for _, p := range limitedWithSystem {
			if strings.HasPrefix(pub, p) {
				return sink.LimitedQuirks
			}
		}
	}

	return sink.NoQuirks
}
