package generativeAI

import "strings"

var mapsHosts = []string{
	"maps.google.com",
	"www.google.com/maps",
	"maps.app.goo.gl",
	"goo.gl/maps",
}

// isMapsURI reports whether a citation points at Google Maps rather than a
// plain web page.
func isMapsURI(uri string) bool {
	for _, h := range mapsHosts {
		if strings.Contains(uri, h) {
			return true
		}
	}
	return false
}
