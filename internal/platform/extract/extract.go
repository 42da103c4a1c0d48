// internal/platform/extract/extract.go

// Package extract obtiene slugs de engine desde URLs archivadas y nombres DNS.
package extract

import (
	"net/url"
	"regexp"
)

// Slug decodifica rawURL (percent-encoding) una vez y retorna el primer grupo
// de captura del primer match (sin anclar) de re. Un fallo de decodificación,
// regex nil, sin match o grupo vacío retornan ("", false).
func Slug(rawURL string, re *regexp.Regexp) (string, bool) {
	if re == nil || rawURL == "" {
		return "", false
	}

	decoded, err := url.PathUnescape(rawURL)
	if err != nil {
		return "", false
	}

	m := re.FindStringSubmatch(decoded)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}
