// internal/patterns/builtin.go

// Package patterns contiene el registry de definiciones de motores de reserva.
package patterns

import "slugscout/internal/core/domain"

// builtinSpecs son los engines conocidos, en el orden en que se procesan por lotes.
var builtinSpecs = []domain.PatternSpec{
	{
		Name:               "cloudbeds",
		ArchiveURLTemplate: "hotels.cloudbeds.com/reservation/*",
		IndexURLTemplate:   "hotels.cloudbeds.com/reservation/*",
		SlugRegex:          `cloudbeds\.com/reservation/([^/?#&]+)`,
		SlugType:           domain.SlugAlphanumeric,
		Domains:            []string{"cloudbeds.com"},
	},
	{
		Name:               "rms",
		ArchiveURLTemplate: "*.rmscloud.com/Search/Index/*",
		IndexURLTemplate:   "*.rmscloud.com/Search/Index/*",
		SlugRegex:          `/Search/Index/(\d+)/`,
		SlugType:           domain.SlugNumeric,
		Domains:            []string{"rmscloud.com"},
		SubdomainRegex:     `^bookings(\d+)\.rmscloud\.com$`,
	},
	{
		Name:               "mews",
		ArchiveURLTemplate: "app.mews.com/distributor/*",
		IndexURLTemplate:   "app.mews.com/distributor/*",
		SlugRegex:          `mews\.com/distributor/([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})`,
		SlugType:           domain.SlugUUID,
		Domains:            []string{"mews.com", "mews.li"},
	},
	{
		Name:               "siteminder",
		ArchiveURLTemplate: "direct-book.com/properties/*",
		IndexURLTemplate:   "direct-book.com/properties/*",
		SlugRegex:          `direct-book\.com/properties/([A-Za-z0-9_-]+)`,
		SlugType:           domain.SlugMixed,
		Domains:            []string{"direct-book.com"},
	},
	{
		Name:               "littlehotelier",
		ArchiveURLTemplate: "*.littlehotelier.com/properties/*",
		IndexURLTemplate:   "*.littlehotelier.com/properties/*",
		SlugRegex:          `littlehotelier\.com/properties/([A-Za-z0-9_-]+)`,
		SlugType:           domain.SlugMixed,
		Domains:            []string{"littlehotelier.com"},
	},
	{
		Name:               "resnexus",
		ArchiveURLTemplate: "resnexus.com/resnexus/reservations/book/*",
		IndexURLTemplate:   "resnexus.com/resnexus/reservations/book/*",
		SlugRegex:          `reservations/book/([0-9A-Fa-f]{8}-?[0-9A-Fa-f]{4}-?[0-9A-Fa-f]{4}-?[0-9A-Fa-f]{4}-?[0-9A-Fa-f]{12})`,
		SlugType:           domain.SlugHex,
		Domains:            []string{"resnexus.com"},
	},
	{
		Name:               "thinkreservations",
		ArchiveURLTemplate: "secure.thinkreservations.com/*",
		IndexURLTemplate:   "secure.thinkreservations.com/*",
		SlugRegex:          `thinkreservations\.com/([a-z0-9-]+)/reservations`,
		SlugType:           domain.SlugAlphanumeric,
		Domains:            []string{"thinkreservations.com"},
	},
	{
		Name:               "innroad",
		ArchiveURLTemplate: "*.client.innroad.com/*",
		IndexURLTemplate:   "*.client.innroad.com/*",
		SlugRegex:          `([a-z0-9-]+)\.client\.innroad\.com`,
		SlugType:           domain.SlugAlphanumeric,
		Domains:            []string{"client.innroad.com"},
		SubdomainRegex:     `^([a-z0-9-]+)\.client\.innroad\.com$`,
	},
	{
		// Sin dominio propio: solo Wayback y Common Crawl aplican.
		Name:               "webrezpro",
		ArchiveURLTemplate: "secure.webrezpro.com/booking/*",
		IndexURLTemplate:   "secure.webrezpro.com/booking/*",
		SlugRegex:          `webrezpro\.com/booking/[^?#]*[?&]property_id=(\d+)`,
		SlugType:           domain.SlugNumeric,
	},
}

// BuiltinSpecs retorna una copia de las definiciones built-in.
func BuiltinSpecs() []domain.PatternSpec {
	out := make([]domain.PatternSpec, len(builtinSpecs))
	for i, s := range builtinSpecs {
		s.Domains = append([]string(nil), s.Domains...)
		out[i] = s
	}
	return out
}

// Builtin construye el registry con los engines built-in.
func Builtin() *Registry {
	r, err := FromSpecs(BuiltinSpecs())
	if err != nil {
		panic(err)
	}
	return r
}
