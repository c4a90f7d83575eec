package profile

import (
	"sort"
	"time"
)

// DefaultQueries are the search queries used by query-based sites when the
// caller does not supply one.
var DefaultQueries = []string{
	"interior designer",
	"interior design",
	"home designer",
	"residential designer",
}

// builtins holds the compiled-in site profiles.
var builtins = map[string]*Profile{
	"yelp": {
		Name:              "yelp",
		BaseURL:           "https://www.yelp.com",
		SearchURLTemplate: "https://www.yelp.com/search?find_desc={query}&find_loc=",
		RateLimit:         Duration(2 * time.Second),
		Selectors: Selectors{
			Listing: SelectorList{
				`div[class*="businessName"]`,
				`a[class*="businessName"]`,
				`.business-name`,
			},
			Name:     SelectorList{`h3 a, .business-name, [class*="businessName"]`},
			Website:  SelectorList{`a[href*="biz_redir"]`},
			Phone:    SelectorList{`[class*="phone"]`},
			Address:  SelectorList{`[class*="address"]`},
			City:     SelectorList{`[class*="city"]`},
			State:    SelectorList{`[class*="state"]`},
			ZipCode:  SelectorList{`[class*="zip"]`},
			NextPage: SelectorList{`a[aria-label="Next"]`},
		},
	},
	"houzz": {
		Name:              "houzz",
		BaseURL:           "https://www.houzz.com",
		SearchURLTemplate: "https://www.houzz.com/professionals/interior-designer/c/{query}",
		RateLimit:         Duration(1500 * time.Millisecond),
		Selectors: Selectors{
			Listing: SelectorList{
				`.hz-pro-search-result`,
				`.hz-pro-card`,
				`[class*="pro-card"]`,
			},
			Name:      SelectorList{`h3 a, .hz-pro-card__title`},
			Website:   SelectorList{`a[href*="professional"]`},
			Phone:     SelectorList{`[class*="phone"]`},
			Address:   SelectorList{`[class*="address"]`},
			City:      SelectorList{`[class*="city"]`},
			State:     SelectorList{`[class*="state"]`},
			Specialty: SelectorList{`[class*="specialty"]`},
			NextPage:  SelectorList{`a[aria-label="Next"], .hz-pagination-next`},
		},
	},
	"bocadolobo": {
		Name:      "bocadolobo",
		BaseURL:   "https://www.bocadolobo.com",
		ListURL:   "https://www.bocadolobo.com/en/inspiration-and-ideas/50-best-interior-designers-in-new-york/",
		RateLimit: Duration(2 * time.Second),
		Selectors: Selectors{
			Listing: SelectorList{
				`article`,
				`div[class*="entry"]`,
				`div[class*="post"]`,
				`div[class*="designer"]`,
				`section`,
				`h5`,
			},
			// Names sit in headings with the "1. Designer Name" format.
			Name: SelectorList{
				`h5`, `h4`, `h3`, `h2`,
				`[class*="title"]`, `[class*="name"]`, `strong`,
			},
			Website: SelectorList{
				`a[href*="http"]`,
				`a[href*="www"]`,
			},
			Specialty: SelectorList{
				`p`, `[class*="description"]`, `[class*="content"]`,
			},
		},
	},
	"asid": {
		Name:       "asid",
		BaseURL:    "https://designfinder.asid.org",
		ListURL:    "https://designfinder.asid.org/search?ContentType=Suppliers&ListingType=Designers+%26+Firms&View=List&SortBy=Distance&PlaceName=New+York%2C+NY&Distance=17",
		RateLimit:  Duration(2 * time.Second),
		RequiresJS: true,
		OutputFile: "output/asid_results.csv",
		Selectors: Selectors{
			Listing: SelectorList{
				`div[data-supplier-id]`,
				`[class*="supplier-card"]`,
				`[class*="supplier-item"]`,
				`[class*="result-card"]`,
				`[class*="result-item"]`,
				`[class*="listing-card"]`,
				`[class*="listing-item"]`,
				`div[class*="supplier"]`,
				`div[class*="result"]`,
				`div[class*="listing"]`,
				`article`,
				`li[class*="result"]`,
				`.search-result`,
				`div[itemtype*="Organization"]`,
			},
			Name: SelectorList{
				`h1`, `h2`, `h3`, `h4`, `h5`,
				`[class*="supplier-name"]`,
				`[class*="company-name"]`,
				`[class*="name"]`,
				`[class*="title"]`,
				`[itemprop="name"]`,
				`h2 a`, `h3 a`, `h4 a`,
			},
			Website: SelectorList{
				`a[href*="http"][target="_blank"]`,
				`a[href^="http"]`,
				`a[class*="website"]`,
				`[class*="website"] a`,
				`[itemprop="url"]`,
			},
			Phone: SelectorList{
				`a[href^="tel:"]`,
				`[class*="phone"]`,
				`[class*="tel"]`,
				`[itemprop="telephone"]`,
			},
			Email: SelectorList{
				`a[href^="mailto:"]`,
				`[class*="email"]`,
				`[itemprop="email"]`,
			},
			Address: SelectorList{
				`[class*="address"]`,
				`[class*="location"]`,
				`[itemprop="streetAddress"]`,
				`[itemprop="address"]`,
			},
			City:    SelectorList{`[class*="city"]`, `[itemprop="addressLocality"]`},
			State:   SelectorList{`[class*="state"]`, `[itemprop="addressRegion"]`},
			ZipCode: SelectorList{`[class*="zip"]`, `[class*="postal"]`, `[itemprop="postalCode"]`},
			Specialty: SelectorList{
				`[class*="specialty"]`,
				`[class*="category"]`,
				`[class*="service"]`,
			},
			NextPage: SelectorList{
				`a[aria-label*="Next"]`,
				`a[aria-label*="next"]`,
				`.pagination-next`,
				`a[class*="next"]`,
				`button[class*="next"]`,
			},
		},
	},
	"rethinkingthefuture": {
		Name:       "rethinkingthefuture",
		BaseURL:    "https://www.re-thinkingthefuture.com",
		ListURL:    "https://www.re-thinkingthefuture.com/top-architects/top-architecture-firms-architects-in-new-york/",
		RateLimit:  Duration(2 * time.Second),
		OutputFile: "output/rethinkingthefuture_results.csv",
		Pagination: Pagination{
			Enabled:           true,
			StartPage:         1,
			EndPage:           5,
			URLPattern:        "{base_url}{page}/",
			FirstPageNoSuffix: true,
			DelayBetweenPages: Duration(3 * time.Second),
		},
		Selectors: Selectors{
			Listing: SelectorList{
				`article`,
				`div[class*="entry-content"] > div`,
				`h2`, `h3`,
			},
			Name: SelectorList{
				`h2`, `h3`, `h4`,
				`[class*="title"]`, `strong`,
			},
			Website: SelectorList{
				`a[href^="http"]`,
			},
			Specialty: SelectorList{`p`},
		},
	},
}

// Builtin returns the compiled-in profile for a site name.
func Builtin(name string) (*Profile, bool) {
	p, ok := builtins[name]
	return p, ok
}

// BuiltinNames lists the compiled-in site names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
