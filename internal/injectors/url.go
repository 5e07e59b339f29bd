package injectors

import (
	"fmt"
	"net/url"

	"github.com/atlanticdynamic/hostbridge/internal/engines"
)

var _ engines.Injector = (*URL)(nil)

// LocationGlobal is the global defined by URL.
const LocationGlobal = "location"

// URL defines a "location" object describing a base URL with browser-style keys.
type URL struct {
	Base string
}

// Name returns "location".
func (u *URL) Name() string { return LocationGlobal }

// RegisterInto parses Base and defines the location object.
func (u *URL) RegisterInto(g *engines.GlobalContext) error {
	loc, err := Location(u.Base)
	if err != nil {
		return err
	}
	return g.Set(LocationGlobal, loc)
}

// Location parses raw into the location object. raw must be absolute.
func Location(raw string) (map[string]any, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", raw, err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("invalid location %q: not an absolute URL", raw)
	}

	query := make(map[string]any)
	for key, values := range parsed.Query() {
		if len(values) == 1 {
			query[key] = values[0]
			continue
		}
		list := make([]any, len(values))
		for i, v := range values {
			list[i] = v
		}
		query[key] = list
	}

	var search, hash string
	if parsed.RawQuery != "" {
		search = "?" + parsed.RawQuery
	}
	if parsed.Fragment != "" {
		hash = "#" + parsed.EscapedFragment()
	}
	pathname := parsed.EscapedPath()
	if pathname == "" {
		pathname = "/"
	}

	return map[string]any{
		"href":     parsed.String(),
		"protocol": parsed.Scheme + ":",
		"host":     parsed.Host,
		"hostname": parsed.Hostname(),
		"port":     parsed.Port(),
		"pathname": pathname,
		"search":   search,
		"hash":     hash,
		"origin":   parsed.Scheme + "://" + parsed.Host,
		"query":    query,
	}, nil
}
