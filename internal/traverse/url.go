package traverse

import (
	"net/url"
	"strings"
)

// Resolve joins a possibly relative href onto root.
func Resolve(root, href string) (string, error) {
	base, err := url.Parse(root)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// QueryParam returns the value of key in the query string of href, matching
// the key case-insensitively.
func QueryParam(href, key string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	for k, vs := range u.Query() {
		if len(vs) > 0 && strings.EqualFold(k, key) && vs[0] != "" {
			return vs[0], true
		}
	}
	return "", false
}
