package auth

import "strings"

// challenge is a parsed WWW-Authenticate header value.
type challenge struct {
	scheme string
	params map[string]string
}

// parseChallenge parses a WWW-Authenticate header value into its scheme
// and auth parameters. Parameter values may be quoted or bare tokens.
// Returns false if the header is empty or has no scheme.
func parseChallenge(header string) (challenge, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return challenge{}, false
	}

	scheme := header
	rest := ""
	if i := strings.IndexAny(header, " \t"); i >= 0 {
		scheme, rest = header[:i], strings.TrimSpace(header[i+1:])
	}

	c := challenge{
		scheme: strings.ToLower(scheme),
		params: make(map[string]string),
	}
	for rest != "" {
		var pair string
		pair, rest = nextParam(rest)
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		c.params[strings.ToLower(strings.TrimSpace(key))] = value
	}
	return c, true
}

// nextParam splits off the next comma-separated auth parameter,
// honoring commas inside quoted values.
func nextParam(s string) (param, rest string) {
	inQuotes := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
			}
		}
	}
	return strings.TrimSpace(s), ""
}
