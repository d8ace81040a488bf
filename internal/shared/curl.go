// Utilities for reusing request headers captured as a cURL command.
package shared

import (
	"fmt"
	"maps"
	"net/http"
	"os"
	"regexp"
	"slices"
	"strings"
)

var (
	curlHeaderRe = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']+)'|"([^"]+)")`)
	curlCookieRe = regexp.MustCompile(`(?:-b|--cookie)\s+(?:'([^']+)'|"([^"]+)")`)
)

// CurlHeaders holds the headers and cookie extracted from a cURL command.
//
// Browsers' "copy as cURL" output is the usual input; it lets a private catalog URL be fetched with the
// session that was used to view it.
type CurlHeaders struct {
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts headers.
func ParseCurlFile(path string) (*CurlHeaders, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand parses a cURL command string and extracts headers.
//
// A cookie given with -b wins over a Cookie header.
func ParseCurlCommand(data []byte) (*CurlHeaders, error) {
	cmd := strings.ReplaceAll(string(data), "\\\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\", "")

	out := &CurlHeaders{Headers: make(map[string]string)}
	for _, m := range curlHeaderRe.FindAllStringSubmatch(cmd, -1) {
		key, value, ok := strings.Cut(firstGroup(m), ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if strings.EqualFold(key, "cookie") {
			if out.Cookie == "" {
				out.Cookie = value
			}
			continue
		}
		out.Headers[key] = value
	}

	if m := curlCookieRe.FindStringSubmatch(cmd); m != nil {
		out.Cookie = firstGroup(m)
	}

	if len(out.Headers) == 0 && out.Cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}
	return out, nil
}

func firstGroup(m []string) string {
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

// Apply sets the captured headers and cookie on req.
func (c *CurlHeaders) Apply(req *http.Request) {
	for _, key := range slices.Sorted(maps.Keys(c.Headers)) {
		req.Header.Set(key, c.Headers[key])
	}
	if c.Cookie != "" {
		req.Header.Set("Cookie", c.Cookie)
	}
}
