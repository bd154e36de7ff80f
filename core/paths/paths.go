package paths

import (
	"regexp"
	"strings"
)

var schemeHost = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://[^/]*`)

// Normalizer strips public-address and bucket prefixes from path-like values.
type Normalizer struct {
	bucket     string
	publicPath string
	hosts      map[string]struct{}
}

// NewNormalizer builds a Normalizer for the given bucket. publicPath is the
// path segment that precedes the bucket name in public object URLs
// (for example "storage/v1/object/public"); it may be empty.
//
// hosts lists the addresses that serve the bucket, as bare hosts or base
// URLs. An absolute URL on any other host is kept whole and so never names
// an object. With no hosts every host is stripped.
func NewNormalizer(bucket, publicPath string, hosts ...string) *Normalizer {
	n := &Normalizer{
		bucket:     strings.Trim(bucket, "/"),
		publicPath: strings.Trim(publicPath, "/"),
	}
	for _, h := range hosts {
		if h = hostOf(h); h != "" {
			if n.hosts == nil {
				n.hosts = make(map[string]struct{})
			}
			n.hosts[h] = struct{}{}
		}
	}
	return n
}

// Normalize returns the canonical relative path for s, or "" when s holds no
// reference. It is idempotent.
func (n *Normalizer) Normalize(s string) string {
	for {
		next := n.strip(s)
		if next == s {
			return next
		}
		s = next
	}
}

// NormalizeValue normalizes a string or byte slice; any other value,
// nil included, yields "".
func (n *Normalizer) NormalizeValue(v any) string {
	switch t := v.(type) {
	case string:
		return n.Normalize(t)
	case []byte:
		return n.Normalize(string(t))
	case *string:
		if t == nil {
			return ""
		}
		return n.Normalize(*t)
	default:
		return ""
	}
}

func (n *Normalizer) strip(s string) string {
	s = strings.TrimSpace(s)
	if loc := schemeHost.FindStringIndex(s); loc != nil && n.servesHost(s[:loc[1]]) {
		s = s[loc[1]:]
	}
	s = trimSeparators(s)
	if n.publicPath != "" {
		s = trimSegmentPrefix(s, n.publicPath)
	}
	if n.bucket != "" {
		s = trimSegmentPrefix(s, n.bucket)
	}
	return trimSeparators(s)
}

func (n *Normalizer) servesHost(prefix string) bool {
	if n.hosts == nil {
		return true
	}
	_, ok := n.hosts[hostOf(prefix)]
	return ok
}

// hostOf returns the lowercased host of a URL or bare host, port included.
func hostOf(s string) string {
	s = strings.TrimSpace(s)
	if _, rest, ok := strings.Cut(s, "://"); ok {
		s = rest
	}
	host, _, _ := strings.Cut(s, "/")
	return strings.ToLower(host)
}

// trimSegmentPrefix removes prefix when it is a whole leading path segment
// sequence of s.
func trimSegmentPrefix(s, prefix string) string {
	if s == prefix {
		return ""
	}
	if strings.HasPrefix(s, prefix+"/") {
		return s[len(prefix)+1:]
	}
	return s
}

func trimSeparators(s string) string {
	return strings.Trim(strings.TrimSpace(s), `/\`)
}

// Join appends name to prefix with a single separator.
func Join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Base returns the last segment of a path.
func Base(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// Description splits an asset path into the segments the page builder writes:
// owner/site/collection/file.
type Description struct {
	OwnerID    string `json:"owner_id"`
	SiteID     string `json:"site_id"`
	Collection string `json:"collection"`
	FileName   string `json:"file_name"`
}

// Describe splits p into its owner, site, collection and file name segments.
func Describe(p string) Description {
	var segments []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	var d Description
	if len(segments) > 0 {
		d.OwnerID = segments[0]
	}
	if len(segments) > 1 {
		d.SiteID = segments[1]
	}
	if len(segments) > 2 {
		d.Collection = segments[2]
	}
	switch {
	case len(segments) > 3:
		d.FileName = strings.Join(segments[3:], "/")
	case len(segments) > 0:
		d.FileName = segments[len(segments)-1]
	}
	return d
}
