package bundle

import (
	"strings"

	"github.com/0Z3/libose/oseerr"
)

// Match compares the top two single-item string messages for byte
// equality, pushing an int32 0/1 flag.
func Match(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "match"); err != nil {
		return err
	}

	n := len(elems)

	am, err := parseMessage(elems[n-2])
	if err != nil {
		return err
	}

	bm, err := parseMessage(elems[n-1])
	if err != nil {
		return err
	}

	as, _, err := stringPayload(am)
	if err != nil {
		return err
	}

	bs, _, err := stringPayload(bm)
	if err != nil {
		return err
	}

	flag := int32(0)
	if as == bs {
		flag = 1
	}

	return h.rewrite(append(elems, buildMessage("", "i", int32Payload(flag))))
}

// globMatch evaluates an OSC-style glob pattern (?, *, [ranges], {alts}, /
// path separator) against an address string.
func globMatch(pattern, addr string) (addrComplete, patComplete bool) {
	return globMatchRec(pattern, addr)
}

func globMatchRec(p, s string) (bool, bool) {
	for len(p) > 0 {
		switch p[0] {
		case '*':
			// Try every suffix of s; stop at the next '/' since * does not
			// cross path separators.
			seg := s
			if idx := strings.IndexByte(s, '/'); idx >= 0 {
				seg = s[:idx]
			}

			for i := 0; i <= len(seg); i++ {
				if ok, pc := globMatchRec(p[1:], s[i:]); ok {
					return true, pc
				}
			}

			return false, false
		case '?':
			if len(s) == 0 || s[0] == '/' {
				return false, false
			}

			p, s = p[1:], s[1:]
		case '[':
			end := strings.IndexByte(p, ']')
			if end < 0 || len(s) == 0 {
				return false, false
			}

			if !matchClass(p[1:end], s[0]) {
				return false, false
			}

			p, s = p[end+1:], s[1:]
		case '{':
			end := strings.IndexByte(p, '}')
			if end < 0 {
				return false, false
			}

			for _, alt := range strings.Split(p[1:end], ",") {
				if strings.HasPrefix(s, alt) {
					if ok, pc := globMatchRec(p[end+1:], s[len(alt):]); ok {
						return true, pc
					}
				}
			}

			return false, false
		default:
			if len(s) == 0 || s[0] != p[0] {
				return false, false
			}

			p, s = p[1:], s[1:]
		}
	}

	return len(s) == 0, true
}

func matchClass(class string, c byte) bool {
	neg := false
	if strings.HasPrefix(class, "!") {
		neg = true
		class = class[1:]
	}

	matched := false

	for i := 0; i < len(class); i++ {
		if i+2 < len(class) && class[i+1] == '-' {
			if class[i] <= c && c <= class[i+2] {
				matched = true
			}

			i += 2
		} else if class[i] == c {
			matched = true
		}
	}

	if neg {
		return !matched
	}

	return matched
}

// PMatch pops a pattern string and an address string (top two) and pushes
// two int32 flags: address-complete and pattern-complete.
func PMatch(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "pmatch"); err != nil {
		return err
	}

	n := len(elems)

	addrMsg, err := parseMessage(elems[n-2])
	if err != nil {
		return err
	}

	patMsg, err := parseMessage(elems[n-1])
	if err != nil {
		return err
	}

	addr, _, err := stringPayload(addrMsg)
	if err != nil {
		return err
	}

	pat, _, err := stringPayload(patMsg)
	if err != nil {
		return err
	}

	ac, pc := globMatch(pat, addr)

	acv, pcv := int32(0), int32(0)
	if ac {
		acv = 1
	}

	if pc {
		pcv = 1
	}

	out := append(elems[:n-2:n-2],
		buildMessage("", "i", int32Payload(acv)),
		buildMessage("", "i", int32Payload(pcv)),
	)

	return h.rewrite(out)
}

func stripPrefix(addr, pattern string) string {
	// The "matched prefix" is the pattern up to its last literal '/'
	// segment boundary that fully matched; approximate by trimming the
	// longest directory prefix of pattern (up to the final glob token)
	// from addr.
	cut := strings.LastIndexByte(pattern, '/')
	if cut <= 0 {
		return addr
	}

	prefix := pattern[:cut]
	if globHasMeta(prefix) {
		return addr
	}

	if strings.HasPrefix(addr, prefix) {
		rest := addr[len(prefix):]
		if rest == "" {
			return "/"
		}

		return rest
	}

	return addr
}

func globHasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// Route takes a bundle (second from top) and a pattern-carrying message
// (top) and produces a bundle of the elements whose addresses match the
// pattern, each with the matched prefix stripped.
func Route(h *Handle) error {
	return routeImpl(h, true, false)
}

// RouteWithDelegation is Route but additionally pushes a final bundle of
// the non-matching elements, prefixes intact.
func RouteWithDelegation(h *Handle) error {
	return routeImpl(h, true, true)
}

// Gather is Route without stripping the matched prefix.
func Gather(h *Handle) error {
	return routeImpl(h, false, false)
}

func routeImpl(h *Handle, strip, delegate bool) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "route"); err != nil {
		return err
	}

	n := len(elems)
	patMsg, err := parseMessage(elems[n-1])
	if err != nil {
		return err
	}

	pattern, _, err := stringPayload(patMsg)
	if err != nil {
		return err
	}

	src := elems[n-2]
	if !isBundleElem(src) {
		return oseerr.New(oseerr.ElemType, "route")
	}

	inner, err := AsHandle(append([]byte(nil), src...)).elements()
	if err != nil {
		return err
	}

	var matched, rest [][]byte

	for _, e := range inner {
		addr := "#bundle"
		isMsg := !isBundleElem(e)

		if isMsg {
			m, err := parseMessage(e)
			if err != nil {
				return err
			}

			addr = m.Address
		}

		ac, _ := globMatch(pattern, addr)
		if ac {
			if strip && isMsg {
				m, _ := parseMessage(e)
				matched = append(matched, buildMessage(stripPrefix(addr, pattern), m.TypeTags, m.Payload))
			} else {
				matched = append(matched, e)
			}
		} else {
			rest = append(rest, e)
		}
	}

	out := append(elems[:n-2:n-2], wrapBundle(matched))
	if delegate {
		out = append(out, wrapBundle(rest))
	}

	return h.rewrite(out)
}

// Nth selects elements by ordinal index: the top message carries one or
// more int32 indices, and the bundle below it is indexed, pushing a new
// bundle of the selected elements.
func Nth(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "nth"); err != nil {
		return err
	}

	n := len(elems)

	idxMsg, err := parseMessage(elems[n-1])
	if err != nil {
		return err
	}

	for _, t := range idxMsg.TypeTags {
		if t != 'i' {
			return oseerr.New(oseerr.ItemType, "nth")
		}
	}

	src := elems[n-2]
	if !isBundleElem(src) {
		return oseerr.New(oseerr.ElemType, "nth")
	}

	inner, err := AsHandle(append([]byte(nil), src...)).elements()
	if err != nil {
		return err
	}

	offs, widths, err := itemOffsets(idxMsg.Payload, idxMsg.TypeTags)
	if err != nil {
		return err
	}

	var selected [][]byte

	for i := range idxMsg.TypeTags {
		idx, err := readInt32At(idxMsg.Payload, offs[i])
		if err != nil {
			return err
		}

		_ = widths[i]

		if idx < 0 || int(idx) >= len(inner) {
			return oseerr.New(oseerr.Range, "nth")
		}

		selected = append(selected, inner[idx])
	}

	return h.rewrite(append(elems[:n-2:n-2], wrapBundle(selected)))
}
