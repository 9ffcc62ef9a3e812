package hpack

// staticTable is the fixed 61-entry table defined by RFC 7541 Appendix A.
// Index 0 of this slice corresponds to HPACK static index 1.
var staticTable = [61][2]string{
	{":authority", ""},
	{":method", "GET"},
	{":method", "POST"},
	{":path", "/"},
	{":path", "/index.html"},
	{":scheme", "http"},
	{":scheme", "https"},
	{":status", "200"},
	{":status", "204"},
	{":status", "206"},
	{":status", "304"},
	{":status", "400"},
	{":status", "404"},
	{":status", "500"},
	{"accept-charset", ""},
	{"accept-encoding", "gzip, deflate"},
	{"accept-language", ""},
	{"accept-ranges", ""},
	{"accept", ""},
	{"access-control-allow-origin", ""},
	{"age", ""},
	{"allow", ""},
	{"authorization", ""},
	{"cache-control", ""},
	{"content-disposition", ""},
	{"content-encoding", ""},
	{"content-language", ""},
	{"content-length", ""},
	{"content-location", ""},
	{"content-range", ""},
	{"content-type", ""},
	{"cookie", ""},
	{"date", ""},
	{"etag", ""},
	{"expect", ""},
	{"expires", ""},
	{"from", ""},
	{"host", ""},
	{"if-match", ""},
	{"if-modified-since", ""},
	{"if-none-match", ""},
	{"if-range", ""},
	{"if-unmodified-since", ""},
	{"last-modified", ""},
	{"link", ""},
	{"location", ""},
	{"max-forwards", ""},
	{"proxy-authenticate", ""},
	{"proxy-authorization", ""},
	{"range", ""},
	{"referer", ""},
	{"refresh", ""},
	{"retry-after", ""},
	{"server", ""},
	{"set-cookie", ""},
	{"strict-transport-security", ""},
	{"transfer-encoding", ""},
	{"user-agent", ""},
	{"vary", ""},
	{"via", ""},
	{"www-authenticate", ""},
}

// staticTableSize is the number of entries in the static table (61).
const staticTableSize = len(staticTable)

// lookupStatic returns the name/value of static index idx (1-based). ok is
// false if idx is out of the static range.
func lookupStatic(idx uint64) (name, value string, ok bool) {
	if idx < 1 || int(idx) > staticTableSize {
		return "", "", false
	}
	e := staticTable[idx-1]
	return e[0], e[1], true
}

// findStatic returns the smallest static index whose name matches, and
// whether a full (name, value) match was also found at some index.
func findStatic(name, value []byte) (nameIdx uint64, fullIdx uint64, hasFull bool) {
	for i, e := range staticTable {
		if e[0] != string(name) {
			continue
		}
		if nameIdx == 0 {
			nameIdx = uint64(i + 1)
		}
		if e[1] == string(value) {
			return nameIdx, uint64(i + 1), true
		}
	}
	return nameIdx, 0, false
}
