package http2

import "sort"

// Streams is a connection's open-stream table, kept sorted by id for
// O(log n) lookup without a map's bucket overhead; insert and delete
// binary-search the position and then shift the slice.
//
// Grounded on github.com/dgrr/http2's Streams (streams.go), extended with
// the concurrency cap and monotonic-id enforcement §5.1.1 requires and
// the teacher's version doesn't track at all.
type Streams struct {
	list       []*Stream
	lastClient uint32 // highest client-initiated (odd) stream id seen
	lastServer uint32 // highest server-initiated (even) stream id seen
	openCount  int
}

// Insert adds s to the table, keeping list sorted by id.
func (strms *Streams) Insert(s *Stream) {
	i := sort.Search(len(strms.list), func(i int) bool {
		return strms.list[i].id >= s.id
	})

	strms.list = append(strms.list, nil)
	copy(strms.list[i+1:], strms.list[i:])
	strms.list[i] = s

	if s.id%2 == 1 {
		if s.id > strms.lastClient {
			strms.lastClient = s.id
		}
	} else if s.id > strms.lastServer {
		strms.lastServer = s.id
	}
	strms.openCount++
}

// Del removes and returns the stream with id, or nil if absent.
func (strms *Streams) Del(id uint32) *Stream {
	i := sort.Search(len(strms.list), func(i int) bool {
		return strms.list[i].id >= id
	})

	if i < len(strms.list) && strms.list[i].id == id {
		s := strms.list[i]
		strms.list = append(strms.list[:i], strms.list[i+1:]...)
		strms.openCount--
		return s
	}

	return nil
}

// Get returns the stream with id, or nil if absent.
func (strms *Streams) Get(id uint32) *Stream {
	i := sort.Search(len(strms.list), func(i int) bool {
		return strms.list[i].id >= id
	})
	if i < len(strms.list) && strms.list[i].id == id {
		return strms.list[i]
	}
	return nil
}

// Len returns the number of tracked streams.
func (strms *Streams) Len() int { return len(strms.list) }

// OpenCount returns the number of streams ever inserted minus those
// removed — used against SETTINGS_MAX_CONCURRENT_STREAMS.
func (strms *Streams) OpenCount() int { return strms.openCount }

// IsNewClientID reports whether id is a client-initiated stream id
// (§5.1.1: odd) strictly greater than every client id seen so far, the
// condition required to open a new stream rather than refer to a
// previously-closed or not-yet-valid one.
func (strms *Streams) IsNewClientID(id uint32) bool {
	return id%2 == 1 && id > strms.lastClient
}

// IsNewServerID is IsNewClientID's mirror for server-initiated
// (even) stream ids, used for PUSH_PROMISE.
func (strms *Streams) IsNewServerID(id uint32) bool {
	return id%2 == 0 && id != 0 && id > strms.lastServer
}

// LastClientID returns the highest client-initiated stream id admitted so
// far (0 if none), the id a GOAWAY's last_stream_id should report.
func (strms *Streams) LastClientID() uint32 { return strms.lastClient }
