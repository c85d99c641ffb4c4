// Package stream decodes a JSON array carried in an HTTP response body
// one element at a time, so large listings are never buffered in full.
//
// # Consuming a Stream
//
// Wrap a response body with [New] and pull elements with
// [Stream.Next]:
//
//	s := stream.New[record](resp.Body, logger)
//	defer s.Close()
//	for s.Next() {
//		process(s.Item())
//	}
//	if err := s.Err(); err != nil {
//		return err
//	}
//
// Or range over [Stream.All]:
//
//	for rec, err := range s.All() {
//		if err != nil {
//			return err
//		}
//		process(rec)
//	}
//
// A stream is forward-only and cannot be restarted. A malformed
// element stops the sequence with a [*Error] reporting its position;
// elements already yielded remain valid.
//
// Most callers should use the higher-level
// [github.com/perivale/datasvc] package, which wires response bodies
// into streams internally.
package stream
