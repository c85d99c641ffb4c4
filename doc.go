// Package datasvc provides a typed client for a remote document and
// metadata service exposing /self, /config, /props, /list, and /write
// endpoints under a single root URL.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := datasvc.Build("https://data.internal.example.com",
//		datasvc.WithHeader("Authorization", "Bearer "+token),
//		datasvc.WithTimeout(10*time.Second),
//	)
//
// The root URL is validated at build time; a malformed root never
// reaches the network. Caller-supplied headers are merged verbatim into
// every outgoing request: they are added, never replaced, so a
// Content-Type default rides alongside the multipart Content-Type that
// [Client.WriteFolder] sets.
//
// # Endpoint Operations
//
// Each operation takes a [context.Context] and issues exactly one
// request: [Client.Self], [Client.Config], [Client.Props],
// [Client.FolderProps], [Client.FileList], [Client.WriteFolder], and
// [Client.UserFolder]. All of them decode the response into a typed
// value and are safe to call concurrently.
//
// [Client.PropsAndStatus] is the escape hatch for callers that want to
// branch on the response themselves: it returns the literal body text
// together with the status code and does not treat a non-2xx status as
// an error.
//
// # Streaming Listings
//
// [Client.StreamFileList] consumes the same endpoint as
// [Client.FileList] but decodes the JSON array one element at a time,
// so large listings are never buffered in full:
//
//	s, err := c.StreamFileList(ctx, "docs/reports")
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//	for s.Next() {
//		process(s.Item())
//	}
//	if err := s.Err(); err != nil {
//		return err
//	}
//
// # Errors
//
// Any response outside the 2xx class becomes an
// [*UnexpectedStatusError] carrying the target URI, the status code,
// and the full error body. A 2xx body that does not match the expected
// shape becomes a [*DecodeError] carrying the raw text and the cause.
// Both wrap sentinel errors, so callers branch with [errors.Is] and
// [errors.As]. [Client.UserFolder] is the one soft operation: it folds
// every failure into a [*UserFolderError] so hosts can fall back to a
// default folder without interrupting their control flow.
package datasvc
