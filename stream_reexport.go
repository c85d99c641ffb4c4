package datasvc

import (
	"github.com/perivale/datasvc/stream"
)

// Type aliases re-exporting user-facing types from [stream], so callers
// of [Client.StreamFileList] rarely need to import that package.
type (
	// MetadataStream is a lazy, forward-only stream of [Metadata]
	// elements decoded from a listing response.
	MetadataStream = stream.Stream[Metadata]

	// StreamError reports a malformed stream element and its position.
	StreamError = stream.Error
)

// ErrStreamDecode is the sentinel error wrapped by [StreamError].
var ErrStreamDecode = stream.ErrDecode
