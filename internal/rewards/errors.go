package rewards

import "errors"

// ErrMissingMetadata is reported for a stream whose reward asset has no
// resolvable decimals/symbol. The stream is excluded from the reward map;
// the map itself still builds.
var ErrMissingMetadata = errors.New("missing coin metadata")

// ErrUnknownReserve is reported for an accrual pointing at a reserve array
// index that is not part of the current refresh snapshot.
var ErrUnknownReserve = errors.New("unknown reserve index")

// ErrUnknownStream is reported for an accrual pointing at a reward index
// with no matching pool reward on the reserve.
var ErrUnknownStream = errors.New("unknown reward stream")
