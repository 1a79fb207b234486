package feasibility

import "errors"

// ErrNoStore is returned when saving is requested without a configured store.
var ErrNoStore = errors.New("no result store configured")
