package tablestore

import (
	"fmt"
	"time"
)

// #region key
// Key identifies one persisted table: the fingerprint of the configuration
// that produced it and the purpose name, e.g. "dEdx" or "dNdx_1".
type Key struct {
	Fingerprint uint64
	Name        string
}

// Hex returns the fingerprint as stored in the database.
func (k Key) Hex() string {
	return fmt.Sprintf("%016x", k.Fingerprint)
}

func (k Key) String() string {
	return k.Hex() + "/" + k.Name
}
// #endregion key

// #region table-record
// TableRecord describes a persisted table without its node values.
type TableRecord struct {
	Key       Key
	Dims      int
	Nodes     int
	BuildID   string
	CreatedAt time.Time
}
// #endregion table-record
