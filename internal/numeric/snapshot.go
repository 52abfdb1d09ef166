package numeric

// #region snapshot
// Snapshot is the persistable form of an Interpolant.
type Snapshot struct {
	Def    Definition1D `json:"def"`
	Values []float64    `json:"values"`
}

// Snapshot2D is the persistable form of an Interpolant2D.
type Snapshot2D struct {
	Def    Definition2D `json:"def"`
	Values []float64    `json:"values"`
}

// Snapshot exports the table.
func (ip *Interpolant) Snapshot() Snapshot {
	return Snapshot{Def: ip.def, Values: ip.Values()}
}

// Snapshot exports the table.
func (ip *Interpolant2D) Snapshot() Snapshot2D {
	return Snapshot2D{Def: ip.def, Values: ip.Values()}
}

// FromSnapshot rebuilds a table that evaluates identically to the exported one.
func FromSnapshot(s Snapshot) (*Interpolant, error) {
	return NewInterpolant(s.Def, s.Values)
}

// FromSnapshot2D rebuilds a 2D table from its snapshot.
func FromSnapshot2D(s Snapshot2D) (*Interpolant2D, error) {
	return NewInterpolant2D(s.Def, s.Values)
}

// #endregion snapshot
