package model

// Layer identifies a data-availability source.
type Layer string

var (
	Celestia Layer = "celestia"
	EigenDA  Layer = "eigenda"
)
