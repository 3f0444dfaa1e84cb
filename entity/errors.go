package entity

import "errors"

var (
	ErrNoGeometry          = errors.New("road has no geometry")
	ErrRoadNotFound        = errors.New("road not found")
	ErrJunctionNotFound    = errors.New("junction not found")
	ErrLaneNotFound        = errors.New("lane not found")
	ErrLaneSectionNotFound = errors.New("lane section not found")
	ErrDegenerateGeometry  = errors.New("geometry length must be positive")
	ErrDuplicateID         = errors.New("duplicate id")
	ErrLaneSideMismatch    = errors.New("lane id sign does not match lane side")
	ErrNonContiguousLaneID = errors.New("lane ids are not contiguous")
	ErrNoConnection        = errors.New("no junction connection for road")
)
