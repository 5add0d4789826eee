package common

import (
	"errors"
)

var (
	ErrNodeOutOfRange        = errors.New("node index out of range")
	ErrInconsistentHierarchy = errors.New("parent and children links disagree")
	ErrCyclicHierarchy       = errors.New("hierarchy contains a cycle")
	ErrSelfParent            = errors.New("entity cannot be its own parent")
	ErrJointMismatch         = errors.New("skin joints and inverse bind matrices disagree")
	ErrChannelLayout         = errors.New("channel value count does not match its interpolation layout")
	ErrChannelTimes          = errors.New("channel keyframe times are not ascending")
	ErrClipOutOfRange        = errors.New("animation clip index out of range")
	ErrInstanceOutOfRange    = errors.New("animator instance index out of range")
	ErrUnknownEntity         = errors.New("unknown entity")
	ErrUnknownLabel          = errors.New("unknown entity label")
)
