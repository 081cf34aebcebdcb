package tree

import "errors"

var (
	// ErrPathNotFound is returned when a path element cannot be resolved.
	ErrPathNotFound = errors.New("path not found")
	// ErrNotADirectory is returned when resolution tries to descend through a leaf.
	ErrNotADirectory = errors.New("not a directory")
	// ErrInvalidArgument is returned for operations the tree cannot express,
	// such as moving the root.
	ErrInvalidArgument = errors.New("invalid argument")
)
