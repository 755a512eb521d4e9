package crossstitch

import "errors"

var (
	ErrInvalidColorCount = errors.New("crossstitch: color count must be positive")
	ErrEmptyImage        = errors.New("crossstitch: empty image")
	ErrEmptyPalette      = errors.New("crossstitch: empty palette")
	ErrPixelCount        = errors.New("crossstitch: pixel count does not match image size")
	ErrUnknownAlgorithm  = errors.New("crossstitch: unknown algorithm")
)
