package scene

import "errors"

var (
	ErrUnknownGenerator = errors.New("scene: unknown scene generator")
)
