//go:build !js

package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// System stores items in the desktop clipboard as tagged base64 text, one
// line per format.
type System struct{}

func (System) Write(items ...Item) error {
	if err := clipboard.WriteAll(encode(items)); err != nil {
		return fmt.Errorf("write system clipboard: %w", err)
	}
	return nil
}

func (System) Read(format string) ([]byte, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read system clipboard: %w", err)
	}
	return decode(text, format)
}
