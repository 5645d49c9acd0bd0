//go:build darwin

package clipboard

import "fmt"

type platformProvider struct{}

// NewPlatformProvider returns the companion-side clipboard provider. The
// actual NSPasteboard calls are out of scope here, same as provider_windows.
func NewPlatformProvider() Provider { return &platformProvider{} }

func (p *platformProvider) GetText() (string, error) {
	return "", fmt.Errorf("clipboard: not supported on this build")
}

func (p *platformProvider) SetText(text string) error {
	return fmt.Errorf("clipboard: not supported on this build")
}
