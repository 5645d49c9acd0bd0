//go:build windows

package clipboard

import "fmt"

type platformProvider struct{}

// NewPlatformProvider returns the host-side clipboard provider. The actual
// OpenClipboard/GetClipboardData/SetClipboardData sequence is out of scope
// here (Non-goal — platform syscalls specified by contract only).
func NewPlatformProvider() Provider { return &platformProvider{} }

func (p *platformProvider) GetText() (string, error) {
	return "", fmt.Errorf("clipboard: not supported on this build")
}

func (p *platformProvider) SetText(text string) error {
	return fmt.Errorf("clipboard: not supported on this build")
}
