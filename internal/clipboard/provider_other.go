//go:build !windows && !darwin

package clipboard

import "fmt"

type platformProvider struct{}

func NewPlatformProvider() Provider { return &platformProvider{} }

func (p *platformProvider) GetText() (string, error) {
	return "", fmt.Errorf("clipboard: not supported on this platform")
}

func (p *platformProvider) SetText(text string) error {
	return fmt.Errorf("clipboard: not supported on this platform")
}
