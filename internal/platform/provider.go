package platform

import (
	"errors"
	"runtime"
)

// Provider bundles the host backends for a device.
type Provider struct {
	Host    Host
	Watcher EventSource
	Devices DeviceLister
}

// ErrUnsupported is returned when no backend has been registered.
var ErrUnsupported = errors.New("no host backend registered for " + runtime.GOOS + "/" + runtime.GOARCH + "; build with the adb backend")

// NewProviderFunc is set by backend packages via init().
// See internal/platform/adb/init.go for the adb registration.
var NewProviderFunc func(opts ProviderOptions) (*Provider, error)

// NewProvider returns a Provider for the configured backend.
func NewProvider(opts ProviderOptions) (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc(opts)
}
