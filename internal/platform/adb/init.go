package adb

import "github.com/mj1618/luckydog/internal/platform"

func init() {
	platform.NewProviderFunc = func(opts platform.ProviderOptions) (*platform.Provider, error) {
		run := ExecRunner{Path: opts.ADBPath}
		client := NewClient(run, opts.Serial)
		return &platform.Provider{
			Host:    NewHost(client),
			Watcher: NewWatcher(client, opts.TargetPackage, opts.WatchInterval),
			Devices: Devices{run: run},
		}, nil
	}
}
