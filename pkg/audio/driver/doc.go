// ABOUTME: Audio driver package defining the backend contract
// ABOUTME: Provides Driver, Mixer, Config, the playback Pump and the Manager
// Package driver defines the contract between a host mixer and the
// backends that push its samples to an output device.
//
// A driver is initialized once with a Config, which configures the device
// and spawns a playback goroutine in the inactive state. Start activates
// it; from then on the goroutine calls the Mixer once per period with the
// driver lock held. Hosts call Lock/Unlock around changes to mixer state
// and Finish on shutdown.
//
// Example:
//
//	mgr := driver.NewManager(nil)
//	mgr.Register("oss", func() driver.Driver { return oss.New() })
//	mgr.Register("null", func() driver.Driver { return null.New() })
//
//	d, err := mgr.Init("oss", driver.Config{Mixer: mixer}.WithDefaults())
//	d.Start()
//	defer d.Finish()
package driver
