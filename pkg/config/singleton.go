package config

import "sync"

var (
	globalConfig *Config
	configMutex  sync.RWMutex
	initOnce     sync.Once
)

// Initialize loads configuration from path, with environment overrides
// applied, and installs it as the process-wide config. Only the first
// call loads anything; later calls are no-ops. Components that can take
// a *Config directly should; the singleton exists for the entry point
// and the watcher.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}

		configMutex.Lock()
		globalConfig = cfg
		configMutex.Unlock()
	})

	return initErr
}

// GetConfig returns the installed configuration, or nil before a
// successful Initialize.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig replaces the installed configuration. The watcher calls
// this after a successful reload.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}
