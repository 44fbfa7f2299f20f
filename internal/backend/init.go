// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Backend registration - registers built-in backends with the default registry

package backend

import "context"

func init() {
	RegisterBackends(DefaultRegistry)
}

// RegisterBackends registers all built-in backends with reg
func RegisterBackends(reg *Registry) {
	reg.Register(KindCommand, func(config *Config) (Backend, error) {
		return NewCommandBackend(config)
	})

	reg.Register(KindOllama, func(config *Config) (Backend, error) {
		return NewOllamaBackend(config)
	})

	reg.Register(KindGemini, func(config *Config) (Backend, error) {
		return NewGeminiBackend(context.Background(), config)
	})

	reg.Register(KindReplay, func(config *Config) (Backend, error) {
		return NewReplayBackend(config)
	})
}
