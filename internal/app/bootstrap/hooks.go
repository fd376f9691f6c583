package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks wires this app into the WAFFLE lifecycle. app.Run calls each
// function in order, from configuration loading through DB setup, one-time
// startup work, HTTP handler construction, and graceful shutdown.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "knowithub",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}
