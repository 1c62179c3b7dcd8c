// Package innkeeper provides the public API for embedding the innkeeper server.
// This is the stable API for external consumers.
package innkeeper

import (
	"github.com/tjfontaine/innkeeper/internal/runtime"
)

// App is a fully wired innkeeper server.
// See internal/runtime.App for full documentation.
type App = runtime.App

// Option is a functional option for configuring an App.
type Option = runtime.Option

// New creates a new App with the given options.
// Example:
//
//	app, err := innkeeper.New(
//	    innkeeper.WithConfigFile("config.yaml"),
//	)
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx, 10*time.Second)
var New = runtime.New

// RegisterProviders registers the built-in chat model providers. Call it before New
// when the config enables the assistant.
var RegisterProviders = runtime.RegisterProviders

// Configuration options
var (
	WithConfigFile = runtime.WithConfigFile
	WithConfig     = runtime.WithConfig

	WithStore     = runtime.WithStore
	WithChatModel = runtime.WithChatModel

	WithLogger      = runtime.WithLogger
	WithLogLevel    = runtime.WithLogLevel
	WithTraceWriter = runtime.WithTraceWriter
)
