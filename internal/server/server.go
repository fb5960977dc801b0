package server

import (
	"github.com/handoff-labs/handoff/internal/config"
	"github.com/handoff-labs/handoff/internal/store"
	"github.com/hashicorp/go-hclog"
)

// Server contains the server configuration. It is constructed once at startup
// and passed into every request handler; handlers hold no state of their own.
type Server struct {
	// Config is the config for the server.
	Config *config.Config

	// Store is the document store holding all service state.
	Store store.Store

	// Logger is the logger for the server.
	Logger hclog.Logger
}
