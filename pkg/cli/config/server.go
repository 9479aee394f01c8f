package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr        string
	CallTimeout time.Duration
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("QUILL_ADDR"),
		},
		&cli.DurationFlag{
			Name:        "call-timeout",
			Usage:       "Deadline applied to each outbound GitHub/Gemini call",
			Value:       60 * time.Second,
			Destination: &c.CallTimeout,
			Sources:     cli.EnvVars("QUILL_CALL_TIMEOUT"),
		},
	}
}
