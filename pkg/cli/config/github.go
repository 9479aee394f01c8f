package config

import "github.com/urfave/cli/v3"

// GitHub holds GitHub configuration
type GitHub struct {
	Token         string
	WebhookSecret string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub personal access token",
			Required:    true,
			Destination: &c.Token,
			Sources:     cli.EnvVars("QUILL_GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook shared secret (signature verification is skipped when empty)",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("QUILL_GITHUB_WEBHOOK_SECRET"),
		},
	}
}
