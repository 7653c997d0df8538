package main

import (
	"log"

	"github.com/leadana/crmbot/core/bootstrap"
	"github.com/leadana/crmbot/core/cmd"
	coreconfig "github.com/leadana/crmbot/core/config"
	"github.com/leadana/crmbot/internal/bot"
)

type configCarrier struct {
	cfg *coreconfig.Config
}

func (c configCarrier) CoreConfig() *coreconfig.Config { return c.cfg }

func main() {
	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			cfg, err := coreconfig.Load(path)
			if err != nil {
				return nil, err
			}
			return configCarrier{cfg: cfg}, nil
		},
		Bootstrap: func(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			app, err := bootstrap.Run(bootstrap.Options[*bot.App]{
				Config: carrier.CoreConfig(),
				Build:  bot.New,
			})
			if err != nil {
				return nil, err
			}
			return app, nil
		},
	})
	if err != nil {
		log.Fatalf("crmbot: %v", err)
	}
}
