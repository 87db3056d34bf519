package main

import (
	_ "embed"

	"github.com/taldoflemis/fornello/dispensa"
)

//go:embed base.yaml
var baseConfig []byte

type PizzeriaSettings struct {
	// AdminToken is the shared secret privileged calls present in the
	// Authorization header. Override it in any real deployment.
	AdminToken       string   `mapstructure:"admin-token" validate:"required"`
	InitialMenu      []string `mapstructure:"initial-menu" validate:"dive,required"`
	SubjectPrefix    string   `mapstructure:"subject-prefix" validate:"required"`
	EventChannelSize int      `mapstructure:"event-channel-size" validate:"required,min=1"`
}

type Settings struct {
	App           dispensa.AppSettings           `mapstructure:"app" validate:"required"`
	HTTP          dispensa.HTTPSettings          `mapstructure:"http" validate:"required"`
	Pizzeria      PizzeriaSettings               `mapstructure:"pizzeria" validate:"required"`
	Nats          dispensa.NatsSettings          `mapstructure:"nats"`
	OpenTelemetry dispensa.OpenTelemetrySettings `mapstructure:"opentelemetry" validate:"required"`
}

func LoadConfig() (*Settings, error) {
	return dispensa.LoadConfig[Settings]("PIZZERIA", baseConfig)
}
