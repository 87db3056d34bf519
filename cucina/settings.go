package main

import (
	_ "embed"

	"github.com/taldoflemis/fornello/dispensa"
)

//go:embed base.yaml
var baseConfig []byte

type CucinaSettings struct {
	SubjectPrefix            string  `mapstructure:"subject-prefix" validate:"required"`
	EventChannelSize         int     `mapstructure:"event-channel-size" validate:"required,min=1"`
	PrepTimeInSeconds        int     `mapstructure:"prep-time-in-seconds" validate:"required,min=1"`
	PrepVarianceFactor       float64 `mapstructure:"prep-variance-factor" validate:"required,min=1,max=3"`
	ProbabilityOfRefire      float64 `mapstructure:"probability-of-refire" validate:"gte=0,lte=1"`
	RefireFactor             float64 `mapstructure:"refire-factor" validate:"required,gt=1"`
}

type Settings struct {
	App           dispensa.AppSettings           `mapstructure:"app" validate:"required"`
	Cucina        CucinaSettings                 `mapstructure:"cucina" validate:"required"`
	Nats          dispensa.NatsSettings          `mapstructure:"nats" validate:"required"`
	OpenTelemetry dispensa.OpenTelemetrySettings `mapstructure:"opentelemetry" validate:"required"`
}

func LoadConfig() (*Settings, error) {
	return dispensa.LoadConfig[Settings]("CUCINA", baseConfig)
}
