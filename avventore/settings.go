package main

import (
	_ "embed"

	"github.com/taldoflemis/fornello/dispensa"
)

//go:embed base.yaml
var baseConfig []byte

type ClientSettings struct {
	BaseURL          string `mapstructure:"base-url" validate:"required,url"`
	TimeoutInSeconds int    `mapstructure:"timeout-in-seconds" validate:"required,min=1"`
}

type Settings struct {
	App    dispensa.AppSettings `mapstructure:"app" validate:"required"`
	Client ClientSettings       `mapstructure:"client" validate:"required"`
}

func LoadConfig() (*Settings, error) {
	return dispensa.LoadConfig[Settings]("AVVENTORE", baseConfig)
}
