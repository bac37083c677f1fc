package main

import (
	"capm/cmd"
	"log"
	"os"
)

func main() {
	cfg, err := cmd.LoadConfig(os.Getenv("CAPM_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}
	apiHandler, err := cmd.InitializeDependencies(cfg)
	if err != nil {
		log.Fatal(err)
	}
	err = apiHandler.StartApi(cfg.Api.Port)
	if err != nil {
		log.Fatal(err)
	}
}
