package main

import (
	"os"

	"github.com/birthdayreminder/birthdayreminder/internal/app"
	log "github.com/sirupsen/logrus"
)

const defaultConfigFile = "./config/application.yaml"

func init() {
	if os.Getenv("LOG_FORMAT") == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	log.SetLevel(log.InfoLevel)
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			log.Warnf("ignoring LOG_LEVEL %q: %v", level, err)
			return
		}
		log.SetLevel(parsed)
	}
}

func main() {
	configFile := os.Getenv("BIRTHDAYS_CONFIG_FILE")
	if configFile == "" {
		configFile = defaultConfigFile
	}

	application, err := app.NewApplication(configFile)
	if err != nil {
		log.Fatalf("failed to initialize birthday reminder: %v", err)
	}
	if err := application.Run(); err != nil {
		log.Fatal(err)
	}
	log.Info("birthday reminder stopped")
}
