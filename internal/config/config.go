package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	// Host is the public base URL used to build invite and subscription links.
	Host     string   `koanf:"host"`
	Server   Server   `koanf:"server"`
	Auth     Auth     `koanf:"auth"`
	Smtp     Smtp     `koanf:"smtp"`
	Calendar Calendar `koanf:"calendar"`
	Database Database `koanf:"db"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

type Auth struct {
	JwtSecret string `koanf:"jwtsecret"`
	Issuer    string `koanf:"issuer"`
}

type Smtp struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Pass     string `koanf:"pass"`
	FromName string `koanf:"fromname"`
}

type Calendar struct {
	Name        string `koanf:"name"`
	Description string `koanf:"description"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

func Defaults() Application {
	return Application{
		Host: "http://localhost:3000",
		Server: Server{
			Addr: ":8181",
		},
		Smtp: Smtp{
			Port:     465,
			FromName: "BirthdayReminder",
		},
		Calendar: Calendar{
			Name:        "Birthday Reminders",
			Description: "Live birthday calendar subscription",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "birthdays",
			Pass:   "",
			Name:   "birthdays",
			Schema: "birthdays",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "BIRTHDAYS_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "BIRTHDAYS_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
