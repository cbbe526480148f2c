package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
)

type Config struct {
	Env     string `yaml:"env" env-default:"local"`
	Account struct {
		ID     string `yaml:"id" env-default:""`
		UserID string `yaml:"user_id" env-default:""`
	} `yaml:"account"`
	API struct {
		BaseURL string `yaml:"base_url" env-default:"http://127.0.0.1:4000"`
		Token   string `yaml:"token" env-default:""`
	} `yaml:"api"`
	Socket struct {
		URL              string `yaml:"url" env-default:"ws://127.0.0.1:4000/socket/websocket"`
		HeartbeatSeconds int    `yaml:"heartbeat_seconds" env-default:"30"`
	} `yaml:"socket"`
	Notify struct {
		ThrottleSeconds int `yaml:"throttle_seconds" env-default:"10"`
	} `yaml:"notify"`
	DevServer struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		BindIP  string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port    string `yaml:"port" env-default:"4000"`
	} `yaml:"dev-server"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
