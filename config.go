package main

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

//Config represents options given in the environment
type Config struct {
	SessionDuration int `default:"24"` //in hours

	SQLDriver string //sqlite or mysql; required
	SQLDSN    string //required
	Seed      bool   //seed the demo catalog into an empty database

	ListenAddr string //addr format used for net.Dial; required
	Prefix     string //url prefix to mount api to without trailing slash

	AdminEmail    string //operator ensured at startup if email and password are set
	AdminPassword string
	AdminName     string `default:"Administrator"`

	AIEndpoint   string `default:"https://api.deepseek.com/v1/chat/completions"`
	AIModel      string `default:"deepseek-chat"`
	AIKey        string
	AITimeout    int `default:"30"` //in seconds
	HistoryLimit int `default:"4"`  //previous messages sent with each turn; 0 sends none

	TranscriptDir string `default:"sessions"` //directory for chat transcripts, or "memory"
	CacheMaxBytes int    `default:"10485760"` //size cap for the memory transcript store

	LogLevel string `default:"info"` //debug, info, warn, or error
}

var config = &Config{}

func checkEmpty(val, name string) {
	if val == "" {
		log.Fatalf("DESK_%s must be configured\n", name)
	}
}

func (c *Config) aiTimeout() time.Duration {
	return time.Duration(c.AITimeout) * time.Second
}

func (c *Config) sessionDuration() time.Duration {
	return time.Duration(c.SessionDuration) * time.Hour
}

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalln("Error reading .env file:", err)
	}

	err := envconfig.Process("DESK", config)
	if err != nil {
		log.Fatalln("Error reading configuration from environment:", err)
	}

	checkEmpty(config.SQLDriver, "SQLDRIVER")
	checkEmpty(config.SQLDSN, "SQLDSN")

	if config.SQLDriver == "mysql" {
		cfg, err := mysql.ParseDSN(config.SQLDSN)
		if err != nil {
			log.Fatalln("Could not parse mysql DSN:", err)
		}
		if !cfg.ParseTime {
			log.Fatalln("mysql DSN must contain \"parseTime=true\"")
		}
	}

	checkEmpty(config.ListenAddr, "LISTENADDR")
}
