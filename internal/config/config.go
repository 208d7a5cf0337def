package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/merchkit/storefront/pkg/logger"
	"github.com/spf13/viper"
)

func MustInit() {
	if err := godotenv.Load("./.env"); err != nil {
		panic("error while loading .env file: " + err.Error())
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/storefront")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}
	setDefaults()
	SetupLogger()
}

func setDefaults() {
	viper.SetDefault("orders.max_quantity", 1000)
	viper.SetDefault("pagination.default_limit", 20)
	viper.SetDefault("pagination.max_limit", 100)
	viper.SetDefault("notifier.marker_ttl_hours", 72)
}

func SetupLogger() {
	handler := logger.NewHandler(nil)
	log := slog.New(handler)
	slog.SetDefault(log)
}
