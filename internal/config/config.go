package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// Storage
	PostgresURL string `envconfig:"POSTGRES_URL" required:"true"`
	RedisAddr   string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	// Network
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Collaborators
	HotelServiceURL      string        `envconfig:"HOTEL_SERVICE_URL" default:"http://localhost:8081"`
	RestaurantServiceURL string        `envconfig:"RESTAURANT_SERVICE_URL" default:"http://localhost:8082"`
	CollaboratorTimeout  time.Duration `envconfig:"COLLABORATOR_TIMEOUT" default:"3s"`
	RegistryCacheTTL     time.Duration `envconfig:"REGISTRY_CACHE_TTL" default:"30s"`

	// Payment gateway simulation
	GatewaySuccessRate float64 `envconfig:"GATEWAY_SUCCESS_RATE" default:"0.95"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
