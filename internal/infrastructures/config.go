package infrastructures

import (
	"os"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	PORT         string
	DATABASE_URL string

	REDIS_ADDRESS  string
	REDIS_PASSWORD string

	PESAPAL_BASE_URL         string
	PESAPAL_CONSUMER_KEY     string
	PESAPAL_CONSUMER_SECRET  string
	PESAPAL_IPN_ID           string
	PESAPAL_SUCCESS_STATUSES string
	CALLBACK_BASE_URL        string
	ALLOW_IPN_REGISTER       string

	SLACK_WEBHOOK_URL string
	ALERT_EMAIL       string
	RESEND_API_KEY    string
	EMAIL_FROM        string
	SMS_API_URL       string
	SMS_API_KEY       string
	SMS_USERNAME      string

	MIKROTIK_ADDRESS      string
	MIKROTIK_API_USER     string
	MIKROTIK_API_PASSWORD string

	ADMIN_API_KEY string
}

var Config *AppConfig

func LoadConfig() *AppConfig {
	godotenv.Load()

	Config = &AppConfig{
		PORT:         getEnv("PORT", "8080"),
		DATABASE_URL: os.Getenv("DATABASE_URL"),

		REDIS_ADDRESS:  os.Getenv("REDIS_ADDRESS"),
		REDIS_PASSWORD: os.Getenv("REDIS_PASSWORD"),

		PESAPAL_BASE_URL:         getEnv("PESAPAL_BASE_URL", "https://pay.pesapal.com/v3/api"),
		PESAPAL_CONSUMER_KEY:     os.Getenv("PESAPAL_CONSUMER_KEY"),
		PESAPAL_CONSUMER_SECRET:  os.Getenv("PESAPAL_CONSUMER_SECRET"),
		PESAPAL_IPN_ID:           os.Getenv("PESAPAL_IPN_ID"),
		PESAPAL_SUCCESS_STATUSES: getEnv("PESAPAL_SUCCESS_STATUSES", "COMPLETED,SUCCESS,COMPLETE"),
		CALLBACK_BASE_URL:        os.Getenv("CALLBACK_BASE_URL"),
		ALLOW_IPN_REGISTER:       os.Getenv("ALLOW_IPN_REGISTER"),

		SLACK_WEBHOOK_URL: os.Getenv("SLACK_WEBHOOK_URL"),
		ALERT_EMAIL:       os.Getenv("ALERT_EMAIL"),
		RESEND_API_KEY:    os.Getenv("RESEND_API_KEY"),
		EMAIL_FROM:        getEnv("EMAIL_FROM", "noreply@hotspotcentral.com"),
		SMS_API_URL:       getEnv("SMS_API_URL", "https://api.africastalking.com/version1/messaging"),
		SMS_API_KEY:       os.Getenv("SMS_API_KEY"),
		SMS_USERNAME:      getEnv("SMS_USERNAME", "sandbox"),

		MIKROTIK_ADDRESS:      os.Getenv("MIKROTIK_ADDRESS"),
		MIKROTIK_API_USER:     getEnv("MIKROTIK_API_USER", "api-user"),
		MIKROTIK_API_PASSWORD: os.Getenv("MIKROTIK_API_PASSWORD"),

		ADMIN_API_KEY: os.Getenv("ADMIN_API_KEY"),
	}

	return Config
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
