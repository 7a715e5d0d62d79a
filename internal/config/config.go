package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	ReceiptAPI ReceiptAPIConfig
	Printer    PrinterConfig
	Document   DocumentConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
}

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	Debug    bool
	Locale   string
	Timezone string
}

// ReceiptAPIConfig addresses the spreadsheet-backed receipt store.
type ReceiptAPIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type PrinterConfig struct {
	Type      string
	USBPath   string
	Address   string
	CharWidth int
	CodePage  int // ESC t table for Thai text; 0 leaves the printer default
}

type DocumentConfig struct {
	FontPath             string
	BarcodeScale         int
	BarcodeSecurityLevel int
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type LogConfig struct {
	Level string
}

// Load reads .env from the working directory and the environment.
func Load() *Config {
	return LoadFrom(".env")
}

// LoadFrom reads envFile (if present) and the environment. Environment
// variables win over the file.
func LoadFrom(envFile string) *Config {
	v := viper.New()
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			log.Printf("Warning: %s not read, using environment variables: %v", envFile, err)
		}
	}

	// Set defaults
	v.SetDefault("APP_NAME", "receipt-viewer")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_LOCALE", "th")
	v.SetDefault("APP_TIMEZONE", "Asia/Bangkok")
	v.SetDefault("RECEIPT_API_BASE_URL", "")
	v.SetDefault("RECEIPT_API_TOKEN", "")
	v.SetDefault("RECEIPT_API_TIMEOUT_SECONDS", 15)
	v.SetDefault("PRINTER_TYPE", "none")
	v.SetDefault("PRINTER_USB_PATH", "")
	v.SetDefault("PRINTER_ADDRESS", "")
	v.SetDefault("PRINTER_CHAR_WIDTH", 32)
	v.SetDefault("PRINTER_CODE_PAGE", 0)
	v.SetDefault("PDF_FONT_PATH", "")
	v.SetDefault("BARCODE_SCALE", 2)
	v.SetDefault("BARCODE_SECURITY_LEVEL", 2)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_METHODS", []string{})
	v.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	v.SetDefault("RATE_LIMIT_REQUESTS", 60)
	v.SetDefault("RATE_LIMIT_DURATION", 60)
	v.SetDefault("LOG_LEVEL", "info")

	return &Config{
		App: AppConfig{
			Name:     v.GetString("APP_NAME"),
			Env:      v.GetString("APP_ENV"),
			Port:     v.GetString("APP_PORT"),
			Debug:    v.GetBool("APP_DEBUG"),
			Locale:   v.GetString("APP_LOCALE"),
			Timezone: v.GetString("APP_TIMEZONE"),
		},
		ReceiptAPI: ReceiptAPIConfig{
			BaseURL: v.GetString("RECEIPT_API_BASE_URL"),
			Token:   v.GetString("RECEIPT_API_TOKEN"),
			Timeout: time.Duration(v.GetInt("RECEIPT_API_TIMEOUT_SECONDS")) * time.Second,
		},
		Printer: PrinterConfig{
			Type:      v.GetString("PRINTER_TYPE"),
			USBPath:   v.GetString("PRINTER_USB_PATH"),
			Address:   v.GetString("PRINTER_ADDRESS"),
			CharWidth: v.GetInt("PRINTER_CHAR_WIDTH"),
			CodePage:  v.GetInt("PRINTER_CODE_PAGE"),
		},
		Document: DocumentConfig{
			FontPath:             v.GetString("PDF_FONT_PATH"),
			BarcodeScale:         v.GetInt("BARCODE_SCALE"),
			BarcodeSecurityLevel: v.GetInt("BARCODE_SECURITY_LEVEL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: stringList(v, "CORS_ALLOWED_ORIGINS"),
			AllowedMethods: stringList(v, "CORS_ALLOWED_METHODS"),
			AllowedHeaders: stringList(v, "CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}
}

// stringList reads a comma or space separated list.
func stringList(v *viper.Viper, key string) []string {
	var out []string
	for _, s := range v.GetStringSlice(key) {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
