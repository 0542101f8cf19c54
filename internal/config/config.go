package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// StorageBackend selects which blob-storage implementation handles uploads.
type StorageBackend string

const (
	BackendCloudinary StorageBackend = "cloudinary"
	BackendGraphDrive StorageBackend = "graphdrive"
	BackendShopify    StorageBackend = "shopify"
)

// RecordMode selects the write-back shape used by the proof recorder.
type RecordMode string

const (
	RecordComment   RecordMode = "comment"
	RecordMetafield RecordMode = "metafield"
)

// CommentFormat selects how comment bodies are rendered.
type CommentFormat string

const (
	CommentHTML CommentFormat = "html"
	CommentText CommentFormat = "text"
)

// CommentEncoding selects the content type of the comment write call.
type CommentEncoding string

const (
	EncodingJSON CommentEncoding = "json"
	EncodingForm CommentEncoding = "form"
)

// LookupKey selects which platform identifier order lookups use. The two
// keys are not interchangeable on the platform side; a deployment must pick
// one and stick with it.
type LookupKey string

const (
	LookupByNumber LookupKey = "number"
	LookupByName   LookupKey = "name"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress       string
	AllowedOrigin    string
	MaxBodyBytes     int64
	ShutdownTimeout  time.Duration
	UpstreamTimeout  time.Duration
	RequireSignature bool

	ShopifyDomain     string
	ShopifyToken      string
	ShopifyAPIVersion string
	OrderLookupKey    LookupKey

	StorageBackend      StorageBackend
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	GraphTenantID       string
	GraphClientID       string
	GraphClientSecret   string
	GraphDriveFolder    string
	TokenCacheTTL       time.Duration

	RecordMode         RecordMode
	CommentFormat      CommentFormat
	CommentEncoding    CommentEncoding
	MetafieldNamespace string

	DatabaseURI string
}

const (
	defaultRunAddress         = ":8080"
	defaultAPIVersion         = "2024-01"
	defaultMaxBodyBytes       = 10 << 20
	defaultShutdownTimeout    = 10 * time.Second
	defaultUpstreamTimeout    = 30 * time.Second
	defaultTokenCacheTTL      = 5 * time.Minute
	defaultMetafieldNamespace = "delivery"
	defaultDriveFolder        = "DeliveryProofs"
)

// Load parses configuration from flags and environment variables. A local
// .env file is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:       getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		AllowedOrigin:    getString(lookup, "ALLOWED_ORIGIN", ""),
		MaxBodyBytes:     getInt64(lookup, "MAX_BODY_BYTES", defaultMaxBodyBytes),
		ShutdownTimeout:  getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		UpstreamTimeout:  getDuration(lookup, "UPSTREAM_TIMEOUT", defaultUpstreamTimeout),
		RequireSignature: getBool(lookup, "REQUIRE_SIGNATURE", true),

		ShopifyDomain:     getString(lookup, "SHOPIFY_DOMAIN", ""),
		ShopifyToken:      getString(lookup, "SHOPIFY_ADMIN_TOKEN", ""),
		ShopifyAPIVersion: getString(lookup, "SHOPIFY_API_VERSION", defaultAPIVersion),
		OrderLookupKey:    LookupKey(getString(lookup, "ORDER_LOOKUP_KEY", string(LookupByNumber))),

		StorageBackend:      StorageBackend(getString(lookup, "STORAGE_BACKEND", string(BackendCloudinary))),
		CloudinaryCloudName: getString(lookup, "CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getString(lookup, "CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getString(lookup, "CLOUDINARY_API_SECRET", ""),
		GraphTenantID:       getString(lookup, "GRAPH_TENANT_ID", ""),
		GraphClientID:       getString(lookup, "GRAPH_CLIENT_ID", ""),
		GraphClientSecret:   getString(lookup, "GRAPH_CLIENT_SECRET", ""),
		GraphDriveFolder:    getString(lookup, "GRAPH_DRIVE_FOLDER", defaultDriveFolder),
		TokenCacheTTL:       getDuration(lookup, "TOKEN_CACHE_TTL", defaultTokenCacheTTL),

		RecordMode:         RecordMode(getString(lookup, "RECORD_MODE", string(RecordComment))),
		CommentFormat:      CommentFormat(getString(lookup, "COMMENT_FORMAT", string(CommentHTML))),
		CommentEncoding:    CommentEncoding(getString(lookup, "COMMENT_CONTENT_TYPE", string(EncodingJSON))),
		MetafieldNamespace: getString(lookup, "METAFIELD_NAMESPACE", defaultMetafieldNamespace),

		DatabaseURI: getString(lookup, "DATABASE_URI", ""),
	}

	fs := flag.NewFlagSet("podproof", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		upstreamTimeoutStr = cfg.UpstreamTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.AllowedOrigin, "origin", cfg.AllowedOrigin, "Allowed CORS origin")
	fs.StringVar(&cfg.ShopifyDomain, "shop", cfg.ShopifyDomain, "Shopify shop domain")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN for the audit journal")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&upstreamTimeoutStr, "upstream-timeout", upstreamTimeoutStr, "Per-call timeout for upstream APIs")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.UpstreamTimeout, err = time.ParseDuration(upstreamTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid upstream timeout: %w", err)
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = defaultUpstreamTimeout
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}

	if cfg.TokenCacheTTL < 0 {
		cfg.TokenCacheTTL = 0
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.ShopifyDomain == "" {
		return fmt.Errorf("shopify domain must be provided")
	}
	if c.ShopifyToken == "" {
		return fmt.Errorf("shopify admin token must be provided")
	}

	switch c.OrderLookupKey {
	case LookupByNumber, LookupByName:
	default:
		return fmt.Errorf("unknown order lookup key %q", c.OrderLookupKey)
	}

	switch c.StorageBackend {
	case BackendCloudinary:
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			return fmt.Errorf("cloudinary backend requires cloud name, api key and api secret")
		}
	case BackendGraphDrive:
		if c.GraphTenantID == "" || c.GraphClientID == "" || c.GraphClientSecret == "" {
			return fmt.Errorf("graphdrive backend requires tenant id, client id and client secret")
		}
	case BackendShopify:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	switch c.RecordMode {
	case RecordComment:
		switch c.CommentFormat {
		case CommentHTML, CommentText:
		default:
			return fmt.Errorf("unknown comment format %q", c.CommentFormat)
		}
		switch c.CommentEncoding {
		case EncodingJSON, EncodingForm:
		default:
			return fmt.Errorf("unknown comment content type %q", c.CommentEncoding)
		}
	case RecordMetafield:
		if c.MetafieldNamespace == "" {
			return fmt.Errorf("metafield namespace must be provided")
		}
	default:
		return fmt.Errorf("unknown record mode %q", c.RecordMode)
	}

	return nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt64(lookup envLookup, key string, def int64) int64 {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
