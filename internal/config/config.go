package config

import (
	"fmt"
	"time"

	coreconfig "github.com/go-core-fx/config"
)

// Config carries every credential and endpoint the dashboard talks to.
// Values are read once at startup and treated as immutable afterwards.
type Config struct {
	// NetSuite OAuth1 credentials.
	ConsumerKey    string `koanf:"consumer_key"`
	ConsumerSecret string `koanf:"consumer_secret"`
	TokenKey       string `koanf:"token_key"`
	TokenSecret    string `koanf:"token_secret"`
	Realm          string `koanf:"realm"`

	// NetSuite endpoints.
	RestURL    string `koanf:"rest_url"`
	RestletURL string `koanf:"url_restlet"`
	OpenSOURL  string `koanf:"url_open_so"`

	// Saved-search descriptors.
	OpenSOSearchID        string `koanf:"open_so_search_id"`
	SalesLinesSearchID    string `koanf:"sales_lines_search_id"`
	PurchaseLinesSearchID string `koanf:"purchase_lines_search_id"`

	// FedEx.
	FedexID            string `koanf:"fedex_id"`
	FedexSecret        string `koanf:"fedex_secret"`
	FedexAccountNumber string `koanf:"fedex_account_number"`
	FedexBaseURL       string `koanf:"fedex_base_url"`

	// Estes.
	EstesAPIKey   string `koanf:"ESTES_API_KEY"`
	EstesUsername string `koanf:"ESTES_USERNAME"`
	EstesPassword string `koanf:"ESTES_PASSWORD"`
	EstesBaseURL  string `koanf:"estes_base_url"`

	// Shopify admin.
	ShopifyAPIKey      string `koanf:"shopify_api_key"`
	ShopifyAdminAPIKey string `koanf:"shopify_admin_api_key"`
	ShopifyStore       string `koanf:"shopify_store"`

	// Document store.
	MongoConnectionString string `koanf:"mongo_connection_string"`
	MongoDatabase         string `koanf:"mongo_database"`

	// Shipper origin used for every rate quote.
	ShipperStreet     string `koanf:"shipper_street"`
	ShipperCity       string `koanf:"shipper_city"`
	ShipperState      string `koanf:"shipper_state"`
	ShipperPostalCode string `koanf:"shipper_postal_code"`

	// Fallback file for roles/permissions when the document store is unreachable.
	AuthzFile string `koanf:"authz_file"`

	Timeout time.Duration `koanf:"timeout"`
	LogFile string        `koanf:"log_file"`
	Debug   bool          `koanf:"debug"`
}

func New() (Config, error) {
	cfg := Config{
		FedexBaseURL:      "https://apis.fedex.com",
		EstesBaseURL:      "https://cloudapi.estes-express.com",
		MongoDatabase:     "kcsf",
		ShipperStreet:     "1234 Commerce Way",
		ShipperCity:       "Kansas City",
		ShipperState:      "MO",
		ShipperPostalCode: "64101",
		AuthzFile:         "./authz.json",
		Timeout:           45 * time.Second,
		LogFile:           "./kcsf-ops.log",
		Debug:             false,
	}

	if err := coreconfig.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}
