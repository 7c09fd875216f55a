package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TIFFIN_APP_ENV", "dev")
	t.Setenv("TIFFIN_SHOPIFY_DOMAIN", "shop.example.com")
	t.Setenv("TIFFIN_SHOPIFY_STOREFRONT_TOKEN", "public-token")
	t.Setenv("TIFFIN_SHOPIFY_ADMIN_URL", "https://shop.example.com/admin/api/2024-07/graphql.json")
	t.Setenv("TIFFIN_SHOPIFY_ADMIN_TOKEN", "admin-token")
	t.Setenv("TIFFIN_MULTIPASS_SECRET", "shhh")
	t.Setenv("TIFFIN_CHECKOUT_MAIN_PRODUCT_ID", "gid://shopify/Product/1")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Port != "8080" {
		t.Fatalf("unexpected port %s", cfg.App.Port)
	}
	if cfg.Uploads.PollInterval != 3*time.Second {
		t.Fatalf("unexpected poll interval %s", cfg.Uploads.PollInterval)
	}
	if cfg.Uploads.MaxAttempts != 10 {
		t.Fatalf("unexpected max attempts %d", cfg.Uploads.MaxAttempts)
	}
	if cfg.Checkout.Discount != "10" {
		t.Fatalf("unexpected discount %s", cfg.Checkout.Discount)
	}
	if !cfg.App.IsDev() {
		t.Fatal("expected dev environment")
	}
}

func TestStorefrontURL(t *testing.T) {
	cfg := ShopifyConfig{Domain: "shop.example.com", APIVersion: "2024-07"}
	want := "https://shop.example.com/api/2024-07/graphql.json"
	if got := cfg.StorefrontURL(); got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestLoadRejectsDomainWithPath(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TIFFIN_SHOPIFY_DOMAIN", "shop.example.com/api")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for domain with path")
	}
}
