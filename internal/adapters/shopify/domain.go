package shopify

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const shopSuffix = "myshopify.com"

var reShopLabel = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// NormalizeShopDomain lowercases shop and checks that it is a single
// subdomain of myshopify.com.
func NormalizeShopDomain(shop string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(shop))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimSuffix(s, "/")

	label, ok := strings.CutSuffix(s, "."+shopSuffix)
	if !ok || !reShopLabel.MatchString(label) {
		return "", fmt.Errorf("invalid shop domain %q", shop)
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(s)
	if err != nil {
		return "", fmt.Errorf("invalid shop domain %q: %w", shop, err)
	}
	// myshopify.com is listed as a private suffix, which makes the shop itself
	// the registrable domain.
	if etld1 != s && etld1 != shopSuffix {
		return "", fmt.Errorf("invalid shop domain %q", shop)
	}
	return s, nil
}
