package httpx

import (
	"net/http"

	"github.com/image-captioner/captioner/internal/adapters/shopify"
)

// shopFromPath reads and normalizes the {shop} path value. On failure the
// 400 response is already written.
func shopFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	shop, err := shopify.NormalizeShopDomain(r.PathValue("shop"))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_shop", Err: err, Field: "shop"})
		return "", false
	}
	return shop, true
}
