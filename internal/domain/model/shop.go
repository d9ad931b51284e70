package model

// ShopSession holds the offline access token issued when a shop installed the app.
type ShopSession struct {
	Shop        string `json:"shop"         db:"shop"`
	AccessToken string `json:"-"            db:"access_token"`
	Scope       string `json:"scope"        db:"scope"`
}
