package meli

// UserProfile is the raw /users/me response payload.
type UserProfile struct {
	ID               int64             `json:"id"`
	Nickname         string            `json:"nickname"`
	Email            string            `json:"email"`
	Status           string            `json:"status,omitempty"`
	SiteID           string            `json:"site_id,omitempty"`
	SellerReputation *SellerReputation `json:"seller_reputation,omitempty"`
}

// SellerReputation holds the provider-reported reputation block.
type SellerReputation struct {
	LevelID           string `json:"level_id"`
	PowerSellerStatus string `json:"power_seller_status"`
}

// SalesStats is the /users/{id}/metrics payload reduced to the counters the
// dashboard uses. Both default to zero when the endpoint is unavailable.
type SalesStats struct {
	PeriodSales int `json:"period_sales"`
	TotalSales  int `json:"total_sales"`
}

// TokenPayload is the raw /oauth/token response.
type TokenPayload struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
	UserID       int64  `json:"user_id,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// itemSearchResponse is the /users/{id}/items/search payload. Results are
// bare item IDs; details come from per-item fetches.
type itemSearchResponse struct {
	SellerID string   `json:"seller_id"`
	Results  []string `json:"results"`
	Paging   struct {
		Total int `json:"total"`
	} `json:"paging"`
}

// itemDetail is the /items/{id} payload.
type itemDetail struct {
	ID                string        `json:"id"`
	Title             string        `json:"title"`
	Price             float64       `json:"price"`
	AvailableQuantity int           `json:"available_quantity"`
	SoldQuantity      int           `json:"sold_quantity"`
	Status            string        `json:"status"`
	CategoryID        string        `json:"category_id"`
	Pictures          []itemPicture `json:"pictures"`
	Description       string        `json:"description,omitempty"`
}

type itemPicture struct {
	URL string `json:"url"`
}

// apiError is the generic error payload Mercado Livre returns alongside
// non-2xx statuses. Token endpoint errors use Error/ErrorDescription;
// resource endpoints use Message.
type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
	Status           int    `json:"status"`
}
