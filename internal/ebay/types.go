package ebay

// Wire shapes for the Browse API item endpoint. Only the fields the
// classification pipelines consume are mapped.

// itemAspect is one localized aspect name/value pair.
type itemAspect struct {
	Type  string `json:"type,omitempty"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// moneyValue is the marketplace's string-encoded currency amount.
type moneyValue struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// shippingOption is one entry of the item's shippingOptions array. The first
// entry is authoritative for cost gating.
type shippingOption struct {
	ShippingCost     *moneyValue `json:"shippingCost,omitempty"`
	ShippingCostType string      `json:"shippingCostType,omitempty"` // FIXED, CALCULATED, FREE
}

// returnTerms carries the returns-accepted flag used by risk scoring.
type returnTerms struct {
	ReturnsAccepted *bool `json:"returnsAccepted,omitempty"`
}

// itemResponse is the Browse API item payload.
type itemResponse struct {
	ItemID           string           `json:"itemId"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	CategoryID       string           `json:"categoryId"`
	LocalizedAspects []itemAspect     `json:"localizedAspects"`
	ShippingOptions  []shippingOption `json:"shippingOptions"`
	ReturnTerms      *returnTerms     `json:"returnTerms,omitempty"`
}
