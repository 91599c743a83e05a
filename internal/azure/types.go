package azure

import "time"

// Region describes one Azure region as reported by the discovery API.
type Region struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// PriceEntry holds the retail pricing for a single VM SKU in one region.
// A nil PayGo means the Retail Prices API returned no pay-as-you-go meter
// for the SKU; that is distinct from a zero price, which never occurs for
// real meters.
type PriceEntry struct {
	PayGo    *float64 `json:"paygo"`
	Spot     *float64 `json:"spot"`
	Currency string   `json:"currency"`
}

// retailResponse mirrors one page of the Azure Retail Prices API response.
type retailResponse struct {
	BillingCurrency string       `json:"BillingCurrency"`
	Items           []retailItem `json:"Items"`
	NextPageLink    *string      `json:"NextPageLink"`
	Count           int          `json:"Count"`
}

// retailItem is a single meter row from the Retail Prices API.
type retailItem struct {
	CurrencyCode       string    `json:"currencyCode"`
	RetailPrice        float64   `json:"retailPrice"`
	UnitPrice          float64   `json:"unitPrice"`
	ArmRegionName      string    `json:"armRegionName"`
	MeterName          string    `json:"meterName"`
	ProductName        string    `json:"productName"`
	SkuName            string    `json:"skuName"`
	ArmSkuName         string    `json:"armSkuName"`
	ServiceName        string    `json:"serviceName"`
	Type               string    `json:"type"`
	EffectiveStartDate time.Time `json:"effectiveStartDate"`
}
