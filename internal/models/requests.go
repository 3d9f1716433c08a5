package models

// ============================================================================
// API REQUEST BODIES
// ============================================================================

type ProposeProductRequest struct {
	ProviderID              int             `json:"provider_id"`
	ProviderName            string          `json:"provider_name"`
	ForCrop                 string          `json:"for_crop"`
	PremiumAmountPerHectare int             `json:"premium_amount_per_hectare"`
	InsuredAmountPerHectare int             `json:"insured_amount_per_hectare"`
	ProductDocHash          string          `json:"product_doc_hash"`
	ExpiryDate              string          `json:"expiry_date"` // YYYY-MM-DD
	WeatherCriteria         WeatherCriteria `json:"weather_criteria"`
}

type CreatePolicyRequest struct {
	FarmerID      string  `json:"farmer_id"`
	ProductID     string  `json:"product_id"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	AreaInHectare float64 `json:"area_in_hectare"`
}

type ManualClaimRequest struct {
	CropDamagePercentage float64 `json:"crop_damage_percentage"`
	ReasonOfDamage       string  `json:"reason_of_damage"`
}
