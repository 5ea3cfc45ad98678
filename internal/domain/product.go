package domain

import (
	"strings"
	"time"
)

// Product types.
const (
	ProductSimple    = "simple"
	ProductVariable  = "variable"
	ProductVariation = "variation"
)

// Product is a catalog entry. Variations point to their variable parent
// through ParentID and describe their size and color in Attributes.
type Product struct {
	ID         string         `json:"id"`
	SKU        string         `json:"sku"`
	Name       string         `json:"name"`
	PriceCents int64          `json:"priceCents"`
	Stock      int            `json:"stock"`
	Brand      string         `json:"brand"`
	Category   string         `json:"category"`
	Type       string         `json:"type"`
	ParentID   *string        `json:"parentId,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// VariantAttributes are the dimensions a variation differs on.
type VariantAttributes struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

// Key names used for variant dimensions across catalog imports over time.
var (
	sizeKeys  = []string{"size", "talla", "talle", "tamaño", "tamano", "pa_size", "attribute_pa_size", "attribute_size"}
	colorKeys = []string{"color", "colour", "pa_color", "attribute_pa_color", "attribute_color"}
)

// VariantAttributes reads size and color from the attributes blob. Flat keys
// win over the nested "attributes" list of {name, option} entries.
func (p Product) VariantAttributes() VariantAttributes {
	var out VariantAttributes
	flat := make(map[string]string, len(p.Attributes))
	for k, v := range p.Attributes {
		if s, ok := v.(string); ok {
			flat[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(s)
		}
	}
	if nested, ok := p.Attributes["attributes"].([]any); ok {
		for _, raw := range nested {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			name, _ := entry["name"].(string)
			option, _ := entry["option"].(string)
			if option == "" {
				option, _ = entry["value"].(string)
			}
			key := strings.ToLower(strings.TrimSpace(name))
			if _, exists := flat[key]; key != "" && !exists {
				flat[key] = strings.TrimSpace(option)
			}
		}
	}
	out.Size = firstValue(flat, sizeKeys)
	out.Color = firstValue(flat, colorKeys)
	return out
}

func firstValue(values map[string]string, keys []string) string {
	for _, k := range keys {
		if v := values[k]; v != "" {
			return v
		}
	}
	return ""
}
