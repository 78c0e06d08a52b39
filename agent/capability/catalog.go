package capability

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
)

// Categories the product index is organized by. Search requests may filter
// on one of them; anything else is rejected before the index is queried.
var Categories = []string{
	"Smartphones",
	"Laptops",
	"Tablets",
	"Audio",
	"Wearables",
	"Cameras",
	"Gaming",
	"Monitors",
	"Accessories",
	"Storage",
	"Smart Home",
}

// canonicalCategory matches case-insensitively and returns the catalog
// spelling, so a lowercased filter from the model still hits the index.
func canonicalCategory(name string) (string, bool) {
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

// Infos describes the capabilities exposed to the reasoning model.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: contractx.CapabilitySearchProducts,
			Desc: "Search the product catalog. Use for any question about products, prices, specifications, or availability.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     schema.String,
					Desc:     "Natural language search query",
					Required: true,
				},
				"category": {
					Type: schema.String,
					Desc: "Restrict the search to one catalog category",
					Enum: Categories,
				},
				"max_results": {
					Type: schema.Integer,
					Desc: "Maximum number of products to return, default 5",
				},
			}),
		},
		{
			Name: contractx.CapabilityCreateOrder,
			Desc: "Create an order for products the customer explicitly confirmed they want to buy.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"products": {
					Type:     schema.Array,
					Desc:     "Products to order",
					Required: true,
					ElemInfo: &schema.ParameterInfo{
						Type: schema.Object,
						SubParams: map[string]*schema.ParameterInfo{
							"product_id": {
								Type:     schema.String,
								Desc:     "Catalog id of the product",
								Required: true,
							},
							"product_name": {
								Type:     schema.String,
								Desc:     "Display name of the product",
								Required: true,
							},
							"quantity": {
								Type:     schema.Integer,
								Desc:     "Number of units, at least 1",
								Required: true,
							},
							"unit_price": {
								Type:     schema.Number,
								Desc:     "Price per unit",
								Required: true,
							},
						},
					},
				},
				"customer_name":  {Type: schema.String, Desc: "Customer name"},
				"customer_email": {Type: schema.String, Desc: "Customer email address"},
				"customer_phone": {Type: schema.String, Desc: "Customer phone number"},
				"notes":          {Type: schema.String, Desc: "Free-form order notes"},
			}),
		},
	}
}
