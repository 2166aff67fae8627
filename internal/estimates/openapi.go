package estimates

import "github.com/JaimeStill/caloric/pkg/openapi"

// Paths returns the OpenAPI path items for the routes in Handler.Routes.
func Paths() map[string]*openapi.PathItem {
	return map[string]*openapi.PathItem{
		"/estimate": {
			Post: &openapi.Operation{
				Summary:     "Estimate meal calories",
				Description: "Classifies the food in an uploaded image, estimates its mass, and scales per-100g nutrition to the estimated portion.",
				Tags:        []string{"estimates"},
				RequestBody: openapi.RequestBodyMultipart(
					"Meal photograph",
					map[string]*openapi.Schema{
						"image":     {Type: "string", Format: "binary", Description: "Image file"},
						"reference": {Type: "string", Description: "Reference object description; accepted but not used"},
					},
					"image",
				),
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Estimation result", "EstimateResponse"),
					400: openapi.ResponseRef("BadRequest"),
					413: openapi.ResponseRef("PayloadTooLarge"),
					500: openapi.ResponseRef("InternalError"),
				},
			},
		},
	}
}

// Schemas returns the component schemas referenced by Paths.
func Schemas() map[string]*openapi.Schema {
	nutrient := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"value": {Type: "number"},
			"unit":  {Type: "string", Example: "kcal"},
		},
	}

	return map[string]*openapi.Schema{
		"Nutrient": nutrient,
		"EstimateItem": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"name":            {Type: "string", Description: "Top classifier label; null when nothing was recognized"},
				"confidence":      {Type: "number", Description: "Top classifier confidence in [0, 1]"},
				"estimated_grams": {Type: "number", Description: "Estimated food mass in grams"},
				"dataPer100g": {
					Type:        "object",
					Description: "Per-100g nutrients keyed by name; null when no source matched",
					Example: map[string]any{
						"calories": map[string]any{"value": 155, "unit": "kcal"},
					},
				},
				"nutrition":         {Description: "Always null"},
				"segmentation":      {Type: "object", Description: "Mass estimator output, passed through"},
				"total_calories":    {Type: "number", Description: "Calories for the estimated portion; null without grams or calories"},
				"portion_reference": {Type: "string", Description: "Household measure approximating the portion", Example: "About 1/2 cup"},
			},
		},
		"EstimateResponse": {
			Type:     "object",
			Required: []string{"result"},
			Properties: map[string]*openapi.Schema{
				"result": {Type: "array", Items: openapi.SchemaRef("EstimateItem")},
			},
		},
	}
}
