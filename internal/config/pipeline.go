package config

import (
	"github.com/JaimeStill/caloric/internal/classify"
	"github.com/JaimeStill/caloric/internal/nutrition"
	"github.com/JaimeStill/caloric/internal/portion"
	"github.com/JaimeStill/caloric/pkg/invoke"
)

var classifierEnv = &classify.Env{
	Backend: "CALORIC_CLASSIFIER_BACKEND",
	Process: &invoke.ProcessEnv{
		Command: "CALORIC_CLASSIFIER_COMMAND",
		Args:    "CALORIC_CLASSIFIER_ARGS",
		Dir:     "CALORIC_CLASSIFIER_DIR",
		Timeout: "CALORIC_CLASSIFIER_TIMEOUT",
	},
	HTTP: &invoke.HTTPEnv{
		URL:     "CALORIC_CLASSIFIER_URL",
		Timeout: "CALORIC_CLASSIFIER_TIMEOUT",
	},
	Rekognition: &classify.RekognitionEnv{
		Region:        "CALORIC_REKOGNITION_REGION",
		MaxLabels:     "CALORIC_REKOGNITION_MAX_LABELS",
		MinConfidence: "CALORIC_REKOGNITION_MIN_CONFIDENCE",
		ExcludeLabels: "CALORIC_REKOGNITION_EXCLUDE_LABELS",
	},
}

var portionEnv = &portion.Env{
	Backend: "CALORIC_PORTION_BACKEND",
	Process: &invoke.ProcessEnv{
		Command: "CALORIC_PORTION_COMMAND",
		Args:    "CALORIC_PORTION_ARGS",
		Dir:     "CALORIC_PORTION_DIR",
		Timeout: "CALORIC_PORTION_TIMEOUT",
	},
	HTTP: &invoke.HTTPEnv{
		URL:     "CALORIC_PORTION_URL",
		Timeout: "CALORIC_PORTION_TIMEOUT",
	},
}

var nutritionEnv = &nutrition.Env{
	Source:        "CALORIC_NUTRITION_SOURCE",
	FuzzyDistance: "CALORIC_NUTRITION_FUZZY_DISTANCE",
	Remote: &nutrition.RemoteEnv{
		Disabled: "CALORIC_NUTRITION_REMOTE_DISABLED",
		BaseURL:  "CALORIC_NUTRITION_REMOTE_BASE_URL",
		APIKey:   "CALORIC_NUTRITION_REMOTE_API_KEY",
		Timeout:  "CALORIC_NUTRITION_REMOTE_TIMEOUT",
		Retries:  "CALORIC_NUTRITION_REMOTE_RETRIES",
		Backoff:  "CALORIC_NUTRITION_REMOTE_BACKOFF",
	},
}
