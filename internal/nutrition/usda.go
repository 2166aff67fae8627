package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrRemoteStatus indicates a non-success status from the remote nutrition source.
var ErrRemoteStatus = errors.New("remote nutrition status")

// remoteKeys maps allow-listed FoodData Central nutrient names to shared keys.
var remoteKeys = map[string]string{
	"Energy":                      KeyCalories,
	"Protein":                     KeyProtein,
	"Total lipid (fat)":           KeyFat,
	"Carbohydrate, by difference": KeyCarbohydrate,
	"Cholesterol":                 KeyCholesterol,
	"Sodium, Na":                  KeySodium,
	"Total Sugars":                KeySugar,
	"Fiber, total dietary":        KeyFiber,
}

type searchResponse struct {
	Foods []struct {
		Description   string `json:"description"`
		FoodNutrients []struct {
			NutrientName string  `json:"nutrientName"`
			Value        float64 `json:"value"`
			UnitName     string  `json:"unitName"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

// USDA queries the FoodData Central search API.
type USDA struct {
	baseURL string
	apiKey  string
	client  *http.Client
	retries int
	backoff time.Duration
	logger  *slog.Logger
}

// NewUSDA creates a FoodData Central client from a finalized RemoteConfig.
func NewUSDA(cfg *RemoteConfig, logger *slog.Logger) *USDA {
	return &USDA{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.TimeoutDuration()},
		retries: cfg.Retries,
		backoff: cfg.BackoffDuration(),
		logger:  logger.With("system", "usda"),
	}
}

// Lookup searches for food and returns the allow-listed nutrients of the
// first matching record. Transport failures, 429 and 5xx responses are retried
// with exponential backoff up to the configured retry count.
func (u *USDA) Lookup(ctx context.Context, food string) (Record, error) {
	var lastErr error

	for attempt := 0; attempt <= u.retries; attempt++ {
		if attempt > 0 {
			wait := u.backoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			u.logger.DebugContext(ctx, "retrying nutrition search", "food", food, "attempt", attempt+1)
		}

		rec, retry, err := u.search(ctx, food)
		if err == nil {
			return rec, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}

func (u *USDA) search(ctx context.Context, food string) (Record, bool, error) {
	q := url.Values{}
	q.Set("query", strings.ReplaceAll(food, "_", " "))
	q.Set("api_key", u.apiKey)
	endpoint := u.baseURL + "/foods/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("search foods: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, fmt.Errorf("%w: %d", ErrRemoteStatus, resp.StatusCode)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}

	if len(sr.Foods) == 0 {
		return nil, false, nil
	}

	return extract(sr), false, nil
}

func extract(sr searchResponse) Record {
	rec := make(Record)
	var kj *float64

	for _, n := range sr.Foods[0].FoodNutrients {
		key, ok := remoteKeys[n.NutrientName]
		if !ok {
			continue
		}
		unit := strings.ToLower(n.UnitName)

		// kJ energy is used only when no kcal entry exists
		if key == KeyCalories {
			switch unit {
			case UnitKcal:
				rec[key] = Entry{Value: n.Value, Unit: UnitKcal}
			case "kj":
				if kj == nil {
					v := n.Value
					kj = &v
				}
			}
			continue
		}

		rec[key] = Entry{Value: n.Value, Unit: unit}
	}

	if _, ok := rec[KeyCalories]; !ok && kj != nil {
		rec[KeyCalories] = Entry{Value: *kj / kilojoulesPerKcal, Unit: UnitKcal}
	}

	if len(rec) == 0 {
		return nil
	}
	return rec
}
