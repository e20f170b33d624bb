// internal/resolver/fdc.go
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"nutrition-tracker/internal/models"
)

// FoodData Central nutrient numbers for the three tracked macros.
const (
	nutrientProtein = 1003
	nutrientFat     = 1004
	nutrientCarbs   = 1005
)

// FDCClient implements Resolver against the FoodData Central search API.
// Authentication is the api.data.gov X-Api-Key header; DEMO_KEY works with a
// tight rate limit.
type FDCClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewFDCClient creates a client. Empty arguments fall back to the public
// endpoint and the DATA_GOV_API_KEY environment variable.
func NewFDCClient(baseURL, apiKey string) *FDCClient {
	if baseURL == "" {
		baseURL = "https://api.nal.usda.gov"
	}
	if apiKey == "" {
		apiKey = os.Getenv("DATA_GOV_API_KEY")
	}
	if apiKey == "" {
		apiKey = "DEMO_KEY"
	}
	return &FDCClient{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// searchResponse is the subset of the FDC search payload we read. Nutrient
// values are per 100 g.
type searchResponse struct {
	TotalHits int `json:"totalHits"`
	Foods     []struct {
		Description   string `json:"description"`
		FoodNutrients []struct {
			NutrientID int     `json:"nutrientId"`
			Value      float64 `json:"value"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

func (c *FDCClient) Resolve(ctx context.Context, query string) (models.Record, error) {
	quantity, unit, food := parseQuantity(query)
	grams := convertToGrams(quantity, unit, food)

	u := fmt.Sprintf("%s/fdc/v1/foods/search?query=%s&pageSize=5&dataType=%s",
		c.baseURL, url.QueryEscape(food), url.QueryEscape("Foundation,SR Legacy"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.Record{}, err
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return models.Record{}, fmt.Errorf("food search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Record{}, fmt.Errorf("food search read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return models.Record{}, fmt.Errorf("food search: rate limit exceeded, please wait before trying again")
	case http.StatusForbidden:
		return models.Record{}, fmt.Errorf("food search: API key invalid, disabled, or unauthorized")
	default:
		return models.Record{}, fmt.Errorf("food search: status %d: %s", resp.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return models.Record{}, fmt.Errorf("food search decode: %w", err)
	}
	if sr.TotalHits == 0 || len(sr.Foods) == 0 {
		return models.Record{}, fmt.Errorf("%w for %q", ErrNoMatch, food)
	}

	best := sr.Foods[0]
	var per100 models.Record
	for _, n := range best.FoodNutrients {
		switch n.NutrientID {
		case nutrientCarbs:
			per100.Carbs = n.Value
		case nutrientProtein:
			per100.Protein = n.Value
		case nutrientFat:
			per100.Fat = n.Value
		}
	}

	scale := grams / 100
	rec := models.Record{
		FoodName: best.Description,
		Quantity: models.Round2(grams),
		Unit:     "g",
		Carbs:    models.Round2(per100.Carbs * scale),
		Protein:  models.Round2(per100.Protein * scale),
		Fat:      models.Round2(per100.Fat * scale),
	}

	if rec.Carbs == 0 && rec.Protein == 0 && rec.Fat == 0 {
		return models.Record{}, fmt.Errorf("found %q but %w", best.Description, ErrIncompleteData)
	}

	return rec, nil
}
