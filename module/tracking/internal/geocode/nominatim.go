package geocode

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Nominatim reverse-geocodes coordinates into place descriptions for alert
// messages. Strictly best effort: any failure degrades to the raw coordinate
// string, and the caller never sees an error.
type Nominatim struct {
	client *resty.Client
	logger *zap.Logger
}

func NewNominatim(baseURL string, logger *zap.Logger) *Nominatim {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(3 * time.Second).
		SetHeader("User-Agent", "bovino-sub007-tracking")
	return &Nominatim{client: client, logger: logger}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

func (n *Nominatim) Describe(ctx context.Context, c domain.Coordinate) string {
	var body reverseResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":    fmt.Sprintf("%f", c.Lat),
			"lon":    fmt.Sprintf("%f", c.Lon),
			"format": "jsonv2",
			"zoom":   "14",
		}).
		SetResult(&body).
		Get("/reverse")
	if err != nil || resp.IsError() || body.DisplayName == "" {
		if err != nil {
			n.logger.Debug("reverse geocode failed", zap.Error(err))
		}
		return c.String()
	}
	return body.DisplayName
}
