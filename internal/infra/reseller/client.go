package reseller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"esim-service/internal/domain"
)

// Config is passed explicitly into New. The client never reads process
// environment or any other ambient state.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type orderItem struct {
	PackageID string `json:"packageId"`
	Quantity  int    `json:"quantity"`
}

// orderRequest is the exact upstream schema. The API rejects bodies carrying
// any other top-level field, so nothing may be added here.
type orderRequest struct {
	Items []orderItem `json:"items"`
}

type orderPayload struct {
	OrderID   string `json:"orderId"`
	ID        string `json:"id"`
	AltOrder  string `json:"order_id"`
	EsimID    string `json:"esimId"`
	ICCID     string `json:"iccid"`
	EsimCode  string `json:"esim_code"`
	ShortCode string `json:"code"`
}

func (p *orderPayload) esim() string {
	for _, v := range []string{p.EsimID, p.ICCID, p.EsimCode, p.ShortCode} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (p *orderPayload) order() string {
	for _, v := range []string{p.OrderID, p.ID, p.AltOrder} {
		if v != "" {
			return v
		}
	}
	return ""
}

// CreateOrder sends exactly one upstream order-creation call for the given
// slug. Errors come back classified: AuthError on 401/403, RejectionError on
// other 4xx or on a 2xx missing the expected identifiers, TransientError on
// 5xx and network failures.
func (c *Client) CreateOrder(ctx context.Context, slug string, quantity int) (*domain.EsimOrder, error) {
	if quantity <= 0 {
		quantity = 1
	}
	body, err := json.Marshal(orderRequest{Items: []orderItem{{PackageID: slug, Quantity: quantity}}})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/esim/order", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransientError{Err: err}
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp, slug); err != nil {
		return nil, err
	}

	var parsed struct {
		Data *orderPayload `json:"data"`
		orderPayload
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &domain.RejectionError{Slug: slug, StatusCode: resp.StatusCode, Message: "unreadable response body"}
	}

	payload := &parsed.orderPayload
	if parsed.Data != nil {
		payload = parsed.Data
	}

	// Upstream "success" responses have been observed without the
	// identifiers; treat them the same as a rejection.
	esimID := payload.esim()
	if esimID == "" {
		return nil, &domain.RejectionError{Slug: slug, StatusCode: resp.StatusCode, Message: "response missing eSIM identifier"}
	}
	orderID := payload.order()
	if orderID == "" {
		return nil, &domain.RejectionError{Slug: slug, StatusCode: resp.StatusCode, Message: "response missing order identifier"}
	}

	return &domain.EsimOrder{OrderID: orderID, EsimID: esimID}, nil
}

type countryEntry struct {
	CountryName string `json:"countryName"`
	CountryCode string `json:"countryCode"`
	Region      string `json:"region"`
	Packages    []struct {
		PackageID  string          `json:"packageId"`
		Package    string          `json:"package"`
		DataAmount json.RawMessage `json:"dataAmount"`
		DataUnit   string          `json:"dataUnit"`
		Day        int             `json:"day"`
		Days       int             `json:"days"`
		Price      float64         `json:"price"`
		PlanType   string          `json:"planType"`
	} `json:"packages"`
}

// ListPackages fetches the full upstream catalog and flattens the nested
// country-to-packages structure into descriptors.
func (c *Client) ListPackages(ctx context.Context) ([]domain.ResellerPackage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/esim/packages", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransientError{Err: err}
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp, ""); err != nil {
		return nil, err
	}

	var parsed struct {
		Data struct {
			Packages []countryEntry `json:"packages"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	var out []domain.ResellerPackage
	for _, country := range parsed.Data.Packages {
		for _, pkg := range country.Packages {
			if pkg.PackageID == "" {
				continue
			}
			days := pkg.Day
			if days == 0 {
				days = pkg.Days
			}
			out = append(out, domain.ResellerPackage{
				Slug:         pkg.PackageID,
				Country:      country.CountryName,
				CountryCode:  country.CountryCode,
				Region:       country.Region,
				DataAmountGB: dataAmountGB(pkg.DataAmount, pkg.DataUnit),
				ValidityDays: days,
				Price:        pkg.Price,
				PlanType:     pkg.PlanType,
			})
		}
	}
	return out, nil
}

// ApplyEsim requests the activation profile (LPA string, QR URL) for an eSIM
// created by CreateOrder.
func (c *Client) ApplyEsim(ctx context.Context, esimID string) (*domain.EsimProfile, error) {
	body, _ := json.Marshal(map[string]string{"esimId": esimID})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/esim/apply", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransientError{Err: err}
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp, esimID); err != nil {
		return nil, err
	}

	var parsed struct {
		Data struct {
			Esim domain.EsimProfile `json:"esim"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode apply response: %w", err)
	}
	if parsed.Data.Esim.LPACode == "" && parsed.Data.Esim.ActivationCode == "" {
		return nil, fmt.Errorf("esim profile not ready for %s", esimID)
	}
	return &parsed.Data.Esim, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
}

func classifyStatus(resp *http.Response, subject string) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &domain.AuthError{StatusCode: resp.StatusCode}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &domain.RejectionError{Slug: subject, StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	default:
		return &domain.TransientError{Err: fmt.Errorf("reseller returned status %d", resp.StatusCode)}
	}
}

func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "no error detail"
	}
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &parsed) == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

// dataAmountGB tolerates the upstream catalog's inconsistent typing: the
// amount arrives as a number, a quoted number, or strings like "500MB" and
// "Unlimited". Unlimited maps to the 0 sentinel.
func dataAmountGB(amount json.RawMessage, unit string) float64 {
	s := strings.Trim(strings.TrimSpace(string(amount)), `"`)
	if s == "" || strings.Contains(strings.ToLower(s), "unlimited") {
		return 0
	}
	if u := inlineUnit.FindStringSubmatch(s); u != nil {
		s, unit = u[1], u[2]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(strings.TrimSpace(unit)) {
	case "MB":
		return v / 1024
	case "KB":
		return v / 1024 / 1024
	default:
		return v
	}
}

var inlineUnit = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(GB|MB|KB)$`)
