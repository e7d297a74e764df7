// Package mpesa talks to the Safaricom Daraja API for STK push payments.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"farmmarket/internal/config"
	"farmmarket/internal/domain"
)

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"
)

// Daraja rejects STK push amounts outside this range.
const (
	MinChargeAmount = 1.0
	MaxChargeAmount = 70000.0
)

type Client struct {
	cfg     config.MpesaConfig
	baseURL string
	http    *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(cfg config.MpesaConfig) *Client {
	base := sandboxBaseURL
	if cfg.Environment == "production" {
		base = productionBaseURL
	}
	return &Client{
		cfg:     cfg,
		baseURL: base,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

var (
	phonePattern    = regexp.MustCompile(`^(?:\+?254|0)(7\d{8})$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "")
)

// NormalizePhone converts the accepted local formats (07XXXXXXXX,
// 2547XXXXXXXX, +2547XXXXXXXX, with spaces or hyphens between digit
// groups) to the canonical 2547XXXXXXXX form the gateway requires.
func NormalizePhone(phone string) (string, error) {
	cleaned := phoneSeparators.Replace(strings.TrimSpace(phone))
	m := phonePattern.FindStringSubmatch(cleaned)
	if m == nil {
		return "", domain.Validationf("invalid phone number %q: expected 07XXXXXXXX, 2547XXXXXXXX or +2547XXXXXXXX", phone)
	}
	return "254" + m[1], nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("mpesa auth: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("mpesa auth: status %d: %s", resp.StatusCode, body)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("mpesa auth: decode: %w", err)
	}

	c.accessToken = tok.AccessToken
	// Daraja tokens last 3600s; refresh a minute early.
	c.tokenExpiry = time.Now().Add(59 * time.Minute)
	return c.accessToken, nil
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// STKPush prompts the customer's handset to authorize the payment. Amount
// is rounded to whole shillings as Daraja only accepts integers; callers
// pass an already-integral charge so the charged and recorded amounts agree.
func (c *Client) STKPush(ctx context.Context, phone string, amount float64, accountRef, description string) (*STKPushResponse, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString(
		[]byte(c.cfg.Shortcode + c.cfg.Passkey + timestamp))

	payload := stkPushRequest{
		BusinessShortCode: c.cfg.Shortcode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            int64(math.Round(amount)),
		PartyA:            phone,
		PartyB:            c.cfg.Shortcode,
		PhoneNumber:       phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   description,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/mpesa/stkpush/v1/processrequest", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mpesa stk push: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("mpesa stk push: status %d: %s", resp.StatusCode, respBody)
	}

	var out STKPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("mpesa stk push: decode: %w", err)
	}
	if out.ResponseCode != "0" {
		return nil, fmt.Errorf("mpesa stk push rejected: %s", out.ResponseDescription)
	}
	return &out, nil
}

// Callback is the body Daraja posts back once the customer acts on the
// handset prompt.
type Callback struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  *struct {
				Item []CallbackItem `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

type CallbackItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value"`
}

// CallbackResult is the flattened settlement outcome extracted from a
// gateway callback.
type CallbackResult struct {
	CheckoutRequestID string
	Success           bool
	ResultDesc        string
	ReceiptNumber     *string
	TransactionDate   *string
	PhoneNumber       *string
	Amount            *float64
}

// ParseCallback flattens the nested Daraja callback into the fields the
// settlement flow cares about. ResultCode 0 is success; 1032 is a handset
// cancellation; everything else is failure.
func (cb *Callback) ParseCallback() CallbackResult {
	stk := cb.Body.StkCallback
	result := CallbackResult{
		CheckoutRequestID: stk.CheckoutRequestID,
		Success:           stk.ResultCode == 0,
		ResultDesc:        stk.ResultDesc,
	}
	if stk.CallbackMetadata == nil {
		return result
	}
	for _, item := range stk.CallbackMetadata.Item {
		switch item.Name {
		case "MpesaReceiptNumber":
			if s, ok := item.Value.(string); ok {
				result.ReceiptNumber = &s
			}
		case "TransactionDate":
			s := fmt.Sprintf("%v", item.Value)
			result.TransactionDate = &s
		case "PhoneNumber":
			s := fmt.Sprintf("%v", item.Value)
			result.PhoneNumber = &s
		case "Amount":
			if f, ok := item.Value.(float64); ok {
				result.Amount = &f
			}
		}
	}
	return result
}

// Cancelled reports whether the customer dismissed the handset prompt.
func (cb *Callback) Cancelled() bool {
	return cb.Body.StkCallback.ResultCode == 1032
}
