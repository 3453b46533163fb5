// Package stripe is a small client for the payment intents API.
package stripe

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	if rps <= 0 {
		rps = 20
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// wire format of a payment intent; metadata values are always strings
type intentJSON struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata"`
}

func (c *Client) CreatePaymentIntent(ctx context.Context, p domain.PaymentIntentParams) (domain.PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(p.Amount, 10))
	form.Set("currency", strings.ToLower(p.Currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("metadata[hotelId]", p.Metadata.HotelID)
	form.Set("metadata[userId]", p.Metadata.UserID)
	form.Set("metadata[adultCount]", strconv.Itoa(p.Metadata.AdultCount))
	form.Set("metadata[childrenCount]", strconv.Itoa(p.Metadata.ChildrenCount))
	form.Set("metadata[numberOfNight]", strconv.Itoa(p.Metadata.NumberOfNights))

	var out intentJSON
	// one key per logical create so retried POSTs never open a second intent
	if err := c.do(ctx, http.MethodPost, "/payment_intents", form, uuid.NewString(), &out); err != nil {
		return domain.PaymentIntent{}, err
	}
	return toDomain(out), nil
}

func (c *Client) RetrievePaymentIntent(ctx context.Context, id string) (domain.PaymentIntent, error) {
	if strings.TrimSpace(id) == "" {
		return domain.PaymentIntent{}, domain.ErrPaymentNotFound
	}
	var out intentJSON
	if err := c.do(ctx, http.MethodGet, "/payment_intents/"+url.PathEscape(id), nil, "", &out); err != nil {
		return domain.PaymentIntent{}, err
	}
	return toDomain(out), nil
}

func toDomain(in intentJSON) domain.PaymentIntent {
	return domain.PaymentIntent{
		ID:           in.ID,
		ClientSecret: in.ClientSecret,
		Status:       domain.PaymentStatus(in.Status),
		Amount:       in.Amount,
		Currency:     in.Currency,
		Metadata: domain.PaymentMetadata{
			HotelID:        in.Metadata["hotelId"],
			UserID:         in.Metadata["userId"],
			AdultCount:     metaInt(in.Metadata, "adultCount"),
			ChildrenCount:  metaInt(in.Metadata, "childrenCount"),
			NumberOfNights: metaInt(in.Metadata, "numberOfNight"),
		},
	}
}

// metaInt returns -1 for missing or malformed values so they never match a request.
func metaInt(m map[string]string, k string) int {
	n, err := strconv.Atoi(strings.TrimSpace(m[k]))
	if err != nil {
		return -1
	}
	return n
}

// ---- Internals ----

var errUnauthorized = errors.New("stripe: unauthorized")

// do performs a request with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) do(ctx context.Context, method, path string, form url.Values, idemKey string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	endpoint := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)[0]

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		var body io.Reader
		if form != nil {
			body = strings.NewReader(form.Encode())
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.key)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hotel-booking/1.0")
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
		if idemKey != "" {
			req.Header.Set("Idempotency-Key", idemKey)
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("stripe", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("stripe %s: %w: %v", endpoint, domain.ErrTransient, err)
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("stripe", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("stripe %s: decode: %w", endpoint, err)
			}
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return domain.ErrPaymentNotFound

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return errUnauthorized

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("stripe %s: %w: remote %d", endpoint, domain.ErrTransient, resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			return decodeAPIError(resp)
		}
	}

	return lastErr
}

// decodeAPIError turns a 4xx body into an error; resource_missing maps to not found.
func decodeAPIError(resp *http.Response) error {
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(b, &env) == nil {
		if env.Error.Code == "resource_missing" {
			return domain.ErrPaymentNotFound
		}
		if env.Error.Message != "" {
			return fmt.Errorf("stripe: bad status %d: %s", resp.StatusCode, env.Error.Message)
		}
	}
	return fmt.Errorf("stripe: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns 200ms, 400ms, 800ms... plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
