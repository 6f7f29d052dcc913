// Package authapi is the HTTP client of the remote account service.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/profile-session/internal/profile"
	"github.com/openkcm/profile-session/internal/serviceerr"
)

const (
	pathSignup = "auth/signup"
	pathLogin  = "auth/login"
	pathUserMe = "user/me"
)

const (
	ReasonTransport         = "transport"
	ReasonMalformedResponse = "malformed_response"
)

// Bearer formats token as the value of an Authorization header.
func Bearer(token string) string {
	return "Bearer " + token
}

type Client struct {
	baseURL string
	http    *http.Client
	meters  *meters
}

var _ = profile.RemoteClient(&Client{})

// NewClient returns a client for the service rooted at baseURL. Timeouts are
// those of httpClient.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	m, err := newMeters(context.Background())
	if err != nil {
		return nil, fmt.Errorf("initialising meters: %w", err)
	}

	return &Client{
		baseURL: u.String(),
		http:    httpClient,
		meters:  m,
	}, nil
}

func (c *Client) CreateAccount(ctx context.Context, req profile.SignupRequest) error {
	body := signupRequest{
		Name:      req.Name,
		Password:  req.Password,
		Password2: req.ConfirmPassword,
		Email:     req.Email,
	}

	return c.do(ctx, http.MethodPost, pathSignup, "", body, nil)
}

func (c *Client) Authenticate(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, pathLogin, "", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	if resp.Data.Token == "" {
		return "", &serviceerr.NetworkError{Reason: ReasonMalformedResponse, Message: "login response carries no api_token"}
	}

	return resp.Data.Token, nil
}

func (c *Client) FetchProfile(ctx context.Context, token string) (profile.Profile, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodGet, pathUserMe, Bearer(token), nil, &resp); err != nil {
		return profile.Profile{}, err
	}
	if resp.Data.Name == "" {
		return profile.Profile{}, &serviceerr.NetworkError{Reason: ReasonMalformedResponse, Message: "user response carries no name"}
	}

	return resp.toProfile(), nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, p profile.Profile) error {
	body := userUpdateRequest{
		Name:      p.Name,
		Location:  p.Location,
		Birthdate: p.Birthdate,
	}

	return c.do(ctx, http.MethodPatch, pathUserMe, Bearer(token), body, nil)
}

func (c *Client) do(ctx context.Context, method, path, authorization string, in, out any) error {
	ctx, span := otel.Tracer("profile-session/authapi").Start(ctx, method+" "+path)
	defer span.End()

	start := time.Now()
	err := c.roundTrip(ctx, method, path, authorization, in, out)
	c.meters.record(ctx, method, path, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var netErr *serviceerr.NetworkError
		if errors.As(err, &netErr) && netErr.Status != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", netErr.Status))
		}
	}

	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path, authorization string, in, out any) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("joining endpoint path: %w", err)
	}

	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return &serviceerr.NetworkError{Reason: ReasonTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		slogctx.Debug(ctx, "Account service rejected the request", "method", method, "path", path, "status", resp.StatusCode)
		return &serviceerr.NetworkError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &serviceerr.NetworkError{Reason: ReasonMalformedResponse, Message: fmt.Sprintf("decoding response: %s", err)}
	}

	return nil
}

// errorMessage prefers the message of a JSON error body and falls back to the
// status text.
func errorMessage(resp *http.Response) string {
	var body errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}

	return http.StatusText(resp.StatusCode)
}
