// Package coordinator implements the authenticated RPC client to the
// central coordinator: challenge/response login, bearer-token-backed
// get_task and submit_proof calls, automatic token refresh on expiry, and
// retry with bounded exponential backoff on transient HTTP failures.
package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/scroll-tech/proving-sdk/pkg/keysigner"
	"github.com/scroll-tech/proving-sdk/pkg/log"
	"github.com/scroll-tech/proving-sdk/pkg/metrics"
	"github.com/scroll-tech/proving-sdk/pkg/types"
)

const (
	challengePath    = "/coordinator/v1/challenge"
	loginPath        = "/coordinator/v1/login"
	getTaskPath      = "/coordinator/v1/get_task"
	submitProofPath  = "/coordinator/v1/submit_proof"
)

// Config controls the HTTP behavior of a Client.
type Config struct {
	BaseURL              string
	ConnectionTimeoutSec uint64
	RetryWaitTimeSec     uint64
	RetryCount           int
}

// Client is one worker's authenticated connection to the coordinator. Each
// worker must own its own Client: a login is tied to one public key, and
// the coordinator keys per-prover state off it.
type Client struct {
	cfg                 Config
	proverName          string
	proverProviderType  types.ProverProviderType
	circuitType         types.CircuitType
	supportedProofTypes []types.ProofType
	proverVersion       string
	vks                 []string
	signer              *keysigner.KeySigner
	http                *retryablehttp.Client
	log                 zerolog.Logger

	mu    sync.Mutex
	token string
}

// New builds a Client for one worker. proverVersion and vks are fixed at
// construction: the version is a once-initialized build-time constant, and
// vks are the ones fetched from the backend at builder time.
func New(cfg Config, circuitType types.CircuitType, supportedProofTypes []types.ProofType, proverName string, proverProviderType types.ProverProviderType, proverVersion string, vks []string, signer *keysigner.KeySigner) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = cfg.RetryCount
	wait := time.Duration(cfg.RetryWaitTimeSec) * time.Second
	rc.RetryWaitMin = wait / 2
	rc.RetryWaitMax = wait
	rc.HTTPClient = &http.Client{Timeout: time.Duration(cfg.ConnectionTimeoutSec) * time.Second}

	return &Client{
		cfg:                 cfg,
		proverName:          proverName,
		proverProviderType:  proverProviderType,
		circuitType:         circuitType,
		supportedProofTypes: supportedProofTypes,
		proverVersion:       proverVersion,
		vks:                 vks,
		signer:              signer,
		http:                rc,
		log:                 log.WithWorker(signer.PublicKey()),
	}
}

// ErrJWTTokenExpired is returned to the caller when a second consecutive
// expiry is observed for one call, rather than looping forever.
var ErrJWTTokenExpired = fmt.Errorf("coordinator: jwt token expired twice for one request")

func (c *Client) url(path string) string {
	return c.cfg.BaseURL + path
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, token string, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}

// challenge fetches a short-lived login nonce.
func (c *Client) challenge(ctx context.Context) (Envelope[ChallengeResponseData], error) {
	var env Envelope[ChallengeResponseData]
	err := c.doJSON(ctx, http.MethodGet, challengePath, nil, "", &env)
	return env, err
}

// login runs the full challenge -> sign -> login sequence and caches the
// resulting bearer token. Callers must hold c.mu.
func (c *Client) login(ctx context.Context) (string, error) {
	challengeEnv, err := c.challenge(ctx)
	if err != nil {
		metrics.LoginTotal.WithLabelValues(c.proverName, "error").Inc()
		c.log.Error().Err(err).Msg("requesting login challenge")
		return "", fmt.Errorf("requesting challenge: %w", err)
	}
	if challengeEnv.ErrCode != ErrCodeSuccess || challengeEnv.Data == nil {
		metrics.LoginTotal.WithLabelValues(c.proverName, "error").Inc()
		c.log.Error().Int("errcode", int(challengeEnv.ErrCode)).Str("errmsg", challengeEnv.ErrMsg).Msg("challenge request failed")
		return "", fmt.Errorf("challenge request failed: errcode=%d errmsg=%s", challengeEnv.ErrCode, challengeEnv.ErrMsg)
	}

	message := LoginMessage{
		Challenge:          challengeEnv.Data.Token,
		ProverVersion:      c.proverVersion,
		ProverName:         c.proverName,
		ProverProviderType: c.proverProviderType,
		ProverTypes:        proverTypesFor(c.circuitType, c.supportedProofTypes),
		Vks:                c.vks,
	}

	buf, err := rlpEncode(message)
	if err != nil {
		return "", fmt.Errorf("rlp-encoding login message: %w", err)
	}
	signature, err := c.signer.SignBuffer(buf)
	if err != nil {
		return "", fmt.Errorf("signing login message: %w", err)
	}

	loginReq := LoginRequest{
		Message:   message,
		PublicKey: c.signer.PublicKey(),
		Signature: signature,
	}

	var loginEnv Envelope[LoginResponseData]
	// The challenge nonce itself authenticates the login call.
	if err := c.doJSON(ctx, http.MethodPost, loginPath, loginReq, challengeEnv.Data.Token, &loginEnv); err != nil {
		metrics.LoginTotal.WithLabelValues(c.proverName, "error").Inc()
		return "", fmt.Errorf("logging in: %w", err)
	}
	if loginEnv.ErrCode != ErrCodeSuccess || loginEnv.Data == nil {
		metrics.LoginTotal.WithLabelValues(c.proverName, "error").Inc()
		return "", fmt.Errorf("login request failed: errcode=%d errmsg=%s", loginEnv.ErrCode, loginEnv.ErrMsg)
	}

	metrics.LoginTotal.WithLabelValues(c.proverName, "success").Inc()
	c.token = loginEnv.Data.Token
	return c.token, nil
}

// GetToken returns the cached bearer token, or performs a fresh login if
// forceRelogin is set or no login has happened yet. Concurrent callers
// serialize on the mutex and re-read the cached token rather than each
// performing their own login.
func (c *Client) GetToken(ctx context.Context, forceRelogin bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && !forceRelogin {
		return c.token, nil
	}
	return c.login(ctx)
}

// GetTask fetches one task among req.TaskTypes, refreshing the token and
// retrying exactly once if the coordinator reports expiry.
func (c *Client) GetTask(ctx context.Context, req GetTaskRequest) (Envelope[GetTaskResponseData], error) {
	token, err := c.GetToken(ctx, false)
	if err != nil {
		return Envelope[GetTaskResponseData]{}, err
	}

	env, err := c.getTaskOnce(ctx, req, token)
	if err != nil {
		return env, err
	}

	if env.ErrCode == ErrCodeJWTTokenExpired {
		token, err = c.GetToken(ctx, true)
		if err != nil {
			return Envelope[GetTaskResponseData]{}, err
		}
		env, err = c.getTaskOnce(ctx, req, token)
		if err != nil {
			return env, err
		}
		if env.ErrCode == ErrCodeJWTTokenExpired {
			return env, ErrJWTTokenExpired
		}
	}
	return env, nil
}

func (c *Client) getTaskOnce(ctx context.Context, req GetTaskRequest, token string) (Envelope[GetTaskResponseData], error) {
	var env Envelope[GetTaskResponseData]
	err := c.doJSON(ctx, http.MethodPost, getTaskPath, req, token, &env)
	return env, err
}

// SubmitProof reports a task's outcome, with the same expiry-refresh-retry
// behavior as GetTask.
func (c *Client) SubmitProof(ctx context.Context, req SubmitProofRequest) (Envelope[SubmitProofResponseData], error) {
	token, err := c.GetToken(ctx, false)
	if err != nil {
		return Envelope[SubmitProofResponseData]{}, err
	}

	env, err := c.submitProofOnce(ctx, req, token)
	if err != nil {
		return env, err
	}

	if env.ErrCode == ErrCodeJWTTokenExpired {
		token, err = c.GetToken(ctx, true)
		if err != nil {
			return Envelope[SubmitProofResponseData]{}, err
		}
		env, err = c.submitProofOnce(ctx, req, token)
		if err != nil {
			return env, err
		}
		if env.ErrCode == ErrCodeJWTTokenExpired {
			return env, ErrJWTTokenExpired
		}
	}
	return env, nil
}

func (c *Client) submitProofOnce(ctx context.Context, req SubmitProofRequest, token string) (Envelope[SubmitProofResponseData], error) {
	var env Envelope[SubmitProofResponseData]
	err := c.doJSON(ctx, http.MethodPost, submitProofPath, req, token, &env)
	return env, err
}

// ProverName returns the name this client logs in as, used by the worker
// loop's structured logging.
func (c *Client) ProverName() string {
	return c.proverName
}
