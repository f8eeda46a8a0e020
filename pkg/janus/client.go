// Package janus talks to a Janus-protocol media server over JSON/HTTP. Every
// request carries a generated transaction id; asynchronous plugin replies are
// delivered on a per-session long-poll channel and matched back to the waiting
// caller by (session, handle, transaction).
package janus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration

	mu      sync.Mutex
	pending map[pendingKey]chan *Envelope
	pollers map[int64]context.CancelFunc
}

type pendingKey struct {
	sessionID   int64
	handleID    int64
	transaction string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeout:    timeout,
		pending:    make(map[pendingKey]chan *Envelope),
		pollers:    make(map[int64]context.CancelFunc),
	}
}

// CreateSession opens a server-side session and starts its event poller.
func (c *Client) CreateSession(ctx context.Context) (int64, error) {
	env, err := c.post(ctx, request{Janus: actionCreate, Transaction: newTransaction()})
	if err != nil {
		return 0, err
	}
	if env.Data == nil || env.Data.ID == 0 {
		return 0, fmt.Errorf("no session id in create response")
	}
	sessionID := env.Data.ID

	pollCtx, cancel := context.WithCancel(zerolog.Ctx(ctx).WithContext(context.Background()))
	c.mu.Lock()
	c.pollers[sessionID] = cancel
	c.mu.Unlock()
	go c.pollEvents(pollCtx, sessionID)

	return sessionID, nil
}

func (c *Client) KeepAlive(ctx context.Context, sessionID int64) error {
	_, err := c.post(ctx, request{
		Janus:       actionKeepAlive,
		Transaction: newTransaction(),
		SessionID:   sessionID,
	})
	return err
}

// DestroySession stops the session poller and destroys the server-side
// session.
func (c *Client) DestroySession(ctx context.Context, sessionID int64) error {
	c.mu.Lock()
	if cancel, found := c.pollers[sessionID]; found {
		cancel()
		delete(c.pollers, sessionID)
	}
	c.mu.Unlock()

	_, err := c.post(ctx, request{
		Janus:       actionDestroy,
		Transaction: newTransaction(),
		SessionID:   sessionID,
	})
	return err
}

func (c *Client) Attach(ctx context.Context, sessionID int64, plugin string) (int64, error) {
	env, err := c.post(ctx, request{
		Janus:       actionAttach,
		Transaction: newTransaction(),
		SessionID:   sessionID,
		Plugin:      plugin,
	})
	if err != nil {
		return 0, err
	}
	if env.Data == nil || env.Data.ID == 0 {
		return 0, fmt.Errorf("no handle id in attach response")
	}
	return env.Data.ID, nil
}

func (c *Client) Detach(ctx context.Context, sessionID, handleID int64) error {
	_, err := c.post(ctx, request{
		Janus:       actionDetach,
		Transaction: newTransaction(),
		SessionID:   sessionID,
		HandleID:    handleID,
	})
	return err
}

// Send delivers a plugin request on a handle and returns the plugin reply.
// Synchronous requests come back on the HTTP response; asynchronous ones are
// acknowledged first and resolved through the session poller.
func (c *Client) Send(ctx context.Context, sessionID, handleID int64, body PluginRequest) (*PluginData, error) {
	transaction := newTransaction()
	key := pendingKey{sessionID: sessionID, handleID: handleID, transaction: transaction}

	// Register before posting: the matching event may arrive on the poller
	// before the ack is decoded.
	ch := make(chan *Envelope, 1)
	c.mu.Lock()
	c.pending[key] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, key)
		c.mu.Unlock()
	}()

	env, err := c.post(ctx, request{
		Janus:       actionMessage,
		Transaction: transaction,
		SessionID:   sessionID,
		HandleID:    handleID,
		Plugin:      body.PluginName(),
		Body:        body,
	})
	if err != nil {
		return nil, err
	}

	if env.Janus != "ack" {
		return pluginReply(env)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	select {
	case reply := <-ch:
		return pluginReply(reply)
	case <-timer.C:
		return nil, fmt.Errorf("transaction %s: %w", transaction, ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close cancels every session poller. Server-side sessions are left to expire.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for sessionID, cancel := range c.pollers {
		cancel()
		delete(c.pollers, sessionID)
	}
}

func pluginReply(env *Envelope) (*PluginData, error) {
	if env.PluginData == nil {
		return nil, fmt.Errorf("no plugin data in response")
	}
	if err := env.PluginData.Err(); err != nil {
		return env.PluginData, err
	}
	return env.PluginData, nil
}

func (c *Client) post(ctx context.Context, req request) (*Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("janus", req.Janus).
		Str("transaction", req.Transaction).
		Int64("session_id", req.SessionID).
		Int64("handle_id", req.HandleID).
		Msg("media server request")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}

	if env.Error != nil {
		return nil, env.Error
	}
	return &env, nil
}

// pollEvents runs the long-poll loop for one session, resolving pending
// transactions as their events arrive.
func (c *Client) pollEvents(ctx context.Context, sessionID int64) {
	url := fmt.Sprintf("%s/%d?maxev=1", c.baseURL, sessionID)
	for {
		if ctx.Err() != nil {
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			zerolog.Ctx(ctx).Warn().Err(err).Int64("session_id", sessionID).Msg("event poll failed")
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			// Session is gone on the server.
			resp.Body.Close()
			return
		}

		var env Envelope
		err = json.NewDecoder(resp.Body).Decode(&env)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("session_id", sessionID).Msg("bad event payload")
			continue
		}

		switch env.Janus {
		case "keepalive", "":
		default:
			c.resolve(sessionID, &env)
		}
	}
}

func (c *Client) resolve(sessionID int64, env *Envelope) {
	if env.Transaction == "" {
		return
	}
	key := pendingKey{sessionID: sessionID, handleID: env.Sender, transaction: env.Transaction}

	c.mu.Lock()
	ch, found := c.pending[key]
	if found {
		delete(c.pending, key)
	}
	c.mu.Unlock()

	if found {
		ch <- env
	}
}

func newTransaction() string {
	return uuid.NewString()
}
