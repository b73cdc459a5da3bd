package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	json "github.com/goccy/go-json"

	"tvd/internal/providers"
	"tvd/internal/structures"
)

type sessionFile struct {
	Token string `json:"token"`
}

// Authenticator establishes the gateway session at startup. A stored
// session file is reused; otherwise it runs the interactive phone login,
// suspending until the one-time code arrives through the phonecode
// endpoint.
type Authenticator struct {
	conf      *structures.Config
	client    ClientInterface
	phoneCode *PhoneCode
	logger    providers.Logger
}

func NewAuthenticator(conf *structures.Config, client ClientInterface, phoneCode *PhoneCode, logger providers.Logger) *Authenticator {
	return &Authenticator{
		conf:      conf,
		client:    client,
		phoneCode: phoneCode,
		logger:    logger,
	}
}

func (a *Authenticator) Start(ctx context.Context) error {
	if token, err := a.loadSession(); err == nil && token != "" {
		a.client.SetToken(token)
		a.logger.Infof(providers.TypeApp, "Reusing stored gateway session")
		return nil
	}

	if err := a.post(ctx, "/auth/start", map[string]string{"phone": a.conf.Upstream.PhoneNumber}, nil); err != nil {
		return fmt.Errorf("start gateway auth: %w", err)
	}

	a.logger.Infof(providers.TypeApp, "Waiting for phone code via /api/phonecode")
	code, err := a.phoneCode.Await(ctx)
	if err != nil {
		return err
	}

	var resp sessionFile
	err = a.post(ctx, "/auth/complete", map[string]string{
		"phone": a.conf.Upstream.PhoneNumber,
		"code":  code,
	}, &resp)
	if err != nil {
		return fmt.Errorf("complete gateway auth: %w", err)
	}

	a.client.SetToken(resp.Token)
	if err := a.saveSession(resp.Token); err != nil {
		a.logger.Errorf(providers.TypeApp, "Could not save gateway session: %s", err)
	}
	a.logger.Infof(providers.TypeApp, "Gateway session established")
	return nil
}

func (a *Authenticator) loadSession() (string, error) {
	data, err := os.ReadFile(a.conf.Upstream.SessionFile)
	if err != nil {
		return "", err
	}
	var stored sessionFile
	if err := json.Unmarshal(data, &stored); err != nil {
		return "", err
	}
	return stored.Token, nil
}

func (a *Authenticator) saveSession(token string) error {
	data, err := json.Marshal(sessionFile{Token: token})
	if err != nil {
		return err
	}
	return os.WriteFile(a.conf.Upstream.SessionFile, data, 0600)
}

func (a *Authenticator) post(ctx context.Context, path string, payload map[string]string, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.conf.Upstream.GatewayUrl+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway auth returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
