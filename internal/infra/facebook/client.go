package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"app/internal/usecase"
)

const defaultBaseURL = "https://graph.facebook.com"

// ClientはGraph APIでassertionを検証するverifier実装
type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	appSecret  string
}

func NewClient(appID string, appSecret string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		appID:      appID,
		appSecret:  appSecret,
	}
}

// テスト用にbase URLを差し替える
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// debug_tokenのレスポンス（必要な部分だけ）
type debugTokenResponse struct {
	Data struct {
		IsValid bool   `json:"is_valid"`
		AppID   string `json:"app_id"`
	} `json:"data"`
}

// meのレスポンス。dynamicに読まず型を決めて、必須項目が欠けたら失敗させる
type meResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

// Verifyはtokenがこのアプリ向けに有効かを確認してからプロフィールを取る
func (c *Client) Verify(ctx context.Context, accessToken string) (*usecase.FacebookProfile, error) {
	verifyKeys := c.appID + "|" + c.appSecret

	var debug debugTokenResponse
	debugURL := fmt.Sprintf("%s/debug_token?input_token=%s&access_token=%s",
		c.baseURL, url.QueryEscape(accessToken), url.QueryEscape(verifyKeys))
	if err := c.getJSON(ctx, debugURL, &debug); err != nil {
		return nil, usecase.ErrUnauthorized
	}
	if !debug.Data.IsValid {
		return nil, usecase.ErrUnauthorized
	}

	var me meResponse
	meURL := fmt.Sprintf("%s/me?access_token=%s&fields=name,email,picture.width(100).height(100)",
		c.baseURL, url.QueryEscape(accessToken))
	if err := c.getJSON(ctx, meURL, &me); err != nil {
		return nil, usecase.ErrUnauthorized
	}

	// idとemailは必須。欠けたまま進めない
	if me.ID == "" || me.Email == "" {
		return nil, usecase.ErrBadRequest
	}

	return &usecase.FacebookProfile{
		ID:         me.ID,
		Name:       me.Name,
		Email:      me.Email,
		PictureURL: me.Picture.Data.URL,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("facebook: unexpected status %d", res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(dst)
}
