package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"

	"github.com/letsssgooo/cricketQuiz/internal/domain/models"
	"golang.org/x/net/publicsuffix"
)

// HTTPClient реализует Client через HTTP API сервиса квизов.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewHTTPClient создаёт нового HTTP клиента сервиса по адресу baseURL.
// Сессия сервиса хранится в cookie, поэтому у клиента свой cookie jar.
func NewHTTPClient(baseURL string) (*HTTPClient, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url %s: %w", baseURL, err)
	}

	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %s must be absolute", baseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &HTTPClient{
		baseURL: base,
		httpClient: &http.Client{
			Jar: jar,
			// сервис отвечает редиректом на страницу логина, если сессии нет
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// Login авторизует пользователя username.
// Возвращает nil в случае успеха.
func (c *HTTPClient) Login(ctx context.Context, username, password string) error {
	params := map[string]interface{}{
		"username": username,
		"password": password,
	}

	var result struct {
		Success bool `json:"success"`
	}

	if err := c.doRequest(ctx, http.MethodPost, pathLogin, params, &result); err != nil {
		return err
	}

	if !result.Success {
		return &APIError{StatusCode: http.StatusOK, Message: "login rejected"}
	}

	return nil
}

// Categories возвращает категории вида спорта sportID.
func (c *HTTPClient) Categories(ctx context.Context, sportID int) ([]models.Category, error) {
	path := pathCategories + "?sport_id=" + strconv.Itoa(sportID)

	var categories []models.Category
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &categories); err != nil {
		return nil, err
	}

	return categories, nil
}

// StartQuiz создает попытку по категории categoryID и сложности difficulty.
func (c *HTTPClient) StartQuiz(ctx context.Context, categoryID int, difficulty string) (*models.StartResult, error) {
	params := map[string]interface{}{
		"category_id": categoryID,
		"difficulty":  difficulty,
	}

	var result models.StartResult
	if err := c.doRequest(ctx, http.MethodPost, pathStartQuiz, params, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// FetchQuestion получает вопрос с порядковым номером ordinal.
// Некорректный вопрос считается ошибкой.
func (c *HTTPClient) FetchQuestion(ctx context.Context, ordinal int) (*models.Question, error) {
	var question models.Question
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf(pathQuestion, ordinal), nil, &question); err != nil {
		return nil, err
	}

	if err := validateQuestion(&question); err != nil {
		return nil, err
	}

	return &question, nil
}

// SubmitAnswer отправляет ответ submission.
func (c *HTTPClient) SubmitAnswer(
	ctx context.Context,
	submission models.AnswerSubmission,
) (*models.AnswerResult, error) {
	var result models.AnswerResult
	if err := c.doRequest(ctx, http.MethodPost, pathSubmit, submission, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// FinishQuiz завершает квиз с общим временем totalTime секунд.
// Адрес редиректа возвращается абсолютным.
func (c *HTTPClient) FinishQuiz(ctx context.Context, totalTime int) (*models.FinishResult, error) {
	params := map[string]interface{}{
		"total_time": totalTime,
	}

	var result models.FinishResult
	if err := c.doRequest(ctx, http.MethodPost, pathFinish, params, &result); err != nil {
		return nil, err
	}

	if result.Redirect == "" {
		return nil, fmt.Errorf("finish response has no redirect")
	}

	location, err := c.resolve(result.Redirect)
	if err != nil {
		return nil, err
	}
	result.Redirect = location

	return &result, nil
}

// resolve превращает адрес от сервиса в абсолютный.
func (c *HTTPClient) resolve(location string) (string, error) {
	ref, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("failed to parse redirect %s: %w", location, err)
	}

	return c.baseURL.ResolveReference(ref).String(), nil
}

// doRequest выполняет запрос к сервису и декодирует ответ в out.
// Ответ с кодом, отличным от 2xx, возвращается как *APIError.
func (c *HTTPClient) doRequest(
	ctx context.Context,
	method string,
	path string,
	params interface{},
	out interface{},
) error {
	endpoint, err := c.resolve(path)
	if err != nil {
		return err
	}

	var body io.Reader
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")
	if params != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("failed to do %s request for url %s: %w", method, endpoint, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body for url %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}

		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Error
		}

		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response for url %s: %w", endpoint, err)
	}

	return nil
}
