// internal/trivia/opentdb.go
package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"quiz-player/internal/models"
)

const DefaultOpenTDBURL = "https://opentdb.com/api.php"

// OpenTDBClient fetches multiple-choice questions from an Open Trivia DB
// compatible endpoint.
type OpenTDBClient struct {
	baseURL    string
	category   string
	difficulty string
	httpClient *http.Client
}

type OpenTDBOptions struct {
	BaseURL    string
	Category   string
	Difficulty string
	Timeout    time.Duration
}

func NewOpenTDBClient(opts OpenTDBOptions) *OpenTDBClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenTDBURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenTDBClient{
		baseURL:    baseURL,
		category:   opts.Category,
		difficulty: opts.Difficulty,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type openTDBResponse struct {
	ResponseCode int                  `json:"response_code"`
	Results      []models.RawQuestion `json:"results"`
}

func (c *OpenTDBClient) Fetch(ctx context.Context, amount int) ([]models.RawQuestion, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid provider url: %w", err)
	}
	query := endpoint.Query()
	query.Set("amount", strconv.Itoa(amount))
	query.Set("type", "multiple")
	if c.category != "" {
		query.Set("category", c.category)
	}
	if c.difficulty != "" {
		query.Set("difficulty", c.difficulty)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider responded with status %d", resp.StatusCode)
	}

	var payload openTDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("malformed provider payload: %w", err)
	}
	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("provider response code %d", payload.ResponseCode)
	}

	questions := make([]models.RawQuestion, 0, len(payload.Results))
	for _, item := range payload.Results {
		if item.Text == "" || item.CorrectAnswer == "" {
			return nil, errors.New("malformed provider payload: question without text or answer")
		}
		questions = append(questions, unescape(item))
	}
	return questions, nil
}

// unescape decodes the HTML entities Open Trivia DB puts in its default encoding.
func unescape(q models.RawQuestion) models.RawQuestion {
	incorrect := make([]string, len(q.IncorrectAnswers))
	for i, a := range q.IncorrectAnswers {
		incorrect[i] = html.UnescapeString(a)
	}
	return models.RawQuestion{
		Text:             html.UnescapeString(q.Text),
		CorrectAnswer:    html.UnescapeString(q.CorrectAnswer),
		IncorrectAnswers: incorrect,
	}
}
