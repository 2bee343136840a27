// Package marketplace reads the provider roster from the marketplace REST API.
package marketplace

import (
	"net/http"
	"strings"
	"time"

	"github.com/spigell/presta-matcher/internal/logger"
	"go.uber.org/zap"
)

const (
	userAgent = "spigell/presta-matcher"
	// Max value for users per page.
	perPage = "100"
)

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(log *zap.Logger, apiURL, token string) *Client {
	return &Client{
		token:  token,
		APIURL: strings.TrimRight(apiURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger.OrNop(log),
		UserAgent: userAgent,
	}
}
