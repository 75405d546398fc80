package sessionclient

import "time"

const (
	defaultTimeout          = 30 * time.Second
	DefaultTickInterval     = time.Second
	DefaultRefreshThreshold = 2 * time.Minute
	DefaultRefreshTimeout   = 10 * time.Second
	DefaultRefreshRetry     = 15 * time.Second

	authSchemeBearer = "Bearer "
	contentTypeJSON  = "application/json"

	errCreateRequest  = "create request: %w"
	errSendRequest    = "send request: %w"
	errEncodeRequest  = "encode request: %w"
	errDecodeResponse = "decode response: %w"
)
