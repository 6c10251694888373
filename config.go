package account

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Options is the concrete Config consumed by the token and lifecycle
// subsystems. Validate runs before any key is loaded, so an unsupported
// algorithm fails at configuration time.
type Options struct {
	PrivateKeyPath      string        `json:"private_key_path"`
	PublicKeyPath       string        `json:"public_key_path"`
	Algorithm           string        `json:"algorithm"`
	AccessTokenTTL      time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL     time.Duration `json:"refresh_token_ttl"`
	PublicRoutePrefixes []string      `json:"public_route_prefixes"`
	AuthScheme          string        `json:"auth_scheme"`
	ContextKey          string        `json:"context_key"`
	DeletionRetention   time.Duration `json:"deletion_retention"`
	SweepBatchSize      int           `json:"sweep_batch_size"`
}

var _ Config = (*Options)(nil)

// NewOptions returns Options with the defaults applied.
func NewOptions() *Options {
	return &Options{
		Algorithm:           AlgorithmRSA,
		AccessTokenTTL:      15 * time.Minute,
		RefreshTokenTTL:     7 * 24 * time.Hour,
		PublicRoutePrefixes: []string{"/api/v1/auth"},
		AuthScheme:          "Bearer",
		ContextKey:          "principal",
		DeletionRetention:   DefaultDeletionRetention,
		SweepBatchSize:      DefaultSweepBatchSize,
	}
}

// Validate enforces the configuration surface before startup proceeds.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.PrivateKeyPath, validation.Required),
		validation.Field(&o.PublicKeyPath, validation.Required),
		validation.Field(&o.Algorithm,
			validation.Required,
			validation.In(AlgorithmRSA, AlgorithmEC),
		),
		validation.Field(&o.AccessTokenTTL, validation.Required),
		validation.Field(&o.RefreshTokenTTL, validation.Required),
	)
}

func (o Options) GetPrivateKeyPath() string { return o.PrivateKeyPath }
func (o Options) GetPublicKeyPath() string  { return o.PublicKeyPath }

func (o Options) GetAlgorithm() string {
	if o.Algorithm == "" {
		return AlgorithmRSA
	}
	return o.Algorithm
}

func (o Options) GetAccessTokenTTL() time.Duration  { return o.AccessTokenTTL }
func (o Options) GetRefreshTokenTTL() time.Duration { return o.RefreshTokenTTL }

func (o Options) GetPublicRoutePrefixes() []string { return o.PublicRoutePrefixes }

func (o Options) GetAuthScheme() string {
	if o.AuthScheme == "" {
		return "Bearer"
	}
	return o.AuthScheme
}

func (o Options) GetContextKey() string {
	if o.ContextKey == "" {
		return "principal"
	}
	return o.ContextKey
}

func (o Options) GetDeletionRetention() time.Duration {
	if o.DeletionRetention <= 0 {
		return DefaultDeletionRetention
	}
	return o.DeletionRetention
}

func (o Options) GetSweepBatchSize() int {
	if o.SweepBatchSize <= 0 {
		return DefaultSweepBatchSize
	}
	return o.SweepBatchSize
}
