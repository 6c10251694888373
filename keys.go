package account

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"sync/atomic"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// MinRSAKeyBits is the minimum accepted RSA modulus size.
const MinRSAKeyBits = 2048

const (
	AlgorithmRSA = "RSA"
	AlgorithmEC  = "EC"
)

// KeyMaterial is an immutable private/public key pair snapshot. A provider
// swaps the whole value on reload so readers never observe a mismatched pair.
type KeyMaterial struct {
	Algorithm  string
	PrivateKey crypto.PrivateKey
	PublicKey  crypto.PublicKey
	method     jwt.SigningMethod
}

// SigningMethod returns the JWT signing method matching the key algorithm.
func (m *KeyMaterial) SigningMethod() jwt.SigningMethod {
	return m.method
}

// KeyProvider loads an asymmetric key pair from PEM resources and exposes
// it to the token codec. Safe for concurrent readers with a rare Reload writer.
type KeyProvider struct {
	cfg      Config
	logger   Logger
	material atomic.Pointer[KeyMaterial]
}

// NewKeyProvider creates a provider for the configured key paths and
// algorithm. Call Load before first use; load failures are fatal at startup.
func NewKeyProvider(cfg Config) *KeyProvider {
	return &KeyProvider{
		cfg:    cfg,
		logger: defLogger{},
	}
}

func (p *KeyProvider) WithLogger(logger Logger) *KeyProvider {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Load reads both PEM resources, validates key strength, and publishes the
// pair atomically. On failure the previously published pair stays visible.
func (p *KeyProvider) Load() error {
	algorithm := p.cfg.GetAlgorithm()
	method, err := signingMethodFor(algorithm)
	if err != nil {
		return err
	}

	privateKey, err := loadPrivateKey(p.cfg.GetPrivateKeyPath(), algorithm)
	if err != nil {
		return err
	}

	if err := validateKeyStrength(privateKey); err != nil {
		return err
	}

	publicKey, err := loadPublicKey(p.cfg.GetPublicKeyPath(), algorithm)
	if err != nil {
		return err
	}

	if err := validateKeyStrength(publicKey); err != nil {
		return err
	}

	p.material.Store(&KeyMaterial{
		Algorithm:  algorithm,
		PrivateKey: privateKey,
		PublicKey:  publicKey,
		method:     method,
	})

	p.logger.Info(
		"loaded %s keys from %s and %s",
		algorithm,
		p.cfg.GetPrivateKeyPath(),
		p.cfg.GetPublicKeyPath(),
	)

	return nil
}

// Reload re-runs the full load and swaps the in-memory pair.
func (p *KeyProvider) Reload() error {
	if err := p.Load(); err != nil {
		return err
	}
	p.logger.Info("keys reloaded")
	return nil
}

// Material returns the currently published key pair.
func (p *KeyProvider) Material() (*KeyMaterial, error) {
	material := p.material.Load()
	if material == nil {
		return nil, errors.New("key material not loaded", errors.CategoryInternal).
			WithTextCode("KEY_NOT_LOADED")
	}
	return material, nil
}

func signingMethodFor(algorithm string) (jwt.SigningMethod, error) {
	switch algorithm {
	case AlgorithmRSA:
		return jwt.SigningMethodRS256, nil
	case AlgorithmEC:
		return jwt.SigningMethodES256, nil
	default:
		return nil, ErrUnsupportedAlgorithm.Clone().WithMetadata(map[string]any{
			"algorithm": algorithm,
		})
	}
}

func loadPrivateKey(path, algorithm string) (crypto.PrivateKey, error) {
	der, err := decodePEM(path)
	if err != nil {
		return nil, err
	}

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, ErrInvalidKeyEncoding.Clone().WithMetadata(map[string]any{
			"path":  path,
			"cause": err.Error(),
		})
	}

	if err := ensureKeyAlgorithm(key, algorithm, path); err != nil {
		return nil, err
	}

	return key, nil
}

func loadPublicKey(path, algorithm string) (crypto.PublicKey, error) {
	der, err := decodePEM(path)
	if err != nil {
		return nil, err
	}

	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, ErrInvalidKeyEncoding.Clone().WithMetadata(map[string]any{
			"path":  path,
			"cause": err.Error(),
		})
	}

	if err := ensureKeyAlgorithm(key, algorithm, path); err != nil {
		return nil, err
	}

	return key, nil
}

// decodePEM strips the BEGIN/END delimiter lines and base64-decodes the body.
func decodePEM(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrKeyRead.Clone().WithMetadata(map[string]any{
			"path":  path,
			"cause": err.Error(),
		})
	}

	block, _ := pem.Decode(raw)
	if block == nil || len(block.Bytes) == 0 {
		return nil, ErrMalformedPEM.Clone().WithMetadata(map[string]any{
			"path": path,
		})
	}

	return block.Bytes, nil
}

func ensureKeyAlgorithm(key any, algorithm, path string) error {
	var ok bool
	switch algorithm {
	case AlgorithmRSA:
		switch key.(type) {
		case *rsa.PrivateKey, *rsa.PublicKey:
			ok = true
		}
	case AlgorithmEC:
		switch key.(type) {
		case *ecdsa.PrivateKey, *ecdsa.PublicKey:
			ok = true
		}
	}

	if !ok {
		return ErrInvalidKeyEncoding.Clone().WithMetadata(map[string]any{
			"path":      path,
			"algorithm": algorithm,
		})
	}

	return nil
}

func validateKeyStrength(key any) error {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return validateRSASize(k.N.BitLen())
	case *rsa.PublicKey:
		return validateRSASize(k.N.BitLen())
	}
	// EC curves accepted by the parser are all at or above the policy floor.
	return nil
}

func validateRSASize(bits int) error {
	if bits < MinRSAKeyBits {
		return ErrWeakKey.Clone().WithMetadata(map[string]any{
			"bits":    bits,
			"minimum": MinRSAKeyBits,
		})
	}
	return nil
}
