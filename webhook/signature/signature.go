package signature

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// SecretPrefix is the prefix for provider signing secrets
	SecretPrefix = "whsec_"

	// MinSecretBytes is the minimum recommended secret size (192 bits)
	MinSecretBytes = 24

	// MaxSecretBytes is the maximum recommended secret size (512 bits)
	MaxSecretBytes = 64

	// DefaultTolerance is the replay window for signed payloads
	DefaultTolerance = 5 * time.Minute
)

var (
	// ErrInvalidSignature covers malformed headers and signature mismatches
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrStaleSignature is returned when the signed timestamp is outside the replay window
	ErrStaleSignature = errors.New("stale signature")
)

// Secret represents a provider signing secret
type Secret struct {
	raw    []byte
	base64 string
}

// GenerateSecret creates a new cryptographically secure signing secret
// between MinSecretBytes and MaxSecretBytes in size.
func GenerateSecret(size int) (Secret, error) {
	if size < MinSecretBytes || size > MaxSecretBytes {
		return Secret{}, fmt.Errorf("secret size must be between %d and %d bytes", MinSecretBytes, MaxSecretBytes)
	}

	bytes := make([]byte, size)
	if _, err := rand.Read(bytes); err != nil {
		return Secret{}, fmt.Errorf("generating random bytes: %w", err)
	}

	return Secret{
		raw:    bytes,
		base64: SecretPrefix + base64.StdEncoding.EncodeToString(bytes),
	}, nil
}

// ParseSecret parses a base64-encoded secret with the whsec_ prefix
func ParseSecret(encoded string) (Secret, error) {
	if !strings.HasPrefix(encoded, SecretPrefix) {
		return Secret{}, fmt.Errorf("secret must start with %s prefix", SecretPrefix)
	}

	b64 := strings.TrimPrefix(encoded, SecretPrefix)
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return Secret{}, fmt.Errorf("decoding base64 secret: %w", err)
	}

	if len(raw) < MinSecretBytes || len(raw) > MaxSecretBytes {
		return Secret{}, fmt.Errorf("secret size must be between %d and %d bytes", MinSecretBytes, MaxSecretBytes)
	}

	return Secret{
		raw:    raw,
		base64: encoded,
	}, nil
}

// String returns the base64-encoded secret with prefix
func (s Secret) String() string {
	return s.base64
}

// Bytes returns the raw secret bytes
func (s Secret) Bytes() []byte {
	return s.raw
}

/* Provider supplies the secrets currently accepted for verification.
 * More than one secret may be active during rotation, and a payload
 * signed with either must verify until the grace window closes.
 */
type Provider interface {
	Secrets() []Secret
}

// StaticProvider is a fixed set of secrets, typically loaded from config
type StaticProvider []Secret

func (p StaticProvider) Secrets() []Secret {
	return p
}

// Header is the parsed form of the provider signature header:
// t={unixSeconds},v1={hex}[,v1={hex}...]
type Header struct {
	Timestamp  time.Time
	Signatures []string
}

// ParseHeader parses the signature header. Exactly one t entry and at
// least one v1 entry are required; any other shape is a format error.
func ParseHeader(header string) (Header, error) {
	if header == "" {
		return Header{}, fmt.Errorf("signature header is empty: %w", ErrInvalidSignature)
	}

	var (
		parsed  Header
		sawTime bool
	)

	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		key, value, found := strings.Cut(part, "=")
		if !found || value == "" {
			return Header{}, fmt.Errorf("malformed header entry %q: %w", part, ErrInvalidSignature)
		}

		switch key {
		case "t":
			if sawTime {
				return Header{}, fmt.Errorf("duplicate timestamp entry: %w", ErrInvalidSignature)
			}
			unix, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Header{}, fmt.Errorf("parsing timestamp %q: %w", value, ErrInvalidSignature)
			}
			parsed.Timestamp = time.Unix(unix, 0)
			sawTime = true
		case "v1":
			parsed.Signatures = append(parsed.Signatures, value)
		default:
			return Header{}, fmt.Errorf("unexpected header entry %q: %w", key, ErrInvalidSignature)
		}
	}

	if !sawTime {
		return Header{}, fmt.Errorf("missing timestamp entry: %w", ErrInvalidSignature)
	}
	if len(parsed.Signatures) == 0 {
		return Header{}, fmt.Errorf("no v1 signatures in header: %w", ErrInvalidSignature)
	}

	return parsed, nil
}

// Sign computes the hex-encoded HMAC-SHA256 signature for the payload at
// the given timestamp. The signed content is exactly "{t}.{payload}".
func Sign(secret Secret, timestamp time.Time, payload []byte) string {
	mac := hmac.New(sha256.New, secret.Bytes())
	mac.Write([]byte(strconv.FormatInt(timestamp.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// BuildHeader builds a signature header for the payload signed with each
// of the given secrets. Used by tests and for outbound signing.
func BuildHeader(timestamp time.Time, payload []byte, secrets ...Secret) string {
	parts := make([]string, 0, len(secrets)+1)
	parts = append(parts, fmt.Sprintf("t=%d", timestamp.Unix()))
	for _, secret := range secrets {
		parts = append(parts, fmt.Sprintf("v1=%s", Sign(secret, timestamp, payload)))
	}
	return strings.Join(parts, ",")
}

// Verify checks the payload against the signature header using every
// accepted secret. Hex comparison is case-insensitive and constant-time.
// A zero tolerance falls back to DefaultTolerance.
func Verify(payload []byte, header string, secrets []Secret, now time.Time, tolerance time.Duration) error {
	if len(secrets) == 0 {
		return fmt.Errorf("no verification secrets configured: %w", ErrInvalidSignature)
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	parsed, err := ParseHeader(header)
	if err != nil {
		return fmt.Errorf("parsing signature header: %w", err)
	}

	age := now.Sub(parsed.Timestamp)
	if age > tolerance || age < -tolerance {
		return fmt.Errorf("signed timestamp %d outside replay window: %w", parsed.Timestamp.Unix(), ErrStaleSignature)
	}

	for _, secret := range secrets {
		expected, err := hex.DecodeString(Sign(secret, parsed.Timestamp, payload))
		if err != nil {
			// Sign always produces valid hex
			continue
		}
		for _, candidate := range parsed.Signatures {
			decoded, err := hex.DecodeString(strings.ToLower(candidate))
			if err != nil {
				continue
			}
			if hmac.Equal(expected, decoded) {
				return nil
			}
		}
	}

	return fmt.Errorf("no matching v1 signature: %w", ErrInvalidSignature)
}
