package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	apperrors "github.com/allisson/tokenauth/internal/errors"
)

// signingMethod is the only algorithm accepted on issue and validation.
var signingMethod = jwt.SigningMethodHS256

// tokenService implements TokenService with HS256 JWTs.
type tokenService struct {
	key          []byte
	window       time.Duration
	staticClaims map[string]any
}

// NewTokenService creates a TokenService signing with key. staticClaims are added to every
// token; a reserved name among them is a configuration error.
func NewTokenService(key []byte, window time.Duration, staticClaims map[string]any) (TokenService, error) {
	if len(key) < authDomain.MinSigningKeyLength {
		return nil, fmt.Errorf(
			"%w: got %d bytes, need at least %d",
			authDomain.ErrSigningKeyTooShort,
			len(key),
			authDomain.MinSigningKeyLength,
		)
	}
	if window < time.Second {
		return nil, apperrors.Wrap(apperrors.ErrMisconfigured, "token validity window must be at least one second")
	}
	for name := range staticClaims {
		if authDomain.IsReservedClaim(name) {
			return nil, fmt.Errorf("%w: %q", authDomain.ErrReservedClaim, name)
		}
	}

	return &tokenService{
		key:          append([]byte(nil), key...),
		window:       window,
		staticClaims: maps.Clone(staticClaims),
	}, nil
}

// Issue signs a token for subject. iat and exp keep nanosecond resolution so the token
// expires exactly one window after now.
func (s *tokenService) Issue(subject string, extra map[string]any, now time.Time) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, apperrors.Wrap(apperrors.ErrInvalidInput, "token subject is required")
	}

	issuedAt := now.Round(0)
	expiresAt := issuedAt.Add(s.window)

	claims := jwt.MapClaims{}
	maps.Copy(claims, s.staticClaims)
	maps.Copy(claims, extra)
	claims[authDomain.ClaimSubject] = subject
	claims[authDomain.ClaimIssuedAt] = encodeNumericDate(issuedAt)
	claims[authDomain.ClaimExpiresAt] = encodeNumericDate(expiresAt)

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(err, "failed to sign token")
	}

	return signed, expiresAt, nil
}

// Validate parses and verifies token at now.
func (s *tokenService) Validate(token string, now time.Time) (*authDomain.Claims, error) {
	// Structure and algorithm are checked before any key is used so that "none" or a
	// different family is reported as malformed, not as a signature mismatch.
	unverified, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil || unverified.Method == nil || unverified.Method.Alg() != signingMethod.Alg() {
		return nil, authDomain.ErrMalformedToken
	}

	// Expiry is checked here rather than by the parser, which reads numeric dates through
	// float64 and can lose the sub-second part of exp.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithoutClaimsValidation(),
		jwt.WithJSONNumber(),
		jwt.WithStrictDecoding(),
	)

	claims := jwt.MapClaims{}
	if _, err := parser.ParseWithClaims(token, claims, s.keyFunc); err != nil {
		return nil, mapParseError(err)
	}

	decoded, err := toDomainClaims(claims)
	if err != nil {
		return nil, err
	}
	if !now.Before(decoded.ExpiresAt) {
		return nil, authDomain.ErrExpiredToken
	}

	return decoded, nil
}

// ExtractSubject validates token and returns its subject.
func (s *tokenService) ExtractSubject(token string, now time.Time) (string, error) {
	claims, err := s.Validate(token, now)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ValidityWindow returns the configured token lifetime.
func (s *tokenService) ValidityWindow() time.Duration {
	return s.window
}

func (s *tokenService) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.key, nil
}

// mapParseError translates a verification failure after the unverified parse succeeded.
// Header and payload decoded then, so a malformed error here concerns the signature segment.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenMalformed):
		return authDomain.ErrBadSignature
	default:
		return authDomain.ErrMalformedToken
	}
}

func toDomainClaims(claims jwt.MapClaims) (*authDomain.Claims, error) {
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, authDomain.ErrMalformedToken
	}
	issuedAt, ok := decodeNumericDate(claims[authDomain.ClaimIssuedAt])
	if !ok {
		return nil, authDomain.ErrMalformedToken
	}
	expiresAt, ok := decodeNumericDate(claims[authDomain.ClaimExpiresAt])
	if !ok {
		return nil, authDomain.ErrMalformedToken
	}

	extra := make(map[string]any)
	for name, value := range claims {
		if authDomain.IsReservedClaim(name) {
			continue
		}
		if n, ok := value.(json.Number); ok {
			f, err := n.Float64()
			if err != nil {
				return nil, authDomain.ErrMalformedToken
			}
			value = f
		}
		extra[name] = value
	}

	return &authDomain.Claims{
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		Extra:     extra,
	}, nil
}

// encodeNumericDate writes t as seconds since the epoch with up to nine fractional digits.
func encodeNumericDate(t time.Time) json.Number {
	secs := strconv.FormatInt(t.Unix(), 10)
	if t.Nanosecond() == 0 {
		return json.Number(secs)
	}
	frac := strings.TrimRight(fmt.Sprintf("%09d", t.Nanosecond()), "0")
	return json.Number(secs + "." + frac)
}

// decodeNumericDate reads a NumericDate claim. Plain decimals are parsed digit by digit;
// exponent or negative forms fall back to float64.
func decodeNumericDate(value any) (time.Time, bool) {
	n, ok := value.(json.Number)
	if !ok {
		return time.Time{}, false
	}
	s := string(n)

	if !strings.ContainsAny(s, "eE-+") {
		intPart, fracPart, _ := strings.Cut(s, ".")
		secs, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		if len(fracPart) > 9 {
			fracPart = fracPart[:9]
		}
		var nanos int64
		if fracPart != "" {
			nanos, err = strconv.ParseInt(fracPart+strings.Repeat("0", 9-len(fracPart)), 10, 64)
			if err != nil {
				return time.Time{}, false
			}
		}
		return time.Unix(secs, nanos), true
	}

	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	secs, frac := math.Modf(f)
	return time.Unix(int64(secs), int64(frac*1e9)), true
}
