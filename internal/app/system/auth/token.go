package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNoToken      = errors.New("no token provided")
	ErrTokenFormat  = errors.New("invalid token format")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claim names used in church tokens.
const (
	claimSubject  = "sub"
	claimChurch   = "church_id"
	claimBranch   = "branch_id"
	claimRole     = "role"
	claimName     = "name"
	claimExpires  = "exp"
	claimIssuer   = "iss"
	claimIssuedAt = "iat"
)

// clockSkew tolerates small clock differences between issuer and API.
const clockSkew = 30 * time.Second

// Verifier checks HS256 tokens and turns their claims into a Principal.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewVerifier returns a verifier for secret. When issuer is non-empty the
// token's iss claim must match.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Verify parses and validates a raw token.
func (v *Verifier) Verify(raw string) (Principal, error) {
	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	_, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if err := v.checkExpiry(claims); err != nil {
		return Principal{}, err
	}
	if v.issuer != "" {
		if iss, _ := claims[claimIssuer].(string); iss != v.issuer {
			return Principal{}, fmt.Errorf("%w: issuer mismatch", ErrTokenInvalid)
		}
	}
	return principalFromClaims(claims)
}

func (v *Verifier) checkExpiry(claims jwt.MapClaims) error {
	exp, ok := claims[claimExpires].(float64)
	if !ok {
		return fmt.Errorf("%w: missing exp", ErrTokenInvalid)
	}
	if v.now().After(time.Unix(int64(exp), 0).Add(clockSkew)) {
		return ErrTokenExpired
	}
	return nil
}

func principalFromClaims(claims jwt.MapClaims) (Principal, error) {
	var p Principal

	sub, _ := claims[claimSubject].(string)
	id, err := primitive.ObjectIDFromHex(sub)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}
	p.SubjectID = id

	role, _ := claims[claimRole].(string)
	p.Role = normalize.Role(role)
	if p.Role == "" {
		return Principal{}, fmt.Errorf("%w: missing role", ErrTokenInvalid)
	}
	p.Name, _ = claims[claimName].(string)

	// A missing or malformed church id leaves the principal without a
	// tenant; handlers answer that with 400.
	if s, ok := claims[claimChurch].(string); ok {
		if cid, err := primitive.ObjectIDFromHex(s); err == nil {
			p.ChurchID = cid
		}
	}
	if s, ok := claims[claimBranch].(string); ok && s != "" {
		if bid, err := primitive.ObjectIDFromHex(s); err == nil {
			p.BranchID = &bid
		}
	}
	return p, nil
}

// Signer issues tokens in the format Verifier accepts. The API itself only
// verifies; Signer backs the dev token command and tests.
type Signer struct {
	secret []byte
	issuer string
}

func NewSigner(secret, issuer string) *Signer {
	return &Signer{secret: []byte(secret), issuer: issuer}
}

// Sign returns a token for p valid for ttl.
func (s *Signer) Sign(p Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		claimSubject:  p.SubjectID.Hex(),
		claimRole:     p.Role,
		claimName:     p.Name,
		claimIssuedAt: now.Unix(),
		claimExpires:  now.Add(ttl).Unix(),
	}
	if !p.ChurchID.IsZero() {
		claims[claimChurch] = p.ChurchID.Hex()
	}
	if p.BranchID != nil {
		claims[claimBranch] = p.BranchID.Hex()
	}
	if s.issuer != "" {
		claims[claimIssuer] = s.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ExtractBearer pulls the token out of an Authorization header value.
// Scheme matching is case-insensitive and surrounding quotes are dropped.
func ExtractBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrNoToken
	}
	fields := strings.Fields(header)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", ErrTokenFormat
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), `"'`)
	if tok == "" {
		return "", ErrTokenFormat
	}
	return tok, nil
}
